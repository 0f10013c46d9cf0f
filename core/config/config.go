package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-digest/domains/gating"
	"github.com/AzielCF/az-digest/domains/summary"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Paths      PathsConfig
	Database   DatabaseConfig
	Feeds      FeedsConfig
	Gating     GatingConfig
	AI         AIConfig
	Discord    DiscordConfig
	WorkerPool WorkerPoolConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasePath           string
	CorsAllowedOrigins []string
}

type PathsConfig struct {
	BaseDir  string
	Storages string
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string // File path for SQLite, DB name for Postgres
	ValkeyEnabled   bool
	ValkeyAddress   string
	ValkeyPassword  string
	ValkeyDB        int
	ValkeyKeyPrefix string
}

type FeedsConfig struct {
	RSS          []string
	Youtube      []string
	MaxItems     int
	SeenRetained time.Duration
}

type GatingConfig struct {
	Enabled            bool
	Strategy           string
	MatchMode          string
	Keywords           []string
	DefaultOnError     bool
	CacheTTLSeconds    int
	ModelGating        bool
	FallbackToKeywords bool
	Model              string
}

// RoleConfig holds per-role model settings for the summarizer chain.
type RoleConfig struct {
	Model           string
	FallbackModel   string
	MaxOutputTokens int
	Temperature     float64
}

type AIConfig struct {
	OpenAIAPIKey   string
	GeminiAPIKey   string
	GeminiModel    string
	RequestTimeout time.Duration
	Article        RoleConfig
	AudioBrief     RoleConfig
	Classification RoleConfig
}

type DiscordConfig struct {
	WebhookURL    string
	MaxImageBytes int64
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from environment variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	debug := false
	if v := os.Getenv("APP_DEBUG"); v == "true" || v == "1" || v == "on" {
		debug = true
	} else if v := os.Getenv("DEBUG"); v == "true" || v == "1" {
		debug = true
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	cfg := &Config{
		App: AppConfig{
			Version:            "v1.2.0",
			Port:               getEnv("APP_PORT", "3000"),
			Debug:              debug,
			Environment:        getEnv("APP_ENV", "development"),
			BasePath:           getEnv("APP_BASE_PATH", ""),
			CorsAllowedOrigins: corsOrigins,
		},
		Paths: PathsConfig{
			BaseDir:  baseDir,
			Storages: baseDir,
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Name:            getEnv("DB_NAME", filepath.Join(baseDir, "digest.db")),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			ValkeyEnabled:   getEnvBool("VALKEY_ENABLED", false),
			ValkeyAddress:   getEnv("VALKEY_ADDRESS", "localhost:6379"),
			ValkeyPassword:  getEnv("VALKEY_PASSWORD", ""),
			ValkeyDB:        getEnvInt("VALKEY_DB", 0),
			ValkeyKeyPrefix: getEnv("VALKEY_KEY_PREFIX", "azdigest:"),
		},
		Feeds: FeedsConfig{
			RSS:          getEnvList("RSS_FEEDS", nil),
			Youtube:      getEnvList("YOUTUBE_FEEDS", nil),
			MaxItems:     getEnvInt("FEED_MAX_ITEMS", 2),
			SeenRetained: time.Duration(getEnvInt("FEED_SEEN_RETENTION_DAYS", 30)) * 24 * time.Hour,
		},
		Gating: GatingConfig{
			Enabled:            getEnvBool("GATING_ENABLED", true),
			Strategy:           strings.ToLower(strings.TrimSpace(getEnv("GATING_STRATEGY", "keywords"))),
			MatchMode:          strings.ToLower(strings.TrimSpace(getEnv("GATING_MATCH_MODE", "allow_if_any"))),
			Keywords:           getEnvList("GATING_KEYWORDS", nil),
			DefaultOnError:     getEnvBool("GATING_DEFAULT_ON_ERROR", true),
			CacheTTLSeconds:    getEnvInt("GATING_CACHE_TTL_SECONDS", 3600),
			ModelGating:        getEnvBool("GATING_USE_MODEL", false),
			FallbackToKeywords: getEnvBool("GATING_MODEL_FALLBACK_TO_KEYWORDS", true),
			Model:              getEnv("GATING_MODEL", "gpt-5-mini"),
		},
		AI: AIConfig{
			OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
			GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
			GeminiModel:    getEnv("GEMINI_MODEL", "gemini-flash-latest"),
			RequestTimeout: time.Duration(getEnvInt("AI_REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
			Article: RoleConfig{
				Model:           getEnv("AI_ARTICLE_MODEL", "gpt-5-mini"),
				FallbackModel:   getEnv("AI_ARTICLE_FALLBACK_MODEL", "gpt-4o-mini"),
				MaxOutputTokens: getEnvInt("AI_ARTICLE_MAX_OUTPUT_TOKENS", 256),
				Temperature:     getEnvFloat("AI_ARTICLE_TEMPERATURE", 0.3),
			},
			AudioBrief: RoleConfig{
				Model:           getEnv("AI_AUDIO_BRIEF_MODEL", "gpt-5-mini"),
				FallbackModel:   getEnv("AI_AUDIO_BRIEF_FALLBACK_MODEL", "gpt-4o-mini"),
				MaxOutputTokens: getEnvInt("AI_AUDIO_BRIEF_MAX_OUTPUT_TOKENS", 192),
				Temperature:     getEnvFloat("AI_AUDIO_BRIEF_TEMPERATURE", 0.3),
			},
			Classification: RoleConfig{
				Model:           getEnv("AI_CLASSIFICATION_MODEL", "gpt-5-mini"),
				FallbackModel:   getEnv("AI_CLASSIFICATION_FALLBACK_MODEL", "gpt-4o-mini"),
				MaxOutputTokens: getEnvInt("AI_CLASSIFICATION_MAX_OUTPUT_TOKENS", 8),
				Temperature:     getEnvFloat("AI_CLASSIFICATION_TEMPERATURE", 0),
			},
		},
		Discord: DiscordConfig{
			WebhookURL:    getEnv("DISCORD_WEBHOOK_URL", ""),
			MaxImageBytes: getEnvInt64("DISCORD_MAX_IMAGE_BYTES", 7_000_000),
		},
		WorkerPool: WorkerPoolConfig{
			Size:      getEnvInt("DIGEST_WORKER_POOL_SIZE", 8),
			QueueSize: getEnvInt("DIGEST_WORKER_QUEUE_SIZE", 256),
		},
	}

	// Valores desconocidos no abortan el arranque: el engine falla abierto
	// en runtime, aquí solo se deja constancia de la anomalía.
	if err := cfg.Gating.Validate(); err != nil {
		logrus.Warnf("[CONFIG] Gating configuration anomaly (engine will fail open): %v", err)
	}

	Global = cfg
	return cfg, nil
}

// Validate flags configurations the gating engine cannot interpret. Unknown
// strategy/match-mode values are tolerated at runtime (fail-open); this only
// lets the anomaly surface in the startup log.
func (g GatingConfig) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.Strategy, validation.In(string(gating.StrategyKeywords), string(gating.StrategyModel))),
		validation.Field(&g.MatchMode, validation.In(string(gating.MatchModeAllowIfAny), string(gating.MatchModeDenyIfAny))),
		validation.Field(&g.Keywords, validation.Each(validation.By(nonBlank))),
	)
}

func nonBlank(value interface{}) error {
	s, _ := value.(string)
	return validation.Validate(strings.TrimSpace(s), validation.Required)
}

// GatingSettings converts the raw config into the gating domain settings.
func (c *Config) GatingSettings() gating.Settings {
	return gating.Settings{
		Enabled:            c.Gating.Enabled,
		Strategy:           gating.Strategy(c.Gating.Strategy),
		MatchMode:          gating.MatchMode(c.Gating.MatchMode),
		Keywords:           c.Gating.Keywords,
		DefaultOnError:     c.Gating.DefaultOnError,
		CacheTTL:           time.Duration(c.Gating.CacheTTLSeconds) * time.Second,
		ModelGating:        c.Gating.ModelGating,
		FallbackToKeywords: c.Gating.FallbackToKeywords,
		Model:              c.Gating.Model,
	}
}

// RoleFor returns the model settings for a summarizer role.
func (a AIConfig) RoleFor(role summary.Role) RoleConfig {
	switch role {
	case summary.RoleAudioBrief:
		return a.AudioBrief
	case summary.RoleClassification:
		return a.Classification
	default:
		return a.Article
	}
}
