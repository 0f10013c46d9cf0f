package cmd

import (
	"context"
	"os"
	"time"

	coreconfig "github.com/AzielCF/az-digest/core/config"
	coreDB "github.com/AzielCF/az-digest/core/database"
	domainGating "github.com/AzielCF/az-digest/domains/gating"
	domainSummary "github.com/AzielCF/az-digest/domains/summary"
	"github.com/AzielCF/az-digest/infrastructure/contentfetch"
	"github.com/AzielCF/az-digest/infrastructure/feedstore"
	"github.com/AzielCF/az-digest/infrastructure/rss"
	"github.com/AzielCF/az-digest/infrastructure/valkey"
	"github.com/AzielCF/az-digest/integrations/discord"
	"github.com/AzielCF/az-digest/integrations/gemini"
	"github.com/AzielCF/az-digest/integrations/openai"
	"github.com/AzielCF/az-digest/pkg/decisioncache"
	"github.com/AzielCF/az-digest/pkg/feedworker"
	"github.com/AzielCF/az-digest/pkg/utils"
	"github.com/AzielCF/az-digest/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	appCtx    context.Context
	appCancel context.CancelFunc

	// Usecase
	gatingUsecase  domainGating.IGatingUsecase
	summaryUsecase domainSummary.ISummaryUsecase
	digestService  *usecase.DigestService

	// Infra
	feedFetcher  *rss.Fetcher
	workerPool   *feedworker.Pool
	valkeyClient *valkey.Client
	memoryCache  *decisioncache.MemoryStore
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "az-digest",
	Short: "Gated news digest for Discord",
	Long: `Fetches the configured RSS and YouTube feeds, filters each item through
the relevance gate and publishes AI-generated summaries to a Discord webhook.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringP(
		"port", "p", "",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolP(
		"debug", "d", false,
		"displaying debug log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().String(
		"webhook", "",
		`Discord webhook URL --webhook <string> | example: --webhook="https://discord.com/api/webhooks/..."`,
	)
	rootCmd.PersistentFlags().Int(
		"feed-workers", 0,
		"number of concurrent feed workers --feed-workers <number> | example: --feed-workers=8",
	)

	_ = viper.BindPFlag("app_port", rootCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("app_debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("discord_webhook_url", rootCmd.PersistentFlags().Lookup("webhook"))
	_ = viper.BindPFlag("feed_worker_pool_size", rootCmd.PersistentFlags().Lookup("feed-workers"))
}

func initApp() {
	cfg, err := coreconfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("[APP] Failed to load configuration: %v", err)
	}

	// Flags win over environment
	if p := viper.GetString("app_port"); p != "" {
		cfg.App.Port = p
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}
	if w := viper.GetString("discord_webhook_url"); w != "" {
		cfg.Discord.WebhookURL = w
	}
	if n := viper.GetInt("feed_worker_pool_size"); n > 0 {
		cfg.WorkerPool.Size = n
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// The sqlite file lives under the storages dir, make sure it exists.
	if err := utils.CreateFolder(cfg.Paths.Storages); err != nil {
		logrus.Errorln(err)
	}

	appCtx, appCancel = context.WithCancel(context.Background())

	db, err := coreDB.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("[APP] Failed to open database: %v", err)
	}
	seenRepo, err := feedstore.NewSeenRepository(db)
	if err != nil {
		logrus.Fatalf("[APP] Failed to init seen-item repository: %v", err)
	}

	// Decision cache: Valkey when enabled, process memory otherwise.
	var decisionCache domainGating.DecisionCache
	if cfg.Database.ValkeyEnabled {
		valkeyClient, err = valkey.NewClient(valkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.Warnf("[APP] Valkey unavailable, falling back to in-memory decision cache: %v", err)
		} else {
			decisionCache = decisioncache.NewValkeyStore(valkeyClient)
		}
	}
	if decisionCache == nil {
		memoryCache = decisioncache.NewMemoryStore()
		decisionCache = memoryCache
	}

	aiClient := openai.NewClient(cfg.AI.OpenAIAPIKey, cfg.AI.RequestTimeout)
	classifier := openai.NewRelevanceClassifier(aiClient, cfg.Gating.Model)

	gatingUsecase = usecase.NewGatingService(cfg.GatingSettings(), decisionCache, classifier)
	summaryUsecase = usecase.NewSummaryService(aiClient, cfg.AI)

	videoSummarizer := gemini.NewClient(cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel)
	publisher := discord.NewPublisher(cfg.Discord.WebhookURL)

	feedFetcher = rss.NewFetcher()

	workerPool = feedworker.NewPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	workerPool.Start(appCtx)

	digestService = usecase.NewDigestService(
		cfg.Feeds,
		feedFetcher,
		contentfetch.NewFetcher(cfg.Discord.MaxImageBytes),
		seenRepo,
		gatingUsecase,
		summaryUsecase,
		videoSummarizer,
		publisher,
		workerPool,
	)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of all connections and background workers.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	// Drain the pool so dispatched items finish before we drop connections.
	if digestService != nil {
		digestService.Close()
	}

	if valkeyClient != nil {
		valkeyClient.Close()
	}

	if memoryCache != nil {
		memoryCache.Close()
	}

	if appCancel != nil {
		appCancel()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
