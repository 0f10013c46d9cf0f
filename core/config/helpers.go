package config

import (
	"os"
	"strconv"
	"strings"
)

// GetAllSettings returns a map of the dynamic settings currently loaded in
// memory, for the operator status endpoint.
func GetAllSettings() map[string]any {
	if Global == nil {
		return map[string]any{}
	}
	return map[string]any{
		"app_debug":                Global.App.Debug,
		"app_version":              Global.App.Version,
		"gating_enabled":           Global.Gating.Enabled,
		"gating_strategy":          Global.Gating.Strategy,
		"gating_match_mode":        Global.Gating.MatchMode,
		"gating_cache_ttl_seconds": Global.Gating.CacheTTLSeconds,
		"gating_model_enabled":     Global.Gating.ModelGating,
		"feeds_rss_count":          len(Global.Feeds.RSS),
		"feeds_youtube_count":      len(Global.Feeds.Youtube),
		"feeds_max_items":          Global.Feeds.MaxItems,
		"discord_webhook_set":      Global.Discord.WebhookURL != "",
		"digest_worker_pool_size":  Global.WorkerPool.Size,
		"digest_worker_queue_size": Global.WorkerPool.QueueSize,
		"database_driver":          Global.Database.Driver,
		"database_valkey_enabled":  Global.Database.ValkeyEnabled,
	}
}

// Helpers
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		vLower := strings.ToLower(v)
		return vLower == "1" || vLower == "true" || vLower == "yes" || vLower == "on"
	}
	return fallback
}

// getEnvList splits a comma-separated variable, trimming blanks.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
