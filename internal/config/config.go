// Package config loads harvester settings from an optional YAML file and
// HARVESTER_-prefixed environment variables.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Nyaya-Manch/kanoon-khabar/pkg/blobstore"
)

// Config is the full harvester configuration.
type Config struct {
	LogLevel string

	// Harvest cycle.
	TotalLimit      int
	CronSpec        string
	FallbackEnabled bool
	TimeoutSeconds  int
	RetryAttempts   int
	SourceWeights   map[string]float64

	// Image resolution.
	ImageWorkers      int
	ImageRequestDelay time.Duration

	// Collaborators.
	PostgresDSN    string
	DedupPath      string
	PublishersFile string
	Blob           blobstore.Config
}

// Load reads the optional config file named by HARVESTER_CONFIG_FILE, then
// applies environment overrides and defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HARVESTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	weights, err := parseWeights(v.GetStringMapString("source_weights"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:          v.GetString("log_level"),
		TotalLimit:        v.GetInt("total_limit"),
		CronSpec:          v.GetString("cron_spec"),
		FallbackEnabled:   v.GetBool("fallback_enabled"),
		TimeoutSeconds:    v.GetInt("timeout_seconds"),
		RetryAttempts:     v.GetInt("retry_attempts"),
		SourceWeights:     weights,
		ImageWorkers:      v.GetInt("image_workers"),
		ImageRequestDelay: v.GetDuration("image_request_delay"),
		PostgresDSN:       v.GetString("postgres_dsn"),
		DedupPath:         v.GetString("dedup_path"),
		PublishersFile:    v.GetString("publishers_file"),
		Blob: blobstore.Config{
			Provider: v.GetString("blob.provider"),
			Local: &blobstore.LocalCfg{
				RootDir: v.GetString("blob.local_root"),
				BaseURL: v.GetString("blob.local_base_url"),
			},
			S3: &blobstore.S3Cfg{
				Bucket:          v.GetString("blob.s3_bucket"),
				Region:          v.GetString("blob.s3_region"),
				AccessKeyID:     v.GetString("blob.s3_access_key_id"),
				SecretAccessKey: v.GetString("blob.s3_secret_access_key"),
			},
		},
	}

	if cfg.TotalLimit <= 0 {
		return nil, fmt.Errorf("total_limit must be positive, got %d", cfg.TotalLimit)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("total_limit", 30)
	v.SetDefault("cron_spec", "*/30 * * * *")
	v.SetDefault("fallback_enabled", true)
	v.SetDefault("timeout_seconds", 10)
	v.SetDefault("retry_attempts", 2)
	v.SetDefault("source_weights", map[string]string{
		"indian_kanoon_rss": "1.0",
		"livelaw_api":       "0.8",
		"bar_bench":         "0.7",
	})
	v.SetDefault("image_workers", 4)
	v.SetDefault("image_request_delay", "0s")
	v.SetDefault("postgres_dsn", "host=localhost user=harvester password=harvester dbname=harvester port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("dedup_path", "./harvester_dedup.db")
	v.SetDefault("publishers_file", "")
	v.SetDefault("blob.provider", blobstore.ProviderLocal)
	v.SetDefault("blob.local_root", "./blob_storage")
	v.SetDefault("blob.local_base_url", "")
}

func parseWeights(raw map[string]string) (map[string]float64, error) {
	weights := make(map[string]float64, len(raw))
	for key, val := range raw {
		w, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("source weight %q=%q is not a number: %w", key, val, err)
		}
		if w <= 0 {
			return nil, fmt.Errorf("source weight %q must be positive, got %v", key, w)
		}
		weights[key] = w
	}
	return weights, nil
}
