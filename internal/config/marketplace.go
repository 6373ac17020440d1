package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// MarketplaceConfig holds business tunables that operators may adjust
// without a redeploy.
type MarketplaceConfig struct {
	TaxRate            float64 `mapstructure:"taxRate"`
	Currency           string  `mapstructure:"currency"`
	InvoicePrefix      string  `mapstructure:"invoicePrefix"`
	FeedbackTruncateAt int     `mapstructure:"feedbackTruncateAt"`
	RateLimitPerSecond float64 `mapstructure:"rateLimitPerSecond"`
	RateLimitBurst     int     `mapstructure:"rateLimitBurst"`
}

func DefaultMarketplaceConfig() MarketplaceConfig {
	return MarketplaceConfig{
		TaxRate:            0.21,
		Currency:           "EUR",
		InvoicePrefix:      "INV",
		FeedbackTruncateAt: 150,
		RateLimitPerSecond: 10,
		RateLimitBurst:     30,
	}
}

// MarketplaceConfigHolder exposes the current marketplace config and keeps it
// fresh when the backing file changes.
type MarketplaceConfigHolder struct {
	current atomic.Value // holds MarketplaceConfig
}

func NewMarketplaceConfigHolder() (*MarketplaceConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("marketplace")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/taskora/config")
	v.AddConfigPath("/etc/taskora")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TASKORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultMarketplaceConfig()
		v.SetDefault("marketplace.taxRate", defaults.TaxRate)
		v.SetDefault("marketplace.currency", defaults.Currency)
		v.SetDefault("marketplace.invoicePrefix", defaults.InvoicePrefix)
		v.SetDefault("marketplace.feedbackTruncateAt", defaults.FeedbackTruncateAt)
		v.SetDefault("marketplace.rateLimitPerSecond", defaults.RateLimitPerSecond)
		v.SetDefault("marketplace.rateLimitBurst", defaults.RateLimitBurst)
	}

	holder := &MarketplaceConfigHolder{}
	cfg, err := unmarshalMarketplace(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(cfg)

	v.OnConfigChange(func(_ fsnotify.Event) {
		updated, err := unmarshalMarketplace(v)
		if err != nil {
			log.Printf("marketplace config reload failed: %v", err)
			return
		}
		holder.current.Store(updated)
	})
	v.WatchConfig()

	return holder, nil
}

// Current returns the active marketplace configuration.
func (h *MarketplaceConfigHolder) Current() MarketplaceConfig {
	if h == nil {
		return DefaultMarketplaceConfig()
	}
	cfg, ok := h.current.Load().(MarketplaceConfig)
	if !ok {
		return DefaultMarketplaceConfig()
	}
	return cfg
}

func unmarshalMarketplace(v *viper.Viper) (MarketplaceConfig, error) {
	var cfg MarketplaceConfig
	if err := v.UnmarshalKey("marketplace", &cfg); err != nil {
		return MarketplaceConfig{}, err
	}
	return normalizeMarketplace(cfg)
}

func normalizeMarketplace(cfg MarketplaceConfig) (MarketplaceConfig, error) {
	defaults := DefaultMarketplaceConfig()
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return cfg, errors.New("marketplace.taxRate must be in [0, 1)")
	}
	if cfg.TaxRate == 0 && cfg.Currency == "" {
		// Empty section: fall back wholesale rather than half-configured.
		return defaults, nil
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		cfg.Currency = defaults.Currency
	}
	if strings.TrimSpace(cfg.InvoicePrefix) == "" {
		cfg.InvoicePrefix = defaults.InvoicePrefix
	}
	if cfg.FeedbackTruncateAt <= 0 {
		cfg.FeedbackTruncateAt = defaults.FeedbackTruncateAt
	}
	if cfg.RateLimitPerSecond <= 0 {
		cfg.RateLimitPerSecond = defaults.RateLimitPerSecond
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = defaults.RateLimitBurst
	}
	return cfg, nil
}
