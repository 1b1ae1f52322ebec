package config

import (
	"multicollateral/core"

	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("MULTICOLLATERAL")
	if configFile != "" {
		if err := configUtil.LoadYaml(configFile, config); err != nil {
			return err
		}
	}

	defaults(config)
	return nil
}

func defaults(cfg *core.Config) {
	if cfg.App.QuoteCurrency == "" {
		cfg.App.QuoteCurrency = "sUSD"
	}

	if cfg.App.Location == "" {
		cfg.App.Location = "UTC"
	}

	if cfg.Manager.DebtCeiling == "" {
		cfg.Manager.DebtCeiling = "10000000"
	}

	if cfg.Manager.ShortBaseRate == "" {
		cfg.Manager.ShortBaseRate = "0.05"
	}

	if cfg.Manager.ShortSlope == "" {
		cfg.Manager.ShortSlope = "0.5"
	}

	if cfg.Worker.AccrualInterval <= 0 {
		cfg.Worker.AccrualInterval = 60
	}

	if cfg.Worker.PriceInterval <= 0 {
		cfg.Worker.PriceInterval = 30
	}

	if cfg.Worker.LiquidateInterval <= 0 {
		cfg.Worker.LiquidateInterval = 60
	}
}
