package config

import (
	"testing"

	"multicollateral/core"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	var cfg core.Config
	cfg.Worker.PriceInterval = 5
	defaults(&cfg)

	assert.Equal(t, "sUSD", cfg.App.QuoteCurrency)
	assert.Equal(t, "10000000", cfg.Manager.DebtCeiling)
	assert.Equal(t, int64(5), cfg.Worker.PriceInterval)
	assert.Equal(t, int64(60), cfg.Worker.AccrualInterval)
}
