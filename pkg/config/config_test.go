package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "GigaChat-2-Max", cfg.Agents.BudgetModel)
	assert.Equal(t, "GigaChat-2", cfg.Agents.UtilityModel)
	assert.Equal(t, "DZD", cfg.Agents.Currency)
	assert.InDelta(t, 0.7, cfg.Agents.Temperature, 0.001)
	assert.Equal(t, 30, cfg.Retention.NotificationDays)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AGENT_BUDGET_MODEL", "GigaChat-3-Max")
	t.Setenv("CURRENCY", "EUR")
	t.Setenv("NOTIFICATION_RETENTION_DAYS", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "GigaChat-3-Max", cfg.Agents.BudgetModel)
	assert.Equal(t, "EUR", cfg.Agents.Currency)
	assert.Equal(t, 7, cfg.Retention.NotificationDays)
}
