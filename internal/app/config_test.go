package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"invoiced", "paid"}, cfg.AcceptedInvoiceStatuses())
	assert.Equal(t, []string{"ANU-", "OLD-"}, cfg.LegacySKUPrefixes())
}

func TestConfigCSVParsingSkipsBlanks(t *testing.T) {
	t.Setenv("FACT_INVOICE_STATUSES", " invoiced, ,paid , ")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"invoiced", "paid"}, cfg.AcceptedInvoiceStatuses())
}

func TestIsProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
