package ledger_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/money_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/money_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_ledger/internal/dto"
	"github.com/SscSPs/money_ledger/internal/migrations"
	"github.com/SscSPs/money_ledger/internal/platform/config"
	"github.com/SscSPs/money_ledger/pkg/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedRates = `
currencies:
  - code: GEL
    symbol: "₾"
    name: Georgian Lari
    minorUnits: 2
rates:
  - from: USD
    to: UZS
    mid: "12500"
    bid: "12450"
    ask: "12550"
    source: central_bank
    date: 2024-01-01
  - from: USD
    to: GEL
    mid: 2.7
    source: market
    date: 2024-01-01
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabasePath:    filepath.Join(t.TempDir(), "data", "ledger.db"),
		DatabaseTimeout: time.Second,
		BaseCurrency:    "USD",
		BridgeCurrency:  "USD",
		DefaultUserID:   "local",
		SeedCurrencies:  true,
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.RatesSeedFile = filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(cfg.RatesSeedFile, []byte(seedRates), 0o600))

	l, err := ledger.Open(ctx, cfg)
	require.NoError(t, err)
	latest := migrations.New(nil).LatestVersion()
	assert.Equal(t, 1, l.Migration.From)
	assert.Equal(t, latest, l.Migration.To)

	_, err = l.Services.Currency.GetCurrencyByCode(ctx, "UZS")
	assert.NoError(t, err, "default currencies are seeded")
	_, err = l.Services.Currency.GetCurrencyByCode(ctx, "GEL")
	assert.NoError(t, err, "rate file currencies are registered")

	result, err := l.Services.Conversion.Convert(ctx, domain.ConversionRequest{
		Amount: decimal.NewFromInt(2), From: "USD", To: "GEL",
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5.4").Equal(result.ConvertedAmount), "got %s", result.ConvertedAmount)
	require.NoError(t, l.Close())
	assert.NoError(t, l.Close(), "closing twice is harmless")

	// Reopening finds nothing to migrate and does not duplicate the seed
	l, err = ledger.Open(ctx, cfg)
	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, latest, l.Migration.From)
	assert.Equal(t, latest, l.Migration.To)
	history, err := l.Services.FxRate.ListFxRateHistory(ctx, "USD", "UZS")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestOpenStopsAtMigrationTarget(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedCurrencies = false

	l, err := ledger.Open(context.Background(), cfg, ledger.WithMigrationTarget(2))
	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, 2, l.Migration.To)
}

func TestOpenFailsOnBadSeedFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.RatesSeedFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := ledger.Open(context.Background(), cfg)
	assert.Error(t, err)

	// The store was released, so it can be opened again
	cfg.RatesSeedFile = ""
	l, err := ledger.Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, l.Close())
}

func TestOpenPublishesChanges(t *testing.T) {
	ctx := context.Background()
	l, err := ledger.Open(ctx, testConfig(t))
	require.NoError(t, err)
	defer l.Close()

	var kinds []string
	l.Changes.Subscribe(func(_ context.Context, e portssvc.ChangeEvent) {
		kinds = append(kinds, string(e.Kind))
	})

	session := ledger.DefaultSession(testConfig(t))
	_, err = l.Services.Account.CreateAccount(ctx, session, dto.CreateAccountRequest{
		Name: "Cash", AccountType: domain.AccountTypeCash, CurrencyCode: "USD", InitialBalance: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"accounts"}, kinds)
}

func TestReconcileAll(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	l, err := ledger.Open(ctx, cfg)
	require.NoError(t, err)
	defer l.Close()

	session := ledger.DefaultSession(cfg)
	assert.Equal(t, domain.CurrencyCode("USD"), session.BaseCurrency)
	for _, name := range []string{"Cash", "Card"} {
		_, err := l.Services.Account.CreateAccount(ctx, session, dto.CreateAccountRequest{
			Name: name, AccountType: domain.AccountTypeCash, CurrencyCode: "USD", InitialBalance: decimal.NewFromInt(25),
		})
		require.NoError(t, err)
	}

	results, err := l.ReconcileAll(ctx, session)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.InBalance(), "account %s drifted by %s", r.AccountID, r.Difference)
	}
}

func TestDecodeRateFile(t *testing.T) {
	file, err := ledger.DecodeRateFile(strings.NewReader(seedRates))
	require.NoError(t, err)
	require.Len(t, file.Rates, 2)
	assert.Equal(t, "GEL", file.Currencies[0].CurrencyCode)
	assert.True(t, decimal.RequireFromString("12450").Equal(*file.Rates[0].RateBid))
	assert.True(t, decimal.RequireFromString("2.7").Equal(file.Rates[1].RateMid))
	assert.Equal(t, domain.RateSourceMarket, file.Rates[1].Source)
	require.NotNil(t, file.Rates[0].Date)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), file.Rates[0].Date.UTC())

	empty, err := ledger.DecodeRateFile(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Rates)

	_, err = ledger.DecodeRateFile(strings.NewReader("rates:\n  - from: USD\n    rate: 1\n"))
	assert.Error(t, err, "unknown keys are rejected")
}
