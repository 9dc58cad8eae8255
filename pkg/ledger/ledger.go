// Package ledger assembles the embedded store, schema migrations and services into one handle.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/SscSPs/money_ledger/internal/adapters/database/boltdb"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/money_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_ledger/internal/core/services"
	"github.com/SscSPs/money_ledger/internal/dto"
	"github.com/SscSPs/money_ledger/internal/migrations"
	"github.com/SscSPs/money_ledger/internal/platform/config"
	"github.com/SscSPs/money_ledger/internal/platform/logging"
	"github.com/SscSPs/money_ledger/pkg/database"
	"gopkg.in/yaml.v3"
)

// Ledger is an open ledger store with its services.
type Ledger struct {
	Services  *portssvc.ServiceContainer
	Changes   *services.ChangeBroadcaster
	Migration migrations.Result

	store *boltdb.Store
}

type openOptions struct {
	goals           portssvc.GoalLinkChecker
	serviceOptions  []services.ServiceOption
	migrationTarget int
}

// Option customizes Open.
type Option func(*openOptions)

// WithGoalLinkChecker attaches the planner that guards budget archiving.
func WithGoalLinkChecker(goals portssvc.GoalLinkChecker) Option {
	return func(o *openOptions) {
		o.goals = goals
	}
}

// WithServiceOptions forwards options to every service.
func WithServiceOptions(opts ...services.ServiceOption) Option {
	return func(o *openOptions) {
		o.serviceOptions = append(o.serviceOptions, opts...)
	}
}

// WithMigrationTarget stops schema migration at version instead of the latest one.
func WithMigrationTarget(version int) Option {
	return func(o *openOptions) {
		o.migrationTarget = version
	}
}

// Open opens the store at cfg.DatabasePath, migrates it, and seeds currencies and rates
// as cfg asks. Migration always runs before any service touches the store.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Ledger, error) {
	logger := logging.GetLoggerFromCtx(ctx)
	options := &openOptions{}
	for _, opt := range opts {
		opt(options)
	}

	db, err := database.NewBoltDB(cfg.DatabasePath, cfg.DatabaseTimeout)
	if err != nil {
		return nil, err
	}
	store, err := boltdb.New(db)
	if err != nil {
		database.CloseBoltDB(db)
		return nil, fmt.Errorf("failed to prepare store: %w", err)
	}

	l := &Ledger{store: store, Changes: services.NewChangeBroadcaster()}
	fail := func(err error) (*Ledger, error) {
		_ = l.Close()
		return nil, err
	}

	logger.Info("Running schema migrations...", slog.String("path", store.Path()))
	migrator := migrations.New(store)
	target := migrator.LatestVersion()
	if options.migrationTarget > 0 {
		target = options.migrationTarget
	}
	l.Migration, err = migrator.Migrate(ctx, target)
	switch {
	case errors.Is(err, migrations.ErrNoChange):
		logger.Info("No new schema migrations to apply.", slog.Int("version", l.Migration.To))
	case err != nil:
		logger.Error("Failed to apply schema migrations", slog.String("error", err.Error()))
		return fail(err)
	default:
		logger.Info("Schema migrations applied successfully.",
			slog.Int("from", l.Migration.From),
			slog.Int("to", l.Migration.To),
			slog.Int("changed_documents", l.Migration.Changed))
	}

	serviceOptions := append([]services.ServiceOption{services.WithNotifier(l.Changes)}, options.serviceOptions...)
	l.Services = services.NewServiceContainer(cfg, store, options.goals, serviceOptions...)

	if cfg.SeedCurrencies {
		if err := l.Services.Currency.SeedDefaults(ctx); err != nil {
			return fail(fmt.Errorf("failed to seed currencies: %w", err))
		}
	}
	if cfg.RatesSeedFile != "" {
		file, err := LoadRateFile(cfg.RatesSeedFile)
		if err != nil {
			return fail(err)
		}
		saved, err := l.Services.FxRate.ImportRates(ctx, file, cfg.DefaultUserID)
		if err != nil {
			return fail(fmt.Errorf("failed to import seed rates: %w", err))
		}
		logger.Info("Imported seed rates", slog.String("file", cfg.RatesSeedFile), slog.Int("rates", saved))
	}

	return l, nil
}

// DefaultSession is the session the maintenance tools act in.
func DefaultSession(cfg *config.Config) domain.Session {
	return domain.Session{UserID: cfg.DefaultUserID, BaseCurrency: domain.CurrencyCode(cfg.BaseCurrency)}
}

// ReconcileAll replays every account of session and returns the results, drifted accounts included.
func (l *Ledger) ReconcileAll(ctx context.Context, session domain.Session) ([]dto.ReconcileAccountResult, error) {
	accounts, err := l.Services.Account.ListAccounts(ctx, session)
	if err != nil {
		return nil, err
	}
	results := make([]dto.ReconcileAccountResult, 0, len(accounts))
	for _, account := range accounts {
		result, err := l.Services.Account.ReconcileAccount(ctx, session, account.AccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile account %s: %w", account.AccountID, err)
		}
		results = append(results, *result)
	}
	return results, nil
}

// Close releases the store.
func (l *Ledger) Close() error {
	if l == nil || l.store == nil {
		return nil
	}
	err := l.store.Close()
	l.store = nil
	return err
}

// LoadRateFile reads a YAML rate file from path.
func LoadRateFile(path string) (dto.RateFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return dto.RateFile{}, fmt.Errorf("failed to open rate file: %w", err)
	}
	defer f.Close()
	return DecodeRateFile(f)
}

// DecodeRateFile parses a YAML rate file. Unknown keys are rejected.
func DecodeRateFile(r io.Reader) (dto.RateFile, error) {
	var file dto.RateFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return dto.RateFile{}, fmt.Errorf("failed to parse rate file: %w", err)
	}
	return file, nil
}
