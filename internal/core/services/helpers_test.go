package services_test

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/SscSPs/money_ledger/internal/adapters/database/boltdb"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/money_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_ledger/internal/core/services"
	"github.com/SscSPs/money_ledger/internal/dto"
	"github.com/SscSPs/money_ledger/internal/platform/config"
	"github.com/SscSPs/money_ledger/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock GoalLinkChecker ---
type MockGoalLinkChecker struct {
	mock.Mock
}

var _ portssvc.GoalLinkChecker = (*MockGoalLinkChecker)(nil)

func (m *MockGoalLinkChecker) BudgetHasLinkedGoals(ctx context.Context, budgetID string) (bool, error) {
	args := m.Called(ctx, budgetID)
	return args.Bool(0), args.Error(1)
}

// eventLog collects what the broadcaster delivers.
type eventLog struct {
	mu     sync.Mutex
	events []portssvc.ChangeEvent
}

func (l *eventLog) record(_ context.Context, e portssvc.ChangeEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) kinds() []portssvc.ChangeKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	kinds := make([]portssvc.ChangeKind, 0, len(l.events))
	for _, e := range l.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (l *eventLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

// ledgerSuite runs every service against a real store in a temp directory.
type ledgerSuite struct {
	suite.Suite
	ctx     context.Context
	store   *boltdb.Store
	svc     *portssvc.ServiceContainer
	goals   *MockGoalLinkChecker
	events  *eventLog
	now     time.Time
	session domain.Session
	other   domain.Session
}

func (s *ledgerSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := database.NewBoltDB(filepath.Join(s.T().TempDir(), "ledger.db"), time.Second)
	s.Require().NoError(err)
	s.store, err = boltdb.New(db)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = s.store.Close() })

	s.now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s.goals = new(MockGoalLinkChecker)
	s.events = &eventLog{}
	broadcaster := services.NewChangeBroadcaster()
	broadcaster.Subscribe(s.events.record)

	cfg := &config.Config{BaseCurrency: "USD", BridgeCurrency: "USD"}
	s.svc = services.NewServiceContainer(cfg, s.store, s.goals,
		services.WithClock(func() time.Time { return s.now }),
		services.WithNotifier(broadcaster),
	)
	s.Require().NoError(s.svc.Currency.SeedDefaults(s.ctx))

	s.session = domain.Session{UserID: "user-1", BaseCurrency: "USD"}
	s.other = domain.Session{UserID: "user-2", BaseCurrency: "USD"}
	s.events.reset()
}

// saveRate stores a from→to mid rate effective from the given instant.
func (s *ledgerSuite) saveRate(from, to, mid string, effective time.Time, opts ...func(*dto.SaveFxRateRequest)) *domain.FxRate {
	req := dto.SaveFxRateRequest{
		FromCurrency:  from,
		ToCurrency:    to,
		RateMid:       dec(mid),
		Source:        domain.RateSourceCentralBank,
		EffectiveFrom: &effective,
	}
	for _, opt := range opts {
		opt(&req)
	}
	rate, err := s.svc.FxRate.SaveFxRate(s.ctx, req, "system")
	s.Require().NoError(err)
	return rate
}

func withBidAsk(bid, ask string) func(*dto.SaveFxRateRequest) {
	return func(r *dto.SaveFxRateRequest) {
		r.RateBid, r.RateAsk = decPtr(bid), decPtr(ask)
	}
}

func withNominal(nominal string) func(*dto.SaveFxRateRequest) {
	return func(r *dto.SaveFxRateRequest) {
		r.Nominal = decPtr(nominal)
	}
}

func (s *ledgerSuite) createAccount(session domain.Session, name, currency, initial string) *domain.Account {
	account, err := s.svc.Account.CreateAccount(s.ctx, session, dto.CreateAccountRequest{
		Name:           name,
		AccountType:    domain.AccountTypeBank,
		CurrencyCode:   currency,
		InitialBalance: dec(initial),
	})
	s.Require().NoError(err)
	return account
}

func (s *ledgerSuite) balanceOf(accountID string) decimal.Decimal {
	account, err := s.svc.Account.GetAccountByID(s.ctx, s.session, accountID)
	s.Require().NoError(err)
	return account.CurrentBalance
}

// requireInBalance asserts that replaying the account's history yields its stored balance.
func (s *ledgerSuite) requireInBalance(accountID string) {
	result, err := s.svc.Account.ReconcileAccount(s.ctx, s.session, accountID)
	s.Require().NoError(err)
	s.Require().True(result.InBalance(), "stored %s, replayed %s", result.StoredBalance, result.ExpectedBalance)
}

func (s *ledgerSuite) decEqual(expected string, actual decimal.Decimal) {
	s.T().Helper()
	s.True(dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
