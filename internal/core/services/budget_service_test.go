package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/money_ledger/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type BudgetServiceTestSuite struct {
	ledgerSuite
	account *domain.Account
}

func (suite *BudgetServiceTestSuite) SetupTest() {
	suite.ledgerSuite.SetupTest()
	suite.saveRate("USD", "UZS", "12500", day(2024, 1, 1))
	suite.saveRate("EUR", "USD", "1.08", day(2024, 1, 1))
	suite.account = suite.createAccount(suite.session, "Main", "USD", "1000")
	suite.events.reset()
}

func (suite *BudgetServiceTestSuite) expense(amount, currency, category string, date *time.Time) *domain.Transaction {
	req := dto.CreateTransactionRequest{
		Type: domain.Expense, AccountID: suite.account.AccountID, Amount: dec(amount), CurrencyCode: currency, CategoryID: category, Date: date,
	}
	txn, err := suite.svc.Transaction.CreateTransaction(suite.ctx, suite.session, req)
	suite.Require().NoError(err)
	return txn
}

func (suite *BudgetServiceTestSuite) expenseOn(amount, category string, date time.Time) *domain.Transaction {
	return suite.expense(amount, "", category, &date)
}

func (suite *BudgetServiceTestSuite) monthlyBudget(name, currency, limit string, categories ...string) *domain.Budget {
	budget, err := suite.svc.Budget.CreateBudget(suite.ctx, suite.session, dto.CreateBudgetRequest{
		Name:            name,
		CategoryIDs:     categories,
		TransactionType: domain.Expense,
		CurrencyCode:    currency,
		LimitAmount:     dec(limit),
		PeriodType:      domain.PeriodMonthly,
		RolloverMode:    domain.RolloverCarryOver,
	})
	suite.Require().NoError(err)
	return budget
}

func (suite *BudgetServiceTestSuite) budget(budgetID string) *domain.Budget {
	budget, err := suite.svc.Budget.GetBudgetByID(suite.ctx, suite.session, budgetID)
	suite.Require().NoError(err)
	return budget
}

func (suite *BudgetServiceTestSuite) entries(budgetID string) []domain.BudgetEntry {
	entries, err := suite.svc.Budget.ListBudgetEntries(suite.ctx, suite.session, budgetID)
	suite.Require().NoError(err)
	return entries
}

func (suite *BudgetServiceTestSuite) TestCreateBackfillsFromExistingTransactions() {
	suite.expenseOn("30", "food", day(2024, 6, 3))
	suite.expense("10", "EUR", "food", nil)
	suite.expenseOn("100", "rent", day(2024, 6, 1))
	suite.expenseOn("5", "food", day(2024, 5, 31))

	budget := suite.monthlyBudget("Food", "USD", "100", "food")
	suite.True(budget.StartDate.Equal(day(2024, 6, 1)))
	suite.True(budget.EndDate.Equal(day(2024, 6, 30)))
	suite.decEqual("40.8", budget.SpentAmount)
	suite.decEqual("59.2", budget.RemainingAmount)
	suite.decEqual("40.8", budget.PercentUsed)
	suite.False(budget.IsOverspent)
	suite.Len(suite.entries(budget.BudgetID), 2)
}

func (suite *BudgetServiceTestSuite) TestEntriesFollowTransactionLifecycle() {
	budget := suite.monthlyBudget("Food", "USD", "50", "food")

	txn := suite.expenseOn("60", "food", day(2024, 6, 10))
	current := suite.budget(budget.BudgetID)
	suite.decEqual("60", current.SpentAmount)
	suite.True(current.IsOverspent)
	suite.decEqual("120", current.PercentUsed)
	first := suite.entries(budget.BudgetID)
	suite.Require().Len(first, 1)

	amount := dec("80")
	_, err := suite.svc.Transaction.UpdateTransaction(suite.ctx, suite.session, txn.TransactionID, dto.UpdateTransactionRequest{Amount: &amount})
	suite.Require().NoError(err)
	rewritten := suite.entries(budget.BudgetID)
	suite.Require().Len(rewritten, 1)
	suite.Equal(first[0].EntryID, rewritten[0].EntryID)
	suite.decEqual("80", rewritten[0].AppliedAmountBudgetCurrency)
	suite.decEqual("125", suite.budget(budget.BudgetID).PercentUsed)

	category := "travel"
	_, err = suite.svc.Transaction.UpdateTransaction(suite.ctx, suite.session, txn.TransactionID, dto.UpdateTransactionRequest{CategoryID: &category})
	suite.Require().NoError(err)
	suite.Empty(suite.entries(budget.BudgetID))
	suite.decEqual("0", suite.budget(budget.BudgetID).SpentAmount)

	again := suite.expenseOn("20", "food", day(2024, 6, 11))
	suite.Require().NoError(suite.svc.Transaction.SoftDeleteTransaction(suite.ctx, suite.session, again.TransactionID))
	suite.Empty(suite.entries(budget.BudgetID))
}

func (suite *BudgetServiceTestSuite) TestCompensationsAreNotCounted() {
	budget, err := suite.svc.Budget.CreateBudget(suite.ctx, suite.session, dto.CreateBudgetRequest{
		Name: "Food", CategoryIDs: []string{"food"}, CurrencyCode: "USD", LimitAmount: dec("100"), PeriodType: domain.PeriodNone,
	})
	suite.Require().NoError(err)

	txn := suite.expense("25", "", "food", nil)
	_, err = suite.svc.Transaction.CompensateTransaction(suite.ctx, suite.session, txn.TransactionID)
	suite.Require().NoError(err)

	suite.Len(suite.entries(budget.BudgetID), 1)
	suite.decEqual("25", suite.budget(budget.BudgetID).SpentAmount)
}

func (suite *BudgetServiceTestSuite) TestApplyIsIdempotent() {
	budget := suite.monthlyBudget("Food", "USD", "100", "food")
	txn := suite.expense("12", "", "food", nil)

	for i := 0; i < 2; i++ {
		err := suite.store.Update(suite.ctx, func(repos portsrepo.Repositories) error {
			return suite.svc.Budget.ApplyTransactionToBudgets(suite.ctx, repos, *txn)
		})
		suite.Require().NoError(err)
	}
	suite.Len(suite.entries(budget.BudgetID), 1)
	suite.decEqual("12", suite.budget(budget.BudgetID).SpentAmount)

	recomputed, err := suite.svc.Budget.RecomputeBudget(suite.ctx, suite.session, budget.BudgetID)
	suite.Require().NoError(err)
	suite.decEqual("12", recomputed.SpentAmount)
}

func (suite *BudgetServiceTestSuite) TestBudgetInAnotherCurrency() {
	budget := suite.monthlyBudget("Trips", "UZS", "1000000", "travel")
	suite.expense("10", "", "travel", nil)

	entries := suite.entries(budget.BudgetID)
	suite.Require().Len(entries, 1)
	suite.decEqual("12500", entries[0].RateUsedTxnToBudget)
	suite.decEqual("125000", entries[0].AppliedAmountBudgetCurrency)
	suite.decEqual("12.5", suite.budget(budget.BudgetID).PercentUsed)
}

func (suite *BudgetServiceTestSuite) TestUpdateFilterRecomputes() {
	suite.expense("30", "", "food", nil)
	suite.expense("70", "", "rent", nil)
	budget := suite.monthlyBudget("Home", "USD", "100", "food")
	suite.decEqual("30", budget.SpentAmount)

	updated, err := suite.svc.Budget.UpdateBudget(suite.ctx, suite.session, budget.BudgetID, dto.UpdateBudgetRequest{
		CategoryIDs: []string{"food", "rent"},
		LimitAmount: decPtr("80"),
	})
	suite.Require().NoError(err)
	suite.decEqual("100", updated.SpentAmount)
	suite.True(updated.IsOverspent)

	_, err = suite.svc.Budget.UpdateBudget(suite.ctx, suite.session, budget.BudgetID, dto.UpdateBudgetRequest{LimitAmount: decPtr("-1")})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BudgetServiceTestSuite) TestCreateValidation() {
	_, err := suite.svc.Budget.CreateBudget(suite.ctx, suite.session, dto.CreateBudgetRequest{
		Name: "Range", CurrencyCode: "USD", LimitAmount: dec("10"), PeriodType: domain.PeriodCustomRange,
	})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.svc.Budget.CreateBudget(suite.ctx, suite.session, dto.CreateBudgetRequest{
		Name: "Range", CurrencyCode: "USD", LimitAmount: dec("10"), PeriodType: domain.PeriodCustomRange,
		StartDate: timePtr(day(2024, 6, 30)), EndDate: timePtr(day(2024, 6, 1)),
	})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.svc.Budget.CreateBudget(suite.ctx, suite.session, dto.CreateBudgetRequest{
		Name: "Bad", CurrencyCode: "???", LimitAmount: dec("10"), PeriodType: domain.PeriodNone,
	})
	suite.ErrorIs(err, apperrors.ErrInvalidCurrencyCode)
}

func (suite *BudgetServiceTestSuite) TestGoalGuard() {
	linked := suite.monthlyBudget("Linked", "USD", "100", "food")
	free := suite.monthlyBudget("Free", "USD", "100", "food")
	suite.goals.On("BudgetHasLinkedGoals", mock.Anything, linked.BudgetID).Return(true, nil)
	suite.goals.On("BudgetHasLinkedGoals", mock.Anything, free.BudgetID).Return(false, nil)

	err := suite.svc.Budget.ArchiveBudget(suite.ctx, suite.session, linked.BudgetID)
	suite.ErrorIs(err, apperrors.ErrBudgetHasLinkedGoals)
	err = suite.svc.Budget.DeleteBudget(suite.ctx, suite.session, linked.BudgetID)
	suite.ErrorIs(err, apperrors.ErrBudgetHasLinkedGoals)
	suite.Equal(domain.ShowActive, suite.budget(linked.BudgetID).ShowStatus)

	suite.Require().NoError(suite.svc.Budget.ArchiveBudget(suite.ctx, suite.session, free.BudgetID))
	suite.expense("10", "", "food", nil)
	suite.Empty(suite.entries(free.BudgetID), "archived budgets take no new entries")
	suite.Len(suite.entries(linked.BudgetID), 1)

	suite.Require().NoError(suite.svc.Budget.DeleteBudget(suite.ctx, suite.session, free.BudgetID))
	budgets, err := suite.svc.Budget.ListBudgets(suite.ctx, suite.session)
	suite.Require().NoError(err)
	suite.Len(budgets, 1)
	suite.goals.AssertExpectations(suite.T())
}

func (suite *BudgetServiceTestSuite) TestGoalGuardChecksOwnershipFirst() {
	linked := suite.monthlyBudget("Linked", "USD", "100", "food")

	err := suite.svc.Budget.ArchiveBudget(suite.ctx, suite.other, linked.BudgetID)
	suite.ErrorIs(err, apperrors.ErrBudgetNotFound)
	err = suite.svc.Budget.DeleteBudget(suite.ctx, suite.other, linked.BudgetID)
	suite.ErrorIs(err, apperrors.ErrBudgetNotFound)
	err = suite.svc.Budget.ArchiveBudget(suite.ctx, suite.session, "missing")
	suite.ErrorIs(err, apperrors.ErrBudgetNotFound)

	suite.goals.AssertNotCalled(suite.T(), "BudgetHasLinkedGoals", mock.Anything, mock.Anything)
	suite.Equal(domain.ShowActive, suite.budget(linked.BudgetID).ShowStatus)
}

func (suite *BudgetServiceTestSuite) TestRolloverCarriesRemainder() {
	budget := suite.monthlyBudget("Food", "USD", "100", "food")
	suite.expenseOn("30", "food", day(2024, 6, 5))

	next, err := suite.svc.Budget.RolloverBudget(suite.ctx, suite.session, budget.BudgetID)
	suite.Require().NoError(err)
	suite.Equal(budget.BudgetID, next.PreviousID)
	suite.decEqual("170", next.LimitAmount)
	suite.decEqual("0", next.SpentAmount)
	suite.True(next.StartDate.Equal(day(2024, 7, 1)))
	suite.True(next.EndDate.Equal(day(2024, 7, 31)))
	suite.Equal(domain.ShowArchived, suite.budget(budget.BudgetID).ShowStatus)

	_, err = suite.svc.Budget.RolloverBudget(suite.ctx, suite.session, budget.BudgetID)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *BudgetServiceTestSuite) TestRolloverNeverCarriesOverspend() {
	budget := suite.monthlyBudget("Food", "USD", "100", "food")
	suite.expenseOn("150", "food", day(2024, 6, 5))

	next, err := suite.svc.Budget.RolloverBudget(suite.ctx, suite.session, budget.BudgetID)
	suite.Require().NoError(err)
	suite.decEqual("100", next.LimitAmount)

	open, err := suite.svc.Budget.CreateBudget(suite.ctx, suite.session, dto.CreateBudgetRequest{
		Name: "Forever", CurrencyCode: "USD", LimitAmount: dec("10"), PeriodType: domain.PeriodNone,
	})
	suite.Require().NoError(err)
	_, err = suite.svc.Budget.RolloverBudget(suite.ctx, suite.session, open.BudgetID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BudgetServiceTestSuite) TestBudgetsAreScopedToTheirOwner() {
	budget := suite.monthlyBudget("Food", "USD", "100", "food")

	_, err := suite.svc.Budget.GetBudgetByID(suite.ctx, suite.other, budget.BudgetID)
	suite.ErrorIs(err, apperrors.ErrBudgetNotFound)
	_, err = suite.svc.Budget.ListBudgetEntries(suite.ctx, suite.other, budget.BudgetID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestBudgetService(t *testing.T) {
	suite.Run(t, new(BudgetServiceTestSuite))
}
