package services_test

import (
	"testing"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	"github.com/SscSPs/money_ledger/internal/dto"
	"github.com/stretchr/testify/suite"
)

type DebtServiceTestSuite struct {
	ledgerSuite
	usd *domain.Account
	uzs *domain.Account
}

func (suite *DebtServiceTestSuite) SetupTest() {
	suite.ledgerSuite.SetupTest()
	suite.saveRate("USD", "UZS", "12500", day(2024, 1, 1))
	suite.saveRate("USD", "UZS", "13000", day(2024, 6, 1))
	suite.saveRate("EUR", "USD", "1.08", day(2024, 1, 1))
	suite.usd = suite.createAccount(suite.session, "Dollars", "USD", "1000")
	suite.uzs = suite.createAccount(suite.session, "Som", "UZS", "0")
	suite.events.reset()
}

func (suite *DebtServiceTestSuite) createDebt(req dto.CreateDebtRequest) *domain.Debt {
	debt, err := suite.svc.Debt.CreateDebt(suite.ctx, suite.session, req)
	suite.Require().NoError(err)
	return debt
}

func (suite *DebtServiceTestSuite) pay(debtID, amount, currency, accountID string) *domain.Debt {
	debt, err := suite.svc.Debt.RecordPayment(suite.ctx, suite.session, debtID, dto.RecordPaymentRequest{
		Amount: dec(amount), CurrencyCode: currency, AccountID: accountID,
	})
	suite.Require().NoError(err)
	return debt
}

func (suite *DebtServiceTestSuite) TestLendAndSettleInOneCurrency() {
	debt := suite.createDebt(dto.CreateDebtRequest{
		Direction: domain.TheyOweMe, CounterpartyName: "Aziz", PrincipalAmount: dec("100"), PrincipalCurrency: "USD",
		AccountID: suite.usd.AccountID,
	})
	suite.Equal(domain.DebtActive, debt.Status)
	suite.decEqual("1", debt.RateOnStart)
	suite.decEqual("100", debt.PrincipalBaseValue)
	suite.Equal(domain.CurrencyCode("USD"), debt.RepaymentCurrency)
	suite.NotEmpty(debt.TransactionID)
	suite.decEqual("900", suite.balanceOf(suite.usd.AccountID))

	opening, err := suite.svc.Transaction.GetTransactionByID(suite.ctx, suite.session, debt.TransactionID)
	suite.Require().NoError(err)
	suite.Equal(domain.Expense, opening.Type)
	suite.Equal(debt.DebtID, opening.DebtID)

	debt = suite.pay(debt.DebtID, "60", "USD", suite.usd.AccountID)
	suite.decEqual("40", debt.OutstandingAmount())
	suite.decEqual("960", suite.balanceOf(suite.usd.AccountID))

	_, err = suite.svc.Debt.SettleDebt(suite.ctx, suite.session, debt.DebtID)
	suite.ErrorIs(err, apperrors.ErrDebtNotSettleable)

	suite.pay(debt.DebtID, "40", "USD", suite.usd.AccountID)
	settled, err := suite.svc.Debt.SettleDebt(suite.ctx, suite.session, debt.DebtID)
	suite.Require().NoError(err)
	suite.Equal(domain.DebtPaid, settled.Status)
	suite.Require().NotNil(settled.FinalProfitLoss)
	suite.decEqual("0", *settled.FinalProfitLoss)
	suite.decEqual("1", *settled.FinalRateUsed)
	suite.decEqual("1000", suite.balanceOf(suite.usd.AccountID))
	suite.requireInBalance(suite.usd.AccountID)

	_, err = suite.svc.Debt.RecordPayment(suite.ctx, suite.session, debt.DebtID, dto.RecordPaymentRequest{Amount: dec("1"), CurrencyCode: "USD"})
	suite.ErrorIs(err, apperrors.ErrDebtAlreadySettled)
	_, err = suite.svc.Debt.RemovePayment(suite.ctx, suite.session, debt.DebtID, settled.Payments[0].PaymentID)
	suite.ErrorIs(err, apperrors.ErrDebtAlreadySettled)
	_, err = suite.svc.Debt.SettleDebt(suite.ctx, suite.session, debt.DebtID)
	suite.ErrorIs(err, apperrors.ErrDebtAlreadySettled)
}

func (suite *DebtServiceTestSuite) TestBorrowInSomRepayInDollars() {
	jan := day(2024, 1, 10)
	debt := suite.createDebt(dto.CreateDebtRequest{
		Direction: domain.IOwe, CounterpartyName: "Bank", PrincipalAmount: dec("1000000"), PrincipalCurrency: "UZS",
		RepaymentCurrency: "USD", StartDate: &jan, AccountID: suite.uzs.AccountID,
	})
	suite.decEqual("0.00008", debt.RateOnStart)
	suite.decEqual("80", debt.PrincipalBaseValue)
	suite.Require().NotNil(debt.RepaymentRateOnStart)
	suite.decEqual("0.00008", *debt.RepaymentRateOnStart)
	suite.decEqual("1000000", suite.balanceOf(suite.uzs.AccountID))

	debt = suite.pay(debt.DebtID, "80", "USD", suite.usd.AccountID)
	payment := debt.Payments[0]
	suite.decEqual("1040000", payment.ConvertedAmountToDebt)
	suite.decEqual("80", payment.ConvertedAmountToRepayment)
	suite.decEqual("80", payment.ConvertedAmountToBase)
	suite.True(payment.PaymentDate.Equal(suite.now))
	suite.decEqual("920", suite.balanceOf(suite.usd.AccountID))

	settled, err := suite.svc.Debt.SettleDebt(suite.ctx, suite.session, debt.DebtID)
	suite.Require().NoError(err)
	suite.Equal(domain.CurrencyCode("USD"), settled.FinalProfitLossCurrency)
	suite.decEqual("3.2", *settled.FinalProfitLoss)
	suite.decEqual("3.2", settled.UserProfitLoss())
	suite.decEqual("0.0000769231", *settled.FinalRateUsed)
	suite.decEqual("80", *settled.TotalPaidInRepaymentCurrency)
	// The creation snapshot is never rewritten
	suite.decEqual("80", settled.PrincipalBaseValue)
}

func (suite *DebtServiceTestSuite) TestPaymentBaseValueUsesFrozenRate() {
	debt := suite.createDebt(dto.CreateDebtRequest{
		Direction: domain.IOwe, CounterpartyName: "Bank", PrincipalAmount: dec("2000000"), PrincipalCurrency: "UZS",
	})
	debt = suite.pay(debt.DebtID, "1000000", "UZS", "")
	suite.Require().Len(debt.Payments, 1)

	payment := debt.Payments[0]
	suite.decEqual("0.0000769231", payment.RateUsedToBase)
	suite.decEqual("76.9231", payment.ConvertedAmountToBase)
	suite.True(payment.Amount.Mul(payment.RateUsedToBase).Equal(payment.ConvertedAmountToBase))
}

func (suite *DebtServiceTestSuite) TestFixedRepaymentAmount() {
	debt := suite.createDebt(dto.CreateDebtRequest{
		Direction: domain.TheyOweMe, CounterpartyName: "Lena", PrincipalAmount: dec("100"), PrincipalCurrency: "EUR",
		RepaymentCurrency: "USD", IsFixedRepaymentAmount: true,
	})
	suite.Require().NotNil(debt.RepaymentAmount)
	suite.decEqual("108", *debt.RepaymentAmount)
	suite.decEqual("108", debt.PrincipalBaseValue)

	suite.pay(debt.DebtID, "100", "USD", "")
	_, err := suite.svc.Debt.SettleDebt(suite.ctx, suite.session, debt.DebtID)
	suite.ErrorIs(err, apperrors.ErrDebtNotSettleable)

	suite.pay(debt.DebtID, "8", "USD", "")
	settled, err := suite.svc.Debt.SettleDebt(suite.ctx, suite.session, debt.DebtID)
	suite.Require().NoError(err)
	suite.decEqual("0", *settled.FinalProfitLoss)
	// Payments without an account move no balance
	suite.decEqual("1000", suite.balanceOf(suite.usd.AccountID))
}

func (suite *DebtServiceTestSuite) TestPrincipalFromOriginalAmount() {
	debt := suite.createDebt(dto.CreateDebtRequest{
		Direction: domain.IOwe, CounterpartyName: "Shop", PrincipalCurrency: "USD",
		PrincipalOriginalAmount: decPtr("100"), PrincipalOriginalCurrency: "EUR",
	})
	suite.decEqual("108", debt.PrincipalAmount)
	suite.Equal(domain.CurrencyCode("EUR"), debt.PrincipalOriginalCurrency)

	_, err := suite.svc.Debt.CreateDebt(suite.ctx, suite.session, dto.CreateDebtRequest{
		Direction: domain.IOwe, CounterpartyName: "Shop", PrincipalCurrency: "USD",
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *DebtServiceTestSuite) TestRemovePaymentRestoresBalance() {
	debt := suite.createDebt(dto.CreateDebtRequest{
		Direction: domain.TheyOweMe, CounterpartyName: "Aziz", PrincipalAmount: dec("50"), PrincipalCurrency: "USD",
	})
	debt = suite.pay(debt.DebtID, "20", "USD", suite.usd.AccountID)
	payment := debt.Payments[0]
	suite.decEqual("1020", suite.balanceOf(suite.usd.AccountID))

	debt, err := suite.svc.Debt.RemovePayment(suite.ctx, suite.session, debt.DebtID, payment.PaymentID)
	suite.Require().NoError(err)
	suite.Empty(debt.Payments)
	suite.decEqual("1000", suite.balanceOf(suite.usd.AccountID))
	suite.requireInBalance(suite.usd.AccountID)

	linked, err := suite.svc.Transaction.GetTransactionByID(suite.ctx, suite.session, payment.TransactionID)
	suite.Require().NoError(err)
	suite.Equal(domain.ShowDeleted, linked.ShowStatus)

	_, err = suite.svc.Debt.RemovePayment(suite.ctx, suite.session, debt.DebtID, payment.PaymentID)
	suite.ErrorIs(err, apperrors.ErrDebtPaymentNotFound)
}

func (suite *DebtServiceTestSuite) TestDeleteDebt() {
	withPayment := suite.createDebt(dto.CreateDebtRequest{
		Direction: domain.TheyOweMe, CounterpartyName: "Aziz", PrincipalAmount: dec("50"), PrincipalCurrency: "USD",
	})
	suite.pay(withPayment.DebtID, "10", "USD", "")
	err := suite.svc.Debt.DeleteDebt(suite.ctx, suite.session, withPayment.DebtID)
	suite.ErrorIs(err, apperrors.ErrDebtHasPayments)

	opened := suite.createDebt(dto.CreateDebtRequest{
		Direction: domain.TheyOweMe, CounterpartyName: "Lena", PrincipalAmount: dec("200"), PrincipalCurrency: "USD",
		AccountID: suite.usd.AccountID,
	})
	suite.decEqual("800", suite.balanceOf(suite.usd.AccountID))
	suite.Require().NoError(suite.svc.Debt.DeleteDebt(suite.ctx, suite.session, opened.DebtID))
	suite.Require().NoError(suite.svc.Debt.DeleteDebt(suite.ctx, suite.session, opened.DebtID))
	suite.decEqual("1000", suite.balanceOf(suite.usd.AccountID))

	debts, err := suite.svc.Debt.ListDebts(suite.ctx, suite.session)
	suite.Require().NoError(err)
	suite.Len(debts, 1)

	_, err = suite.svc.Debt.RecordPayment(suite.ctx, suite.session, opened.DebtID, dto.RecordPaymentRequest{Amount: dec("1"), CurrencyCode: "USD"})
	suite.ErrorIs(err, apperrors.ErrDebtNotFound)
}

func (suite *DebtServiceTestSuite) TestPaymentValidation() {
	debt := suite.createDebt(dto.CreateDebtRequest{
		Direction: domain.TheyOweMe, CounterpartyName: "Aziz", PrincipalAmount: dec("50"), PrincipalCurrency: "USD",
	})
	_, err := suite.svc.Debt.RecordPayment(suite.ctx, suite.session, debt.DebtID, dto.RecordPaymentRequest{Amount: dec("0"), CurrencyCode: "USD"})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.svc.Debt.RecordPayment(suite.ctx, suite.session, debt.DebtID, dto.RecordPaymentRequest{Amount: dec("5"), CurrencyCode: "GBP"})
	suite.ErrorIs(err, apperrors.ErrRateUnavailable)

	_, err = suite.svc.Debt.RecordPayment(suite.ctx, suite.other, debt.DebtID, dto.RecordPaymentRequest{Amount: dec("5"), CurrencyCode: "USD"})
	suite.ErrorIs(err, apperrors.ErrDebtNotFound)

	stored, err := suite.svc.Debt.GetDebtByID(suite.ctx, suite.session, debt.DebtID)
	suite.Require().NoError(err)
	suite.Empty(stored.Payments)
}

func (suite *DebtServiceTestSuite) TestCounterparties() {
	counterparty, err := suite.svc.Counterparty.CreateCounterparty(suite.ctx, suite.session, dto.CreateCounterpartyRequest{
		DisplayName: "Aziz", PhoneNumber: "+998901234567",
	})
	suite.Require().NoError(err)

	debt := suite.createDebt(dto.CreateDebtRequest{
		Direction: domain.TheyOweMe, CounterpartyID: counterparty.CounterpartyID, PrincipalAmount: dec("10"), PrincipalCurrency: "USD",
	})
	suite.Equal("Aziz", debt.CounterpartyName)

	_, err = suite.svc.Debt.CreateDebt(suite.ctx, suite.other, dto.CreateDebtRequest{
		Direction: domain.TheyOweMe, CounterpartyID: counterparty.CounterpartyID, PrincipalAmount: dec("10"), PrincipalCurrency: "USD",
	})
	suite.ErrorIs(err, apperrors.ErrCounterpartyNotFound)

	suite.Require().NoError(suite.svc.Counterparty.ArchiveCounterparty(suite.ctx, suite.session, counterparty.CounterpartyID))
	archived, err := suite.svc.Counterparty.GetCounterpartyByID(suite.ctx, suite.session, counterparty.CounterpartyID)
	suite.Require().NoError(err)
	suite.Equal(domain.ShowArchived, archived.ShowStatus)

	all, err := suite.svc.Counterparty.ListCounterparties(suite.ctx, suite.session)
	suite.Require().NoError(err)
	suite.Len(all, 1)
}

func TestDebtService(t *testing.T) {
	suite.Run(t, new(DebtServiceTestSuite))
}
