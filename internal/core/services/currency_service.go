package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/money_ledger/internal/apperrors"
	"github.com/SscSPs/money_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/money_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_ledger/internal/core/ports/services"
	"github.com/SscSPs/money_ledger/internal/dto"
)

// DefaultCurrencies is the registry every new store starts with.
var DefaultCurrencies = []dto.CreateCurrencyRequest{
	{CurrencyCode: "USD", Symbol: "$", Name: "US Dollar", MinorUnits: 2, Aliases: []string{"$", "US$"}},
	{CurrencyCode: "EUR", Symbol: "€", Name: "Euro", MinorUnits: 2, Aliases: []string{"€"}},
	{CurrencyCode: "GBP", Symbol: "£", Name: "Pound Sterling", MinorUnits: 2, Aliases: []string{"£"}},
	{CurrencyCode: "RUB", Symbol: "₽", Name: "Russian Ruble", MinorUnits: 2, Aliases: []string{"RUR", "₽"}},
	{CurrencyCode: "UZS", Symbol: "so'm", Name: "Uzbekistani Som", MinorUnits: 2, Aliases: []string{"SUM", "SO'M", "SOM", "СУМ"}},
	{CurrencyCode: "KZT", Symbol: "₸", Name: "Kazakhstani Tenge", MinorUnits: 2, Aliases: []string{"₸"}},
	{CurrencyCode: "JPY", Symbol: "¥", Name: "Japanese Yen", MinorUnits: 0},
	{CurrencyCode: "CNY", Symbol: "元", Name: "Chinese Yuan", MinorUnits: 2, Aliases: []string{"RMB"}},
	{CurrencyCode: "TRY", Symbol: "₺", Name: "Turkish Lira", MinorUnits: 2},
	{CurrencyCode: "CHF", Symbol: "Fr", Name: "Swiss Franc", MinorUnits: 2},
}

type currencyService struct {
	BaseService
	uow portsrepo.TransactionManager
}

// NewCurrencyService creates the currency registry.
func NewCurrencyService(uow portsrepo.TransactionManager, options ...ServiceOption) portssvc.CurrencySvcFacade {
	return &currencyService{BaseService: newBaseService(options), uow: uow}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

// sessionBase resolves the session's base currency through the registry.
func sessionBase(ctx context.Context, repo portsrepo.CurrencyReader, session domain.Session) (domain.CurrencyCode, error) {
	if session.BaseCurrency == "" {
		return "", fmt.Errorf("%w: session has no base currency", apperrors.ErrInvalidCurrencyCode)
	}
	return normalizeCurrency(ctx, repo, string(session.BaseCurrency))
}

// normalizeCurrency resolves raw to a registered canonical code: the code itself first,
// then any registered alias, both case-insensitively.
func normalizeCurrency(ctx context.Context, repo portsrepo.CurrencyReader, raw string) (domain.CurrencyCode, error) {
	candidate := strings.ToUpper(strings.TrimSpace(raw))
	if candidate == "" {
		return "", fmt.Errorf("%w: empty code", apperrors.ErrInvalidCurrencyCode)
	}

	currency, err := repo.FindCurrencyByCode(ctx, domain.CurrencyCode(candidate))
	if err == nil {
		return currency.CurrencyCode, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}

	currencies, err := repo.ListCurrencies(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range currencies {
		for _, alias := range c.Aliases {
			if strings.ToUpper(alias) == candidate {
				return c.CurrencyCode, nil
			}
		}
	}
	return "", fmt.Errorf("%w: '%s'", apperrors.ErrInvalidCurrencyCode, raw)
}

func (s *currencyService) Normalize(ctx context.Context, raw string) (domain.CurrencyCode, error) {
	var code domain.CurrencyCode
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		var err error
		code, err = normalizeCurrency(ctx, repos.Currencies, raw)
		return err
	})
	return code, err
}

func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	var currency *domain.Currency
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		var err error
		currency, err = s.createInTx(ctx, repos, req, creatorUserID)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create currency", slog.String("currency_code", req.CurrencyCode))
		return nil, fmt.Errorf("failed to create currency in service: %w", err)
	}
	s.Publish(ctx, portssvc.ChangeEvent{Kind: portssvc.ChangeCurrencies, IDs: []string{string(currency.CurrencyCode)}})
	return currency, nil
}

func (s *currencyService) createInTx(ctx context.Context, repos portsrepo.Repositories, req dto.CreateCurrencyRequest, userID string) (*domain.Currency, error) {
	code := domain.CurrencyCode(strings.ToUpper(strings.TrimSpace(req.CurrencyCode)))
	if _, err := repos.Currencies.FindCurrencyByCode(ctx, code); err == nil {
		return nil, fmt.Errorf("%w: currency %s", apperrors.ErrDuplicate, code)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	aliases := make([]string, 0, len(req.Aliases))
	for _, alias := range req.Aliases {
		if a := strings.ToUpper(strings.TrimSpace(alias)); a != "" && a != string(code) {
			aliases = append(aliases, a)
		}
	}
	currency := domain.Currency{
		CurrencyCode: code,
		Symbol:       req.Symbol,
		Name:         req.Name,
		MinorUnits:   req.MinorUnits,
		Aliases:      aliases,
		AuditFields:  domain.NewAuditFields(userID, s.Now()),
	}
	if err := repos.Currencies.SaveCurrency(ctx, currency); err != nil {
		return nil, err
	}
	return &currency, nil
}

// SeedDefaults adds any missing DefaultCurrencies in a single write.
func (s *currencyService) SeedDefaults(ctx context.Context) error {
	added := 0
	err := s.uow.Update(ctx, func(repos portsrepo.Repositories) error {
		for _, req := range DefaultCurrencies {
			_, err := s.createInTx(ctx, repos, req, "system")
			if errors.Is(err, apperrors.ErrDuplicate) {
				continue
			}
			if err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to seed currencies")
		return fmt.Errorf("failed to seed currencies: %w", err)
	}
	if added > 0 {
		s.LogInfo(ctx, "Seeded default currencies", slog.Int("count", added))
		s.Publish(ctx, portssvc.ChangeEvent{Kind: portssvc.ChangeCurrencies})
	}
	return nil
}

func (s *currencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	var currency *domain.Currency
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		code, err := normalizeCurrency(ctx, repos.Currencies, currencyCode)
		if err != nil {
			return err
		}
		currency, err = repos.Currencies.FindCurrencyByCode(ctx, code)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get currency by code in service: %w", err)
	}
	return currency, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	var currencies []domain.Currency
	err := s.uow.View(ctx, func(repos portsrepo.Repositories) error {
		var err error
		currencies, err = repos.Currencies.ListCurrencies(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies in service: %w", err)
	}
	// Return empty slice if no currencies found, not nil
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}
