package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/tradesim/internal/domain"
	"github.com/iho/tradesim/internal/infrastructure/metrics"
)

// AccountUseCase handles cash account business logic. Deposits and
// withdrawals record a ledger entry; a failed append reverses the balance
// change so cash movement and ledger stay aligned.
type AccountUseCase struct {
	accountRepo AccountRepository
	ledgerRepo  TransactionRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	accountRepo AccountRepository,
	ledgerRepo TransactionRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
	log zerolog.Logger,
) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		idGen:       idGen,
		metrics:     m,
		log:         log,
	}
}

// CreateAccountInput represents input for creating an account. An empty ID
// is filled with a generated one; an explicit ID that is already taken is
// rejected.
type CreateAccountInput struct {
	ID             string
	Owner          string
	Currency       string
	InitialBalance decimal.Decimal
}

// CreateAccount creates a new cash account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.CashAccount, error) {
	id := input.ID
	if id == "" {
		id = uc.idGen.Generate()
	} else {
		exists, err := uc.accountRepo.Exists(ctx, id)
		if err != nil {
			return nil, err
		}

		if exists {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountExists, id)
		}
	}

	account, err := domain.NewCashAccount(id, input.Owner, input.Currency, input.InitialBalance)
	if err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
		uc.metrics.AccountBalance.WithLabelValues(account.ID(), account.Currency()).
			Set(account.Balance().InexactFloat64())
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.CashAccount, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.CashAccount, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}

// CloseAccount deletes an account. Only empty accounts can be closed.
func (uc *AccountUseCase) CloseAccount(ctx context.Context, id string) error {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !account.Balance().IsZero() {
		return fmt.Errorf("%w: account %s still holds %s", domain.ErrInvalidTransaction, id, account.Balance())
	}

	return uc.accountRepo.Delete(ctx, id)
}

// CashMovementInput represents input for a deposit or withdrawal.
type CashMovementInput struct {
	AccountID     string
	Amount        decimal.Decimal
	TransactionID string
	Metadata      map[string]string
}

// Deposit adds cash to an account and records a deposit ledger entry.
func (uc *AccountUseCase) Deposit(ctx context.Context, input CashMovementInput) (*domain.Transaction, error) {
	return uc.moveCash(ctx, domain.TransactionDeposit, input)
}

// Withdraw removes cash from an account and records a withdrawal ledger
// entry.
func (uc *AccountUseCase) Withdraw(ctx context.Context, input CashMovementInput) (*domain.Transaction, error) {
	return uc.moveCash(ctx, domain.TransactionWithdrawal, input)
}

func (uc *AccountUseCase) moveCash(ctx context.Context, kind domain.TransactionKind, input CashMovementInput) (*domain.Transaction, error) {
	id := input.TransactionID
	if id == "" {
		id = uc.idGen.Generate()
	}

	entry, err := domain.NewTransaction(domain.TransactionInput{
		ID:        id,
		Kind:      kind,
		AccountID: input.AccountID,
		Amount:    input.Amount,
		Metadata:  input.Metadata,
	})
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	amount := entry.Amount()

	if kind == domain.TransactionDeposit {
		_, err = account.Deposit(amount)
	} else {
		_, err = account.Withdraw(amount)
	}
	if err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Save(ctx, account); err != nil {
		return nil, uc.reverseCash(ctx, fmt.Errorf("persist account: %w", err), kind, account, amount)
	}

	if err := uc.ledgerRepo.Append(ctx, entry); err != nil {
		return nil, uc.reverseCash(ctx, fmt.Errorf("append ledger entry: %w", err), kind, account, amount)
	}

	if uc.metrics != nil {
		uc.metrics.AccountOperations.WithLabelValues(string(kind)).Inc()
		uc.metrics.AccountBalance.WithLabelValues(account.ID(), account.Currency()).
			Set(account.Balance().InexactFloat64())
	}

	return entry, nil
}

// reverseCash undoes an applied deposit or withdrawal after a downstream
// failure. A reversal failure is joined with the cause, never masking it.
func (uc *AccountUseCase) reverseCash(ctx context.Context, cause error, kind domain.TransactionKind, account *domain.CashAccount, amount decimal.Decimal) error {
	uc.log.Warn().Str("operation", string(kind)).Err(cause).Msg("cash movement failed, reversing")

	var err error
	if kind == domain.TransactionDeposit {
		_, err = account.Withdraw(amount)
	} else {
		_, err = account.Deposit(amount)
	}

	if err == nil {
		err = uc.accountRepo.Save(ctx, account)
	}

	if err == nil {
		return cause
	}

	uc.log.Error().Str("operation", string(kind)).Err(err).Msg("reversal failed, state may be inconsistent")

	return errors.Join(cause, fmt.Errorf("%w: %w", domain.ErrInconsistentState, err))
}
