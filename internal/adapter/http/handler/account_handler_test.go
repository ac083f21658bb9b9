package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/tradesim/internal/adapter/http/dto"
	"github.com/iho/tradesim/internal/domain"
	"github.com/iho/tradesim/internal/usecase"
)

type accountServiceStub struct {
	createFn   func(ctx context.Context, input usecase.CreateAccountInput) (*domain.CashAccount, error)
	getFn      func(ctx context.Context, id string) (*domain.CashAccount, error)
	listFn     func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.CashAccount, error)
	closeFn    func(ctx context.Context, id string) error
	depositFn  func(ctx context.Context, input usecase.CashMovementInput) (*domain.Transaction, error)
	withdrawFn func(ctx context.Context, input usecase.CashMovementInput) (*domain.Transaction, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.CashAccount, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, id string) (*domain.CashAccount, error) {
	return s.getFn(ctx, id)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.CashAccount, error) {
	return s.listFn(ctx, input)
}

func (s *accountServiceStub) CloseAccount(ctx context.Context, id string) error {
	return s.closeFn(ctx, id)
}

func (s *accountServiceStub) Deposit(ctx context.Context, input usecase.CashMovementInput) (*domain.Transaction, error) {
	return s.depositFn(ctx, input)
}

func (s *accountServiceStub) Withdraw(ctx context.Context, input usecase.CashMovementInput) (*domain.Transaction, error) {
	return s.withdrawFn(ctx, input)
}

func mustAccount(t *testing.T, id, owner string, balance string) *domain.CashAccount {
	t.Helper()

	account, err := domain.NewCashAccount(id, owner, "USD", decimal.RequireFromString(balance))
	if err != nil {
		t.Fatalf("new account: %v", err)
	}
	return account
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := mustAccount(t, "acc-1", "alice", "1000")

	var captured usecase.CreateAccountInput
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.CashAccount, error) {
			captured = input
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		Owner:          "alice",
		Currency:       "USD",
		InitialBalance: decimal.RequireFromString("1000"),
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Owner != "alice" || captured.Currency != "USD" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" || resp.Balance.String() != "1000" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAccountHandler_Create_InvalidJSON(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.CashAccount, error) {
			t.Fatal("CreateAccount should not be called for invalid payload")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewBufferString("{invalid json"))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_DuplicateID(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.CashAccount, error) {
			return nil, domain.ErrAccountExists
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{ID: "acc-1", Owner: "alice"})
	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.CashAccount, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_List(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		listFn: func(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.CashAccount, error) {
			if input.Limit != 5 || input.Offset != 2 {
				t.Fatalf("expected limit=5 offset=2, got %+v", input)
			}
			return []*domain.CashAccount{
				mustAccount(t, "acc-1", "alice", "100"),
				mustAccount(t, "acc-2", "bob", "200"),
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts?limit=5&offset=2", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []*dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(resp))
	}
}

func TestAccountHandler_Deposit(t *testing.T) {
	var captured usecase.CashMovementInput
	h := NewAccountHandler(&accountServiceStub{
		depositFn: func(ctx context.Context, input usecase.CashMovementInput) (*domain.Transaction, error) {
			captured = input
			return domain.NewTransaction(domain.TransactionInput{
				ID:        "tx-1",
				Kind:      domain.TransactionDeposit,
				AccountID: input.AccountID,
				Amount:    input.Amount,
			})
		},
	})

	body, _ := json.Marshal(dto.CashMovementRequest{Amount: decimal.RequireFromString("25.50")})
	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/deposits", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	h.Deposit(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.AccountID != "acc-1" || captured.Amount.String() != "25.5" {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Kind != string(domain.TransactionDeposit) || resp.Amount.String() != "25.5" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAccountHandler_Withdraw_Insufficient(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		withdrawFn: func(ctx context.Context, input usecase.CashMovementInput) (*domain.Transaction, error) {
			return nil, domain.ErrInsufficientFunds
		},
	})

	body, _ := json.Marshal(dto.CashMovementRequest{Amount: decimal.RequireFromString("1000")})
	req := httptest.NewRequest(http.MethodPost, "/accounts/acc-1/withdrawals", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "acc-1")
	rec := httptest.NewRecorder()

	h.Withdraw(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}
