package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNewTransaction_CashKinds(t *testing.T) {
	tests := []struct {
		name    string
		input   TransactionInput
		wantErr bool
	}{
		{
			name:  "valid deposit",
			input: TransactionInput{ID: "tx-1", Kind: TransactionDeposit, AccountID: "acc-1", Amount: decimal.RequireFromString("100.00")},
		},
		{
			name:  "valid withdrawal",
			input: TransactionInput{ID: "tx-1", Kind: TransactionWithdrawal, AccountID: "acc-1", Amount: decimal.RequireFromString("0.01")},
		},
		{
			name:    "zero amount",
			input:   TransactionInput{ID: "tx-1", Kind: TransactionDeposit, AccountID: "acc-1", Amount: decimal.Zero},
			wantErr: true,
		},
		{
			name:    "amount quantizes to zero",
			input:   TransactionInput{ID: "tx-1", Kind: TransactionDeposit, AccountID: "acc-1", Amount: decimal.RequireFromString("0.001")},
			wantErr: true,
		},
		{
			name:    "missing account id",
			input:   TransactionInput{ID: "tx-1", Kind: TransactionDeposit, Amount: decimal.NewFromInt(10)},
			wantErr: true,
		},
		{
			name:    "quantity on a deposit",
			input:   TransactionInput{ID: "tx-1", Kind: TransactionDeposit, AccountID: "acc-1", Amount: decimal.NewFromInt(10), Quantity: decPtr("1")},
			wantErr: true,
		},
		{
			name:    "profit loss on a withdrawal",
			input:   TransactionInput{ID: "tx-1", Kind: TransactionWithdrawal, AccountID: "acc-1", Amount: decimal.NewFromInt(10), ProfitLoss: decPtr("1")},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			input:   TransactionInput{ID: "tx-1", Kind: "transfer", AccountID: "acc-1", Amount: decimal.NewFromInt(10)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := NewTransaction(tt.input)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransaction) {
					t.Errorf("expected ErrInvalidTransaction, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if _, ok := tx.Quantity(); ok {
				t.Error("cash entry reports a quantity")
			}
		})
	}
}

func TestNewTransaction_TradeKinds(t *testing.T) {
	tx, err := NewTransaction(TransactionInput{
		ID:          "tx-1",
		Kind:        TransactionBuy,
		AccountID:   "acc-1",
		PortfolioID: "pf-1",
		Symbol:      " aapl ",
		Quantity:    decPtr("2"),
		Price:       decPtr("150.005"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx.Symbol() != "AAPL" {
		t.Errorf("symbol = %s, want AAPL", tx.Symbol())
	}

	price, _ := tx.Price()
	if got := price.String(); got != "150.01" {
		t.Errorf("price = %s, want 150.01", got)
	}

	// amount = 2 * 150.01.
	if got := tx.Amount().String(); got != "300.02" {
		t.Errorf("amount = %s, want 300.02", got)
	}

	if _, ok := tx.ProfitLoss(); ok {
		t.Error("buy entry reports profit/loss when none was given")
	}
}

func TestNewTransaction_TradeValidation(t *testing.T) {
	base := TransactionInput{ID: "tx-1", Kind: TransactionSell, AccountID: "acc-1", Symbol: "AAPL"}

	tests := []struct {
		name   string
		mutate func(*TransactionInput)
	}{
		{name: "missing quantity", mutate: func(in *TransactionInput) { in.Price = decPtr("10") }},
		{name: "missing price", mutate: func(in *TransactionInput) { in.Quantity = decPtr("1") }},
		{name: "zero quantity", mutate: func(in *TransactionInput) { in.Quantity = decPtr("0"); in.Price = decPtr("10") }},
		{name: "negative price", mutate: func(in *TransactionInput) { in.Quantity = decPtr("1"); in.Price = decPtr("-10") }},
		{name: "missing symbol", mutate: func(in *TransactionInput) { in.Symbol = ""; in.Quantity = decPtr("1"); in.Price = decPtr("10") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)

			if _, err := NewTransaction(in); !errors.Is(err, ErrInvalidTransaction) {
				t.Errorf("expected ErrInvalidTransaction, got %v", err)
			}
		})
	}
}

func TestNewTransaction_SellCarriesProfitLoss(t *testing.T) {
	tx, err := NewTransaction(TransactionInput{
		ID:         "tx-1",
		Kind:       TransactionSell,
		AccountID:  "acc-1",
		Symbol:     "TSLA",
		Quantity:   decPtr("2"),
		Price:      decPtr("12.35"),
		ProfitLoss: decPtr("4.701"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pl, ok := tx.ProfitLoss()
	if !ok {
		t.Fatal("profit/loss missing")
	}

	if got := pl.String(); got != "4.7" {
		t.Errorf("profit/loss = %s, want 4.7", got)
	}
}

func TestNewTransaction_Timestamps(t *testing.T) {
	tx, err := NewTransaction(TransactionInput{
		ID:        "tx-1",
		Kind:      TransactionDeposit,
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tx.CreatedAt().IsZero() {
		t.Error("zero timestamp not defaulted")
	}

	if tx.CreatedAt().Location() != time.UTC {
		t.Errorf("timestamp zone = %v, want UTC", tx.CreatedAt().Location())
	}

	est := time.FixedZone("EST", -5*3600)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, est)

	tx2, err := NewTransaction(TransactionInput{
		ID:        "tx-2",
		Kind:      TransactionDeposit,
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(10),
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !tx2.CreatedAt().Equal(at) || tx2.CreatedAt().Location() != time.UTC {
		t.Errorf("timestamp = %v, want %v in UTC", tx2.CreatedAt(), at.UTC())
	}
}

func TestTransaction_MetadataIsCopied(t *testing.T) {
	meta := map[string]string{"source": "api"}

	tx, err := NewTransaction(TransactionInput{
		ID:        "tx-1",
		Kind:      TransactionDeposit,
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(10),
		Metadata:  meta,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meta["source"] = "mutated"
	if tx.Metadata()["source"] != "api" {
		t.Error("input mutation leaked into the entry")
	}

	tx.Metadata()["source"] = "mutated"
	if tx.Metadata()["source"] != "api" {
		t.Error("accessor handed out a mutable alias")
	}
}
