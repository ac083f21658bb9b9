package domain

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewCashAccount(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		owner   string
		initial string
		wantErr error
	}{
		{name: "valid", id: "acc-1", owner: "alice", initial: "1000.00"},
		{name: "zero opening balance", id: "acc-1", owner: "alice", initial: "0"},
		{name: "empty id", id: "", owner: "alice", initial: "10", wantErr: ErrInvalidTransaction},
		{name: "empty owner", id: "acc-1", owner: "", initial: "10", wantErr: ErrInvalidTransaction},
		{name: "negative opening balance", id: "acc-1", owner: "alice", initial: "-0.01", wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := NewCashAccount(tt.id, tt.owner, "", decimal.RequireFromString(tt.initial))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if acc.Currency() != "USD" {
				t.Errorf("default currency = %s, want USD", acc.Currency())
			}
		})
	}
}

func TestCashAccount_DepositWithdraw(t *testing.T) {
	acc, err := NewCashAccount("acc-1", "alice", "USD", decimal.RequireFromString("100.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := acc.Deposit(decimal.RequireFromString("50.555")); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// 100.00 + 50.56 after quantizing the deposit.
	if got := acc.Balance().String(); got != "150.56" {
		t.Errorf("balance after deposit = %s, want 150.56", got)
	}

	if _, err := acc.Withdraw(decimal.RequireFromString("150.56")); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	if !acc.Balance().IsZero() {
		t.Errorf("balance after full withdrawal = %s, want 0", acc.Balance())
	}
}

func TestCashAccount_WithdrawInsufficient(t *testing.T) {
	acc, _ := NewCashAccount("acc-1", "alice", "USD", decimal.RequireFromString("10.00"))

	_, err := acc.Withdraw(decimal.RequireFromString("10.01"))

	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("expected ErrInsufficientFunds, got %v", err)
	}

	if got := acc.Balance().String(); got != "10" {
		t.Errorf("balance changed after failed withdrawal: %s", got)
	}
}

func TestCashAccount_RejectsNonPositiveAmounts(t *testing.T) {
	acc, _ := NewCashAccount("acc-1", "alice", "USD", decimal.RequireFromString("10.00"))

	if _, err := acc.Deposit(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("deposit zero: expected ErrInvalidAmount, got %v", err)
	}

	if _, err := acc.Withdraw(decimal.RequireFromString("-5")); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("withdraw negative: expected ErrInvalidAmount, got %v", err)
	}
}

// Balance equals deposits minus withdrawals under concurrent access and
// never goes negative.
func TestCashAccount_ConcurrentSum(t *testing.T) {
	acc, _ := NewCashAccount("acc-1", "alice", "USD", decimal.Zero)

	const workers = 20
	deposit := decimal.RequireFromString("7.13")
	withdrawal := decimal.RequireFromString("3.01")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := acc.Deposit(deposit); err != nil {
				t.Errorf("deposit: %v", err)
			}
		}()
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := acc.Withdraw(withdrawal); err != nil {
				t.Errorf("withdraw: %v", err)
			}
		}()
	}
	wg.Wait()

	want := deposit.Sub(withdrawal).Mul(decimal.NewFromInt(workers)).Round(MoneyScale)
	if !acc.Balance().Equal(want) {
		t.Errorf("balance = %s, want %s", acc.Balance(), want)
	}
}
