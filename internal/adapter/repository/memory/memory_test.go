package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/tradesim/internal/domain"
)

func TestAccountRepository(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("get missing: expected ErrAccountNotFound, got %v", err)
	}

	if err := repo.Delete(ctx, "missing"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("delete missing: expected ErrAccountNotFound, got %v", err)
	}

	account, err := domain.NewCashAccount("acc-1", "alice", "USD", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("account: %v", err)
	}

	if err := repo.Save(ctx, account); err != nil {
		t.Fatalf("save: %v", err)
	}

	ok, err := repo.Exists(ctx, "acc-1")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v, want true", ok, err)
	}

	loaded, err := repo.GetByID(ctx, "acc-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded != account {
		t.Error("store does not hand back the saved aggregate")
	}

	if err := repo.Delete(ctx, "acc-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if ok, _ := repo.Exists(ctx, "acc-1"); ok {
		t.Error("account still exists after delete")
	}
}

func TestAccountRepository_ListPagination(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()

	for _, id := range []string{"acc-3", "acc-1", "acc-2"} {
		account, err := domain.NewCashAccount(id, "alice", "USD", decimal.Zero)
		if err != nil {
			t.Fatalf("account %s: %v", id, err)
		}
		if err := repo.Save(ctx, account); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	accounts, err := repo.List(ctx, 2, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(accounts) != 2 || accounts[0].ID() != "acc-2" || accounts[1].ID() != "acc-3" {
		ids := make([]string, len(accounts))
		for i, a := range accounts {
			ids[i] = a.ID()
		}
		t.Errorf("page = %v, want [acc-2 acc-3]", ids)
	}
}

func TestPortfolioRepository(t *testing.T) {
	repo := NewPortfolioRepository()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrPortfolioNotFound) {
		t.Errorf("get missing: expected ErrPortfolioNotFound, got %v", err)
	}

	for _, spec := range []struct{ id, owner string }{
		{id: "pf-1", owner: "alice"},
		{id: "pf-2", owner: "bob"},
		{id: "pf-3", owner: "alice"},
	} {
		p, err := domain.NewPortfolio(spec.id, spec.owner, "", "USD")
		if err != nil {
			t.Fatalf("portfolio %s: %v", spec.id, err)
		}
		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("save %s: %v", spec.id, err)
		}
	}

	mine, err := repo.ListByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(mine) != 2 || mine[0].ID() != "pf-1" || mine[1].ID() != "pf-3" {
		t.Errorf("ListByOwner returned %d portfolios, want pf-1 and pf-3", len(mine))
	}

	if err := repo.Delete(ctx, "pf-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "pf-2"); !errors.Is(err, domain.ErrPortfolioNotFound) {
		t.Errorf("double delete: expected ErrPortfolioNotFound, got %v", err)
	}
}

func TestTransactionRepository(t *testing.T) {
	repo := NewTransactionRepository()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("get missing: expected ErrTransactionNotFound, got %v", err)
	}

	for _, spec := range []struct{ id, account string }{
		{id: "tx-1", account: "acc-1"},
		{id: "tx-2", account: "acc-2"},
		{id: "tx-3", account: "acc-1"},
	} {
		entry, err := domain.NewTransaction(domain.TransactionInput{
			ID:        spec.id,
			Kind:      domain.TransactionDeposit,
			AccountID: spec.account,
			Amount:    decimal.NewFromInt(10),
		})
		if err != nil {
			t.Fatalf("entry %s: %v", spec.id, err)
		}
		if err := repo.Append(ctx, entry); err != nil {
			t.Fatalf("append %s: %v", spec.id, err)
		}
	}

	// Duplicate IDs are rejected; the ledger is append-only.
	dup, err := domain.NewTransaction(domain.TransactionInput{
		ID:        "tx-1",
		Kind:      domain.TransactionDeposit,
		AccountID: "acc-1",
		Amount:    decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("dup entry: %v", err)
	}
	if err := repo.Append(ctx, dup); !errors.Is(err, domain.ErrInvalidTransaction) {
		t.Errorf("duplicate append: expected ErrInvalidTransaction, got %v", err)
	}

	forAccount, err := repo.ListForAccount(ctx, "acc-1", 10, 0)
	if err != nil {
		t.Fatalf("list for account: %v", err)
	}
	if len(forAccount) != 2 || forAccount[0].ID() != "tx-1" || forAccount[1].ID() != "tx-3" {
		t.Errorf("ListForAccount returned %d entries, want tx-1 and tx-3 in append order", len(forAccount))
	}

	all, err := repo.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].ID() != "tx-3" {
		t.Errorf("page = %d entries, want only tx-3", len(all))
	}
}
