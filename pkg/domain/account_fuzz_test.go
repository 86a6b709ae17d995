package domain_test

import (
	"testing"

	"github.com/amirasaad/ledger/pkg/domain"
)

// FuzzAccountDebitCredit checks that no sequence of a credit followed by a
// debit can leave a negative balance.
func FuzzAccountDebitCredit(f *testing.F) {
	f.Add(int64(0), int64(100), int64(50))
	f.Add(int64(10), int64(-5), int64(20))
	f.Add(int64(1<<62), int64(1<<62), int64(1))
	f.Fuzz(func(t *testing.T, start, credit, debit int64) {
		acc, err := domain.NewAccount(1, start)
		if err != nil {
			t.Skip()
		}
		before := acc.Balance
		if err := acc.Credit(credit); err != nil && acc.Balance != before {
			t.Fatalf("failed credit changed balance: %d -> %d", before, acc.Balance)
		}
		before = acc.Balance
		if err := acc.Debit(debit); err != nil && acc.Balance != before {
			t.Fatalf("failed debit changed balance: %d -> %d", before, acc.Balance)
		}
		if acc.Balance < 0 {
			t.Errorf("balance is negative: %d (start=%d credit=%d debit=%d)", acc.Balance, start, credit, debit)
		}
	})
}
