package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Reasonofmoon/tuition-automation/internal/core"
	"github.com/Reasonofmoon/tuition-automation/internal/store/memory"
)

func seedStudents(t *testing.T, st *memory.Store, fees ...core.Amount) []core.Student {
	t.Helper()
	ctx := context.Background()
	var out []core.Student
	for i, fee := range fees {
		s, err := st.AddStudent(ctx, core.Student{Name: string(rune('A' + i)), BaseFee: fee})
		if err != nil {
			t.Fatalf("seed student: %v", err)
		}
		out = append(out, s)
	}
	return out
}

func TestGenerateLedger(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	students := seedStudents(t, st, 100000, 80000, 60000)
	svc := NewService(st, nil)
	ym := core.YearMonth{Year: 2025, Month: 3}

	n, err := svc.GenerateLedger(ctx, ym)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 records, got %d", n)
	}

	ledger, err := st.MonthPayments(ctx, ym)
	if err != nil {
		t.Fatalf("month payments: %v", err)
	}
	if len(ledger) != len(students) {
		t.Fatalf("expected %d records, got %d", len(students), len(ledger))
	}
	for i, p := range ledger {
		if p.Status != core.StatusUnpaid {
			t.Fatalf("record %d: expected unpaid, got %s", i, p.Status)
		}
		if p.SiblingDiscount != 0 || p.IndividualDiscount != 0 || p.BookFee != 0 {
			t.Fatalf("record %d: expected zero adjustments: %+v", i, p)
		}
		if p.TotalAmount != students[i].BaseFee {
			t.Fatalf("record %d: total %d != base fee %d", i, p.TotalAmount, students[i].BaseFee)
		}
	}
}

func TestGenerateLedgerReplacesExisting(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	students := seedStudents(t, st, 100000)
	svc := NewService(st, nil)
	ym := core.YearMonth{Year: 2025, Month: 3}

	if _, err := svc.GenerateLedger(ctx, ym); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := svc.SetIndividualDiscount(ctx, ym, students[0].ID, 10000); err != nil {
		t.Fatalf("set discount: %v", err)
	}

	exists, err := svc.HasLedger(ctx, ym)
	if err != nil || !exists {
		t.Fatalf("expected existing ledger (err=%v)", err)
	}

	// Regenerate means start over: the prior discount is gone.
	if _, err := svc.GenerateLedger(ctx, ym); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	ledger, _ := st.MonthPayments(ctx, ym)
	if ledger[0].IndividualDiscount != 0 || ledger[0].TotalAmount != 100000 {
		t.Fatalf("regenerate kept prior state: %+v", ledger[0])
	}
}

func TestHasLedgerWithoutGeneration(t *testing.T) {
	svc := NewService(memory.New(), nil)
	exists, err := svc.HasLedger(context.Background(), core.YearMonth{Year: 2025, Month: 1})
	if err != nil {
		t.Fatalf("has ledger: %v", err)
	}
	if exists {
		t.Fatalf("expected no ledger for ungenerated month")
	}
}

func TestSetFieldRecomputesTotal(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	students := seedStudents(t, st, 100000)
	svc := NewService(st, nil)
	ym := core.YearMonth{Year: 2025, Month: 4}
	id := students[0].ID

	// No generated ledger: the edit lazily creates the record.
	if err := svc.SetIndividualDiscount(ctx, ym, id, 10000); err != nil {
		t.Fatalf("set discount: %v", err)
	}
	if err := svc.SetBookFee(ctx, ym, id, 5000); err != nil {
		t.Fatalf("set book fee: %v", err)
	}

	ledger, _ := st.MonthPayments(ctx, ym)
	if len(ledger) != 1 {
		t.Fatalf("expected 1 lazily created record, got %d", len(ledger))
	}
	if ledger[0].TotalAmount != 95000 {
		t.Fatalf("expected recomputed total 95000, got %d", ledger[0].TotalAmount)
	}
	if ledger[0].Status != core.StatusUnpaid {
		t.Fatalf("lazily created record should default to unpaid, got %s", ledger[0].Status)
	}
}

func TestSetFieldUnknownStudent(t *testing.T) {
	svc := NewService(memory.New(), nil)
	err := svc.SetBookFee(context.Background(), core.YearMonth{Year: 2025, Month: 4}, "missing", 1000)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetStatusValidation(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	students := seedStudents(t, st, 100000)
	svc := NewService(st, nil)
	ym := core.YearMonth{Year: 2025, Month: 4}

	if err := svc.SetStatus(ctx, ym, students[0].ID, "settled"); !errors.Is(err, core.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := svc.SetStatus(ctx, ym, students[0].ID, core.StatusPartial); err != nil {
		t.Fatalf("set status: %v", err)
	}
}

func TestQuickPay(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	students := seedStudents(t, st, 100000)
	svc := NewService(st, nil)
	ym := core.YearMonth{Year: 2025, Month: 4}
	now := time.Date(2025, 4, 12, 15, 0, 0, 0, time.UTC)

	if err := svc.QuickPay(ctx, ym, students[0].ID, now); err != nil {
		t.Fatalf("quick pay: %v", err)
	}
	ledger, _ := st.MonthPayments(ctx, ym)
	if len(ledger) != 1 {
		t.Fatalf("expected 1 record, got %d", len(ledger))
	}
	p := ledger[0]
	if p.Status != core.StatusPaid {
		t.Fatalf("expected paid, got %s", p.Status)
	}
	if p.PaymentDate != "2025-04-12" {
		t.Fatalf("expected payment date 2025-04-12, got %q", p.PaymentDate)
	}
	if p.TotalAmount != 100000 {
		t.Fatalf("expected total 100000, got %d", p.TotalAmount)
	}
}
