package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Reasonofmoon/tuition-automation/internal/core"
	"github.com/Reasonofmoon/tuition-automation/internal/log"
	"github.com/Reasonofmoon/tuition-automation/internal/store"
)

// MonthInvalidator drops cached derived data for a month after a
// ledger write. Reporting provides the implementation.
type MonthInvalidator interface {
	InvalidateMonth(ym core.YearMonth)
}

// Service applies ledger mutations through the repository, keeping the
// cached TotalAmount invariant on every write.
type Service struct {
	repo store.Repository
	inv  MonthInvalidator
}

func NewService(repo store.Repository, inv MonthInvalidator) *Service {
	return &Service{repo: repo, inv: inv}
}

// Rows returns the rendered payment table for a month.
func (s *Service) Rows(ctx context.Context, ym core.YearMonth) ([]Row, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	ledger, err := s.repo.MonthPayments(ctx, ym)
	if err != nil {
		return nil, fmt.Errorf("month payments: %w", err)
	}
	return TableRows(students, ledger), nil
}

// HasLedger reports whether a non-empty ledger exists for the month.
// Callers probe it before a destructive regenerate.
func (s *Service) HasLedger(ctx context.Context, ym core.YearMonth) (bool, error) {
	ledger, err := s.repo.MonthPayments(ctx, ym)
	if err != nil {
		return false, fmt.Errorf("month payments: %w", err)
	}
	return len(ledger) > 0, nil
}

// GenerateLedger replaces the month's ledger with one unpaid
// zero-adjustment record per currently-registered student. Prior
// records for that month are lost; regenerate means start over.
func (s *Service) GenerateLedger(ctx context.Context, ym core.YearMonth) (int, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return 0, fmt.Errorf("list students: %w", err)
	}
	records := make([]core.PaymentRecord, 0, len(students))
	for _, st := range students {
		records = append(records, core.PaymentRecord{
			StudentID:   st.ID,
			Status:      core.StatusUnpaid,
			TotalAmount: st.BaseFee,
		})
	}
	if err := s.repo.SaveMonthPayments(ctx, ym, records); err != nil {
		return 0, fmt.Errorf("save month payments: %w", err)
	}
	s.invalidate(ym)
	slog.InfoContext(ctx, "Monthly ledger generated",
		log.FieldYearMonth, ym.String(),
		log.FieldRecords, len(records))
	return len(records), nil
}

// SetSiblingDiscount updates the sibling discount and recomputes the
// cached total.
func (s *Service) SetSiblingDiscount(ctx context.Context, ym core.YearMonth, studentID string, v core.Amount) error {
	return s.mutate(ctx, ym, studentID, func(p *core.PaymentRecord) {
		p.SiblingDiscount = v
	})
}

// SetIndividualDiscount updates the individual discount and recomputes
// the cached total.
func (s *Service) SetIndividualDiscount(ctx context.Context, ym core.YearMonth, studentID string, v core.Amount) error {
	return s.mutate(ctx, ym, studentID, func(p *core.PaymentRecord) {
		p.IndividualDiscount = v
	})
}

// SetBookFee updates the book fee and recomputes the cached total.
func (s *Service) SetBookFee(ctx context.Context, ym core.YearMonth, studentID string, v core.Amount) error {
	return s.mutate(ctx, ym, studentID, func(p *core.PaymentRecord) {
		p.BookFee = v
	})
}

// SetStatus updates the payment status.
func (s *Service) SetStatus(ctx context.Context, ym core.YearMonth, studentID string, status core.PaymentStatus) error {
	if !status.IsValid() {
		return core.ErrInvalidStatus
	}
	return s.mutate(ctx, ym, studentID, func(p *core.PaymentRecord) {
		p.Status = status
	})
}

// SetPaymentDate updates the payment date; empty clears it.
func (s *Service) SetPaymentDate(ctx context.Context, ym core.YearMonth, studentID string, date string) error {
	if date != "" {
		if err := core.ValidateDate(date); err != nil {
			return err
		}
	}
	return s.mutate(ctx, ym, studentID, func(p *core.PaymentRecord) {
		p.PaymentDate = date
	})
}

// SetNotes updates the free-text notes.
func (s *Service) SetNotes(ctx context.Context, ym core.YearMonth, studentID string, notes string) error {
	return s.mutate(ctx, ym, studentID, func(p *core.PaymentRecord) {
		p.Notes = notes
	})
}

// QuickPay marks the record paid as of now. Both fields are applied to
// the record before the single persist, so no intermediate state is
// ever observable.
func (s *Service) QuickPay(ctx context.Context, ym core.YearMonth, studentID string, now time.Time) error {
	return s.mutate(ctx, ym, studentID, func(p *core.PaymentRecord) {
		p.Status = core.StatusPaid
		p.PaymentDate = now.Format("2006-01-02")
	})
}

// mutate loads (or lazily creates) the student's record for the month,
// applies the edit, recomputes the total and persists once.
func (s *Service) mutate(ctx context.Context, ym core.YearMonth, studentID string, edit func(*core.PaymentRecord)) error {
	student, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return err
	}
	ledger, err := s.repo.MonthPayments(ctx, ym)
	if err != nil {
		return fmt.Errorf("month payments: %w", err)
	}
	rec := core.PaymentRecord{StudentID: studentID, Status: core.StatusUnpaid}
	for _, r := range ledger {
		if r.StudentID == studentID {
			rec = r
			break
		}
	}
	edit(&rec)
	Recalc(student, &rec)
	if err := s.repo.UpsertPayment(ctx, ym, rec); err != nil {
		return fmt.Errorf("upsert payment: %w", err)
	}
	s.invalidate(ym)
	return nil
}

func (s *Service) invalidate(ym core.YearMonth) {
	if s.inv != nil {
		s.inv.InvalidateMonth(ym)
	}
}
