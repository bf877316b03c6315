// Package store defines the repository ports every backend implements.
// Callers depend on these interfaces, never on a concrete store.
package store

import (
	"context"

	"github.com/Reasonofmoon/tuition-automation/internal/core"
)

type (
	SettingsRepository interface {
		// AcademyName returns the configured academy name, empty when unset.
		AcademyName(ctx context.Context) (string, error)
		SetAcademyName(ctx context.Context, name string) error
	}

	// StudentRepository persists the student collection. Listing order
	// is insertion order; sibling-group representatives are chosen by it.
	StudentRepository interface {
		ListStudents(ctx context.Context) ([]core.Student, error)
		GetStudent(ctx context.Context, id string) (core.Student, error)
		// AddStudent assigns a fresh id and returns the stored record.
		AddStudent(ctx context.Context, s core.Student) (core.Student, error)
		// UpdateStudent merges the patch; core.ErrNotFound when id is unknown.
		UpdateStudent(ctx context.Context, id string, patch core.StudentPatch) (core.Student, error)
		// DeleteStudent removes by id. Payment history is left untouched.
		DeleteStudent(ctx context.Context, id string) error
	}

	ClassRepository interface {
		ListClasses(ctx context.Context) ([]core.Class, error)
		AddClass(ctx context.Context, c core.Class) (core.Class, error)
		UpdateClass(ctx context.Context, id string, patch core.ClassPatch) (core.Class, error)
		DeleteClass(ctx context.Context, id string) error
	}

	// PaymentRepository persists monthly ledgers. A ledger holds at most
	// one record per student; upserts are keyed by (month, studentId).
	PaymentRepository interface {
		// MonthPayments returns the ledger for a month, empty when the
		// month was never generated.
		MonthPayments(ctx context.Context, ym core.YearMonth) ([]core.PaymentRecord, error)
		// SaveMonthPayments replaces the month's ledger wholesale.
		SaveMonthPayments(ctx context.Context, ym core.YearMonth, records []core.PaymentRecord) error
		// UpsertPayment inserts or replaces one student's record.
		UpsertPayment(ctx context.Context, ym core.YearMonth, rec core.PaymentRecord) error
		// PaymentMonths lists every month with a ledger, ascending.
		PaymentMonths(ctx context.Context) ([]core.YearMonth, error)
	}
)

// Repository aggregates the four collection ports.
type Repository interface {
	SettingsRepository
	StudentRepository
	ClassRepository
	PaymentRepository
}
