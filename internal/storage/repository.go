// Package storage provides the durable SQLite repository. The schema
// lives in embedded migrations run at open time.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Reasonofmoon/tuition-automation/internal/core"
	"github.com/Reasonofmoon/tuition-automation/internal/log"
)

const academyNameKey = "academy_name"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) AcademyName(ctx context.Context) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, getSettingSQL, academyNameKey).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get academy name: %w", err)
	}
	return name, nil
}

func (r *SQLiteRepository) SetAcademyName(ctx context.Context, name string) error {
	if _, err := r.db.ExecContext(ctx, upsertSettingSQL, academyNameKey, name); err != nil {
		return fmt.Errorf("set academy name: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListStudents(ctx context.Context) ([]core.Student, error) {
	rows, err := r.db.QueryContext(ctx, listStudentsSQL)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var students []core.Student
	for rows.Next() {
		var s core.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.ClassName, &s.BaseFee,
			&s.SiblingGroup, &s.Phone, &s.RegistrationDate, &s.Notes); err != nil {
			// Malformed rows degrade to absence, not failure.
			slog.WarnContext(ctx, "Skipping malformed student row", log.FieldError, err)
			continue
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *SQLiteRepository) GetStudent(ctx context.Context, id string) (core.Student, error) {
	var s core.Student
	err := r.db.QueryRowContext(ctx, getStudentSQL, id).Scan(&s.ID, &s.Name,
		&s.ClassName, &s.BaseFee, &s.SiblingGroup, &s.Phone, &s.RegistrationDate, &s.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Student{}, core.ErrNotFound
	}
	if err != nil {
		return core.Student{}, fmt.Errorf("get student: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) AddStudent(ctx context.Context, s core.Student) (core.Student, error) {
	s.ID = uuid.NewString()
	if _, err := r.db.ExecContext(ctx, insertStudentSQL, s.ID, s.Name, s.ClassName,
		s.BaseFee, s.SiblingGroup, s.Phone, s.RegistrationDate, s.Notes); err != nil {
		return core.Student{}, fmt.Errorf("insert student: %w", err)
	}
	slog.InfoContext(ctx, "Student saved",
		log.FieldStudentID, s.ID,
		"name", s.Name,
		log.FieldAmountWon, s.BaseFee.Won())
	return s, nil
}

func (r *SQLiteRepository) UpdateStudent(ctx context.Context, id string, patch core.StudentPatch) (core.Student, error) {
	s, err := r.GetStudent(ctx, id)
	if err != nil {
		return core.Student{}, err
	}
	patch.Apply(&s)
	if _, err := r.db.ExecContext(ctx, updateStudentSQL, s.Name, s.ClassName,
		s.BaseFee, s.SiblingGroup, s.Phone, s.RegistrationDate, s.Notes, id); err != nil {
		return core.Student{}, fmt.Errorf("update student: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) DeleteStudent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteStudentSQL, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListClasses(ctx context.Context) ([]core.Class, error) {
	rows, err := r.db.QueryContext(ctx, listClassesSQL)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	var classes []core.Class
	for rows.Next() {
		var c core.Class
		if err := rows.Scan(&c.ID, &c.Name, &c.DefaultFee, &c.Schedule,
			&c.Time, &c.Capacity, &c.Notes); err != nil {
			slog.WarnContext(ctx, "Skipping malformed class row", log.FieldError, err)
			continue
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func (r *SQLiteRepository) AddClass(ctx context.Context, c core.Class) (core.Class, error) {
	c.ID = uuid.NewString()
	if _, err := r.db.ExecContext(ctx, insertClassSQL, c.ID, c.Name, c.DefaultFee,
		c.Schedule, c.Time, c.Capacity, c.Notes); err != nil {
		return core.Class{}, fmt.Errorf("insert class: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateClass(ctx context.Context, id string, patch core.ClassPatch) (core.Class, error) {
	var c core.Class
	err := r.db.QueryRowContext(ctx, getClassSQL, id).Scan(&c.ID, &c.Name,
		&c.DefaultFee, &c.Schedule, &c.Time, &c.Capacity, &c.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Class{}, core.ErrNotFound
	}
	if err != nil {
		return core.Class{}, fmt.Errorf("get class: %w", err)
	}
	patch.Apply(&c)
	if _, err := r.db.ExecContext(ctx, updateClassSQL, c.Name, c.DefaultFee,
		c.Schedule, c.Time, c.Capacity, c.Notes, id); err != nil {
		return core.Class{}, fmt.Errorf("update class: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) DeleteClass(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteClassSQL, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) MonthPayments(ctx context.Context, ym core.YearMonth) ([]core.PaymentRecord, error) {
	rows, err := r.db.QueryContext(ctx, listMonthPaymentsSQL, ym.String())
	if err != nil {
		return nil, fmt.Errorf("list month payments: %w", err)
	}
	defer rows.Close()

	var records []core.PaymentRecord
	for rows.Next() {
		var p core.PaymentRecord
		var status string
		if err := rows.Scan(&p.StudentID, &p.SiblingDiscount, &p.IndividualDiscount,
			&p.BookFee, &status, &p.PaymentDate, &p.Notes, &p.TotalAmount); err != nil {
			slog.WarnContext(ctx, "Skipping malformed payment row",
				log.FieldYearMonth, ym.String(), log.FieldError, err)
			continue
		}
		p.Status = core.PaymentStatus(status)
		records = append(records, p)
	}
	return records, rows.Err()
}

func (r *SQLiteRepository) SaveMonthPayments(ctx context.Context, ym core.YearMonth, records []core.PaymentRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteMonthPaymentsSQL, ym.String()); err != nil {
		return fmt.Errorf("clear month payments: %w", err)
	}
	for _, p := range records {
		if _, err := tx.ExecContext(ctx, upsertPaymentSQL, ym.String(), p.StudentID,
			p.SiblingDiscount, p.IndividualDiscount, p.BookFee,
			string(p.Status), p.PaymentDate, p.Notes, p.TotalAmount); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit month payments: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertPayment(ctx context.Context, ym core.YearMonth, rec core.PaymentRecord) error {
	if _, err := r.db.ExecContext(ctx, upsertPaymentSQL, ym.String(), rec.StudentID,
		rec.SiblingDiscount, rec.IndividualDiscount, rec.BookFee,
		string(rec.Status), rec.PaymentDate, rec.Notes, rec.TotalAmount); err != nil {
		return fmt.Errorf("upsert payment: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) PaymentMonths(ctx context.Context) ([]core.YearMonth, error) {
	rows, err := r.db.QueryContext(ctx, listPaymentMonthsSQL)
	if err != nil {
		return nil, fmt.Errorf("list payment months: %w", err)
	}
	defer rows.Close()

	var months []core.YearMonth
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan payment month: %w", err)
		}
		ym, err := core.ParseYearMonth(s)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed ledger key", log.FieldYearMonth, s)
			continue
		}
		months = append(months, ym)
	}
	return months, rows.Err()
}
