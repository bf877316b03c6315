// Package memory implements the store ports in process memory. It is
// the default backend for a fresh checkout and the repository used by
// tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Reasonofmoon/tuition-automation/internal/core"
)

type ledger struct {
	order     []string // studentId insertion order
	byStudent map[string]core.PaymentRecord
}

type Store struct {
	mu          sync.Mutex
	academyName string
	students    []core.Student
	classes     []core.Class
	payments    map[string]*ledger // keyed by YYYY-MM
}

func New() *Store {
	return &Store{payments: make(map[string]*ledger)}
}

func (s *Store) AcademyName(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.academyName, nil
}

func (s *Store) SetAcademyName(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.academyName = name
	return nil
}

func (s *Store) ListStudents(_ context.Context) ([]core.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Student(nil), s.students...), nil
}

func (s *Store) GetStudent(_ context.Context, id string) (core.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.students {
		if st.ID == id {
			return st, nil
		}
	}
	return core.Student{}, core.ErrNotFound
}

func (s *Store) AddStudent(_ context.Context, st core.Student) (core.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ID = uuid.NewString()
	s.students = append(s.students, st)
	return st, nil
}

func (s *Store) UpdateStudent(_ context.Context, id string, patch core.StudentPatch) (core.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.students {
		if s.students[i].ID == id {
			patch.Apply(&s.students[i])
			return s.students[i], nil
		}
	}
	return core.Student{}, core.ErrNotFound
}

func (s *Store) DeleteStudent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.students {
		if s.students[i].ID == id {
			s.students = append(s.students[:i], s.students[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) ListClasses(_ context.Context) ([]core.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Class(nil), s.classes...), nil
}

func (s *Store) AddClass(_ context.Context, c core.Class) (core.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.NewString()
	s.classes = append(s.classes, c)
	return c, nil
}

func (s *Store) UpdateClass(_ context.Context, id string, patch core.ClassPatch) (core.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.classes {
		if s.classes[i].ID == id {
			patch.Apply(&s.classes[i])
			return s.classes[i], nil
		}
	}
	return core.Class{}, core.ErrNotFound
}

func (s *Store) DeleteClass(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.classes {
		if s.classes[i].ID == id {
			s.classes = append(s.classes[:i], s.classes[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) MonthPayments(_ context.Context, ym core.YearMonth) ([]core.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.payments[ym.String()]
	if !ok {
		return nil, nil
	}
	out := make([]core.PaymentRecord, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.byStudent[id])
	}
	return out, nil
}

func (s *Store) SaveMonthPayments(_ context.Context, ym core.YearMonth, records []core.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := &ledger{byStudent: make(map[string]core.PaymentRecord, len(records))}
	for _, rec := range records {
		if _, dup := l.byStudent[rec.StudentID]; !dup {
			l.order = append(l.order, rec.StudentID)
		}
		l.byStudent[rec.StudentID] = rec
	}
	s.payments[ym.String()] = l
	return nil
}

func (s *Store) UpsertPayment(_ context.Context, ym core.YearMonth, rec core.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.payments[ym.String()]
	if !ok {
		l = &ledger{byStudent: make(map[string]core.PaymentRecord)}
		s.payments[ym.String()] = l
	}
	if _, exists := l.byStudent[rec.StudentID]; !exists {
		l.order = append(l.order, rec.StudentID)
	}
	l.byStudent[rec.StudentID] = rec
	return nil
}

func (s *Store) PaymentMonths(_ context.Context) ([]core.YearMonth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.payments))
	for k := range s.payments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	months := make([]core.YearMonth, 0, len(keys))
	for _, k := range keys {
		ym, err := core.ParseYearMonth(k)
		if err != nil {
			continue
		}
		months = append(months, ym)
	}
	return months, nil
}
