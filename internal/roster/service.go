// Package roster provides student and class administration on top of
// the repository ports.
package roster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Reasonofmoon/tuition-automation/internal/core"
	"github.com/Reasonofmoon/tuition-automation/internal/log"
	"github.com/Reasonofmoon/tuition-automation/internal/store"
)

// CacheInvalidator drops all cached report data. Roster changes shift
// every month's expected-fee denominator, so the whole cache goes.
type CacheInvalidator interface {
	InvalidateAll()
}

type Service struct {
	repo store.Repository
	inv  CacheInvalidator
}

func NewService(repo store.Repository, inv CacheInvalidator) *Service {
	return &Service{repo: repo, inv: inv}
}

func (s *Service) AcademyName(ctx context.Context) (string, error) {
	return s.repo.AcademyName(ctx)
}

// SetAcademyName stores the trimmed academy name; blank is rejected.
func (s *Service) SetAcademyName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	return s.repo.SetAcademyName(ctx, name)
}

func (s *Service) Students(ctx context.Context) ([]core.Student, error) {
	return s.repo.ListStudents(ctx)
}

// SearchStudents filters by case-insensitive substring of name or
// class name.
func (s *Service) SearchStudents(ctx context.Context, term string) ([]core.Student, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(term)
	var out []core.Student
	for _, st := range students {
		if strings.Contains(strings.ToLower(st.Name), term) ||
			strings.Contains(strings.ToLower(st.ClassName), term) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *Service) AddStudent(ctx context.Context, st core.Student) (core.Student, error) {
	st.Name = strings.TrimSpace(st.Name)
	if err := st.Validate(); err != nil {
		return core.Student{}, err
	}
	stored, err := s.repo.AddStudent(ctx, st)
	if err != nil {
		return core.Student{}, fmt.Errorf("add student: %w", err)
	}
	s.invalidate()
	slog.InfoContext(ctx, "Student added",
		log.FieldStudentID, stored.ID,
		"name", stored.Name,
		"class", stored.ClassName)
	return stored, nil
}

// UpdateStudent merges the patch into an existing student. Unknown ids
// surface core.ErrNotFound; callers report not-found, nothing throws.
func (s *Service) UpdateStudent(ctx context.Context, id string, patch core.StudentPatch) (core.Student, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return core.Student{}, core.ErrEmptyName
	}
	if patch.BaseFee != nil && *patch.BaseFee < 0 {
		return core.Student{}, core.ErrInvalidAmount
	}
	updated, err := s.repo.UpdateStudent(ctx, id, patch)
	if err != nil {
		return core.Student{}, err
	}
	s.invalidate()
	return updated, nil
}

// DeleteStudent removes the student. Historical payment records keep
// their studentId; lookups joining them must tolerate the miss.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	if err := s.repo.DeleteStudent(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	slog.InfoContext(ctx, "Student deleted", log.FieldStudentID, id)
	return nil
}

func (s *Service) Classes(ctx context.Context) ([]core.Class, error) {
	return s.repo.ListClasses(ctx)
}

func (s *Service) AddClass(ctx context.Context, c core.Class) (core.Class, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Class{}, err
	}
	stored, err := s.repo.AddClass(ctx, c)
	if err != nil {
		return core.Class{}, fmt.Errorf("add class: %w", err)
	}
	slog.InfoContext(ctx, "Class added", log.FieldClassID, stored.ID, "name", stored.Name)
	return stored, nil
}

// UpdateClass merges the patch. Renaming a class does not touch the
// ClassName copies held by students.
func (s *Service) UpdateClass(ctx context.Context, id string, patch core.ClassPatch) (core.Class, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return core.Class{}, core.ErrEmptyName
	}
	return s.repo.UpdateClass(ctx, id, patch)
}

func (s *Service) DeleteClass(ctx context.Context, id string) error {
	return s.repo.DeleteClass(ctx, id)
}

// ClassStudentCounts maps class name to the number of students whose
// ClassName copy matches it.
func (s *Service) ClassStudentCounts(ctx context.Context) (map[string]int, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, st := range students {
		counts[st.ClassName]++
	}
	return counts, nil
}

// ImportStudents adds students parsed from a CSV file and returns how
// many were stored. Rows failing validation are skipped, not fatal.
func (s *Service) ImportStudents(ctx context.Context, students []core.Student) (int, error) {
	added := 0
	for _, st := range students {
		if _, err := s.AddStudent(ctx, st); err != nil {
			slog.WarnContext(ctx, "Skipping invalid imported student",
				"name", st.Name, log.FieldError, err)
			continue
		}
		added++
	}
	return added, nil
}

func (s *Service) invalidate() {
	if s.inv != nil {
		s.inv.InvalidateAll()
	}
}
