package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusUnpaid  PaymentStatus = "unpaid"
	StatusPaid    PaymentStatus = "paid"
	StatusPartial PaymentStatus = "partially-paid"
)

type (
	PaymentStatus string

	// Student is a registered student. ClassName is a free-text copy of
	// the class name at assignment time, not a live reference.
	Student struct {
		ID               string
		Name             string
		ClassName        string
		BaseFee          Amount
		SiblingGroup     string // empty means not grouped
		Phone            string
		RegistrationDate string // YYYY-MM-DD, optional
		Notes            string
	}

	Class struct {
		ID         string
		Name       string
		DefaultFee Amount
		Schedule   string
		Time       string
		Capacity   string
		Notes      string
	}

	// PaymentRecord is one student's entry in a monthly ledger.
	// TotalAmount is cached at write time so downstream readers
	// (dashboard, exports) never recompute it.
	PaymentRecord struct {
		StudentID          string
		SiblingDiscount    Amount
		IndividualDiscount Amount
		BookFee            Amount
		Status             PaymentStatus
		PaymentDate        string // YYYY-MM-DD, empty until paid
		Notes              string
		TotalAmount        Amount
	}
)

// StudentPatch carries a partial student update. Nil fields are left
// unchanged by the merge.
type StudentPatch struct {
	Name             *string
	ClassName        *string
	BaseFee          *Amount
	SiblingGroup     *string
	Phone            *string
	RegistrationDate *string
	Notes            *string
}

// ClassPatch carries a partial class update.
type ClassPatch struct {
	Name       *string
	DefaultFee *Amount
	Schedule   *string
	Time       *string
	Capacity   *string
	Notes      *string
}

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidStatus    = errors.New("invalid payment status")
	ErrInvalidYearMonth = errors.New("invalid year-month")
	ErrInvalidDate      = errors.New("invalid date")
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusUnpaid, StatusPaid, StatusPartial:
		return true
	default:
		return false
	}
}

// OrUnpaid maps an absent or unknown status to the unpaid default, the
// display rule for rows without a ledger record.
func (s PaymentStatus) OrUnpaid() PaymentStatus {
	if !s.IsValid() {
		return StatusUnpaid
	}
	return s
}

func (s Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.BaseFee < 0 {
		return ErrInvalidAmount
	}
	if s.RegistrationDate != "" {
		if err := ValidateDate(s.RegistrationDate); err != nil {
			return err
		}
	}
	return nil
}

func (c Class) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.DefaultFee < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p PaymentRecord) Validate() error {
	if p.StudentID == "" {
		return errors.New("payment record without student id")
	}
	if p.Status != "" && !p.Status.IsValid() {
		return ErrInvalidStatus
	}
	if p.PaymentDate != "" {
		if err := ValidateDate(p.PaymentDate); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDate checks a YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Apply merges non-nil patch fields into the student.
func (p StudentPatch) Apply(s *Student) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.ClassName != nil {
		s.ClassName = *p.ClassName
	}
	if p.BaseFee != nil {
		s.BaseFee = *p.BaseFee
	}
	if p.SiblingGroup != nil {
		s.SiblingGroup = *p.SiblingGroup
	}
	if p.Phone != nil {
		s.Phone = *p.Phone
	}
	if p.RegistrationDate != nil {
		s.RegistrationDate = *p.RegistrationDate
	}
	if p.Notes != nil {
		s.Notes = *p.Notes
	}
}

// Apply merges non-nil patch fields into the class.
func (p ClassPatch) Apply(c *Class) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.DefaultFee != nil {
		c.DefaultFee = *p.DefaultFee
	}
	if p.Schedule != nil {
		c.Schedule = *p.Schedule
	}
	if p.Time != nil {
		c.Time = *p.Time
	}
	if p.Capacity != nil {
		c.Capacity = *p.Capacity
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
}
