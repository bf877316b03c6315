// Package billing implements the payment computation engine: per-month
// totals, sibling-group display aggregation and ledger maintenance.
package billing

import (
	"github.com/Reasonofmoon/tuition-automation/internal/core"
)

// Total derives a student's monthly charge from the base fee and the
// three per-month adjustments. Absent adjustments are zero; nothing
// prevents a negative result when discounts exceed the fee.
func Total(s core.Student, p core.PaymentRecord) core.Amount {
	return s.BaseFee - p.SiblingDiscount - p.IndividualDiscount + p.BookFee
}

// Recalc rewrites the record's cached TotalAmount from the current
// student state. It runs on every adjustment write and on base-fee
// changes so downstream readers never recompute.
func Recalc(s core.Student, p *core.PaymentRecord) {
	p.TotalAmount = Total(s, *p)
}

// SiblingGroups collects students sharing a non-empty sibling tag,
// preserving student-collection order inside each group. Membership is
// derived freshly from the current collection; nothing is stored.
func SiblingGroups(students []core.Student) map[string][]core.Student {
	groups := make(map[string][]core.Student)
	for _, s := range students {
		if s.SiblingGroup == "" {
			continue
		}
		groups[s.SiblingGroup] = append(groups[s.SiblingGroup], s)
	}
	return groups
}

// Row is one line of the monthly payment table, ready for rendering.
type Row struct {
	Student core.Student
	Payment core.PaymentRecord

	// Total is the student's own charge for the month.
	Total core.Amount
	// DisplayTotal equals Total except on a sibling-group
	// representative row, where it is the whole group's sum.
	DisplayTotal core.Amount
	// InGroup is true when the student shares a sibling tag with at
	// least one other current student.
	InGroup bool
	// Representative marks the first group member in collection order.
	Representative bool
	// ShowPaymentFields is true where status/date are editable: on
	// ungrouped rows and on the representative row. Other group rows
	// render a placeholder there.
	ShowPaymentFields bool
}

// TableRows builds the payment table for one month. A ledger entry
// whose student no longer exists is ignored; a student without a
// ledger entry gets a zero-adjustment row.
func TableRows(students []core.Student, ledger []core.PaymentRecord) []Row {
	byStudent := make(map[string]core.PaymentRecord, len(ledger))
	for _, rec := range ledger {
		byStudent[rec.StudentID] = rec
	}
	groups := SiblingGroups(students)

	rows := make([]Row, 0, len(students))
	for _, s := range students {
		p := byStudent[s.ID]
		p.StudentID = s.ID
		total := Total(s, p)

		siblings := groups[s.SiblingGroup]
		inGroup := s.SiblingGroup != "" && len(siblings) > 1
		representative := inGroup && siblings[0].ID == s.ID

		display := total
		if representative {
			var sum core.Amount
			for _, member := range siblings {
				mp := byStudent[member.ID]
				sum += Total(member, mp)
			}
			display = sum
		}

		rows = append(rows, Row{
			Student:           s,
			Payment:           p,
			Total:             total,
			DisplayTotal:      display,
			InGroup:           inGroup,
			Representative:    representative,
			ShowPaymentFields: !inGroup || representative,
		})
	}
	return rows
}
