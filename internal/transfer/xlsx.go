package transfer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Reasonofmoon/tuition-automation/internal/core"
)

const paymentSheetName = "납부내역"

var paymentXLSXHeader = []interface{}{
	"name", "class", "base fee", "sibling discount", "individual discount",
	"book fee", "total", "status", "payment date", "notes",
}

// XLSXFilename builds the conventional export name,
// e.g. "문학원_2024년11월_수강료.xlsx".
func XLSXFilename(academyName string, ym core.YearMonth) string {
	return fmt.Sprintf("%s_%d년%02d월_수강료.xlsx", academyName, ym.Year, ym.Month)
}

// WritePaymentsXLSX writes one sheet with a row per currently
// registered student, using the month's ledger record or unpaid
// defaults when the month was never generated for that student.
func WritePaymentsXLSX(w io.Writer, students []core.Student, ledger []core.PaymentRecord) error {
	byStudent := make(map[string]core.PaymentRecord, len(ledger))
	for _, rec := range ledger {
		byStudent[rec.StudentID] = rec
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", paymentSheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(paymentSheetName, "A1", &paymentXLSXHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, s := range students {
		p, ok := byStudent[s.ID]
		if !ok {
			p = core.PaymentRecord{StudentID: s.ID, Status: core.StatusUnpaid}
		}
		total := s.BaseFee - p.SiblingDiscount - p.IndividualDiscount + p.BookFee
		row := []interface{}{
			s.Name,
			s.ClassName,
			s.BaseFee.Won(),
			p.SiblingDiscount.Won(),
			p.IndividualDiscount.Won(),
			p.BookFee.Won(),
			total.Won(),
			string(p.Status.OrUnpaid()),
			p.PaymentDate,
			p.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(paymentSheetName, cell, &row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
