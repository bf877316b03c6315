package transfer

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/Reasonofmoon/tuition-automation/internal/core"
)

func TestXLSXFilename(t *testing.T) {
	got := XLSXFilename("문학원", core.YearMonth{Year: 2024, Month: 3})
	want := "문학원_2024년03월_수강료.xlsx"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWritePaymentsXLSX(t *testing.T) {
	students := []core.Student{
		{ID: "s1", Name: "김민준", ClassName: "수학A", BaseFee: 150000},
		{ID: "s2", Name: "이하늘", ClassName: "영어B", BaseFee: 100000},
	}
	ledger := []core.PaymentRecord{
		{StudentID: "s1", SiblingDiscount: 10000, IndividualDiscount: 5000, BookFee: 8000,
			Status: core.StatusPaid, PaymentDate: "2024-03-05", Notes: "교재 포함"},
	}

	var buf bytes.Buffer
	if err := WritePaymentsXLSX(&buf, students, ledger); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("납부내역")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "name" || rows[0][7] != "status" {
		t.Fatalf("unexpected header: %v", rows[0])
	}

	// Ledger-backed row recomputes the total from components.
	r1 := rows[1]
	if r1[0] != "김민준" || r1[6] != "143000" || r1[7] != "paid" || r1[8] != "2024-03-05" {
		t.Fatalf("unexpected first row: %v", r1)
	}

	// A student without a record exports with unpaid defaults.
	r2 := rows[2]
	if r2[0] != "이하늘" || r2[6] != "100000" || r2[7] != "unpaid" {
		t.Fatalf("unexpected second row: %v", r2)
	}
}
