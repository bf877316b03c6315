// Package transfer moves students and ledgers across the file
// boundary: CSV import/export and the monthly spreadsheet.
package transfer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/Reasonofmoon/tuition-automation/internal/core"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// studentCSVHeader is the fixed export column order. Import is
// positional and ignores whatever header the file carries.
var studentCSVHeader = []string{
	"name", "class", "baseFee", "siblingGroup", "phone", "registrationDate", "notes",
}

// DecodeText decodes raw CSV bytes. A UTF-8 BOM wins; otherwise the
// bytes are assumed to be legacy EUC-KR, falling back to UTF-8 when
// that decode mangles the input. Spreadsheet apps on Korean Windows
// still emit CP949 CSV, hence the dance.
func DecodeText(raw []byte) string {
	if bytes.HasPrefix(raw, utf8BOM) {
		return string(raw[len(utf8BOM):])
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), korean.EUCKR.NewDecoder()))
	if err != nil || bytes.ContainsRune(decoded, '�') {
		return string(raw)
	}
	return string(decoded)
}

// ParseStudentsCSV reads a students CSV. The first line is a header
// and is discarded; each following row maps positionally to
// name, className, baseFee, siblingGroup, phone, registrationDate,
// notes. Rows with fewer than 3 fields or a blank name are skipped,
// and an unparseable fee coerces to zero.
func ParseStudentsCSV(r io.Reader) ([]core.Student, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	cr := csv.NewReader(strings.NewReader(DecodeText(raw)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) > 0 {
		rows = rows[1:] // header
	}

	var students []core.Student
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		students = append(students, core.Student{
			Name:             name,
			ClassName:        strings.TrimSpace(row[1]),
			BaseFee:          core.CoerceAmount(row[2]),
			SiblingGroup:     field(row, 3),
			Phone:            field(row, 4),
			RegistrationDate: field(row, 5),
			Notes:            field(row, 6),
		})
	}
	return students, nil
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// WriteStudentsCSV writes the student collection with the fixed
// header, UTF-8 with BOM so spreadsheet apps detect the encoding.
// Fields are properly quoted; a comma in a note no longer corrupts
// the row.
func WriteStudentsCSV(w io.Writer, students []core.Student) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(studentCSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range students {
		row := []string{
			s.Name,
			s.ClassName,
			strconv.FormatInt(s.BaseFee.Won(), 10),
			s.SiblingGroup,
			s.Phone,
			s.RegistrationDate,
			s.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
