package transfer

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/Reasonofmoon/tuition-automation/internal/core"
)

func TestDecodeTextStripsBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name,class\n김민준,수학A")...)
	got := DecodeText(raw)
	if strings.HasPrefix(got, "\uFEFF") {
		t.Fatalf("BOM not stripped: %q", got)
	}
	if !strings.Contains(got, "김민준") {
		t.Fatalf("BOM-prefixed UTF-8 mangled: %q", got)
	}
}

func TestDecodeTextEUCKR(t *testing.T) {
	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte("이름,반\n김민준,수학A"))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	got := DecodeText(encoded)
	if !strings.Contains(got, "김민준") {
		t.Fatalf("EUC-KR not decoded: %q", got)
	}
}

func TestDecodeTextFallsBackToUTF8(t *testing.T) {
	// Plain UTF-8 Korean without a BOM is not valid EUC-KR; the decoder
	// mangles it and the original bytes must win.
	raw := []byte("이름,반\n김민준,수학A")
	got := DecodeText(raw)
	if !strings.Contains(got, "김민준") {
		t.Fatalf("UTF-8 fallback failed: %q", got)
	}
}

func TestParseStudentsCSV(t *testing.T) {
	in := strings.Join([]string{
		"name,class,baseFee,siblingGroup,phone,registrationDate,notes",
		"김민준,수학A,150000,fam1,010-1234-5678,2024-03-02,첫째",
		"김서연,수학A,120000,fam1,,,",
		"박지호,영어B,abc",
		",수학A,100000",
		"too,short",
		"이하늘,영어B,100000",
	}, "\n")

	students, err := ParseStudentsCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(students) != 4 {
		t.Fatalf("expected 4 students, got %d: %+v", len(students), students)
	}
	first := students[0]
	if first.Name != "김민준" || first.ClassName != "수학A" || first.BaseFee != 150000 {
		t.Fatalf("unexpected first row: %+v", first)
	}
	if first.SiblingGroup != "fam1" || first.Phone != "010-1234-5678" || first.Notes != "첫째" {
		t.Fatalf("optional fields lost: %+v", first)
	}
	// Unparseable fee coerces to zero instead of dropping the row.
	if students[2].Name != "박지호" || students[2].BaseFee != 0 {
		t.Fatalf("coercion row wrong: %+v", students[2])
	}
	if students[3].SiblingGroup != "" || students[3].Phone != "" {
		t.Fatalf("missing trailing fields should be empty: %+v", students[3])
	}
}

func TestParseStudentsCSVHeaderOnly(t *testing.T) {
	students, err := ParseStudentsCSV(strings.NewReader("name,class,baseFee\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(students) != 0 {
		t.Fatalf("expected no students, got %+v", students)
	}
}

func TestWriteStudentsCSVRoundTrip(t *testing.T) {
	in := []core.Student{
		{Name: "김민준", ClassName: "수학A", BaseFee: 150000, SiblingGroup: "fam1",
			Phone: "010-1234-5678", RegistrationDate: "2024-03-02", Notes: "메모, 쉼표 포함"},
		{Name: "이하늘", ClassName: "영어B", BaseFee: 100000},
	}

	var buf bytes.Buffer
	if err := WriteStudentsCSV(&buf, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw := buf.Bytes()
	if !bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("export missing UTF-8 BOM")
	}

	out, err := ParseStudentsCSV(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("round trip lost rows: %d != %d", len(out), len(in))
	}
	for i := range in {
		if out[i].Name != in[i].Name || out[i].BaseFee != in[i].BaseFee ||
			out[i].Notes != in[i].Notes || out[i].SiblingGroup != in[i].SiblingGroup {
			t.Fatalf("row %d mismatch: %+v != %+v", i, out[i], in[i])
		}
	}
}
