package ccf

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func TestWriteColumnInt32(t *testing.T) {
	var buf bytes.Buffer
	values := []int32{1, -1, math.MaxInt32, math.MinInt32}
	if err := WriteColumn(&buf, TypeInt32, values); err != nil {
		t.Fatalf("WriteColumn failed: %v", err)
	}

	want := []byte{
		1, 0, 0, 0,
		0xFF, 0xFF, 0xFF, 0xFF,
		0xFF, 0xFF, 0xFF, 0x7F,
		0, 0, 0, 0x80,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("encoded = %v, want %v", buf.Bytes(), want)
	}
}

func TestWriteColumnUnsupportedType(t *testing.T) {
	var buf bytes.Buffer
	err := WriteColumn(&buf, TypeTag(7), []int32{1, 2})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("WriteColumn = %v, want ErrUnsupportedType", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes for unsupported type, want 0", buf.Len())
	}
}

func TestReadColumn(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("padding!")
	if err := WriteColumn(&buf, TypeInt32, []int32{10, 20, 30}); err != nil {
		t.Fatalf("WriteColumn failed: %v", err)
	}
	r := bytes.NewReader(buf.Bytes())

	for pass := 0; pass < 2; pass++ {
		got, err := ReadColumn(r, TypeInt32, 3, 8)
		if err != nil {
			t.Fatalf("pass %d: ReadColumn failed: %v", pass, err)
		}
		if !equalValues(got, []int32{10, 20, 30}) {
			t.Errorf("pass %d: values = %v, want [10 20 30]", pass, got)
		}
	}
}

func TestReadColumnZeroRows(t *testing.T) {
	got, err := ReadColumn(bytes.NewReader(nil), TypeInt32, 0, 0)
	if err != nil {
		t.Fatalf("ReadColumn failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestReadColumnTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteColumn(&buf, TypeInt32, []int32{1, 2, 3}); err != nil {
		t.Fatalf("WriteColumn failed: %v", err)
	}
	full := buf.Bytes()

	for n := 0; n < len(full); n++ {
		_, err := ReadColumn(bytes.NewReader(full[:n]), TypeInt32, 3, 0)
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("ReadColumn(%d bytes) = %v, want ErrTruncated", n, err)
		}
	}

	_, err := ReadColumn(bytes.NewReader(full), TypeInt32, 3, 100)
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("ReadColumn(offset past end) = %v, want ErrTruncated", err)
	}
}

func TestReadColumnRowCountBeyondSource(t *testing.T) {
	src := bytes.NewReader([]byte{1, 0, 0, 0})

	values, err := ReadColumn(src, TypeInt32, math.MaxUint32, 0)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("ReadColumn = %v, want ErrTruncated", err)
	}
	if values != nil {
		t.Errorf("values = %v, want nil", values)
	}

	if _, err := ReadColumn(src, TypeInt32, 1, math.MaxUint64); !errors.Is(err, ErrTruncated) {
		t.Errorf("ReadColumn(max offset) = %v, want ErrTruncated", err)
	}
}

func TestReadColumnUnsupportedType(t *testing.T) {
	r := bytes.NewReader(make([]byte, 64))
	if _, err := r.Seek(5, io.SeekStart); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}

	values, err := ReadColumn(r, TypeTag(9), 4, 0)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("ReadColumn = %v, want ErrUnsupportedType", err)
	}
	if values != nil {
		t.Errorf("values = %v, want nil", values)
	}
	if pos, _ := r.Seek(0, io.SeekCurrent); pos != 5 {
		t.Errorf("position = %d, want 5 (untouched)", pos)
	}
}

func TestTypeRegistry(t *testing.T) {
	info, err := LookupType(TypeInt32)
	if err != nil {
		t.Fatalf("LookupType(int32) failed: %v", err)
	}
	if info.Width != 4 || info.Name != "int32" {
		t.Errorf("info = %+v, want int32 width 4", info)
	}

	tag, err := ParseTypeTag("int32")
	if err != nil || tag != TypeInt32 {
		t.Errorf("ParseTypeTag(int32) = %v, %v", tag, err)
	}
	if _, err := ParseTypeTag("float64"); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("ParseTypeTag(float64) = %v, want ErrUnsupportedType", err)
	}
	if got := TypeTag(7).String(); got != "unknown(7)" {
		t.Errorf("TypeTag(7).String() = %q, want %q", got, "unknown(7)")
	}

	size, err := BlockSize(TypeInt32, 3)
	if err != nil || size != 12 {
		t.Errorf("BlockSize(int32, 3) = %d, %v; want 12", size, err)
	}
}
