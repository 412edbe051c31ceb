package ccf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func TestEncodeDescriptorLayout(t *testing.T) {
	buf, fieldPos, err := EncodeDescriptor(TypeInt32, "age")
	if err != nil {
		t.Fatalf("EncodeDescriptor failed: %v", err)
	}

	want := []byte{0, 3, 'a', 'g', 'e', 0, 0, 0, 0, 0, 0, 0, 0}
	if !bytes.Equal(buf, want) {
		t.Errorf("encoded = %v, want %v", buf, want)
	}
	if len(buf) != DescriptorSize("age") {
		t.Errorf("len = %d, want DescriptorSize %d", len(buf), DescriptorSize("age"))
	}
	if fieldPos != 5 {
		t.Errorf("fieldPos = %d, want 5", fieldPos)
	}
}

func TestEncodeDescriptorNameLimits(t *testing.T) {
	if _, _, err := EncodeDescriptor(TypeInt32, strings.Repeat("n", MaxNameLen)); err != nil {
		t.Errorf("255-byte name: unexpected error %v", err)
	}

	_, _, err := EncodeDescriptor(TypeInt32, strings.Repeat("n", MaxNameLen+1))
	if !errors.Is(err, ErrNameTooLong) {
		t.Errorf("256-byte name: err = %v, want ErrNameTooLong", err)
	}

	// 128 two-byte runes: 128 characters, 256 bytes.
	_, _, err = EncodeDescriptor(TypeInt32, strings.Repeat("é", 128))
	if !errors.Is(err, ErrNameTooLong) {
		t.Errorf("256-byte UTF-8 name: err = %v, want ErrNameTooLong", err)
	}

	_, _, err = EncodeDescriptor(TypeInt32, "bad\xff")
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("invalid UTF-8: err = %v, want ErrInvalidUTF8", err)
	}
}

func TestDescriptorRoundTrip(t *testing.T) {
	names := []string{"", "x", "salary", "größe", "列名", strings.Repeat("z", MaxNameLen)}
	for _, name := range names {
		buf, fieldPos, err := EncodeDescriptor(TypeInt32, name)
		if err != nil {
			t.Fatalf("EncodeDescriptor(%q) failed: %v", name, err)
		}
		binary.LittleEndian.PutUint64(buf[fieldPos:], 0x0102030405060708)

		d, err := DecodeDescriptor(bytes.NewReader(buf))
		if err != nil {
			t.Fatalf("DecodeDescriptor(%q) failed: %v", name, err)
		}
		if d.Name != name {
			t.Errorf("Name = %q, want %q", d.Name, name)
		}
		if d.Type != TypeInt32 {
			t.Errorf("Type = %v, want %v", d.Type, TypeInt32)
		}
		if d.Offset != 0x0102030405060708 {
			t.Errorf("Offset = %#x, want %#x", d.Offset, uint64(0x0102030405060708))
		}
	}
}

func TestDecodeDescriptorTruncated(t *testing.T) {
	buf, _, err := EncodeDescriptor(TypeInt32, "salary")
	if err != nil {
		t.Fatalf("EncodeDescriptor failed: %v", err)
	}
	for n := 0; n < len(buf); n++ {
		_, err := DecodeDescriptor(bytes.NewReader(buf[:n]))
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("DecodeDescriptor(%d bytes) = %v, want ErrTruncated", n, err)
		}
	}
}

func TestDecodeDescriptorInvalidUTF8(t *testing.T) {
	buf := []byte{0, 2, 0xC3, 0x28, 0, 0, 0, 0, 0, 0, 0, 0}
	_, err := DecodeDescriptor(bytes.NewReader(buf))
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("DecodeDescriptor = %v, want ErrInvalidUTF8", err)
	}
}

func TestDecodeDescriptorUnknownType(t *testing.T) {
	buf := []byte{7, 1, 'q', 40, 0, 0, 0, 0, 0, 0, 0}
	d, err := DecodeDescriptor(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("DecodeDescriptor failed: %v", err)
	}
	if d.Type != 7 || d.Name != "q" || d.Offset != 40 {
		t.Errorf("descriptor = %+v, want {7 q 40}", d)
	}
}

func TestPatchOffset(t *testing.T) {
	sink := &memSink{}
	if _, err := sink.Write(make([]byte, 32)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := PatchOffset(sink, 8, 0xAABBCCDD); err != nil {
		t.Fatalf("PatchOffset failed: %v", err)
	}
	if sink.pos != 32 {
		t.Errorf("position after patch = %d, want 32", sink.pos)
	}
	if got := binary.LittleEndian.Uint64(sink.buf[8:16]); got != 0xAABBCCDD {
		t.Errorf("patched value = %#x, want %#x", got, 0xAABBCCDD)
	}
	for i, b := range sink.buf {
		if (i < 8 || i >= 16) && b != 0 {
			t.Fatalf("byte %d = %d, want untouched 0", i, b)
		}
	}
}
