package cursor

import (
	"encoding/base64"
	"errors"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	for _, offset := range []int64{0, 1, 42, 1 << 40} {
		got, err := Decode(Encode(offset))
		if err != nil {
			t.Fatalf("unexpected error for %d: %v", offset, err)
		}
		if got != offset {
			t.Errorf("expected %d, got %d", offset, got)
		}
	}
}

func TestDecode_Invalid(t *testing.T) {
	enc := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "!!!"},
		{"missing prefix", enc("offset:3")},
		{"not a number", enc("cursor:abc")},
		{"negative", enc("cursor:-1")},
		{"empty", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.cursor)
			var dErr *DecodeError
			if !errors.As(err, &dErr) {
				t.Fatalf("expected *DecodeError, got %v", err)
			}
			if dErr.Cursor != tc.cursor {
				t.Errorf("expected cursor %q, got %q", tc.cursor, dErr.Cursor)
			}
		})
	}
}
