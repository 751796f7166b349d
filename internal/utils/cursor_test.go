package utils

import (
	"errors"
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2025, 8, 14, 10, 30, 0, 0, time.UTC)

	enc, err := EncodeCursor(at, "b7d3c3f4-1111-4a4a-9c9c-000000000001")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := DecodeCursor(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.At.Equal(at) || got.ID != "b7d3c3f4-1111-4a4a-9c9c-000000000001" {
		t.Fatalf("unexpected cursor %+v", got)
	}
}

func TestDecodeCursor_Rejects(t *testing.T) {
	zero, _ := EncodeCursor(time.Time{}, "b7d3c3f4-1111-4a4a-9c9c-000000000001")
	badID, _ := EncodeCursor(time.Date(2025, 8, 14, 10, 30, 0, 0, time.UTC), "not-a-uuid")
	noID, _ := EncodeCursor(time.Date(2025, 8, 14, 10, 30, 0, 0, time.UTC), "")

	for _, in := range []string{"", "%%%", "bm90LWpzb24", zero, badID, noID} {
		if _, err := DecodeCursor(in); !errors.Is(err, ErrInvalidCursor) {
			t.Fatalf("%q: expected ErrInvalidCursor, got %v", in, err)
		}
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 20}, {-3, 20}, {5, 5}, {500, 100},
	}
	for _, c := range cases {
		if got := ClampLimit(c.in, 20, 100); got != c.want {
			t.Fatalf("ClampLimit(%d): got %d want %d", c.in, got, c.want)
		}
	}
}
