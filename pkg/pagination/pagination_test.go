package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 7: 7, MaxLimit + 10: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
	if got := LimitWithBuffer(5); got != 6 {
		t.Fatalf("LimitWithBuffer(5) = %d", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	want := Cursor{CreatedAt: time.Date(2024, 5, 1, 12, 30, 0, 123, time.UTC), ID: uuid.New()}
	got, err := ParseCursor(EncodeCursor(want))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || got.ID != want.ID {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if c, err := ParseCursor("  "); err != nil || c != nil {
		t.Fatalf("empty cursor should be nil, got %v %v", c, err)
	}
	for _, value := range []string{"!!!", "bm9waXBl", EncodeCursor(Cursor{})[:4]} {
		if _, err := ParseCursor(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}

func TestSplit(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	key := func(id uuid.UUID) Cursor { return Cursor{CreatedAt: time.Unix(0, 0), ID: id} }

	page, next := Split(ids, 2, key)
	if len(page) != 2 || next == "" {
		t.Fatalf("expected a full page with a cursor, got %d %q", len(page), next)
	}
	cursor, err := ParseCursor(next)
	if err != nil || cursor.ID != ids[1] {
		t.Fatalf("cursor should point at the last row of the page, got %+v %v", cursor, err)
	}

	page, next = Split(ids[:2], 2, key)
	if len(page) != 2 || next != "" {
		t.Fatalf("last page must not carry a cursor, got %q", next)
	}
}
