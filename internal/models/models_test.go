package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateJSONRoundTrip(t *testing.T) {
	date := DateOf(2026, time.January, 5)

	b, err := json.Marshal(date)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2026-01-05"` {
		t.Errorf("expected \"2026-01-05\", got %s", b)
	}

	var parsed Date
	if err := json.Unmarshal(b, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !parsed.Equal(date) {
		t.Errorf("round trip changed the date: %s", parsed)
	}
}

func TestDateUnmarshalRejectsBadFormat(t *testing.T) {
	for _, input := range []string{`"05-01-2026"`, `"2026-1-5"`, `"tomorrow"`, `""`} {
		var d Date
		if err := json.Unmarshal([]byte(input), &d); err == nil {
			t.Errorf("expected error for %s", input)
		}
	}
}

func TestDateEqualIgnoresTimeOfDay(t *testing.T) {
	a := Date{time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)}
	b := Date{time.Date(2026, time.January, 5, 23, 59, 59, 0, time.UTC)}
	if !a.Equal(b) {
		t.Error("same calendar day must compare equal")
	}
	if a.Equal(DateOf(2026, time.January, 6)) {
		t.Error("different days must not compare equal")
	}
}

func TestDateScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
	}{
		{name: "time.Time", src: time.Date(2026, time.January, 5, 14, 30, 0, 0, time.Local)},
		{name: "string", src: "2026-01-05"},
		{name: "bytes", src: []byte("2026-01-05")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := d.Scan(tt.src); err != nil {
				t.Fatalf("scan: %v", err)
			}
			if !d.Equal(DateOf(2026, time.January, 5)) {
				t.Errorf("expected 2026-01-05, got %s", d)
			}
		})
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Error("expected error for unsupported source type")
	}
}

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       PageRequest
		expected PageRequest
	}{
		{
			name:     "defaults",
			in:       PageRequest{},
			expected: PageRequest{Page: 0, Size: 10, SortDir: SortDesc},
		},
		{
			name:     "negative page clamps to zero",
			in:       PageRequest{Page: -3, Size: 20},
			expected: PageRequest{Page: 0, Size: 20, SortDir: SortDesc},
		},
		{
			name:     "oversized page clamps to max",
			in:       PageRequest{Size: 5000},
			expected: PageRequest{Size: 100, SortDir: SortDesc},
		},
		{
			name:     "asc is preserved",
			in:       PageRequest{Size: 10, SortDir: SortAsc},
			expected: PageRequest{Size: 10, SortDir: SortAsc},
		},
		{
			name:     "unknown direction falls back to desc",
			in:       PageRequest{Size: 10, SortDir: "sideways"},
			expected: PageRequest{Size: 10, SortDir: SortDesc},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Page != tt.expected.Page || got.Size != tt.expected.Size || got.SortDir != tt.expected.SortDir {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestPrincipalIsAdmin(t *testing.T) {
	if (Principal{Role: RoleUser}).IsAdmin() {
		t.Error("USER must not be admin")
	}
	if !(Principal{Role: RoleAdmin}).IsAdmin() {
		t.Error("ADMIN must be admin")
	}
}
