package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr bool
	}{
		{name: "plain decimal", in: "12.34", want: 1234},
		{name: "comma separator", in: "12,34", want: 1234},
		{name: "integer", in: "100", want: 10000},
		{name: "single fraction digit", in: "5.5", want: 550},
		{name: "third digit rounds down", in: "12.344", want: 1234},
		{name: "third digit rounds up", in: "12.345", want: 1235},
		{name: "leading dot", in: ".50", want: 50},
		{name: "whitespace trimmed", in: " 7.00 ", want: 700},
		{name: "empty", in: "", wantErr: true},
		{name: "zero", in: "0", wantErr: true},
		{name: "zero decimal", in: "0.00", wantErr: true},
		{name: "negative", in: "-5", wantErr: true},
		{name: "explicit plus", in: "+5", wantErr: true},
		{name: "letters", in: "abc", wantErr: true},
		{name: "two dots", in: "1.2.3", wantErr: true},
		{name: "largest representable", in: "92233720368547758.07", want: 1<<63 - 1},
		{name: "fraction past int64 range", in: "92233720368547758.08", wantErr: true},
		{name: "integer past int64 range", in: "92233720368547759", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) = %d, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{100, "1.00"},
		{5, "0.05"},
		{0, "0.00"},
		{-1250, "-12.50"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(Money{Cents: 1234})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "12.34" {
		t.Fatalf("Marshal = %s, want 12.34", data)
	}

	var m Money
	if err := json.Unmarshal([]byte("100"), &m); err != nil {
		t.Fatalf("Unmarshal number: %v", err)
	}
	if m.Cents != 10000 {
		t.Errorf("Unmarshal(100) = %d cents, want 10000", m.Cents)
	}

	// Zero and negative numbers parse; integrity validation rejects them later.
	if err := json.Unmarshal([]byte("0"), &m); err != nil {
		t.Fatalf("Unmarshal zero: %v", err)
	}
	if m.Cents != 0 {
		t.Errorf("Unmarshal(0) = %d cents, want 0", m.Cents)
	}
	if err := json.Unmarshal([]byte("-3.50"), &m); err != nil {
		t.Fatalf("Unmarshal negative: %v", err)
	}
	if m.Cents != -350 {
		t.Errorf("Unmarshal(-3.50) = %d cents, want -350", m.Cents)
	}

	// Non-numeric amounts must fail parsing, not silently zero.
	if err := json.Unmarshal([]byte(`"12.34"`), &m); err == nil {
		t.Error("Unmarshal of string amount should fail")
	}

	// Amounts past the int64 cent range must fail instead of wrapping.
	if err := json.Unmarshal([]byte("92233720368547758.08"), &m); err == nil {
		t.Error("Unmarshal of out-of-range amount should fail")
	}
}

func TestMoney_AddSub(t *testing.T) {
	a := Money{Cents: 10000}
	b := Money{Cents: 5000}
	if got := a.Add(b).Cents; got != 15000 {
		t.Errorf("Add = %d, want 15000", got)
	}
	if got := b.Sub(a).Cents; got != -5000 {
		t.Errorf("Sub = %d, want -5000", got)
	}
}
