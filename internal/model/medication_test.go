package model

import "testing"

func TestExtractDosage(t *testing.T) {
	cases := []struct {
		description string
		want        string
	}{
		{"Take 2 pills after lunch", "2 pills"},
		{"Take 1 tablet in the morning", "1 tablet"},
		{"Prendre 2 comprimés", "2 comprimés"},
		{"Prendere 1 pastiglia", "1 pastiglia"},
		{"Aspirin 500mg", "500mg"},
		{"Sirop 10 ml au coucher", "10 ml"},
		{"Call the doctor", ""},
	}
	for _, tc := range cases {
		if got := ExtractDosage(tc.description); got != tc.want {
			t.Fatalf("ExtractDosage(%q) = %q, want %q", tc.description, got, tc.want)
		}
	}
}

func TestExtractDosageFirstPatternWins(t *testing.T) {
	// A pill count takes precedence over a strength suffix.
	got := ExtractDosage("2 pills of 500mg each")
	if got != "2 pills" {
		t.Fatalf("ExtractDosage = %q, want %q", got, "2 pills")
	}
}
