package viewcount

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{-5, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{1200, "1.2K"},
		{1299, "1.2K"},
		{999_999, "999.9K"},
		{1_000_000, "1.0M"},
		{2_350_000, "2.3M"},
		{1_000_000_000, "1.0B"},
		{12_500_000_000, "12.5B"},
	}
	for _, tc := range cases {
		if got := Format(tc.in); got != tc.want {
			t.Errorf("Format(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"  ", 0},
		{"0", 0},
		{"900", 900},
		{"1.2K", 1200},
		{"1.2k", 1200},
		{" 2.3M ", 2_300_000},
		{"1B", 1_000_000_000},
		{"10K", 10_000},
		{"999.9K", 999_900},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, in := range []string{"abc", "-5", "1.2.3K", "K", ".5K", "1e3", "12KB", "5."} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalid) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalid", in, err)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, in := range []string{"0", "42", "1000", "1.25K", "1.2k", "3.99M", "7b", "123456789"} {
		once, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", in, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", once, err)
		}
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestRoundTripStaysWithinDisplayUnit(t *testing.T) {
	for _, n := range []int64{0, 1, 999, 1000, 1001, 1299, 54_321, 999_999, 1_234_567, 9_876_543_210} {
		back, err := Parse(Format(n))
		if err != nil {
			t.Fatalf("Parse(Format(%d)): %v", n, err)
		}
		if back > n {
			t.Errorf("Parse(Format(%d)) = %d, must not exceed the original", n, back)
		}
		if Format(back) != Format(n) {
			t.Errorf("Format drifted for %d: %q vs %q", n, Format(back), Format(n))
		}
	}
}

func TestFormattedOrderingFollowsNumericValue(t *testing.T) {
	a, _ := Parse("1.2K")
	b, _ := Parse("900")
	if a <= b {
		t.Fatalf("expected 1.2K (%d) > 900 (%d)", a, b)
	}
}
