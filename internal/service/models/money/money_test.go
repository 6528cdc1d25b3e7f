package money

import (
	"errors"
	"testing"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"99.99", 9999},
		{"5", 500},
		{"5.5", 550},
		{"0.01", 1},
		{"0", 0},
		{"-12.30", -1230},
		{" 19.99 ", 1999},
		{"1234567.89", 123456789},
	}

	for _, tc := range cases {
		got, err := ParseDecimal(tc.in)
		if err != nil {
			t.Errorf("ParseDecimal(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDecimal(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseDecimalInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1.999", ".50", "12.3.4", "1,50"} {
		if _, err := ParseDecimal(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseDecimal(%q): expected ErrInvalidAmount, got %v", in, err)
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{9999, "99.99"},
		{500, "5.00"},
		{1, "0.01"},
		{0, "0.00"},
		{-1230, "-12.30"},
	}

	for _, tc := range cases {
		if got := FormatCents(tc.in); got != tc.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 9999, 123456789} {
		parsed, err := ParseDecimal(FormatCents(cents))
		if err != nil {
			t.Fatalf("round trip %d: %v", cents, err)
		}
		if parsed != cents {
			t.Errorf("round trip %d: got %d", cents, parsed)
		}
	}
}
