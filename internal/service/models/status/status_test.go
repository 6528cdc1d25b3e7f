package status

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	for _, s := range All() {
		parsed, err := ParseStatus(s.String())
		if err != nil {
			t.Errorf("ParseStatus(%q): unexpected error: %v", s, err)
		}
		if parsed != s {
			t.Errorf("ParseStatus(%q) = %q", s, parsed)
		}
	}

	for _, in := range []string{"", "Pending", "shipped ", "unknown"} {
		if _, err := ParseStatus(in); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("ParseStatus(%q): expected ErrInvalidStatus, got %v", in, err)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusDelivered: true,
		StatusCancelled: true,
	}

	for _, s := range All() {
		if got := s.IsTerminal(); got != terminal[s] {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, got, terminal[s])
		}
	}
}

func TestTerminalOnlyPolicy(t *testing.T) {
	policy := TerminalOnlyPolicy{}

	// No ordering among non-terminal statuses: any direction is fine.
	if err := policy.Validate(StatusShipped, StatusConfirmed); err != nil {
		t.Errorf("shipped -> confirmed: unexpected error: %v", err)
	}
	if err := policy.Validate(StatusPending, StatusDelivered); err != nil {
		t.Errorf("pending -> delivered: unexpected error: %v", err)
	}

	for _, from := range []Status{StatusDelivered, StatusCancelled} {
		err := policy.Validate(from, StatusPending)
		var te *TransitionError
		if !errors.As(err, &te) {
			t.Fatalf("%s -> pending: expected TransitionError, got %v", from, err)
		}
		if te.From != from || te.To != StatusPending {
			t.Errorf("%s -> pending: wrong error fields: %+v", from, te)
		}
	}
}

func TestStrictForwardPolicy(t *testing.T) {
	policy := StrictForwardPolicy{}

	if err := policy.Validate(StatusPending, StatusConfirmed); err != nil {
		t.Errorf("pending -> confirmed: unexpected error: %v", err)
	}
	if err := policy.Validate(StatusShipped, StatusCancelled); err != nil {
		t.Errorf("shipped -> cancelled: unexpected error: %v", err)
	}
	if err := policy.Validate(StatusShipped, StatusConfirmed); err == nil {
		t.Error("shipped -> confirmed: expected rejection")
	}
	if err := policy.Validate(StatusDelivered, StatusCancelled); err == nil {
		t.Error("delivered -> cancelled: expected rejection")
	}
}
