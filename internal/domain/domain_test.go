package domain

import (
	"context"
	"errors"
	"testing"
)

func TestNewPerson_Validation(t *testing.T) {
	cases := []struct {
		name    string
		person  string
		contact Contact
		rsvp    RSVP
		field   string
	}{
		{"empty name", "  ", Email{Value: "a@example.com"}, nil, "name"},
		{"nil contact", "John", nil, nil, "contact"},
		{"empty email", "John", Email{Value: ""}, nil, "contact.value"},
		{"blank sms", "John", SMS{Value: "   "}, nil, "contact.value"},
		{"unknown dietary", "John", SMS{Value: "555"}, Attending{Dietary: "keto"}, "dietaryRestriction"},
	}
	for _, tc := range cases {
		_, err := NewPerson("h1", tc.person, tc.contact, tc.rsvp)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("%s: expected ValidationError, got %v", tc.name, err)
		}
		if vErr.Field != tc.field {
			t.Fatalf("%s: expected field %q, got %q", tc.name, tc.field, vErr.Field)
		}
	}
}

func TestNewPerson_RequiresHouseholdID(t *testing.T) {
	for _, id := range []string{"", "   "} {
		_, err := NewPerson(id, "John", Email{Value: "a@example.com"}, nil)
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.Field != "householdId" {
			t.Fatalf("id %q: expected householdId ValidationError, got %v", id, err)
		}
	}
}

func TestNewPerson_TrimsAndKeepsRSVP(t *testing.T) {
	p, err := NewPerson(" h1 ", " John ", Email{Value: "hello@example.com"}, Attending{Dietary: Vegan, Dish: Pizza})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Person{HouseholdID: "h1", Name: "John", Contact: Email{Value: "hello@example.com"}, RSVP: Attending{Dietary: Vegan, Dish: Pizza}}
	if p != want {
		t.Fatalf("got %+v, want %+v", p, want)
	}
}

func TestNewHousehold(t *testing.T) {
	john := Person{HouseholdID: "h1", Name: "John", Contact: Email{Value: "hello@example.com"}}
	sally := Person{HouseholdID: "h1", Name: "Sally", Contact: SMS{Value: "5555555555"}}

	if _, err := NewHousehold("h1", nil); !isValidation(err) {
		t.Fatalf("expected validation error for empty household, got %v", err)
	}
	if _, err := NewHousehold("h1", []Person{john, sally.WithHousehold("h2")}); !isValidation(err) {
		t.Fatalf("expected validation error for mismatched member, got %v", err)
	}
	h, err := NewHousehold("h1", []Person{john, sally})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.ID != "h1" || len(h.People) != 2 || h.People[1] != sally {
		t.Fatalf("unexpected household %+v", h)
	}
}

func TestNewContact(t *testing.T) {
	c, err := NewContact("SMS", " 5555555555 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != (SMS{Value: "5555555555"}) {
		t.Fatalf("unexpected contact %#v", c)
	}
	if _, err := NewContact("pigeon", "coop"); !isValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAttendanceOf(t *testing.T) {
	if AttendanceOf(nil) != nil {
		t.Fatalf("expected nil attendance for unanswered rsvp")
	}
	if got := AttendanceOf(Declined{}); got == nil || *got {
		t.Fatalf("expected false for declined")
	}
	if got := AttendanceOf(Attending{}); got == nil || !*got {
		t.Fatalf("expected true for attending")
	}
}

func TestMenu(t *testing.T) {
	m := ParseMenu(" Chicken, steak ,seabass,steak")
	if len(m) != 3 || !m.Contains("seabass") {
		t.Fatalf("unexpected menu %v", m)
	}
	if err := m.Validate(Pizza); !isValidation(err) {
		t.Fatalf("expected pizza rejected, got %v", err)
	}
	if err := m.Validate(""); err != nil {
		t.Fatalf("empty dish should be accepted: %v", err)
	}
	if got := ParseMenu(""); len(got) != len(DefaultMenu) {
		t.Fatalf("expected default menu, got %v", got)
	}
}

func TestContextError(t *testing.T) {
	err := ContextError(context.DeadlineExceeded)
	if !errors.Is(err, ErrTimeout) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("unexpected timeout chain: %v", err)
	}
	err = ContextError(context.Canceled)
	if !errors.Is(err, ErrCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("unexpected cancel chain: %v", err)
	}
	if ContextError(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

func isValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
