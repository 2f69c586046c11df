package domain

import "strings"

// Person is one invitee within a household.
type Person struct {
	HouseholdID string
	Name        string
	Contact     Contact
	RSVP        RSVP
}

// NewPerson builds a validated Person.
func NewPerson(householdID, name string, contact Contact, rsvp RSVP) (Person, error) {
	p := Person{
		HouseholdID: strings.TrimSpace(householdID),
		Name:        strings.TrimSpace(name),
		Contact:     contact,
		RSVP:        rsvp,
	}
	if err := p.Validate(); err != nil {
		return Person{}, err
	}
	return p, nil
}

// Validate checks the invariants every stored Person must satisfy.
func (p Person) Validate() error {
	if strings.TrimSpace(p.HouseholdID) == "" {
		return Invalid("householdId", "required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return Invalid("name", "required")
	}
	if err := validateContact(p.Contact); err != nil {
		return err
	}
	if a, ok := p.RSVP.(Attending); ok && !a.Dietary.Valid() {
		return Invalid("dietaryRestriction", "unknown restriction "+quote(string(a.Dietary)))
	}
	return nil
}

// WithHousehold returns a copy of p assigned to householdID.
func (p Person) WithHousehold(householdID string) Person {
	p.HouseholdID = householdID
	return p
}
