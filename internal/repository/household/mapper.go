package household

import (
	"sort"
	"strings"

	"rsvp-households/internal/domain"
)

// MemberKey derives the sort key for a member from their name.
func MemberKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// EncodeRow maps a person at the given household position to its row.
func EncodeRow(p domain.Person, position int) Row {
	row := Row{
		HouseholdID: p.HouseholdID,
		MemberKey:   MemberKey(p.Name),
		Position:    position,
		Name:        p.Name,
	}
	if p.Contact != nil {
		row.ContactKind = p.Contact.Kind()
		row.ContactValue = p.Contact.Address()
	}
	switch r := p.RSVP.(type) {
	case domain.Declined:
		row.RSVP = rsvpNo
	case domain.Attending:
		row.RSVP = rsvpYes
		row.Dietary = string(r.Dietary)
		row.Dish = string(r.Dish)
	}
	return row
}

// EncodeRows maps people in order.
func EncodeRows(people []domain.Person) []Row {
	rows := make([]Row, len(people))
	for i, p := range people {
		rows[i] = EncodeRow(p, i)
	}
	return rows
}

// DecodeRow maps a stored row back to a person.
func DecodeRow(row Row) (domain.Person, error) {
	fail := func(field, reason string) (domain.Person, error) {
		return domain.Person{}, &domain.DecodeError{
			HouseholdID: row.HouseholdID,
			MemberKey:   row.MemberKey,
			Field:       field,
			Reason:      reason,
		}
	}

	if row.HouseholdID == "" {
		return fail("household_id", "missing")
	}
	if row.MemberKey == "" {
		return fail("member_key", "missing")
	}
	if strings.TrimSpace(row.Name) == "" {
		return fail("name", "missing")
	}

	var contact domain.Contact
	switch row.ContactKind {
	case domain.ContactKindEmail:
		contact = domain.Email{Value: row.ContactValue}
	case domain.ContactKindSMS:
		contact = domain.SMS{Value: row.ContactValue}
	default:
		return fail("contact_kind", "unknown contact kind \""+row.ContactKind+"\"")
	}
	if strings.TrimSpace(row.ContactValue) == "" {
		return fail("contact_value", "missing")
	}

	var rsvp domain.RSVP
	switch row.RSVP {
	case "", rsvpNo:
		if row.Dietary != "" || row.Dish != "" {
			return fail("rsvp", "meal choices on a member who is not attending")
		}
		if row.RSVP == rsvpNo {
			rsvp = domain.Declined{}
		}
	case rsvpYes:
		dietary := domain.DietaryRestriction(row.Dietary)
		if !dietary.Valid() {
			return fail("dietary", "unknown restriction \""+row.Dietary+"\"")
		}
		rsvp = domain.Attending{Dietary: dietary, Dish: domain.DishPreference(row.Dish)}
	default:
		return fail("rsvp", "unknown value \""+row.RSVP+"\"")
	}

	return domain.Person{
		HouseholdID: row.HouseholdID,
		Name:        row.Name,
		Contact:     contact,
		RSVP:        rsvp,
	}, nil
}

// SortRows orders rows by household position, then member key.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Position != rows[j].Position {
			return rows[i].Position < rows[j].Position
		}
		return rows[i].MemberKey < rows[j].MemberKey
	})
}
