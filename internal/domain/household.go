package domain

import "strings"

// Household groups the people sharing one invitation. It is never stored as
// its own row; it is rebuilt from the member rows sharing its ID.
type Household struct {
	ID     string
	People []Person
}

// NewHousehold validates that people is non-empty, that every member is
// valid and that every member belongs to id.
func NewHousehold(id string, people []Person) (Household, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Household{}, Invalid("id", "required")
	}
	if len(people) == 0 {
		return Household{}, Invalid("people", "a household needs at least one person")
	}
	members := make([]Person, len(people))
	for i, p := range people {
		if p.HouseholdID != id {
			return Household{}, Invalid("people.householdId", "member "+quote(p.Name)+" belongs to household "+quote(p.HouseholdID))
		}
		if err := p.Validate(); err != nil {
			return Household{}, err
		}
		members[i] = p
	}
	return Household{ID: id, People: members}, nil
}
