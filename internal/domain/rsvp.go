package domain

// RSVP is a member's answer. A nil RSVP means the member has not answered.
// The only cases are Declined and Attending.
type RSVP interface {
	isRSVP()
}

// Declined records that the member will not attend.
type Declined struct{}

// Attending records that the member will attend, with optional meal choices.
type Attending struct {
	Dietary DietaryRestriction
	Dish    DishPreference
}

func (Declined) isRSVP()  {}
func (Attending) isRSVP() {}

// AttendanceOf flattens an RSVP into the optional boolean used at the edges.
func AttendanceOf(r RSVP) *bool {
	var v bool
	switch r.(type) {
	case nil:
		return nil
	case Declined:
		v = false
	case Attending:
		v = true
	}
	return &v
}

// DietaryRestriction is a dietary need declared by an attending member.
// The zero value means none.
type DietaryRestriction string

const (
	Vegetarian  DietaryRestriction = "vegetarian"
	Vegan       DietaryRestriction = "vegan"
	Pescetarian DietaryRestriction = "pescetarian"
	GlutenFree  DietaryRestriction = "gluten_free"
	DairyFree   DietaryRestriction = "dairy_free"
)

// DietaryRestrictions lists every known restriction.
var DietaryRestrictions = []DietaryRestriction{Vegetarian, Vegan, Pescetarian, GlutenFree, DairyFree}

// Valid reports whether d is empty or a known restriction.
func (d DietaryRestriction) Valid() bool {
	if d == "" {
		return true
	}
	for _, known := range DietaryRestrictions {
		if d == known {
			return true
		}
	}
	return false
}

// DishPreference is a main course choice. The set of valid dishes comes from a Menu.
type DishPreference string

const (
	Chicken  DishPreference = "chicken"
	Steak    DishPreference = "steak"
	Pancakes DishPreference = "pancakes"
	Pizza    DishPreference = "pizza"
)
