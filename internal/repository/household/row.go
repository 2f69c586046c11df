package household

// Row is the flat, store-native encoding of one household member.
type Row struct {
	HouseholdID  string `json:"household_id" db:"household_id" dynamodbav:"household_id"`
	MemberKey    string `json:"member_key" db:"member_key" dynamodbav:"member_key"`
	Position     int    `json:"position" db:"position" dynamodbav:"position"`
	Name         string `json:"name" db:"name" dynamodbav:"name"`
	ContactKind  string `json:"contact_kind" db:"contact_kind" dynamodbav:"contact_kind"`
	ContactValue string `json:"contact_value" db:"contact_value" dynamodbav:"contact_value"`
	RSVP         string `json:"rsvp,omitempty" db:"rsvp" dynamodbav:"rsvp,omitempty"`
	Dietary      string `json:"dietary,omitempty" db:"dietary" dynamodbav:"dietary,omitempty"`
	Dish         string `json:"dish,omitempty" db:"dish" dynamodbav:"dish,omitempty"`
}

const (
	rsvpYes = "yes"
	rsvpNo  = "no"
)
