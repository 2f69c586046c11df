package domain

import "strings"

// Contact is how a household member is reached. The only cases are Email and SMS.
type Contact interface {
	// Kind is the stable discriminator persisted with the contact.
	Kind() string
	// Address returns the payload (email address or phone number).
	Address() string
	isContact()
}

const (
	ContactKindEmail = "email"
	ContactKindSMS   = "sms"
)

// Email is a contact reached by email.
type Email struct {
	Value string
}

// SMS is a contact reached by text message.
type SMS struct {
	Value string
}

func (Email) Kind() string      { return ContactKindEmail }
func (e Email) Address() string { return e.Value }
func (Email) isContact()        {}

func (SMS) Kind() string      { return ContactKindSMS }
func (s SMS) Address() string { return s.Value }
func (SMS) isContact()        {}

// NewContact builds a Contact from its persisted discriminator and payload.
func NewContact(kind, value string) (Contact, error) {
	value = strings.TrimSpace(value)
	var c Contact
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case ContactKindEmail:
		c = Email{Value: value}
	case ContactKindSMS:
		c = SMS{Value: value}
	default:
		return nil, Invalid("contact.type", "unknown contact type "+quote(kind))
	}
	if err := validateContact(c); err != nil {
		return nil, err
	}
	return c, nil
}

func validateContact(c Contact) error {
	if c == nil {
		return Invalid("contact", "required")
	}
	if strings.TrimSpace(c.Address()) == "" {
		return Invalid("contact.value", "required")
	}
	return nil
}

func quote(s string) string {
	return "\"" + s + "\""
}
