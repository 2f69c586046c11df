package seed

import (
	"context"
	"fmt"

	"rsvp-households/internal/domain"
)

// DemoHouseholdID is the id the demo household is stored under.
const DemoHouseholdID = "demo-household"

// HouseholdStore is the part of the household service seeding needs.
type HouseholdStore interface {
	Create(ctx context.Context, people []domain.Person) ([]domain.Person, error)
	Read(ctx context.Context, householdID string) (domain.Household, bool, error)
	Update(ctx context.Context, householdID string, people []domain.Person) ([]domain.Person, error)
}

// DemoPeople returns the members of the demo household.
func DemoPeople() []domain.Person {
	return []domain.Person{
		{HouseholdID: DemoHouseholdID, Name: "John", Contact: domain.Email{Value: "hello@example.com"}},
		{HouseholdID: DemoHouseholdID, Name: "Sally", Contact: domain.SMS{Value: "5555555555"}},
	}
}

// Apply stores the demo household for manual testing. Running it again
// resets the household to its seeded state.
func Apply(ctx context.Context, households HouseholdStore) error {
	_, found, err := households.Read(ctx, DemoHouseholdID)
	if err != nil {
		return fmt.Errorf("read demo household: %w", err)
	}
	if found {
		if _, err := households.Update(ctx, DemoHouseholdID, DemoPeople()); err != nil {
			return fmt.Errorf("reset demo household: %w", err)
		}
		return nil
	}
	if _, err := households.Create(ctx, DemoPeople()); err != nil {
		return fmt.Errorf("create demo household: %w", err)
	}
	return nil
}
