package seed

import (
	"context"
	"testing"

	"rsvp-households/internal/domain"
	householdrepo "rsvp-households/internal/repository/household"
	householdsvc "rsvp-households/internal/service/household"
)

func TestApply_CreatesAndResetsDemoHousehold(t *testing.T) {
	ctx := context.Background()
	svc := householdsvc.New(householdrepo.NewMemory(0))

	if err := Apply(ctx, svc); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	changed := DemoPeople()
	changed[0].RSVP = domain.Attending{Dish: domain.Chicken}
	if _, err := svc.Update(ctx, DemoHouseholdID, changed); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := Apply(ctx, svc); err != nil {
		t.Fatalf("second apply: %v", err)
	}
	h, found, err := svc.Read(ctx, DemoHouseholdID)
	if err != nil || !found {
		t.Fatalf("read: found=%v err=%v", found, err)
	}
	want := DemoPeople()
	if len(h.People) != len(want) || h.People[0] != want[0] || h.People[1] != want[1] {
		t.Fatalf("expected seeded members, got %+v", h.People)
	}
}
