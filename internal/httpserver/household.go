package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"rsvp-households/internal/domain"
)

type householdHandler struct {
	svc HouseholdService
}

type createHouseholdRequest struct {
	ID     string          `json:"id"`
	People []personPayload `json:"people"`
}

type updateHouseholdRequest struct {
	People []personPayload `json:"people"`
}

type householdResponse struct {
	ID     string          `json:"id"`
	People []personPayload `json:"people"`
}

type personPayload struct {
	Name               string         `json:"name"`
	Contact            contactPayload `json:"contact"`
	Attending          *bool          `json:"attending"`
	DietaryRestriction string         `json:"dietaryRestriction,omitempty"`
	DishPreference     string         `json:"dishPreference,omitempty"`
}

type contactPayload struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (h *householdHandler) create(c *gin.Context) {
	var req createHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Invalid("body", err.Error()))
		return
	}
	people, err := toPeople(strings.TrimSpace(req.ID), req.People)
	if err != nil {
		writeError(c, err)
		return
	}
	created, err := h.svc.Create(c.Request.Context(), people)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toHouseholdResponse(householdIDOf(created, req.ID), created))
}

func (h *householdHandler) read(c *gin.Context) {
	id := c.Param("id")
	household, found, err := h.svc.Read(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !found {
		writeError(c, fmt.Errorf("household %q: %w", id, domain.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, toHouseholdResponse(household.ID, household.People))
}

func (h *householdHandler) update(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var req updateHouseholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Invalid("body", err.Error()))
		return
	}
	people, err := toPeople(id, req.People)
	if err != nil {
		writeError(c, err)
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), id, people)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHouseholdResponse(householdIDOf(updated, id), updated))
}

func toPeople(householdID string, payloads []personPayload) ([]domain.Person, error) {
	people := make([]domain.Person, 0, len(payloads))
	for _, p := range payloads {
		person, err := toPerson(householdID, p)
		if err != nil {
			return nil, err
		}
		people = append(people, person)
	}
	return people, nil
}

func toPerson(householdID string, p personPayload) (domain.Person, error) {
	contact, err := domain.NewContact(p.Contact.Type, p.Contact.Value)
	if err != nil {
		return domain.Person{}, err
	}

	dietary := domain.DietaryRestriction(strings.ToLower(strings.TrimSpace(p.DietaryRestriction)))
	dish := domain.DishPreference(strings.ToLower(strings.TrimSpace(p.DishPreference)))

	var rsvp domain.RSVP
	switch {
	case p.Attending == nil || !*p.Attending:
		if dietary != "" || dish != "" {
			return domain.Person{}, domain.Invalid("attending", "meal choices require attending to be true")
		}
		if p.Attending != nil {
			rsvp = domain.Declined{}
		}
	default:
		rsvp = domain.Attending{Dietary: dietary, Dish: dish}
	}

	return domain.Person{
		HouseholdID: householdID,
		Name:        p.Name,
		Contact:     contact,
		RSVP:        rsvp,
	}, nil
}

func toHouseholdResponse(id string, people []domain.Person) householdResponse {
	out := make([]personPayload, 0, len(people))
	for _, p := range people {
		out = append(out, toPersonPayload(p))
	}
	return householdResponse{ID: id, People: out}
}

func toPersonPayload(p domain.Person) personPayload {
	payload := personPayload{
		Name:      p.Name,
		Attending: domain.AttendanceOf(p.RSVP),
	}
	if p.Contact != nil {
		payload.Contact = contactPayload{Type: p.Contact.Kind(), Value: p.Contact.Address()}
	}
	if a, ok := p.RSVP.(domain.Attending); ok {
		payload.DietaryRestriction = string(a.Dietary)
		payload.DishPreference = string(a.Dish)
	}
	return payload
}

func householdIDOf(people []domain.Person, fallback string) string {
	if len(people) > 0 {
		return people[0].HouseholdID
	}
	return strings.TrimSpace(fallback)
}
