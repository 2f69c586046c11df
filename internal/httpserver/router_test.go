package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"rsvp-households/internal/domain"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type stubHouseholdService struct {
	created   []domain.Person
	createErr error
	household domain.Household
	found     bool
	readErr   error
	updateErr error

	gotCreate []domain.Person
	gotID     string
	gotUpdate []domain.Person
}

func (s *stubHouseholdService) Create(_ context.Context, people []domain.Person) ([]domain.Person, error) {
	s.gotCreate = people
	if s.createErr != nil {
		return nil, s.createErr
	}
	if s.created != nil {
		return s.created, nil
	}
	return people, nil
}

func (s *stubHouseholdService) Read(_ context.Context, id string) (domain.Household, bool, error) {
	s.gotID = id
	return s.household, s.found, s.readErr
}

func (s *stubHouseholdService) Update(_ context.Context, id string, people []domain.Person) ([]domain.Person, error) {
	s.gotID = id
	s.gotUpdate = people
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return people, nil
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if deps.Households == nil {
		deps.Households = &stubHouseholdService{}
	}
	router, err := buildRouter(zerolog.Nop(), deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func TestBuildRouter_RequiresService(t *testing.T) {
	if _, err := buildRouter(zerolog.Nop(), Deps{}); err == nil {
		t.Fatalf("expected error without household service")
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, Deps{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	cases := []struct {
		name  string
		store Deps
		want  int
	}{
		{"reachable", Deps{Store: stubPinger{}}, http.StatusOK},
		{"unreachable", Deps{Store: stubPinger{err: errors.New("down")}}, http.StatusServiceUnavailable},
		{"not configured", Deps{}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		router := newTestRouter(t, tc.store)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	router := newTestRouter(t, Deps{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	router := newTestRouter(t, Deps{AllowOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allow-origin header, got %q", got)
	}
}
