package household

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"rsvp-households/internal/domain"
	householdrepo "rsvp-households/internal/repository/household"
)

// Service creates, reads and updates households against a partitioned store.
// It holds no per-household state; the store is the only serialization point.
type Service struct {
	store  householdrepo.Store
	menu   domain.Menu
	retry  RetryPolicy
	prune  bool
	newID  func() string
	logger zerolog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithMenu sets the dishes members may choose.
func WithMenu(m domain.Menu) Option {
	return func(s *Service) {
		if len(m) > 0 {
			s.menu = m
		}
	}
}

// WithRetryPolicy sets the bounds of the batch retry loop.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *Service) { s.retry = p.normalized() }
}

// WithPruneStaleMembers controls whether Update deletes members that are no
// longer part of the household. When disabled their rows stay in the store
// and keep appearing on reads.
func WithPruneStaleMembers(prune bool) Option {
	return func(s *Service) { s.prune = prune }
}

// WithIDGenerator overrides how new household ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger sets the logger used for retries and write summaries.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l.With().Str("component", "household-service").Logger() }
}

// New creates a Service with sane defaults.
func New(store householdrepo.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		menu:   domain.DefaultMenu,
		retry:  DefaultRetryPolicy,
		prune:  true,
		newID:  uuid.NewString,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new household. Members must share one household id; when
// none carries an id a fresh one is generated. A caller supplied id that
// already has members yields domain.ErrHouseholdExists and nothing is written. The accepted members are
// returned in input order, stamped with the household id.
func (s *Service) Create(ctx context.Context, people []domain.Person) ([]domain.Person, error) {
	if len(people) == 0 {
		return nil, domain.Invalid("people", "a household needs at least one person")
	}
	id, err := sharedHouseholdID(people)
	if err != nil {
		return nil, err
	}
	callerID := id != ""
	if !callerID {
		id = s.newID()
	}

	household, err := s.prepare(id, people)
	if err != nil {
		return nil, err
	}
	if callerID {
		if err := s.ensureAbsent(ctx, id); err != nil {
			return nil, err
		}
	}
	if err := s.write(ctx, household); err != nil {
		return nil, err
	}

	s.logger.Info().Str("household_id", id).Int("members", len(household.People)).Msg("household created")
	return household.People, nil
}

// Read returns the household stored under householdID. The boolean is false
// when no member rows exist. Any undecodable row fails the whole read.
func (s *Service) Read(ctx context.Context, householdID string) (domain.Household, bool, error) {
	householdID = strings.TrimSpace(householdID)
	if householdID == "" {
		return domain.Household{}, false, domain.Invalid("id", "required")
	}
	if err := ctx.Err(); err != nil {
		return domain.Household{}, false, domain.ContextError(err)
	}

	rows, err := s.store.Query(ctx, householdID)
	if err != nil {
		return domain.Household{}, false, s.queryError(ctx, err)
	}
	if len(rows) == 0 {
		return domain.Household{}, false, nil
	}

	householdrepo.SortRows(rows)
	people := make([]domain.Person, 0, len(rows))
	for _, row := range rows {
		p, err := householdrepo.DecodeRow(row)
		if err != nil {
			return domain.Household{}, false, err
		}
		people = append(people, p)
	}
	return domain.Household{ID: householdID, People: people}, true, nil
}

// Update replaces the members of an existing household. It never creates a
// household: a missing one yields domain.ErrHouseholdNotFound and nothing is
// written. Stale members are deleted after the new rows are durable unless
// pruning is disabled.
func (s *Service) Update(ctx context.Context, householdID string, people []domain.Person) ([]domain.Person, error) {
	householdID = strings.TrimSpace(householdID)
	if householdID == "" {
		return nil, domain.Invalid("id", "required")
	}
	if len(people) == 0 {
		return nil, domain.Invalid("people", "a household needs at least one person")
	}
	for _, p := range people {
		if memberID := strings.TrimSpace(p.HouseholdID); memberID != "" && memberID != householdID {
			return nil, domain.Invalid("people.householdId", "member \""+p.Name+"\" belongs to household \""+p.HouseholdID+"\"")
		}
	}
	household, err := s.prepare(householdID, people)
	if err != nil {
		return nil, err
	}

	current, found, err := s.Read(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrHouseholdNotFound
	}

	if err := s.write(ctx, household); err != nil {
		return nil, err
	}

	if s.prune {
		stale := staleMemberKeys(current.People, household.People)
		if err := s.remove(ctx, householdID, stale); err != nil {
			return nil, err
		}
	}

	s.logger.Info().Str("household_id", householdID).Int("members", len(household.People)).Msg("household updated")
	return household.People, nil
}

// prepare stamps id onto every member and validates the resulting household.
func (s *Service) prepare(id string, people []domain.Person) (domain.Household, error) {
	members := make([]domain.Person, len(people))
	seen := make(map[string]bool, len(people))
	for i, p := range people {
		p = p.WithHousehold(id)
		p.Name = strings.TrimSpace(p.Name)
		if err := p.Validate(); err != nil {
			return domain.Household{}, err
		}
		if a, ok := p.RSVP.(domain.Attending); ok {
			if err := s.menu.Validate(a.Dish); err != nil {
				return domain.Household{}, err
			}
		}
		key := householdrepo.MemberKey(p.Name)
		if seen[key] {
			return domain.Household{}, domain.Invalid("people.name", "duplicate member \""+p.Name+"\"")
		}
		seen[key] = true
		members[i] = p
	}
	return domain.NewHousehold(id, members)
}

// write issues the household rows in store-sized sub-batches. Sub-batches
// written before a failure are left in place.
func (s *Service) write(ctx context.Context, h domain.Household) error {
	rows := householdrepo.EncodeRows(h.People)
	batches := chunk(rows, s.store.MaxBatchSize())
	for i, batch := range batches {
		err := retryBatch(ctx, s, "batch write", h.ID, batch, func(ctx context.Context, pending []householdrepo.Row) ([]householdrepo.Row, error) {
			return s.store.BatchWrite(ctx, h.ID, pending)
		})
		if err != nil {
			if i > 0 {
				s.logger.Error().Err(err).Str("household_id", h.ID).
					Int("written_batches", i).Int("total_batches", len(batches)).
					Msg("household partially written")
			}
			return err
		}
	}
	return nil
}

func (s *Service) remove(ctx context.Context, householdID string, memberKeys []string) error {
	for _, batch := range chunk(memberKeys, s.store.MaxBatchSize()) {
		err := retryBatch(ctx, s, "batch delete", householdID, batch, func(ctx context.Context, pending []string) ([]string, error) {
			return s.store.BatchDelete(ctx, householdID, pending)
		})
		if err != nil {
			return err
		}
	}
	if len(memberKeys) > 0 {
		s.logger.Info().Str("household_id", householdID).Strs("members", memberKeys).Msg("stale members removed")
	}
	return nil
}

// ensureAbsent fails with domain.ErrHouseholdExists when householdID has rows.
func (s *Service) ensureAbsent(ctx context.Context, householdID string) error {
	if err := ctx.Err(); err != nil {
		return domain.ContextError(err)
	}
	rows, err := s.store.Query(ctx, householdID)
	if err != nil {
		return s.queryError(ctx, err)
	}
	if len(rows) > 0 {
		return fmt.Errorf("household %q: %w", householdID, domain.ErrHouseholdExists)
	}
	return nil
}

func (s *Service) queryError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.ContextError(ctxErr)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.ContextError(err)
	}
	var dErr *domain.DecodeError
	if errors.As(err, &dErr) {
		return err
	}
	return &domain.StoreError{Op: "query", Err: err}
}

// sharedHouseholdID returns the single id carried by people, or "" when none
// carries one. Mixed or conflicting ids are rejected.
func sharedHouseholdID(people []domain.Person) (string, error) {
	id := strings.TrimSpace(people[0].HouseholdID)
	for _, p := range people[1:] {
		if strings.TrimSpace(p.HouseholdID) != id {
			return "", domain.Invalid("people.householdId", "members must share a single household id")
		}
	}
	return id, nil
}

func staleMemberKeys(previous, next []domain.Person) []string {
	keep := make(map[string]bool, len(next))
	for _, p := range next {
		keep[householdrepo.MemberKey(p.Name)] = true
	}
	var stale []string
	for _, p := range previous {
		key := householdrepo.MemberKey(p.Name)
		if !keep[key] {
			stale = append(stale, key)
		}
	}
	return stale
}
