package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"rsvp-households/internal/domain"
)

// DefaultConcurrency bounds how many households are created at once.
const DefaultConcurrency = 4

// HouseholdCreator stores a new household.
type HouseholdCreator interface {
	Create(ctx context.Context, people []domain.Person) ([]domain.Person, error)
}

// CSVImporter reads a guest list and creates one household per group of rows
// sharing the household column. Rows with a blank household column become
// single-member households with a generated id.
type CSVImporter struct {
	reader      *csv.Reader
	households  HouseholdCreator
	concurrency int
	logger      zerolog.Logger
}

// Result summarizes an import run.
type Result struct {
	Households int
	People     int
}

var requiredColumns = []string{"household", "name", "contact_type", "contact_value"}

func NewCSVImporter(r io.Reader, households HouseholdCreator, concurrency int, logger zerolog.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // optional trailing columns may be omitted
	csvr.TrimLeadingSpace = true
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &CSVImporter{
		reader:      csvr,
		households:  households,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "importer").Logger(),
	}
}

// Run parses every row first, then creates households concurrently. A
// malformed row aborts the import before anything is written; the first
// failed household cancels the remaining ones.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	groups, err := i.parse()
	if err != nil {
		return Result{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)

	var households, people atomic.Int64
	for _, grp := range groups {
		grp := grp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			created, err := i.households.Create(gctx, grp.people)
			if err != nil {
				return fmt.Errorf("create household %q (line %d): %w", grp.key, grp.line, err)
			}
			households.Add(1)
			people.Add(int64(len(created)))
			i.logger.Debug().Str("household_id", created[0].HouseholdID).Int("members", len(created)).Msg("household imported")
			return nil
		})
	}
	err = g.Wait()

	res := Result{Households: int(households.Load()), People: int(people.Load())}
	if err != nil {
		return res, err
	}
	i.logger.Info().Int("households", res.Households).Int("people", res.People).Msg("import finished")
	return res, nil
}

type group struct {
	key    string
	line   int
	people []domain.Person
}

func (i *CSVImporter) parse() ([]*group, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var (
		groups []*group
		byKey  = make(map[string]*group)
	)
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)
		if blankRecord(record) {
			continue
		}

		person, err := parseRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		key := person.HouseholdID
		if key == "" {
			groups = append(groups, &group{line: line, people: []domain.Person{person}})
			continue
		}
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key, line: line}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.people = append(g.people, person)
	}
	return groups, nil
}

func parseRow(record []string, index map[string]int) (domain.Person, error) {
	contact, err := domain.NewContact(pick(record, index, "contact_type"), pick(record, index, "contact_value"))
	if err != nil {
		return domain.Person{}, err
	}

	dietary := domain.DietaryRestriction(strings.ToLower(pick(record, index, "dietary")))
	dish := domain.DishPreference(strings.ToLower(pick(record, index, "dish")))

	var rsvp domain.RSVP
	switch raw := strings.ToLower(pick(record, index, "attending")); raw {
	case "":
	case "yes", "y":
		rsvp = domain.Attending{Dietary: dietary, Dish: dish}
	case "no", "n":
		rsvp = domain.Declined{}
	default:
		ok, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.Person{}, domain.Invalid("attending", "cannot parse "+strconv.Quote(raw))
		}
		if ok {
			rsvp = domain.Attending{Dietary: dietary, Dish: dish}
		} else {
			rsvp = domain.Declined{}
		}
	}
	if _, attending := rsvp.(domain.Attending); !attending && (dietary != "" || dish != "") {
		return domain.Person{}, domain.Invalid("attending", "meal choices require the guest to attend")
	}

	return domain.Person{
		HouseholdID: pick(record, index, "household"),
		Name:        pick(record, index, "name"),
		Contact:     contact,
		RSVP:        rsvp,
	}, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
