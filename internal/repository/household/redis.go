package household

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"rsvp-households/internal/domain"
)

// DefaultRedisBatchSize bounds the commands queued in one pipeline.
const DefaultRedisBatchSize = 100

type redisStore struct {
	rdb       goredis.UniversalClient
	prefix    string
	batchSize int
	logger    zerolog.Logger
}

// NewRedis returns a Store keeping one hash per household, keyed
// "<prefix>:<household id>", with one JSON encoded row per member field.
func NewRedis(rdb goredis.UniversalClient, prefix string, batchSize int, logger zerolog.Logger) Store {
	if prefix == "" {
		prefix = "household"
	}
	if batchSize <= 0 {
		batchSize = DefaultRedisBatchSize
	}
	return &redisStore{
		rdb:       rdb,
		prefix:    prefix,
		batchSize: batchSize,
		logger:    logger.With().Str("component", "household-redis").Logger(),
	}
}

func (s *redisStore) key(partitionKey string) string {
	return s.prefix + ":" + partitionKey
}

func (s *redisStore) BatchWrite(ctx context.Context, partitionKey string, rows []Row) ([]Row, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	key := s.key(partitionKey)
	pipe := s.rdb.Pipeline()
	cmds := make([]*goredis.IntCmd, len(rows))
	for i, row := range rows {
		row.HouseholdID = partitionKey
		raw, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("marshal row %s/%s: %w", partitionKey, row.MemberKey, err)
		}
		cmds[i] = pipe.HSet(ctx, key, row.MemberKey, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil && !isRedisCmdErr(cmds) {
		return nil, classifyRedis(err)
	}

	var pending []Row
	for i, cmd := range cmds {
		if cmd.Err() != nil {
			pending = append(pending, rows[i])
		}
	}
	if len(pending) > 0 {
		s.logger.Debug().Str("household_id", partitionKey).Int("unaccepted", len(pending)).Msg("pipeline partially applied")
	}
	return pending, nil
}

func (s *redisStore) Query(ctx context.Context, partitionKey string) ([]Row, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key(partitionKey)).Result()
	if err != nil {
		return nil, classifyRedis(err)
	}
	rows := make([]Row, 0, len(fields))
	for memberKey, raw := range fields {
		var row Row
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return nil, &domain.DecodeError{HouseholdID: partitionKey, MemberKey: memberKey, Field: "payload", Reason: err.Error()}
		}
		rows = append(rows, row)
	}
	SortRows(rows)
	return rows, nil
}

func (s *redisStore) BatchDelete(ctx context.Context, partitionKey string, memberKeys []string) ([]string, error) {
	if len(memberKeys) == 0 {
		return nil, nil
	}
	if err := s.rdb.HDel(ctx, s.key(partitionKey), memberKeys...).Err(); err != nil {
		return nil, classifyRedis(err)
	}
	return nil, nil
}

func (s *redisStore) MaxBatchSize() int {
	return s.batchSize
}

func (s *redisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// isRedisCmdErr reports whether a pipeline error came from individual
// commands rather than the connection; those rows are reported as unaccepted.
func isRedisCmdErr(cmds []*goredis.IntCmd) bool {
	for _, cmd := range cmds {
		if err := cmd.Err(); err != nil {
			var rerr goredis.Error
			if !errors.As(err, &rerr) {
				return false
			}
		}
	}
	return true
}

func classifyRedis(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	var rerr goredis.Error
	if errors.As(err, &rerr) {
		for _, prefix := range []string{"LOADING", "TRYAGAIN", "BUSY", "CLUSTERDOWN"} {
			if strings.HasPrefix(rerr.Error(), prefix) {
				return fmt.Errorf("%w: %w", ErrTransient, err)
			}
		}
		return err
	}
	if errors.Is(err, goredis.ErrClosed) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}
