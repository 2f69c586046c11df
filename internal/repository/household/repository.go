package household

import (
	"context"
	"errors"
)

// ErrTransient marks store failures worth retrying (throttling, timeouts,
// dropped connections). Backends wrap the driver error with it.
var ErrTransient = errors.New("transient store failure")

// Store persists household member rows in a partitioned key-value layout:
// the household id is the partition key and Row.MemberKey the sort key.
type Store interface {
	// BatchWrite upserts rows under partitionKey. Rows the store did not
	// accept are returned; an empty result means every row is durable.
	BatchWrite(ctx context.Context, partitionKey string, rows []Row) ([]Row, error)
	// Query returns every row under partitionKey. No rows means no household.
	Query(ctx context.Context, partitionKey string) ([]Row, error)
	// BatchDelete removes the given members. Keys the store did not accept
	// are returned.
	BatchDelete(ctx context.Context, partitionKey string, memberKeys []string) ([]string, error)
	// MaxBatchSize is the largest number of rows a single batch call accepts.
	MaxBatchSize() int
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
