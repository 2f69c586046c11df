package household

import (
	"context"
	"sync"
)

// DefaultMemoryBatchSize bounds batches for the in-memory store.
const DefaultMemoryBatchSize = 25

type memoryStore struct {
	mu         sync.RWMutex
	partitions map[string]map[string]Row
	batchSize  int
}

// NewMemory returns a Store kept in process memory. batchSize <= 0 uses
// DefaultMemoryBatchSize.
func NewMemory(batchSize int) Store {
	if batchSize <= 0 {
		batchSize = DefaultMemoryBatchSize
	}
	return &memoryStore{
		partitions: make(map[string]map[string]Row),
		batchSize:  batchSize,
	}
}

func (s *memoryStore) BatchWrite(ctx context.Context, partitionKey string, rows []Row) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	part := s.partitions[partitionKey]
	if part == nil {
		part = make(map[string]Row)
		s.partitions[partitionKey] = part
	}
	for _, r := range rows {
		part[r.MemberKey] = r
	}
	return nil, nil
}

func (s *memoryStore) Query(ctx context.Context, partitionKey string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	part := s.partitions[partitionKey]
	rows := make([]Row, 0, len(part))
	for _, r := range part {
		rows = append(rows, r)
	}
	SortRows(rows)
	return rows, nil
}

func (s *memoryStore) BatchDelete(ctx context.Context, partitionKey string, memberKeys []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	part := s.partitions[partitionKey]
	for _, k := range memberKeys {
		delete(part, k)
	}
	if len(part) == 0 {
		delete(s.partitions, partitionKey)
	}
	return nil, nil
}

func (s *memoryStore) MaxBatchSize() int {
	return s.batchSize
}

func (s *memoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}
