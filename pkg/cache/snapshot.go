package cache

import (
	"context"
	"encoding/json"

	"github.com/modstack/modstack/pkg/module"
)

// Snapshots stores scan snapshots, the record sets produced by one walk of
// a module tree, on top of a byte-level cache backend. Keys are derived
// with SnapshotKey so installations never collide.
type Snapshots struct {
	backend Cache
}

// NewSnapshots wraps a backend cache. A nil backend disables caching.
func NewSnapshots(backend Cache) *Snapshots {
	if backend == nil {
		backend = NewNullCache()
	}
	return &Snapshots{backend: backend}
}

// Load returns the cached record set for a module tree. A snapshot that no
// longer decodes is dropped and reported as a miss.
func (s *Snapshots) Load(ctx context.Context, root, manifestName string) ([]module.Record, bool, error) {
	key := SnapshotKey(root, manifestName)
	data, hit, err := s.backend.Get(ctx, key)
	if err != nil || !hit {
		return nil, false, err
	}

	var records []module.Record
	if err := json.Unmarshal(data, &records); err != nil {
		_ = s.backend.Delete(ctx, key)
		return nil, false, nil
	}
	return records, true, nil
}

// Save stores the record set for a module tree under the default TTL and
// returns the encoded snapshot size in bytes.
func (s *Snapshots) Save(ctx context.Context, root, manifestName string, records []module.Record) (int, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return 0, err
	}
	if err := s.backend.Set(ctx, SnapshotKey(root, manifestName), data, DefaultTTL); err != nil {
		return 0, err
	}
	return len(data), nil
}

// Delete drops the snapshot for a module tree. Deleting an absent snapshot
// is not an error.
func (s *Snapshots) Delete(ctx context.Context, root, manifestName string) error {
	return s.backend.Delete(ctx, SnapshotKey(root, manifestName))
}

// Close releases the backend.
func (s *Snapshots) Close() error {
	return s.backend.Close()
}
