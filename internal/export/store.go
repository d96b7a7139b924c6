package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrArtifactNotFound = errors.New("export: artifact not found")

// ArtifactStore holds finished export files in Redis until the client
// fetches them. Artifacts expire after the configured TTL; a fetch after
// expiry is indistinguishable from a fetch of an id that never existed.
type ArtifactStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewArtifactStore(client *redis.Client, ttl time.Duration) *ArtifactStore {
	return &ArtifactStore{client: client, ttl: ttl}
}

func artifactKey(id string) string {
	return "export:artifact:" + id
}

// NewArtifactID mints an id for an artifact before it exists, so a caller
// can hand it out and fill it in later.
func NewArtifactID() string {
	return uuid.NewString()
}

// Put stores the file under the given artifact id.
func (s *ArtifactStore) Put(ctx context.Context, id string, f *File) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("export: marshal artifact: %w", err)
	}
	if err := s.client.Set(ctx, artifactKey(id), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("export: store artifact: %w", err)
	}
	return nil
}

// Get fetches a stored artifact by id.
func (s *ArtifactStore) Get(ctx context.Context, id string) (*File, error) {
	payload, err := s.client.Get(ctx, artifactKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("export: fetch artifact: %w", err)
	}
	var f File
	if err := json.Unmarshal(payload, &f); err != nil {
		return nil, fmt.Errorf("export: unmarshal artifact: %w", err)
	}
	return &f, nil
}
