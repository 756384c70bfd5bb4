// Package gcs keeps the state blob as a JSON object in a Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/dvloznov/smartbudget/internal/domain"
	"github.com/dvloznov/smartbudget/internal/persistence"
)

// ErrObjectNotFound is returned by an ObjectStore when the object is absent.
var ErrObjectNotFound = errors.New("object not found")

// ObjectStore reads and writes whole objects in a single bucket.
type ObjectStore interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// Store is a persistence.Gateway that stores the blob under
// <prefix>/<StorageKey>.json.
type Store struct {
	objects ObjectStore
	name    string
	closer  io.Closer
}

// ParseURI splits gs://bucket/some/prefix into bucket and prefix.
func ParseURI(uri string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	trimmed := strings.Trim(strings.TrimPrefix(uri, "gs://"), "/")
	parts := strings.SplitN(trimmed, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no bucket): %s", uri)
	}
	if len(parts) == 2 {
		prefix = parts[1]
	}
	return parts[0], prefix, nil
}

// ObjectName returns the object the state blob is stored under.
func ObjectName(prefix string) string {
	return path.Join(prefix, persistence.StorageKey+".json")
}

// Open creates a storage client for uri (gs://bucket[/prefix]). Without
// options it uses Application Default Credentials.
func Open(ctx context.Context, uri string, opts ...option.ClientOption) (*Store, error) {
	bucket, prefix, err := ParseURI(uri)
	if err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("Open: create storage client: %w", err)
	}

	s := NewStore(&bucketStore{bkt: client.Bucket(bucket)}, prefix)
	s.closer = client
	return s, nil
}

// NewStore builds a Store over any ObjectStore.
func NewStore(objects ObjectStore, prefix string) *Store {
	return &Store{objects: objects, name: ObjectName(prefix)}
}

// Close releases the storage client, if Open created one.
func (s *Store) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// LoadState implements persistence.Gateway.
func (s *Store) LoadState(ctx context.Context) (*domain.PersistedState, error) {
	data, err := s.objects.Read(ctx, s.name)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LoadState: %w", err)
	}
	state, err := persistence.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("LoadState: %w", err)
	}
	return state, nil
}

// SaveState implements persistence.Gateway.
func (s *Store) SaveState(ctx context.Context, state domain.PersistedState) error {
	data, err := persistence.Encode(state)
	if err != nil {
		return fmt.Errorf("SaveState: %w", err)
	}
	if err := s.objects.Write(ctx, s.name, data); err != nil {
		return fmt.Errorf("SaveState: %w", err)
	}
	return nil
}

type bucketStore struct {
	bkt *storage.BucketHandle
}

func (b *bucketStore) Read(ctx context.Context, name string) ([]byte, error) {
	r, err := b.bkt.Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open GCS object reader %s: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read GCS object %s: %w", name, err)
	}
	return data, nil
}

func (b *bucketStore) Write(ctx context.Context, name string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := b.bkt.Object(name).NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write GCS object %s: %w", name, err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize GCS object %s: %w", name, err)
	}
	return nil
}

var (
	_ persistence.Gateway = (*Store)(nil)
	_ ObjectStore         = (*bucketStore)(nil)
)
