package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dd0wney/starry-habits/pkg/habits"
)

// Backend names accepted by Open
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
	BackendMemory   = "memory"
)

// Backends lists every supported backend name.
var Backends = []string{BackendFile, BackendPostgres, BackendS3, BackendMemory}

var (
	ErrStoreClosed    = errors.New("store is closed")
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrCorrupt        = errors.New("stored data is corrupt")
)

// Store persists the tracker state as a single document.
// Load returns an empty tracker when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (*habits.Data, error)
	Save(ctx context.Context, data *habits.Data) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend  string
	DataDir  string
	Compress bool

	DatabaseURL string
	Profile     string

	Bucket   string
	Key      string
	Region   string
	Endpoint string
}

// Open constructs the backend named in opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.DataDir, opts.Compress)
	case BackendPostgres:
		return NewPGStore(ctx, opts.DatabaseURL, opts.Profile)
	case BackendS3:
		return NewS3Store(ctx, S3Options{
			Bucket:   opts.Bucket,
			Key:      opts.Key,
			Region:   opts.Region,
			Endpoint: opts.Endpoint,
			Compress: opts.Compress,
		})
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
