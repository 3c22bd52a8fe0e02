package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/logging"
	"github.com/dd0wney/starry-habits/pkg/metrics"
	dto "github.com/prometheus/client_model/go"
)

// fakeObjects is an in-memory ObjectAPI.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[key] = body
	f.types[key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestS3StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeObjects()
	store := NewS3StoreWithClient(fake, S3Options{Bucket: "sky", Compress: true})

	empty, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load of missing object failed: %v", err)
	}
	if len(empty.Habits) != 0 {
		t.Error("missing object should load as empty tracker")
	}

	want := sampleData(t)
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if fake.types["sky/"+DefaultObjectKey] != "application/octet-stream" {
		t.Errorf("content type = %q", fake.types["sky/"+DefaultObjectKey])
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertSameData(t, got, want)
}

func TestS3StoreSaveError(t *testing.T) {
	fake := newFakeObjects()
	fake.putErr = errors.New("access denied")
	store := NewS3StoreWithClient(fake, S3Options{Bucket: "sky", Key: "me.json"})

	err := store.Save(context.Background(), habits.NewData())
	if err == nil || !strings.Contains(err.Error(), "s3://sky/me.json") {
		t.Errorf("Save error = %v", err)
	}
}

func TestMemoryStoreIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := sampleData(t)

	if err := store.Save(ctx, data); err != nil {
		t.Fatal(err)
	}
	data.Habits[0].Name = "changed after save"

	loaded, _ := store.Load(ctx)
	if loaded.Habits[0].Name != "Read" {
		t.Errorf("store shares memory with caller: %q", loaded.Habits[0].Name)
	}
	loaded.Habits[0].Name = "changed after load"

	again, _ := store.Load(ctx)
	if again.Habits[0].Name != "Read" {
		t.Error("Load returned shared memory")
	}
	if store.Saves() != 1 {
		t.Errorf("Saves = %d, want 1", store.Saves())
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	mem, err := Open(ctx, Options{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("Open(memory) failed: %v", err)
	}
	if _, ok := mem.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T", mem)
	}

	file, err := Open(ctx, Options{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(default) failed: %v", err)
	}
	if _, ok := file.(*FileStore); !ok {
		t.Errorf("Open(default) = %T", file)
	}

	if _, err := Open(ctx, Options{Backend: "redis"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(redis) = %v", err)
	}
	if _, err := Open(ctx, Options{Backend: BackendPostgres}); err == nil {
		t.Error("postgres without URL should fail")
	}
}

func TestPGStore(t *testing.T) {
	url := os.Getenv("STARRY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("STARRY_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	store, err := NewPGStore(ctx, url, "test-"+t.Name())
	if err != nil {
		t.Fatalf("NewPGStore failed: %v", err)
	}
	defer store.Close()

	want := sampleData(t)
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertSameData(t, got, want)
}

func TestInstrumentedRecordsOperations(t *testing.T) {
	ctx := context.Background()
	reg := metrics.NewRegistry()
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.InfoLevel)

	inner := NewMemoryStore()
	store := NewInstrumented(inner, BackendMemory, reg, logger)

	if _, err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, habits.NewData()); err != nil {
		t.Fatal(err)
	}
	inner.Close()
	if err := store.Save(ctx, habits.NewData()); !errors.Is(err, ErrStoreClosed) {
		t.Fatalf("expected closed error, got %v", err)
	}

	tests := []struct {
		op, status string
		want       float64
	}{
		{"load", "success", 1},
		{"save", "success", 1},
		{"save", "error", 1},
	}
	for _, tt := range tests {
		var m dto.Metric
		if err := reg.StorageOperationsTotal.WithLabelValues(BackendMemory, tt.op, tt.status).Write(&m); err != nil {
			t.Fatal(err)
		}
		if m.Counter.GetValue() != tt.want {
			t.Errorf("%s/%s = %v, want %v", tt.op, tt.status, m.Counter.GetValue(), tt.want)
		}
	}

	if !strings.Contains(buf.String(), "storage operation failed") || !strings.Contains(buf.String(), `"component":"storage"`) {
		t.Errorf("missing error log: %s", buf.String())
	}
	if store.Unwrap() != Store(inner) {
		t.Error("Unwrap should return the wrapped store")
	}
}
