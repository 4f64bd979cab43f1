package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	appfinance "github.com/campusledger/backend/internal/application/finance"
	"github.com/campusledger/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeS3 answers the handful of path-style calls the voucher storage makes.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	headers  map[string]http.Header
	buckets  map[string]bool
	requests []string
}

func newFakeS3(t *testing.T, buckets ...string) (*fakeS3, *httptest.Server) {
	f := &fakeS3{objects: map[string][]byte{}, headers: map[string]http.Header{}, buckets: map[string]bool{}}
	for _, b := range buckets {
		f.buckets[b] = true
	}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeS3) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")
	f.requests = append(f.requests, r.Method+" "+path)

	switch {
	case key == "" && r.Method == http.MethodHead:
		if !f.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	case key == "" && r.Method == http.MethodPut:
		f.buckets[bucket] = true
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[path] = body
		f.headers[path] = r.Header.Clone()
	case r.Method == http.MethodDelete:
		delete(f.objects, path)
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func s3Config(endpoint string) config.StorageConfig {
	return config.StorageConfig{
		Driver:          "s3",
		Bucket:          "vouchers-test",
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
		KeyPrefix:       "vouchers",
	}
}

func voucher(data string) appfinance.VoucherFile {
	return appfinance.VoucherFile{
		TenantID:    uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		PaymentID:   uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		FileName:    "Receipt.PDF",
		ContentType: "application/pdf",
		Data:        []byte(data),
	}
}

func TestNewS3VoucherStorage_RequiresBucket(t *testing.T) {
	_, err := NewS3VoucherStorage(context.Background(), config.StorageConfig{})
	assert.ErrorContains(t, err, "bucket is required")
}

func TestS3VoucherStorage_PutAndDelete(t *testing.T) {
	fake, srv := newFakeS3(t, "vouchers-test")
	ctx := context.Background()
	s, err := NewS3VoucherStorage(ctx, s3Config(srv.URL))
	require.NoError(t, err)

	ref, err := s.Put(ctx, voucher("%PDF-1.4 receipt"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "s3://vouchers-test/vouchers/11111111-1111-1111-1111-111111111111/22222222-2222-2222-2222-222222222222/"))
	assert.True(t, strings.HasSuffix(ref, ".pdf"))
	objectPath := strings.TrimPrefix(ref, "s3://")
	assert.Equal(t, []byte("%PDF-1.4 receipt"), fake.objects[objectPath])
	assert.Equal(t, "application/pdf", fake.headers[objectPath].Get("Content-Type"))
	assert.Equal(t, "Receipt.PDF", fake.headers[objectPath].Get("X-Amz-Meta-Original-Name"))

	again, err := s.Put(ctx, voucher("%PDF-1.4 receipt"))
	require.NoError(t, err)
	assert.Equal(t, ref, again, "same bytes map to the same key")

	require.NoError(t, s.Delete(ctx, ref))
	assert.Empty(t, fake.objects)
}

func TestS3VoucherStorage_RejectsForeignReferences(t *testing.T) {
	_, srv := newFakeS3(t, "vouchers-test")
	s, err := NewS3VoucherStorage(context.Background(), s3Config(srv.URL))
	require.NoError(t, err)

	assert.ErrorContains(t, s.Delete(context.Background(), "mem://vouchers/x"), "not an s3")
	assert.ErrorContains(t, s.Delete(context.Background(), "s3://other-bucket/key"), "not in bucket")
	assert.ErrorContains(t, s.Delete(context.Background(), "s3://vouchers-test"), "malformed")

	_, err = s.Put(context.Background(), voucher(""))
	assert.ErrorContains(t, err, "empty")
}

func TestS3VoucherStorage_EnsureBucket(t *testing.T) {
	fake, srv := newFakeS3(t)
	ctx := context.Background()
	s, err := NewS3VoucherStorage(ctx, s3Config(srv.URL))
	require.NoError(t, err)

	require.NoError(t, s.EnsureBucket(ctx))
	assert.True(t, fake.buckets["vouchers-test"])
	assert.Contains(t, fake.requests, "PUT vouchers-test")

	require.NoError(t, s.EnsureBucket(ctx))
}

func TestNew_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	mem, err := New(ctx, config.StorageConfig{Driver: "memory", KeyPrefix: "v"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryVoucherStorage{}, mem)

	_, srv := newFakeS3(t)
	s3store, err := New(ctx, s3Config(srv.URL), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &S3VoucherStorage{}, s3store)

	_, err = New(ctx, config.StorageConfig{Driver: "ftp"}, zap.NewNop())
	assert.Error(t, err)
}
