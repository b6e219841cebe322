package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/opsease/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:       "opsease-statements",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Region:       "us-east-1",
		Endpoint:     endpoint,
		UsePathStyle: true,
	}
}

func TestNewStatementArchive_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{name: "nil config", cfg: nil, wantErr: "configuration is required"},
		{name: "missing bucket", cfg: &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, wantErr: "bucket is required"},
		{name: "missing access key", cfg: &config.StorageConfig{Bucket: "b", SecretKey: "s"}, wantErr: "access key is required"},
		{name: "missing secret key", cfg: &config.StorageConfig{Bucket: "b", AccessKey: "k"}, wantErr: "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStatementArchive(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("defaults", func(t *testing.T) {
		s, err := NewStatementArchive(testConfig(""))
		require.NoError(t, err)
		assert.Equal(t, "opsease-statements", s.Bucket())
		assert.Equal(t, 15*time.Minute, s.ttl)
	})

	t.Run("options override config", func(t *testing.T) {
		s, err := NewStatementArchive(testConfig("localhost:9000"),
			WithPresignExpiration(time.Hour),
			WithLogger(zaptest.NewLogger(t)),
		)
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.ttl)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	got, err := normalizeEndpoint("", false)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", got)

	got, err = normalizeEndpoint("minio:9000", false)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", got)

	got, err = normalizeEndpoint("s3.example.com", true)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com", got)

	_, err = normalizeEndpoint("http://", false)
	assert.Error(t, err)
}

func TestStatementArchive_GenerateDownloadURL(t *testing.T) {
	cfg := testConfig("http://localhost:9000")
	cfg.KeyPrefix = "staging/"
	s, err := NewStatementArchive(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = s.GenerateDownloadURL(ctx, "", time.Minute)
	assert.Error(t, err)

	before := time.Now()
	url, expiresAt, err := s.GenerateDownloadURL(ctx, "statements/u1/all-20240102T030405Z.csv", 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/opsease-statements/staging/statements/u1/all-20240102T030405Z.csv?"), url)
	assert.Contains(t, url, "X-Amz-Expires=1800")
	assert.WithinDuration(t, before.Add(30*time.Minute), expiresAt, 5*time.Second)

	url, _, err = s.GenerateDownloadURL(ctx, "statements/u1/x.csv", 0)
	require.NoError(t, err)
	assert.Contains(t, url, "X-Amz-Expires=900")
}

// fakeS3 records the requests an S3 client sends
type fakeS3 struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	status   int
	head     int
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, string(body))
	status := f.status
	if r.Method == http.MethodHead && f.head != 0 {
		status = f.head
	}
	f.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
}

func TestStatementArchive_Upload(t *testing.T) {
	fake := &fakeS3{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.KeyPrefix = "staging/"
	s, err := NewStatementArchive(cfg)
	require.NoError(t, err)

	assert.Error(t, s.Upload(context.Background(), "", []byte("x"), "text/csv"))

	csv := "entry_date,party_name\n2024-01-10,Acme\n"
	require.NoError(t, s.Upload(context.Background(), "statements/u1/all.csv", []byte(csv), "text/csv"))

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/opsease-statements/staging/statements/u1/all.csv", req.URL.Path)
	assert.Equal(t, "text/csv", req.Header.Get("Content-Type"))
	assert.Contains(t, fake.bodies[0], "2024-01-10,Acme")
}

func TestStatementArchive_UploadError(t *testing.T) {
	srv := httptest.NewServer(&fakeS3{status: http.StatusForbidden})
	defer srv.Close()

	s, err := NewStatementArchive(testConfig(srv.URL))
	require.NoError(t, err)

	err = s.Upload(context.Background(), "statements/u1/all.csv", []byte("x"), "text/csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to upload object")
}

func TestStatementArchive_EnsureBucket(t *testing.T) {
	t.Run("existing bucket is left alone", func(t *testing.T) {
		fake := &fakeS3{}
		srv := httptest.NewServer(fake)
		defer srv.Close()

		s, err := NewStatementArchive(testConfig(srv.URL))
		require.NoError(t, err)
		require.NoError(t, s.EnsureBucket(context.Background()))

		require.Len(t, fake.requests, 1)
		assert.Equal(t, http.MethodHead, fake.requests[0].Method)
	})

	t.Run("missing bucket is created", func(t *testing.T) {
		fake := &fakeS3{head: http.StatusNotFound}
		srv := httptest.NewServer(fake)
		defer srv.Close()

		s, err := NewStatementArchive(testConfig(srv.URL), WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		require.NoError(t, s.EnsureBucket(context.Background()))

		require.Len(t, fake.requests, 2)
		assert.Equal(t, http.MethodPut, fake.requests[1].Method)
		assert.Equal(t, "/opsease-statements", fake.requests[1].URL.Path)
	})

	t.Run("other failures are reported", func(t *testing.T) {
		srv := httptest.NewServer(&fakeS3{head: http.StatusForbidden})
		defer srv.Close()

		s, err := NewStatementArchive(testConfig(srv.URL))
		require.NoError(t, err)
		assert.Error(t, s.EnsureBucket(context.Background()))
	})
}
