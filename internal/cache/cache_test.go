package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/flag-check-mcp/internal/config"
	"github.com/ironsheep/flag-check-mcp/internal/imaging"
	"github.com/ironsheep/flag-check-mcp/internal/service"
	"github.com/ironsheep/flag-check-mcp/internal/validate"
)

// mockValidator is a Validator that records calls.
type mockValidator struct {
	calls int
	out   *service.Outcome
	err   error
}

func (m *mockValidator) Validate(ctx context.Context, data []byte) (*service.Outcome, error) {
	m.calls++
	return m.out, m.err
}

var image = []byte("flag bytes")

func sampleOutcome() *service.Outcome {
	return &service.Outcome{
		Report: validate.Report{
			AspectRatio: validate.AspectRatio{Status: validate.Pass, Actual: 1.5},
			Notes:       []string{"Spokes detected=24."},
		},
		ImageSHA256: service.Digest(image),
		Width:       900,
		Height:      600,
	}
}

func key() string {
	return "flagcheck:" + service.Digest(image) + ":abc123"
}

func TestNewCachingValidator_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"zero values", 0, "", DefaultTTL, "flagcheck"},
		{"negative ttl", -time.Minute, "", DefaultTTL, "flagcheck"},
		{"custom values", time.Hour, "custom", time.Hour, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := NewCachingValidator(nil, tt.ttl, &mockValidator{}, tt.namespace, "fp", nil)
			assert.Equal(t, tt.expectedTTL, c.ttl)
			assert.Equal(t, tt.expectedNamespace, c.namespace)
		})
	}
}

func TestValidate_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockValidator{out: sampleOutcome()}
	c := NewCachingValidator(nil, time.Hour, inner, "", "abc123", nil)

	out, err := c.Validate(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, 900, out.Width)
	assert.Equal(t, 1, inner.calls)
}

func TestValidate_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, err := json.Marshal(sampleOutcome())
	require.NoError(t, err)
	mock.ExpectGet(key()).SetVal(string(cached))

	inner := &mockValidator{}
	c := NewCachingValidator(rdb, time.Hour, inner, "", "abc123", nil)

	out, err := c.Validate(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, 0, inner.calls, "inner must not run on a hit")
	assert.Equal(t, validate.Pass, out.Report.AspectRatio.Status)
	assert.Equal(t, []string{"Spokes detected=24."}, out.Report.Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	want := sampleOutcome()
	stored, err := json.Marshal(want)
	require.NoError(t, err)

	mock.ExpectGet(key()).RedisNil()
	mock.ExpectSet(key(), stored, time.Hour).SetVal("OK")

	inner := &mockValidator{out: want}
	c := NewCachingValidator(rdb, time.Hour, inner, "", "abc123", nil)

	out, err := c.Validate(context.Background(), image)
	require.NoError(t, err)
	assert.Same(t, want, out)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_UploadLimitSplitsCache(t *testing.T) {
	t.Parallel()

	large := config.Default()
	small := config.Default()
	small.MaxImageBytes = len(image) - 1
	require.NotEqual(t, large.Fingerprint(), small.Fingerprint())

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	// only the key for the smaller limit is consulted, so an outcome cached
	// under the larger limit cannot be served
	mock.ExpectGet("flagcheck:" + service.Digest(image) + ":" + small.Fingerprint()).RedisNil()

	engine, err := service.NewEngine(small, nil)
	require.NoError(t, err)
	c := NewCachingValidator(rdb, time.Hour, engine, "", small.Fingerprint(), nil)

	out, err := c.Validate(context.Background(), image)
	assert.ErrorIs(t, err, imaging.ErrImageTooLarge)
	assert.Nil(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_CorruptedEntry(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	want := sampleOutcome()
	stored, err := json.Marshal(want)
	require.NoError(t, err)

	mock.ExpectGet(key()).SetVal("not json")
	mock.ExpectDel(key()).SetVal(1)
	mock.ExpectSet(key(), stored, time.Hour).SetVal("OK")

	inner := &mockValidator{out: want}
	c := NewCachingValidator(rdb, time.Hour, inner, "", "abc123", nil)

	_, err = c.Validate(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet(key()).RedisNil()

	boom := errors.New("decode failed")
	c := NewCachingValidator(rdb, time.Hour, &mockValidator{err: boom}, "", "abc123", nil)

	_, err := c.Validate(context.Background(), image)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidate_WriteFailureIgnored(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	want := sampleOutcome()
	stored, err := json.Marshal(want)
	require.NoError(t, err)

	mock.ExpectGet(key()).SetErr(errors.New("connection refused"))
	mock.ExpectSet(key(), stored, time.Hour).SetErr(errors.New("connection refused"))

	c := NewCachingValidator(rdb, time.Hour, &mockValidator{out: want}, "", "abc123", nil)

	out, err := c.Validate(context.Background(), image)
	require.NoError(t, err)
	assert.Same(t, want, out)
}

func TestPurge(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "flagcheck:*", 200).SetVal([]string{"flagcheck:a:x", "flagcheck:b:x"}, 7)
	mock.ExpectDel("flagcheck:a:x", "flagcheck:b:x").SetVal(2)
	mock.ExpectScan(7, "flagcheck:*", 200).SetVal([]string{"flagcheck:c:y"}, 0)
	mock.ExpectDel("flagcheck:c:y").SetVal(1)

	c := NewCachingValidator(rdb, time.Hour, &mockValidator{}, "", "abc123", nil)
	n, err := c.Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurge_NilRedis(t *testing.T) {
	t.Parallel()

	n, err := NewCachingValidator(nil, 0, &mockValidator{}, "", "", nil).Purge(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, n)
}
