package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/flag-check-mcp/internal/service"
	"github.com/ironsheep/flag-check-mcp/internal/validate"
)

// setupHistory prepares an in-memory SQLite history with a controllable clock.
func setupHistory(t *testing.T) (*History, *time.Time) {
	t.Helper()

	h, err := Open(":memory:")
	require.NoError(t, err, "failed to open history")
	t.Cleanup(func() { _ = h.Close() })

	now := time.Date(2026, 1, 26, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	return h, &now
}

func outcome(passed bool) *service.Outcome {
	status := validate.Fail
	if passed {
		status = validate.Pass
	}
	return &service.Outcome{
		Report: validate.Report{
			AspectRatio:      validate.AspectRatio{Status: status, Actual: 1.5},
			StripeProportion: validate.StripeProportion{Status: status},
			Colors: validate.Colors{
				Saffron: validate.ColorCheck{Status: status},
				White:   validate.ColorCheck{Status: status},
				Green:   validate.ColorCheck{Status: status},
			},
			ChakraPosition: validate.EmblemPosition{Status: status},
			ChakraSize:     validate.EmblemSize{Status: status},
			ChakraSpokes:   validate.EmblemSpokes{Status: status, Detected: 24},
			Notes:          []string{"Spokes detected=24."},
		},
		ImageSHA256: service.Digest([]byte("flag")),
		Width:       900,
		Height:      600,
	}
}

func TestSaveAndGet(t *testing.T) {
	h, _ := setupHistory(t)
	ctx := context.Background()

	rec, err := h.Save(ctx, "india.png", outcome(true))
	require.NoError(t, err)
	assert.Len(t, rec.ID, 36)
	assert.True(t, rec.Passed)

	got, err := h.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "india.png", got.Name)
	assert.Equal(t, 900, got.Width)
	assert.True(t, got.Passed)

	rep, err := got.Report()
	require.NoError(t, err)
	assert.Equal(t, 24, rep.ChakraSpokes.Detected)
	assert.Equal(t, validate.Pass, rep.AspectRatio.Status)
}

func TestSaveFailedOutcome(t *testing.T) {
	h, _ := setupHistory(t)

	rec, err := h.Save(context.Background(), "bad.png", outcome(false))
	require.NoError(t, err)
	assert.False(t, rec.Passed)
}

func TestGetNotFound(t *testing.T) {
	h, _ := setupHistory(t)

	_, err := h.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	h, now := setupHistory(t)
	ctx := context.Background()

	var ids []string
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		rec, err := h.Save(ctx, name, outcome(true))
		require.NoError(t, err)
		ids = append(ids, rec.ID)
		*now = now.Add(time.Minute)
	}

	recs, err := h.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "c.png", recs[0].Name)
	assert.Equal(t, ids[0], recs[2].ID)

	recs, err = h.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, "b.png", recs[1].Name)
}

func TestRecordReportCorrupt(t *testing.T) {
	_, err := Record{ID: "x", ReportJSON: "{"}.Report()
	assert.Error(t, err)
}
