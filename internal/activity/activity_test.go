package activity

import (
	"context"
	"testing"
	"time"

	"krishipredict_backend/internal/platform/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecorder_RecentNewestFirst(t *testing.T) {
	db, err := database.OpenInMemory(&Entry{})
	require.NoError(t, err)
	rec := NewGORMRecorder(db, zap.NewNop())
	ctx := context.Background()

	rec.Record(ctx, KindUserRegistered, "New farmer joined")
	time.Sleep(5 * time.Millisecond)
	rec.Record(ctx, KindListingCreated, "Wheat listed in Sehore")
	time.Sleep(5 * time.Millisecond)
	rec.Record(ctx, KindBroadcast, "Broadcast sent")

	entries, err := rec.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, KindBroadcast, entries[0].Kind)
	assert.Equal(t, "Wheat listed in Sehore", entries[1].Message)
}

func TestRecorder_RecordSurvivesCancelledContext(t *testing.T) {
	db, err := database.OpenInMemory(&Entry{})
	require.NoError(t, err)
	rec := NewGORMRecorder(db, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Record(ctx, KindPriceReported, "Onion price reported")

	entries, err := rec.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecorder_FailureDoesNotPanic(t *testing.T) {
	// No table migrated: the insert fails and is only logged.
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	rec := NewGORMRecorder(db, zap.NewNop())

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), KindBroadcast, "x")
	})
}
