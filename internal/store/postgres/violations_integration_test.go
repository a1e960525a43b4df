package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/solshare/feed-ranker/internal/model"
)

// Requires a running Postgres with the moderation_violations table; set
// POSTGRES_DSN to enable.
func TestViolationStore_RecordAndList(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := Open(dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	store := NewViolationStore(db)
	ctx := context.Background()

	wallet := "itest-" + uuid.New().String()
	v := model.Violation{
		ViolationID:  uuid.New().String(),
		Wallet:       wallet,
		Category:     "nsfw",
		Verdict:      "block",
		MaxScore:     9.1,
		Explanation:  "integration test violation",
		CreationTime: time.Now().UTC(),
	}
	require.NoError(t, store.Record(ctx, v))

	got, err := store.ListByWallet(ctx, wallet, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, v.ViolationID, got[0].ViolationID)
	require.Equal(t, "nsfw", got[0].Category)
}
