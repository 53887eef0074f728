// Copyright (c) 2026 Coverdesk. All rights reserved.

package audit_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverdesk/coverdesk/internal/audit"
	"github.com/coverdesk/coverdesk/internal/platform/obs"
	"github.com/coverdesk/coverdesk/pkg/pagination"
)

// memoryStore collects inserted records; optionally failing every write.
type memoryStore struct {
	mu      sync.Mutex
	records []audit.Record
	failAll bool
}

func (s *memoryStore) Insert(_ context.Context, record *audit.Record) error {
	if s.failAll {
		return errors.New("storage offline")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *record)
	return nil
}

func (s *memoryStore) List(_ context.Context, params pagination.Params) ([]audit.Record, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Record(nil), s.records...), len(s.records), nil
}

func (s *memoryStore) all() []audit.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Record(nil), s.records...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestRecorder_Record verifies the fire-and-forget write path: defaults are
filled in, writes land after Flush, and the caller is never blocked by a
cancelled request context.
*/
func TestRecorder_Record(t *testing.T) {
	t.Run("persists_with_defaults", func(t *testing.T) {
		store := &memoryStore{}
		recorder := audit.NewRecorder(store, discardLogger())

		recorder.Record(context.Background(), audit.Entry{
			Action:  audit.ActionPolicyPurchased,
			ActorID: "user-1",
			Details: map[string]any{"policy_id": "pol-9"},
		})
		recorder.Flush()

		records := store.all()
		require.Len(t, records, 1)

		record := records[0]
		assert.NotEmpty(t, record.ID)
		assert.Equal(t, audit.ActionPolicyPurchased, record.Action)
		assert.Equal(t, "user-1", record.ActorID)
		assert.False(t, record.OccurredAt.IsZero())

		// Unresolvable origin falls back to the loopback placeholder
		assert.Equal(t, "127.0.0.1", record.IPAddress)
	})

	t.Run("keeps_resolved_origin_address", func(t *testing.T) {
		store := &memoryStore{}
		recorder := audit.NewRecorder(store, discardLogger())

		recorder.Record(context.Background(), audit.Entry{
			Action:    audit.ActionClaimDecided,
			ActorID:   "agent-1",
			IPAddress: "203.0.113.7",
		})
		recorder.Flush()

		records := store.all()
		require.Len(t, records, 1)
		assert.Equal(t, "203.0.113.7", records[0].IPAddress)
	})

	t.Run("write_survives_cancelled_request_context", func(t *testing.T) {
		store := &memoryStore{}
		recorder := audit.NewRecorder(store, discardLogger())

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // the originating request is already gone

		recorder.Record(ctx, audit.Entry{
			Action:  audit.ActionUserRoleChanged,
			ActorID: "admin-1",
		})
		recorder.Flush()

		require.Len(t, store.all(), 1)
	})

	t.Run("storage_failure_is_swallowed_and_counted", func(t *testing.T) {
		store := &memoryStore{failAll: true}
		recorder := audit.NewRecorder(store, discardLogger())

		before := testutil.ToFloat64(obs.AuditWriteFailures)

		// Must not panic, block, or surface the error
		recorder.Record(context.Background(), audit.Entry{
			Action:  audit.ActionProductDeleted,
			ActorID: "admin-1",
		})
		recorder.Flush()

		assert.Empty(t, store.all())
		assert.Equal(t, before+1, testutil.ToFloat64(obs.AuditWriteFailures))
	})

	t.Run("actorless_entry_is_dropped", func(t *testing.T) {
		store := &memoryStore{}
		recorder := audit.NewRecorder(store, discardLogger())

		before := testutil.ToFloat64(obs.AuditWriteFailures)

		recorder.Record(context.Background(), audit.Entry{
			Action: audit.ActionProductCreated,
		})
		recorder.Flush()

		assert.Empty(t, store.all())
		assert.Equal(t, before+1, testutil.ToFloat64(obs.AuditWriteFailures))
	})
}
