// Copyright (c) 2026 Coverdesk. All rights reserved.

package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coverdesk/coverdesk/internal/platform/constants"
	"github.com/coverdesk/coverdesk/internal/platform/obs"
	"github.com/coverdesk/coverdesk/pkg/uuid"
)

// writeTimeout bounds how long a background audit write may run after the
// originating request has already returned.
const writeTimeout = 5 * time.Second

// Recorder writes audit records asynchronously.
//
// # Contract
//
// Record never blocks the caller and never returns an error: a failed write
// is logged and counted, but the business operation that triggered it has
// already succeeded and must not be rolled back over bookkeeping.
type Recorder struct {
	store  Store
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewRecorder constructs a [Recorder] around the given store.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger,
	}
}

/*
Record schedules an audit entry for persistence and returns immediately.

Description: Fills in the record identity, timestamps, and the loopback
placeholder address when the origin IP could not be resolved, then hands the
write to a background goroutine. The write survives cancellation of the
originating request context.

Parameters:
  - ctx: context.Context (only its values survive; cancellation is detached)
  - entry: Entry
*/
func (recorder *Recorder) Record(ctx context.Context, entry Entry) {

	// An actorless entry cannot be attributed; refuse it loudly in logs
	// rather than poisoning the trail with anonymous rows.
	if entry.Action == "" || entry.ActorID == "" {
		recorder.logger.Error("audit entry dropped: missing action or actor",
			slog.String("action", entry.Action),
		)
		obs.AuditWriteFailures.Inc()
		return
	}

	record := &Record{
		ID:         uuid.New(),
		Action:     entry.Action,
		ActorID:    entry.ActorID,
		Details:    entry.Details,
		IPAddress:  entry.IPAddress,
		OccurredAt: time.Now(),
	}

	// Placeholder for writes whose origin address could not be resolved
	if record.IPAddress == "" {
		record.IPAddress = constants.FallbackClientIP
	}

	recorder.wg.Add(1)
	go func() {
		defer recorder.wg.Done()

		// The request that triggered the audit may finish (and cancel its
		// context) before this write lands, so the write gets its own deadline.
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()

		if err := recorder.store.Insert(writeCtx, record); err != nil {
			recorder.logger.Error("audit write failed",
				slog.String("action", record.Action),
				slog.String("actor_id", record.ActorID),
				slog.Any("error", err),
			)
			obs.AuditWriteFailures.Inc()
		}
	}()
}

// Flush blocks until all scheduled writes have completed. It is called
// during graceful shutdown so in-flight records are not lost.
func (recorder *Recorder) Flush() {
	recorder.wg.Wait()
}
