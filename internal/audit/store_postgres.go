// Copyright (c) 2026 Coverdesk. All rights reserved.

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coverdesk/coverdesk/pkg/pagination"
)

// PostgresStore implements the Store interface using pgx against the
// system.auditlog table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed audit store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

/*
Insert appends a single record to the system.auditlog table.

Description: Details are serialized to JSONB. The table carries no UPDATE or
DELETE path anywhere in the codebase; rows are append-only.

Parameters:
  - context: context.Context
  - record: *Record

Returns:
  - error: Serialization or persistence failures
*/
func (store *PostgresStore) Insert(context context.Context, record *Record) error {
	const query = `
		INSERT INTO system.auditlog (
			id, action, actorid, details, ipaddress, occurredat, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	details, err := json.Marshal(record.Details)
	if err != nil {
		return fmt.Errorf("postgres_audit_store_marshal_failed: %w", err)
	}

	_, err = store.pool.Exec(context, query,
		record.ID,
		record.Action,
		record.ActorID,
		details,
		record.IPAddress,
		record.OccurredAt,
		record.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_audit_store_insert_failed: %w", err)
	}

	return nil
}

/*
List returns audit records ordered newest-first.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []Record: Page of records
  - int: Total record count
  - error: Retrieval failures
*/
func (store *PostgresStore) List(context context.Context, params pagination.Params) ([]Record, int, error) {
	const countQuery = "SELECT COUNT(*) FROM system.auditlog"

	var total int
	if err := store.pool.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_store_count_failed: %w", err)
	}

	const query = `
		SELECT id, action, actorid, details, ipaddress, occurredat, createdat
		FROM system.auditlog
		ORDER BY occurredat DESC
		LIMIT $1 OFFSET $2`

	rows, err := store.pool.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_store_list_failed: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, params.Limit)
	for rows.Next() {
		var record Record
		var details []byte

		err := rows.Scan(
			&record.ID,
			&record.Action,
			&record.ActorID,
			&details,
			&record.IPAddress,
			&record.OccurredAt,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_audit_store_scan_failed: %w", err)
		}

		if len(details) > 0 {
			if err := json.Unmarshal(details, &record.Details); err != nil {
				return nil, 0, fmt.Errorf("postgres_audit_store_unmarshal_failed: %w", err)
			}
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_audit_store_rows_failed: %w", err)
	}

	return records, total, nil
}
