package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coverdesk/coverdesk/internal/platform/database/schema"
	"github.com/coverdesk/coverdesk/internal/platform/dberr"
	"github.com/coverdesk/coverdesk/pkg/pagination"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func policyColumns() string {
	t := schema.CorePolicy
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.UserID, t.ProductID, t.PolicyNumber, t.Status,
		t.StartDate, t.EndDate, t.PremiumCents, t.CreatedAt, t.UpdatedAt)
}

func scanPolicy(row interface{ Scan(...any) error }) (*Policy, error) {
	p := &Policy{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.ProductID, &p.PolicyNumber, &p.Status,
		&p.StartDate, &p.EndDate, &p.PremiumCents, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (repository *PostgresRepository) Create(context context.Context, policy *Policy) error {
	t := schema.CorePolicy
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)",
		t.Table, policyColumns())

	now := time.Now()
	if policy.CreatedAt.IsZero() {
		policy.CreatedAt = now
	}
	policy.UpdatedAt = now

	_, err := repository.db.Exec(context, query,
		policy.ID, policy.UserID, policy.ProductID, policy.PolicyNumber, policy.Status,
		policy.StartDate, policy.EndDate, policy.PremiumCents, policy.CreatedAt, policy.UpdatedAt,
	)
	return dberr.Wrap(err, "create_policy")
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Policy, error) {
	t := schema.CorePolicy
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", policyColumns(), t.Table, t.ID)

	p, err := scanPolicy(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_policy_by_id")
	}
	return p, nil
}

func (repository *PostgresRepository) ListByUser(context context.Context, userID string, params pagination.Params) ([]Policy, int, error) {
	t := schema.CorePolicy

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1", t.Table, t.UserID)
	if err := repository.db.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_user_policies")
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT $2 OFFSET $3",
		policyColumns(), t.Table, t.UserID, t.CreatedAt)

	rows, err := repository.db.Query(context, query, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_user_policies")
	}
	defer rows.Close()

	policies := make([]Policy, 0, params.Limit)
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_policy")
		}
		policies = append(policies, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_user_policies_rows")
	}

	return policies, total, nil
}

func (repository *PostgresRepository) ListAll(context context.Context, params pagination.Params) ([]Policy, int, error) {
	t := schema.CorePolicy

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", t.Table)
	if err := repository.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_policies")
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s DESC LIMIT $1 OFFSET $2",
		policyColumns(), t.Table, t.CreatedAt)

	rows, err := repository.db.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_policies")
	}
	defer rows.Close()

	policies := make([]Policy, 0, params.Limit)
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_policy")
		}
		policies = append(policies, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_policies_rows")
	}

	return policies, total, nil
}

func (repository *PostgresRepository) UpdateStatus(context context.Context, id, status string) error {
	t := schema.CorePolicy
	// Every legal transition leaves the active state, so the guard makes
	// concurrent settlements first-writer-wins at the database: the loser
	// matches zero rows instead of overwriting the winner.
	query := fmt.Sprintf("UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1 AND %s = '%s'",
		t.Table, t.Status, t.UpdatedAt, t.ID, t.Status, StatusActive)

	tag, err := repository.db.Exec(context, query, id, status, time.Now())
	if err != nil {
		return dberr.Wrap(err, "update_policy_status")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
