package claim

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

func claimColumns() string {
	t := schema.CoreClaim
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.PolicyID, t.UserID, t.AmountCents, t.Reason, t.Status,
		t.DecidedBy, t.DecisionNote, t.DecidedAt, t.CreatedAt, t.UpdatedAt)
}

func scanClaim(row interface{ Scan(...any) error }) (*Claim, error) {
	c := &Claim{}
	err := row.Scan(
		&c.ID, &c.PolicyID, &c.UserID, &c.AmountCents, &c.Reason, &c.Status,
		&c.DecidedBy, &c.DecisionNote, &c.DecidedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (repository *PostgresRepository) Create(context context.Context, claim *Claim) error {
	t := schema.CoreClaim
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)",
		t.Table, claimColumns())

	now := time.Now()
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = now
	}
	claim.UpdatedAt = now

	_, err := repository.db.Exec(context, query,
		claim.ID, claim.PolicyID, claim.UserID, claim.AmountCents, claim.Reason, claim.Status,
		claim.DecidedBy, claim.DecisionNote, claim.DecidedAt, claim.CreatedAt, claim.UpdatedAt,
	)
	return dberr.Wrap(err, "create_claim")
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Claim, error) {
	t := schema.CoreClaim
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", claimColumns(), t.Table, t.ID)

	c, err := scanClaim(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_claim_by_id")
	}
	return c, nil
}

func (repository *PostgresRepository) ListByUser(context context.Context, userID string, params pagination.Params) ([]Claim, int, error) {
	t := schema.CoreClaim

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1", t.Table, t.UserID)
	if err := repository.db.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_user_claims")
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT $2 OFFSET $3",
		claimColumns(), t.Table, t.UserID, t.CreatedAt)

	rows, err := repository.db.Query(context, query, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_user_claims")
	}
	defer rows.Close()

	claims := make([]Claim, 0, params.Limit)
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_claim")
		}
		claims = append(claims, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_user_claims_rows")
	}

	return claims, total, nil
}

func (repository *PostgresRepository) ListAll(context context.Context, params pagination.Params) ([]Claim, int, error) {
	t := schema.CoreClaim

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", t.Table)
	if err := repository.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_claims")
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s DESC LIMIT $1 OFFSET $2",
		claimColumns(), t.Table, t.CreatedAt)

	rows, err := repository.db.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_claims")
	}
	defer rows.Close()

	claims := make([]Claim, 0, params.Limit)
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_claim")
		}
		claims = append(claims, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_claims_rows")
	}

	return claims, total, nil
}

func (repository *PostgresRepository) Decide(context context.Context, id, status, decidedBy, note string) error {
	t := schema.CoreClaim
	// The status guard makes concurrent decisions on the same claim settle
	// first-writer-wins at the database rather than in application memory.
	query := fmt.Sprintf(`UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $5
		WHERE %s = $1 AND %s = '%s'`,
		t.Table,
		t.Status, t.DecidedBy, t.DecisionNote, t.DecidedAt, t.UpdatedAt,
		t.ID, t.Status, StatusPending,
	)

	tag, err := repository.db.Exec(context, query, id, status, decidedBy, note, time.Now())
	if err != nil {
		return dberr.Wrap(err, "decide_claim")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
