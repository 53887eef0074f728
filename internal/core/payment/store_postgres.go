package payment

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

func paymentColumns() string {
	t := schema.CorePayment
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.PolicyID, t.UserID, t.AmountCents, t.Method, t.Reference, t.PaidAt, t.CreatedAt)
}

func scanPayment(row interface{ Scan(...any) error }) (*Payment, error) {
	p := &Payment{}
	err := row.Scan(
		&p.ID, &p.PolicyID, &p.UserID, &p.AmountCents, &p.Method, &p.Reference, &p.PaidAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (repository *PostgresRepository) Create(context context.Context, payment *Payment) error {
	t := schema.CorePayment
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)",
		t.Table, paymentColumns())

	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}

	_, err := repository.db.Exec(context, query,
		payment.ID, payment.PolicyID, payment.UserID, payment.AmountCents,
		payment.Method, payment.Reference, payment.PaidAt, payment.CreatedAt,
	)
	return dberr.Wrap(err, "create_payment")
}

func (repository *PostgresRepository) ListByUser(context context.Context, userID string, params pagination.Params) ([]Payment, int, error) {
	t := schema.CorePayment

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1", t.Table, t.UserID)
	if err := repository.db.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_user_payments")
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT $2 OFFSET $3",
		paymentColumns(), t.Table, t.UserID, t.PaidAt)

	rows, err := repository.db.Query(context, query, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_user_payments")
	}
	defer rows.Close()

	payments := make([]Payment, 0, params.Limit)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_payment")
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_user_payments_rows")
	}

	return payments, total, nil
}

func (repository *PostgresRepository) ListAll(context context.Context, params pagination.Params) ([]Payment, int, error) {
	t := schema.CorePayment

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", t.Table)
	if err := repository.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_payments")
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s DESC LIMIT $1 OFFSET $2",
		paymentColumns(), t.Table, t.PaidAt)

	rows, err := repository.db.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_payments")
	}
	defer rows.Close()

	payments := make([]Payment, 0, params.Limit)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_payment")
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_payments_rows")
	}

	return payments, total, nil
}
