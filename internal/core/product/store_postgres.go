package product

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

func productColumns() string {
	t := schema.CoreProduct
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.Name, t.Slug, t.Category, t.Description,
		t.PremiumCents, t.CoverageCents, t.DurationMonths, t.IsActive,
		t.CreatedAt, t.UpdatedAt)
}

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	p := &Product{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Category, &p.Description,
		&p.PremiumCents, &p.CoverageCents, &p.DurationMonths, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (repository *PostgresRepository) List(context context.Context, params pagination.Params, activeOnly bool) ([]Product, int, error) {
	t := schema.CoreProduct

	filter := ""
	if activeOnly {
		filter = fmt.Sprintf("WHERE %s = TRUE", t.IsActive)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", t.Table, filter)
	if err := repository.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_products")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s LIMIT $1 OFFSET $2`,
		productColumns(), t.Table, filter, t.Name)

	rows, err := repository.db.Query(context, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_products")
	}
	defer rows.Close()

	products := make([]Product, 0, params.Limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "list_products_rows")
	}

	return products, total, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Product, error) {
	t := schema.CoreProduct
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", productColumns(), t.Table, t.ID)

	p, err := scanProduct(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_product_by_id")
	}
	return p, nil
}

func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Product, error) {
	t := schema.CoreProduct
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", productColumns(), t.Table, t.Slug)

	p, err := scanProduct(repository.db.QueryRow(context, query, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "find_product_by_slug")
	}
	return p, nil
}

func (repository *PostgresRepository) Create(context context.Context, product *Product) error {
	t := schema.CoreProduct
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		t.Table, productColumns())

	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	_, err := repository.db.Exec(context, query,
		product.ID, product.Name, product.Slug, product.Category, product.Description,
		product.PremiumCents, product.CoverageCents, product.DurationMonths, product.IsActive,
		product.CreatedAt, product.UpdatedAt,
	)
	return dberr.Wrap(err, "create_product")
}

func (repository *PostgresRepository) Update(context context.Context, product *Product) error {
	t := schema.CoreProduct
	query := fmt.Sprintf(`UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9, %s = $10
		WHERE %s = $1`,
		t.Table,
		t.Name, t.Slug, t.Category, t.Description,
		t.PremiumCents, t.CoverageCents, t.DurationMonths, t.IsActive, t.UpdatedAt,
		t.ID,
	)

	product.UpdatedAt = time.Now()
	tag, err := repository.db.Exec(context, query,
		product.ID, product.Name, product.Slug, product.Category, product.Description,
		product.PremiumCents, product.CoverageCents, product.DurationMonths, product.IsActive,
		product.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "update_product")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	t := schema.CoreProduct
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", t.Table, t.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_product")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
