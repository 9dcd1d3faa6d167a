package inventory

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type inventoryRepoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &inventoryRepoPG{q: q}
}

const itemCols = `id, name, category, description, sku, quantity, unit, reorder_level,
	unit_price, supplier, expiry_date, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var i Item
	err := row.Scan(&i.ID, &i.Name, &i.Category, &i.Description, &i.SKU, &i.Quantity, &i.Unit,
		&i.ReorderLevel, &i.UnitPrice, &i.Supplier, &i.ExpiryDate, &i.CreatedAt, &i.UpdatedAt)
	return &i, err
}

func (r *inventoryRepoPG) Create(ctx context.Context, i *Item) error {
	i.ID = uuid.New()
	err := r.q.QueryRow(ctx, `
		INSERT INTO inventory_items (id, name, category, description, sku, quantity, unit,
			reorder_level, unit_price, supplier, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		i.ID, i.Name, i.Category, i.Description, i.SKU, i.Quantity, i.Unit,
		i.ReorderLevel, i.UnitPrice, i.Supplier, i.ExpiryDate,
	).Scan(&i.CreatedAt, &i.UpdatedAt)
	return db.Classify(err)
}

func (r *inventoryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	i, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemCols+` FROM inventory_items WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return i, nil
}

func (r *inventoryRepoPG) List(ctx context.Context, f Filter, p pagination.Params) ([]*Item, int, error) {
	where := sq.And{}
	if f.Category != nil {
		where = append(where, sq.Eq{"category": *f.Category})
	}
	if f.Search != "" {
		pattern := db.ContainsPattern(f.Search)
		where = append(where, sq.Or{sq.ILike{"name": pattern}, sq.ILike{"sku": pattern}})
	}
	if f.LowStock {
		where = append(where, sq.Expr("quantity <= reorder_level"))
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("inventory_items").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args, err := p.Apply(psql.Select(itemCols).From("inventory_items").Where(where).OrderBy("name")).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, i)
	}
	return out, total, rows.Err()
}

func (r *inventoryRepoPG) Update(ctx context.Context, i *Item) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE inventory_items SET name = $2, category = $3, description = $4, sku = $5, unit = $6,
			reorder_level = $7, unit_price = $8, supplier = $9, expiry_date = $10, updated_at = NOW()
		WHERE id = $1`,
		i.ID, i.Name, i.Category, i.Description, i.SKU, i.Unit,
		i.ReorderLevel, i.UnitPrice, i.Supplier, i.ExpiryDate)
	return db.RequireAffected(tag, err)
}

func (r *inventoryRepoPG) Adjust(ctx context.Context, id uuid.UUID, delta int, reason string, by uuid.UUID) (int, error) {
	var quantity int
	err := r.q.QueryRow(ctx, `
		WITH updated AS (
			UPDATE inventory_items SET quantity = quantity + $2, updated_at = NOW()
			WHERE id = $1 AND quantity + $2 >= 0
			RETURNING id, quantity
		), movement AS (
			INSERT INTO inventory_adjustments (id, item_id, delta, reason, adjusted_by)
			SELECT $3, id, $2, $4, $5 FROM updated
		)
		SELECT quantity FROM updated`,
		id, delta, uuid.New(), reason, by,
	).Scan(&quantity)
	if err != nil {
		return 0, db.Classify(err)
	}
	return quantity, nil
}
