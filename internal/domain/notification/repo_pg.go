package notification

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type notificationRepoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &notificationRepoPG{q: q}
}

const notificationCols = `id, user_id, title, message, type, related_id, is_read, created_at`

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.RelatedID, &n.IsRead, &n.CreatedAt)
	return &n, err
}

func (r *notificationRepoPG) Create(ctx context.Context, n *Notification) error {
	n.ID = uuid.New()
	return r.q.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, related_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING is_read, created_at`,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.RelatedID,
	).Scan(&n.IsRead, &n.CreatedAt)
}

func (r *notificationRepoPG) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, p pagination.Params) ([]*Notification, int, error) {
	where := sq.And{sq.Eq{"user_id": userID}}
	if unreadOnly {
		where = append(where, sq.Eq{"is_read": false})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("notifications").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args, err := p.Apply(psql.Select(notificationCols).From("notifications").
		Where(where).OrderBy("created_at DESC")).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}

func (r *notificationRepoPG) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`, userID).Scan(&n)
	return n, err
}

func (r *notificationRepoPG) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return db.RequireAffected(r.q.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID))
}

func (r *notificationRepoPG) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
