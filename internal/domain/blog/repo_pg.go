package blog

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carepoint/portal/internal/platform/db"
	"github.com/carepoint/portal/pkg/pagination"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type blogRepoPG struct{ q db.Querier }

func NewRepoPG(q db.Querier) Repository {
	return &blogRepoPG{q: q}
}

const postCols = `b.id, b.author_id, u.first_name || ' ' || u.last_name, b.title, b.slug,
	b.excerpt, b.content, b.tags, b.status, b.published_at, b.created_at, b.updated_at`

const postFrom = `blog_posts b JOIN users u ON u.id = b.author_id`

func scanPost(row pgx.Row) (*Post, error) {
	var p Post
	var status string
	err := row.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Slug,
		&p.Excerpt, &p.Content, &p.Tags, &status, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	p.Status = Status(status)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, err
}

func (r *blogRepoPG) Create(ctx context.Context, p *Post) error {
	p.ID = uuid.New()
	err := r.q.QueryRow(ctx, `
		INSERT INTO blog_posts (id, author_id, title, slug, excerpt, content, tags, status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		p.ID, p.AuthorID, p.Title, p.Slug, p.Excerpt, p.Content, p.Tags, string(p.Status), p.PublishedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return db.Classify(err)
}

func (r *blogRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	p, err := scanPost(r.q.QueryRow(ctx, `SELECT `+postCols+` FROM `+postFrom+` WHERE b.id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return p, nil
}

func (r *blogRepoPG) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	p, err := scanPost(r.q.QueryRow(ctx, `SELECT `+postCols+` FROM `+postFrom+` WHERE b.slug = $1`, slug))
	if err != nil {
		return nil, db.Classify(err)
	}
	return p, nil
}

func (r *blogRepoPG) List(ctx context.Context, f Filter, p pagination.Params) ([]*Post, int, error) {
	where := sq.And{}
	if f.AuthorID != nil {
		where = append(where, sq.Eq{"b.author_id": *f.AuthorID})
	}
	if f.PublishedOnly {
		where = append(where, sq.Eq{"b.status": string(StatusPublished)})
	} else if f.Status != nil {
		where = append(where, sq.Eq{"b.status": string(*f.Status)})
	}
	if f.Tag != "" {
		where = append(where, sq.Expr("? = ANY(b.tags)", f.Tag))
	}
	if f.Search != "" {
		pattern := db.ContainsPattern(f.Search)
		where = append(where, sq.Or{sq.ILike{"b.title": pattern}, sq.ILike{"b.content": pattern}})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("blog_posts b").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query, args, err := p.Apply(psql.Select(postCols).From(postFrom).Where(where).
		OrderBy("b.published_at DESC NULLS LAST", "b.created_at DESC")).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, post)
	}
	return out, total, rows.Err()
}

func (r *blogRepoPG) Update(ctx context.Context, p *Post) error {
	err := r.q.QueryRow(ctx, `
		UPDATE blog_posts SET title = $2, slug = $3, excerpt = $4, content = $5, tags = $6,
			status = $7, published_at = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, p.Tags, string(p.Status), p.PublishedAt,
	).Scan(&p.UpdatedAt)
	return db.Classify(err)
}

func (r *blogRepoPG) SlugTaken(ctx context.Context, slug string, except uuid.UUID) (bool, error) {
	var taken bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM blog_posts WHERE slug = $1 AND id <> $2)`, slug, except,
	).Scan(&taken)
	return taken, err
}
