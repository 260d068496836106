// Package postgres implements storage.Store on top of a pgx connection pool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vjbravo123/portfolio-cms/internal/models"
	"github.com/vjbravo123/portfolio-cms/internal/storage"
)

type Store struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying pgxpool.Pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const postsTableSQL = `CREATE TABLE IF NOT EXISTS posts (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    title TEXT NOT NULL,
	    subtitle TEXT NOT NULL DEFAULT '',
	    slug TEXT NOT NULL UNIQUE,
	    content_format TEXT NOT NULL DEFAULT 'html',
	    content TEXT NOT NULL,
	    cover_image JSONB NOT NULL DEFAULT '{}'::jsonb,
	    series JSONB,
	    author UUID NOT NULL,
	    published BOOLEAN NOT NULL DEFAULT FALSE,
	    published_at TIMESTAMPTZ,
	    tags TEXT[] NOT NULL DEFAULT '{}',
	    category TEXT NOT NULL DEFAULT 'General',
	    canonical_url TEXT NOT NULL DEFAULT '',
	    seo JSONB NOT NULL DEFAULT '{}'::jsonb,
	    is_featured BOOLEAN NOT NULL DEFAULT FALSE,
	    views BIGINT NOT NULL DEFAULT 0,
	    likes BIGINT NOT NULL DEFAULT 0,
	    shares BIGINT NOT NULL DEFAULT 0,
	    metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := s.pool.Exec(ctx, postsTableSQL); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}

	const usersTableSQL = `CREATE TABLE IF NOT EXISTS users (
	    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	    name TEXT NOT NULL,
	    email TEXT NOT NULL UNIQUE,
	    password_hash TEXT NOT NULL,
	    image TEXT NOT NULL DEFAULT '',
	    role TEXT NOT NULL DEFAULT 'user',
	    is_active BOOLEAN NOT NULL DEFAULT TRUE,
	    last_login TIMESTAMPTZ,
	    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := s.pool.Exec(ctx, usersTableSQL); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

const postColumns = `
	id::text,
	title,
	subtitle,
	slug,
	content_format,
	content,
	cover_image,
	series,
	author::text,
	published,
	published_at,
	tags,
	category,
	canonical_url,
	seo,
	is_featured,
	views,
	likes,
	shares,
	metadata,
	created_at,
	updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		post     models.Post
		cover    []byte
		series   []byte
		seo      []byte
		metadata []byte
	)
	err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Subtitle,
		&post.Slug,
		&post.ContentFormat,
		&post.Content,
		&cover,
		&series,
		&post.AuthorID,
		&post.Published,
		&post.PublishedAt,
		&post.Tags,
		&post.Category,
		&post.CanonicalURL,
		&seo,
		&post.IsFeatured,
		&post.Stats.Views,
		&post.Stats.Likes,
		&post.Stats.Shares,
		&metadata,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	// cover_image may be a legacy JSONB string; CoverImage.UnmarshalJSON
	// upgrades it to the object form.
	if len(cover) > 0 {
		if err := json.Unmarshal(cover, &post.CoverImage); err != nil {
			return nil, fmt.Errorf("decode cover image: %w", err)
		}
	}
	if len(series) > 0 {
		post.Series = &models.Series{}
		if err := json.Unmarshal(series, post.Series); err != nil {
			return nil, fmt.Errorf("decode series: %w", err)
		}
	}
	if len(seo) > 0 {
		if err := json.Unmarshal(seo, &post.SEO); err != nil {
			return nil, fmt.Errorf("decode seo: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &post.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return &post, nil
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "slug") {
			return storage.ErrDuplicateSlug
		}
		if strings.Contains(pgErr.ConstraintName, "email") {
			return storage.ErrDuplicateEmail
		}
	}
	return err
}

func encodeJSONFields(post *models.Post) (cover, series, seo, metadata []byte, err error) {
	if cover, err = json.Marshal(post.CoverImage); err != nil {
		return
	}
	if post.Series != nil {
		if series, err = json.Marshal(post.Series); err != nil {
			return
		}
	}
	if seo, err = json.Marshal(post.SEO); err != nil {
		return
	}
	metadata, err = json.Marshal(post.Metadata)
	return
}

func (s *Store) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	cover, series, seo, metadata, err := encodeJSONFields(post)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO posts (
			title, subtitle, slug, content_format, content, cover_image, series,
			author, published, published_at, tags, category, canonical_url, seo,
			is_featured, metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING` + postColumns

	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	row := s.pool.QueryRow(ctx, query,
		post.Title,
		post.Subtitle,
		post.Slug,
		post.ContentFormat,
		post.Content,
		cover,
		series,
		post.AuthorID,
		post.Published,
		post.PublishedAt,
		tags,
		post.Category,
		post.CanonicalURL,
		seo,
		post.IsFeatured,
		metadata,
	)
	created, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", mapWriteErr(err))
	}
	return created, nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, post *models.Post) (*models.Post, error) {
	cover, series, seo, metadata, err := encodeJSONFields(post)
	if err != nil {
		return nil, err
	}

	// Stats columns are deliberately absent: counters only move through
	// IncrementStat. published_at keeps its first-set value.
	query := `
		UPDATE posts SET
			title = $2,
			subtitle = $3,
			slug = $4,
			content_format = $5,
			content = $6,
			cover_image = $7,
			series = $8,
			author = $9,
			published = $10,
			published_at = COALESCE(published_at, $11),
			tags = $12,
			category = $13,
			canonical_url = $14,
			seo = $15,
			is_featured = $16,
			metadata = $17,
			updated_at = now()
		WHERE id = $1
		RETURNING` + postColumns

	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	row := s.pool.QueryRow(ctx, query,
		id,
		post.Title,
		post.Subtitle,
		post.Slug,
		post.ContentFormat,
		post.Content,
		cover,
		series,
		post.AuthorID,
		post.Published,
		post.PublishedAt,
		tags,
		post.Category,
		post.CanonicalURL,
		seo,
		post.IsFeatured,
		metadata,
	)
	updated, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("update post: %w", mapWriteErr(err))
	}
	return updated, nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) PostByID(ctx context.Context, id string) (*models.Post, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+postColumns+`FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

func (s *Store) PostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+postColumns+`FROM posts WHERE slug = $1`, slug)
	post, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get post by slug: %w", err)
	}
	return post, nil
}

func buildPostFilter(q storage.PostQuery) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.PublishedOnly {
		clauses = append(clauses, "published = TRUE")
	}
	if q.FeaturedOnly {
		clauses = append(clauses, "is_featured = TRUE")
	}
	if q.Category != "" {
		clauses = append(clauses, fmt.Sprintf("category ILIKE %s", arg(q.Category)))
	}
	if q.Search != "" {
		p := arg(q.Search)
		clauses = append(clauses, fmt.Sprintf(
			"(title ILIKE '%%' || %s || '%%' OR category ILIKE '%%' || %s || '%%')", p, p))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *Store) Posts(ctx context.Context, q storage.PostQuery) ([]models.Post, storage.Pagination, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	where, args := buildPostFilter(q)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return nil, storage.Pagination{}, fmt.Errorf("count posts: %w", err)
	}

	listArgs := append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT %s FROM posts%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		postColumns, where, len(args)+1, len(args)+2)

	rows, err := s.pool.Query(ctx, query, listArgs...)
	if err != nil {
		return nil, storage.Pagination{}, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, storage.Pagination{}, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Pagination{}, fmt.Errorf("rows error: %w", err)
	}
	return posts, storage.NewPagination(total, page, limit), nil
}

func (s *Store) IncrementStat(ctx context.Context, id string, field storage.StatField) (*models.Stats, error) {
	var query string
	switch field {
	case storage.StatViews:
		query = `UPDATE posts SET views = views + 1 WHERE id = $1 RETURNING views, likes, shares`
	case storage.StatLikes:
		query = `UPDATE posts SET likes = likes + 1 WHERE id = $1 RETURNING views, likes, shares`
	case storage.StatShares:
		query = `UPDATE posts SET shares = shares + 1 WHERE id = $1 RETURNING views, likes, shares`
	default:
		return nil, fmt.Errorf("unknown stat field %q", field)
	}

	var stats models.Stats
	err := s.pool.QueryRow(ctx, query, id).Scan(&stats.Views, &stats.Likes, &stats.Shares)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("increment %s: %w", field, err)
	}
	return &stats, nil
}

func (s *Store) Categories(ctx context.Context) ([]storage.CategoryStat, error) {
	// Legacy rows may hold a bare JSONB string for cover_image.
	const query = `
		SELECT
			category,
			COUNT(*),
			COALESCE((ARRAY_AGG(
				CASE WHEN jsonb_typeof(cover_image) = 'string'
					THEN cover_image #>> '{}'
					ELSE cover_image ->> 'url'
				END ORDER BY created_at DESC
			))[1], '')
		FROM posts
		WHERE published = TRUE
		GROUP BY category
		ORDER BY COUNT(*) DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []storage.CategoryStat
	for rows.Next() {
		var c storage.CategoryStat
		if err := rows.Scan(&c.Name, &c.Count, &c.LatestImage); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) PostTotals(ctx context.Context) (storage.PostTotals, error) {
	const query = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE published),
			COUNT(*) FILTER (WHERE NOT published),
			COALESCE(SUM(views), 0),
			COALESCE(SUM(likes), 0)
		FROM posts
	`
	var t storage.PostTotals
	err := s.pool.QueryRow(ctx, query).Scan(&t.Posts, &t.Published, &t.Drafts, &t.Views, &t.Likes)
	if err != nil {
		return storage.PostTotals{}, fmt.Errorf("post totals: %w", err)
	}
	return t, nil
}

const userColumns = `
	id::text,
	name,
	email,
	password_hash,
	image,
	role,
	is_active,
	last_login,
	created_at,
	updated_at
`

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Image,
		&user.Role,
		&user.IsActive,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	const query = `
		INSERT INTO users (name, email, password_hash, image, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING` + userColumns

	row := s.pool.QueryRow(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Image, user.Role, user.IsActive)
	created, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", mapWriteErr(err))
	}
	return created, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, user *models.User) (*models.User, error) {
	const query = `
		UPDATE users SET
			name = $2,
			email = $3,
			password_hash = $4,
			image = $5,
			role = $6,
			is_active = $7,
			last_login = $8,
			updated_at = now()
		WHERE id = $1
		RETURNING` + userColumns

	row := s.pool.QueryRow(ctx, query,
		id, user.Name, user.Email, user.PasswordHash, user.Image, user.Role, user.IsActive, user.LastLogin)
	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("update user: %w", mapWriteErr(err))
	}
	return updated, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+userColumns+`FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+userColumns+`FROM users WHERE lower(email) = lower($1)`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (s *Store) Users(ctx context.Context, q storage.UserQuery) ([]models.User, storage.Pagination, storage.UserTotals, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	var (
		clauses []string
		args    []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q.Role != "" {
		clauses = append(clauses, fmt.Sprintf("role = %s", arg(string(q.Role))))
	}
	if q.Search != "" {
		p := arg(q.Search)
		clauses = append(clauses, fmt.Sprintf(
			"(name ILIKE '%%' || %s || '%%' OR email ILIKE '%%' || %s || '%%')", p, p))
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var totals storage.UserTotals
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE role = 'admin'),
			COUNT(*) FILTER (WHERE role = 'author')
		FROM users
	`).Scan(&totals.Total, &totals.Active, &totals.Admins, &totals.Authors)
	if err != nil {
		return nil, storage.Pagination{}, storage.UserTotals{}, fmt.Errorf("user totals: %w", err)
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, storage.Pagination{}, storage.UserTotals{}, fmt.Errorf("count users: %w", err)
	}

	listArgs := append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)

	rows, err := s.pool.Query(ctx, query, listArgs...)
	if err != nil {
		return nil, storage.Pagination{}, storage.UserTotals{}, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, storage.Pagination{}, storage.UserTotals{}, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Pagination{}, storage.UserTotals{}, fmt.Errorf("rows error: %w", err)
	}
	return users, storage.NewPagination(total, page, limit), totals, nil
}

func (s *Store) FirstUser(ctx context.Context) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+userColumns+`FROM users ORDER BY created_at ASC LIMIT 1`)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("first user: %w", err)
	}
	return user, nil
}
