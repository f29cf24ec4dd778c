package atelier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store over a Postgres connection pool. The schema is
// created on startup with IF NOT EXISTS so the server can point at a fresh
// database and just run.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects, pings, and ensures the schema.
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PGStore{pool: pool}
	if err := s.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PGStore) initialize(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS essays (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT UNIQUE NOT NULL,
			content TEXT NOT NULL,
			summary TEXT,
			date TEXT,
			reading_time TEXT,
			tags TEXT[] DEFAULT '{}',
			views INTEGER DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT now(),
			updated_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS works (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT UNIQUE NOT NULL,
			content TEXT NOT NULL,
			image TEXT,
			date TEXT,
			views INTEGER DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT now(),
			updated_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			company TEXT,
			date TEXT,
			image TEXT,
			technologies TEXT[] DEFAULT '{}',
			link TEXT,
			views INTEGER DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT now(),
			updated_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS blog_posts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL,
			content TEXT NOT NULL,
			image TEXT,
			date TEXT,
			linkedin_url TEXT,
			heart_reactions INTEGER DEFAULT 0,
			dove_reactions INTEGER DEFAULT 0,
			broken_heart_reactions INTEGER DEFAULT 0,
			views INTEGER DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT now(),
			updated_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS quotes (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			author TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT now(),
			updated_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS reactions (
			id SERIAL PRIMARY KEY,
			post_id TEXT NOT NULL,
			type TEXT NOT NULL,
			user_identifier TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT now(),
			UNIQUE (post_id, user_identifier)
		)`,
		`CREATE TABLE IF NOT EXISTS homepage (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			title TEXT NOT NULL,
			subtitle TEXT NOT NULL,
			description TEXT NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS analytics (
			date TEXT PRIMARY KEY,
			page_views INTEGER DEFAULT 0,
			unique_visitors INTEGER DEFAULT 0,
			essay_views JSONB DEFAULT '{}',
			work_views JSONB DEFAULT '{}',
			blog_views JSONB DEFAULT '{}',
			quote_views INTEGER DEFAULT 0
		)`,
	}
	for _, q := range stmts {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// updateBuilder accumulates SET clauses and arguments for a dynamic
// partial UPDATE, so patches only touch the columns the caller provided.
type updateBuilder struct {
	sets []string
	args []any
}

func (b *updateBuilder) add(col string, val any) {
	b.args = append(b.args, val)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", col, len(b.args)))
}

func (b *updateBuilder) empty() bool { return len(b.sets) == 0 }

// query finishes the statement: "UPDATE <table> SET ..., updated_at = now()
// WHERE id = $n RETURNING <returning>".
func (b *updateBuilder) query(table, returning string, id string) (string, []any) {
	b.args = append(b.args, id)
	q := fmt.Sprintf("UPDATE %s SET %s, updated_at = now() WHERE id = $%d RETURNING %s",
		table, strings.Join(b.sets, ", "), len(b.args), returning)
	return q, b.args
}

// --- Essays ---

const essayCols = `id, title, slug, content, COALESCE(summary, ''), COALESCE(date, ''),
	COALESCE(reading_time, ''), COALESCE(tags, '{}'), views, created_at, updated_at`

func scanEssay(row pgx.Row) (*Essay, error) {
	var e Essay
	err := row.Scan(&e.ID, &e.Title, &e.Slug, &e.Content, &e.Summary, &e.Date,
		&e.ReadingTime, &e.Tags, &e.Views, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *PGStore) Essays(ctx context.Context) ([]Essay, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+essayCols+` FROM essays ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Essay{}
	for rows.Next() {
		e, err := scanEssay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *PGStore) Essay(ctx context.Context, id string) (*Essay, error) {
	return scanEssay(s.pool.QueryRow(ctx, `SELECT `+essayCols+` FROM essays WHERE id = $1`, id))
}

// insertEssay writes a fully-formed row; migration uses it to preserve ids
// and timestamps.
func (s *PGStore) insertEssay(ctx context.Context, e Essay) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO essays (id, title, slug, content, summary, date, reading_time, tags, views, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.Title, e.Slug, e.Content, e.Summary, e.Date, e.ReadingTime, e.Tags, e.Views, e.CreatedAt, e.UpdatedAt)
	return err
}

func (s *PGStore) CreateEssay(ctx context.Context, in EssayInput) (*Essay, error) {
	now := time.Now().UTC()
	e := Essay{
		ID: newID(), Title: in.Title, Slug: in.Slug, Content: in.Content,
		Summary: in.Summary, Date: in.Date, ReadingTime: in.ReadingTime,
		Tags: in.Tags, CreatedAt: now, UpdatedAt: now,
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	if err := s.insertEssay(ctx, e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *PGStore) UpdateEssay(ctx context.Context, id string, p EssayPatch) (*Essay, error) {
	var b updateBuilder
	if p.Title != nil {
		b.add("title", *p.Title)
	}
	if p.Slug != nil {
		b.add("slug", *p.Slug)
	}
	if p.Content != nil {
		b.add("content", *p.Content)
	}
	if p.Summary != nil {
		b.add("summary", *p.Summary)
	}
	if p.Date != nil {
		b.add("date", *p.Date)
	}
	if p.ReadingTime != nil {
		b.add("reading_time", *p.ReadingTime)
	}
	if p.Tags != nil {
		b.add("tags", *p.Tags)
	}
	if b.empty() {
		return s.touchEssay(ctx, id)
	}
	q, args := b.query("essays", essayCols, id)
	return scanEssay(s.pool.QueryRow(ctx, q, args...))
}

func (s *PGStore) touchEssay(ctx context.Context, id string) (*Essay, error) {
	return scanEssay(s.pool.QueryRow(ctx,
		`UPDATE essays SET updated_at = now() WHERE id = $1 RETURNING `+essayCols, id))
}

func (s *PGStore) DeleteEssay(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM essays WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// --- Works ---

const workCols = `id, title, slug, content, COALESCE(image, ''), COALESCE(date, ''),
	views, created_at, updated_at`

func scanWork(row pgx.Row) (*Work, error) {
	var w Work
	err := row.Scan(&w.ID, &w.Title, &w.Slug, &w.Content, &w.Image, &w.Date,
		&w.Views, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *PGStore) Works(ctx context.Context) ([]Work, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+workCols+` FROM works ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Work{}
	for rows.Next() {
		w, err := scanWork(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (s *PGStore) Work(ctx context.Context, id string) (*Work, error) {
	return scanWork(s.pool.QueryRow(ctx, `SELECT `+workCols+` FROM works WHERE id = $1`, id))
}

func (s *PGStore) insertWork(ctx context.Context, w Work) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO works (id, title, slug, content, image, date, views, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		w.ID, w.Title, w.Slug, w.Content, w.Image, w.Date, w.Views, w.CreatedAt, w.UpdatedAt)
	return err
}

func (s *PGStore) CreateWork(ctx context.Context, in WorkInput) (*Work, error) {
	now := time.Now().UTC()
	w := Work{
		ID: newID(), Title: in.Title, Slug: in.Slug, Content: in.Content,
		Image: in.Image, Date: in.Date, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.insertWork(ctx, w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *PGStore) UpdateWork(ctx context.Context, id string, p WorkPatch) (*Work, error) {
	var b updateBuilder
	if p.Title != nil {
		b.add("title", *p.Title)
	}
	if p.Slug != nil {
		b.add("slug", *p.Slug)
	}
	if p.Content != nil {
		b.add("content", *p.Content)
	}
	if p.Image != nil {
		b.add("image", *p.Image)
	}
	if p.Date != nil {
		b.add("date", *p.Date)
	}
	if b.empty() {
		return scanWork(s.pool.QueryRow(ctx,
			`UPDATE works SET updated_at = now() WHERE id = $1 RETURNING `+workCols, id))
	}
	q, args := b.query("works", workCols, id)
	return scanWork(s.pool.QueryRow(ctx, q, args...))
}

func (s *PGStore) DeleteWork(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM works WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// --- Projects ---

const projectCols = `id, title, description, COALESCE(company, ''), COALESCE(date, ''),
	COALESCE(image, ''), COALESCE(technologies, '{}'), COALESCE(link, ''),
	views, created_at, updated_at`

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Company, &p.Date,
		&p.Image, &p.Technologies, &p.Link, &p.Views, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PGStore) Projects(ctx context.Context) ([]Project, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+projectCols+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PGStore) Project(ctx context.Context, id string) (*Project, error) {
	return scanProject(s.pool.QueryRow(ctx, `SELECT `+projectCols+` FROM projects WHERE id = $1`, id))
}

func (s *PGStore) insertProject(ctx context.Context, p Project) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO projects (id, title, description, company, date, image, technologies, link, views, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Title, p.Description, p.Company, p.Date, p.Image, p.Technologies, p.Link,
		p.Views, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *PGStore) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	now := time.Now().UTC()
	p := Project{
		ID: newID(), Title: in.Title, Description: in.Description, Company: in.Company,
		Date: in.Date, Image: in.Image, Technologies: in.Technologies, Link: in.Link,
		CreatedAt: now, UpdatedAt: now,
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if err := s.insertProject(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PGStore) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (*Project, error) {
	var b updateBuilder
	if patch.Title != nil {
		b.add("title", *patch.Title)
	}
	if patch.Description != nil {
		b.add("description", *patch.Description)
	}
	if patch.Company != nil {
		b.add("company", *patch.Company)
	}
	if patch.Date != nil {
		b.add("date", *patch.Date)
	}
	if patch.Image != nil {
		b.add("image", *patch.Image)
	}
	if patch.Technologies != nil {
		b.add("technologies", *patch.Technologies)
	}
	if patch.Link != nil {
		b.add("link", *patch.Link)
	}
	if b.empty() {
		return scanProject(s.pool.QueryRow(ctx,
			`UPDATE projects SET updated_at = now() WHERE id = $1 RETURNING `+projectCols, id))
	}
	q, args := b.query("projects", projectCols, id)
	return scanProject(s.pool.QueryRow(ctx, q, args...))
}

func (s *PGStore) DeleteProject(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// --- Blog posts ---

const blogCols = `id, title, slug, content, COALESCE(image, ''), COALESCE(date, ''),
	COALESCE(linkedin_url, ''), heart_reactions, dove_reactions, broken_heart_reactions,
	views, created_at, updated_at`

func scanBlogPost(row pgx.Row) (*BlogPost, error) {
	var p BlogPost
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Image, &p.Date,
		&p.LinkedInURL, &p.Reactions.Heart, &p.Reactions.Dove, &p.Reactions.BrokenHeart,
		&p.Views, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PGStore) BlogPosts(ctx context.Context) ([]BlogPost, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+blogCols+` FROM blog_posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BlogPost{}
	for rows.Next() {
		p, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PGStore) BlogPost(ctx context.Context, id string) (*BlogPost, error) {
	return scanBlogPost(s.pool.QueryRow(ctx, `SELECT `+blogCols+` FROM blog_posts WHERE id = $1`, id))
}

func (s *PGStore) insertBlogPost(ctx context.Context, p BlogPost) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO blog_posts (id, title, slug, content, image, date, linkedin_url,
			heart_reactions, dove_reactions, broken_heart_reactions, views, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.Title, p.Slug, p.Content, p.Image, p.Date, p.LinkedInURL,
		p.Reactions.Heart, p.Reactions.Dove, p.Reactions.BrokenHeart,
		p.Views, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *PGStore) CreateBlogPost(ctx context.Context, in BlogPostInput) (*BlogPost, error) {
	now := time.Now().UTC()
	p := BlogPost{
		ID: newID(), Title: in.Title, Slug: in.Slug, Content: in.Content,
		Image: in.Image, Date: in.Date, LinkedInURL: in.LinkedInURL,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := s.insertBlogPost(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PGStore) UpdateBlogPost(ctx context.Context, id string, patch BlogPostPatch) (*BlogPost, error) {
	var b updateBuilder
	if patch.Title != nil {
		b.add("title", *patch.Title)
	}
	if patch.Slug != nil {
		b.add("slug", *patch.Slug)
	}
	if patch.Content != nil {
		b.add("content", *patch.Content)
	}
	if patch.Image != nil {
		b.add("image", *patch.Image)
	}
	if patch.Date != nil {
		b.add("date", *patch.Date)
	}
	if patch.LinkedInURL != nil {
		b.add("linkedin_url", *patch.LinkedInURL)
	}
	if b.empty() {
		return scanBlogPost(s.pool.QueryRow(ctx,
			`UPDATE blog_posts SET updated_at = now() WHERE id = $1 RETURNING `+blogCols, id))
	}
	q, args := b.query("blog_posts", blogCols, id)
	return scanBlogPost(s.pool.QueryRow(ctx, q, args...))
}

func (s *PGStore) DeleteBlogPost(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	_, err = s.pool.Exec(ctx, `DELETE FROM reactions WHERE post_id = $1`, id)
	return true, err
}

// --- Quotes ---

func scanQuote(row pgx.Row) (*Quote, error) {
	var q Quote
	err := row.Scan(&q.ID, &q.Text, &q.Author, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *PGStore) Quotes(ctx context.Context) ([]Quote, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, text, author, created_at, updated_at FROM quotes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func (s *PGStore) Quote(ctx context.Context, id string) (*Quote, error) {
	return scanQuote(s.pool.QueryRow(ctx,
		`SELECT id, text, author, created_at, updated_at FROM quotes WHERE id = $1`, id))
}

func (s *PGStore) insertQuote(ctx context.Context, q Quote) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quotes (id, text, author, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		q.ID, q.Text, q.Author, q.CreatedAt, q.UpdatedAt)
	return err
}

func (s *PGStore) CreateQuote(ctx context.Context, in QuoteInput) (*Quote, error) {
	now := time.Now().UTC()
	q := Quote{ID: newID(), Text: in.Text, Author: in.Author, CreatedAt: now, UpdatedAt: now}
	if err := s.insertQuote(ctx, q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *PGStore) UpdateQuote(ctx context.Context, id string, p QuotePatch) (*Quote, error) {
	var b updateBuilder
	if p.Text != nil {
		b.add("text", *p.Text)
	}
	if p.Author != nil {
		b.add("author", *p.Author)
	}
	if b.empty() {
		return scanQuote(s.pool.QueryRow(ctx,
			`UPDATE quotes SET updated_at = now() WHERE id = $1 RETURNING id, text, author, created_at, updated_at`, id))
	}
	q, args := b.query("quotes", "id, text, author, created_at, updated_at", id)
	return scanQuote(s.pool.QueryRow(ctx, q, args...))
}

func (s *PGStore) DeleteQuote(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// --- Homepage ---

func (s *PGStore) Homepage(ctx context.Context) (*Homepage, error) {
	var h Homepage
	err := s.pool.QueryRow(ctx,
		`SELECT title, subtitle, description, updated_at FROM homepage WHERE id = 1`).
		Scan(&h.Title, &h.Subtitle, &h.Description, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *PGStore) UpdateHomepage(ctx context.Context, in HomepageInput) (*Homepage, error) {
	var h Homepage
	err := s.pool.QueryRow(ctx,
		`INSERT INTO homepage (id, title, subtitle, description, updated_at)
		 VALUES (1, $1, $2, $3, now())
		 ON CONFLICT (id) DO UPDATE
		 SET title = EXCLUDED.title, subtitle = EXCLUDED.subtitle,
		     description = EXCLUDED.description, updated_at = now()
		 RETURNING title, subtitle, description, updated_at`,
		in.Title, in.Subtitle, in.Description).
		Scan(&h.Title, &h.Subtitle, &h.Description, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// --- Reactions ---

func reactionColumn(typ ReactionType) string {
	switch typ {
	case ReactionHeart:
		return "heart_reactions"
	case ReactionDove:
		return "dove_reactions"
	case ReactionBrokenHeart:
		return "broken_heart_reactions"
	}
	return ""
}

func (s *PGStore) AddReaction(ctx context.Context, postID string, typ ReactionType, user string) (bool, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reactions (post_id, type, user_identifier) VALUES ($1, $2, $3)`,
		postID, string(typ), user)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	col := reactionColumn(typ)
	_, err = s.pool.Exec(ctx,
		`UPDATE blog_posts SET `+col+` = `+col+` + 1 WHERE id = $1`, postID)
	return true, err
}

func (s *PGStore) RemoveReaction(ctx context.Context, postID, user string) (bool, error) {
	var typ string
	err := s.pool.QueryRow(ctx,
		`DELETE FROM reactions WHERE post_id = $1 AND user_identifier = $2 RETURNING type`,
		postID, user).Scan(&typ)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	col := reactionColumn(ReactionType(typ))
	if col == "" {
		return true, nil
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE blog_posts SET `+col+` = GREATEST(`+col+` - 1, 0) WHERE id = $1`, postID)
	return true, err
}

func (s *PGStore) ChangeReaction(ctx context.Context, postID string, typ ReactionType, user string) (bool, error) {
	var old string
	err := s.pool.QueryRow(ctx,
		`SELECT type FROM reactions WHERE post_id = $1 AND user_identifier = $2`,
		postID, user).Scan(&old)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if ReactionType(old) == typ {
		return true, nil
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE reactions SET type = $1 WHERE post_id = $2 AND user_identifier = $3`,
		string(typ), postID, user)
	if err != nil {
		return false, err
	}
	oldCol, newCol := reactionColumn(ReactionType(old)), reactionColumn(typ)
	_, err = s.pool.Exec(ctx,
		`UPDATE blog_posts SET `+oldCol+` = GREATEST(`+oldCol+` - 1, 0), `+newCol+` = `+newCol+` + 1 WHERE id = $1`,
		postID)
	return true, err
}

func (s *PGStore) HasUserReacted(ctx context.Context, postID, user string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reactions WHERE post_id = $1 AND user_identifier = $2)`,
		postID, user).Scan(&exists)
	return exists, err
}

// --- Analytics ---

// viewsColumn maps a trackable kind to its per-item JSONB column.
func viewsColumn(kind PageKind) string {
	switch kind {
	case PageEssay:
		return "essay_views"
	case PageWork:
		return "work_views"
	case PageBlog:
		return "blog_views"
	}
	return ""
}

func entityTable(kind PageKind) string {
	switch kind {
	case PageEssay:
		return "essays"
	case PageWork:
		return "works"
	case PageBlog:
		return "blog_posts"
	case PageProject:
		return "projects"
	}
	return ""
}

func (s *PGStore) TrackPageView(ctx context.Context, kind PageKind, itemID string) error {
	today := time.Now().UTC().Format("2006-01-02")

	if kind == PageQuotes {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO analytics (date, page_views, quote_views) VALUES ($1, 1, 1)
			 ON CONFLICT (date) DO UPDATE
			 SET page_views = analytics.page_views + 1, quote_views = analytics.quote_views + 1`,
			today)
		return err
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO analytics (date, page_views) VALUES ($1, 1)
		 ON CONFLICT (date) DO UPDATE SET page_views = analytics.page_views + 1`,
		today)
	if err != nil {
		return err
	}
	if itemID == "" {
		return nil
	}

	if col := viewsColumn(kind); col != "" {
		_, err = s.pool.Exec(ctx,
			`UPDATE analytics
			 SET `+col+` = jsonb_set(COALESCE(`+col+`, '{}'), ARRAY[$2],
				 (COALESCE(`+col+`->>$2, '0')::int + 1)::text::jsonb)
			 WHERE date = $1`,
			today, itemID)
		if err != nil {
			return err
		}
	}
	if tbl := entityTable(kind); tbl != "" {
		_, err = s.pool.Exec(ctx,
			`UPDATE `+tbl+` SET views = views + 1 WHERE id = $1`, itemID)
	}
	return err
}

func (s *PGStore) AnalyticsRange(ctx context.Context, start, end string) ([]DayStats, error) {
	q := `SELECT date, page_views, unique_visitors, essay_views, work_views, blog_views, quote_views
	      FROM analytics`
	var (
		conds []string
		args  []any
	)
	if start != "" {
		args = append(args, start)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if end != "" {
		args = append(args, end)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY date DESC"

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayStats
	for rows.Next() {
		var (
			d                          DayStats
			essayRaw, workRaw, blogRaw []byte
		)
		if err := rows.Scan(&d.Date, &d.PageViews, &d.UniqueVisitors,
			&essayRaw, &workRaw, &blogRaw, &d.QuoteViews); err != nil {
			return nil, err
		}
		if d.EssayViews, err = decodeViewMap(essayRaw); err != nil {
			return nil, err
		}
		if d.WorkViews, err = decodeViewMap(workRaw); err != nil {
			return nil, err
		}
		if d.BlogViews, err = decodeViewMap(blogRaw); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func decodeViewMap(raw []byte) (map[string]int, error) {
	m := map[string]int{}
	if len(raw) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode view map: %w", err)
	}
	return m, nil
}

func (s *PGStore) PruneAnalytics(ctx context.Context, before string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM analytics WHERE date < $1`, before)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// insertDayStats writes a full day record; used by migration.
func (s *PGStore) insertDayStats(ctx context.Context, d DayStats) error {
	essayRaw, err := json.Marshal(orEmptyMap(d.EssayViews))
	if err != nil {
		return err
	}
	workRaw, err := json.Marshal(orEmptyMap(d.WorkViews))
	if err != nil {
		return err
	}
	blogRaw, err := json.Marshal(orEmptyMap(d.BlogViews))
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO analytics (date, page_views, unique_visitors, essay_views, work_views, blog_views, quote_views)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (date) DO NOTHING`,
		d.Date, d.PageViews, d.UniqueVisitors, essayRaw, workRaw, blogRaw, d.QuoteViews)
	return err
}

func orEmptyMap(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

// insertReaction writes a full reaction row; used by migration. Duplicate
// pairs in the source are skipped silently.
func (s *PGStore) insertReaction(ctx context.Context, r Reaction) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reactions (post_id, type, user_identifier, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (post_id, user_identifier) DO NOTHING`,
		r.PostID, string(r.Type), r.UserIdentifier, r.CreatedAt)
	return err
}
