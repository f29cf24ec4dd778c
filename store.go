package atelier

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// PageKind names a trackable page type for TrackPageView.
type PageKind string

const (
	PageEssay   PageKind = "essay"
	PageWork    PageKind = "work"
	PageBlog    PageKind = "blog"
	PageProject PageKind = "project"
	PageQuotes  PageKind = "quotes"
)

// Valid reports whether k is a known page kind.
func (k PageKind) Valid() bool {
	switch k {
	case PageEssay, PageWork, PageBlog, PageProject, PageQuotes:
		return true
	}
	return false
}

// Store is the capability set shared by both persistence backends.
//
// Get methods return (nil, nil) when the id is absent; Update methods do the
// same, and Delete methods return false. Handlers translate those into 404s.
// The file backend ignores ctx; the relational backend passes it through to
// the driver.
type Store interface {
	Essays(ctx context.Context) ([]Essay, error)
	Essay(ctx context.Context, id string) (*Essay, error)
	CreateEssay(ctx context.Context, in EssayInput) (*Essay, error)
	UpdateEssay(ctx context.Context, id string, p EssayPatch) (*Essay, error)
	DeleteEssay(ctx context.Context, id string) (bool, error)

	Works(ctx context.Context) ([]Work, error)
	Work(ctx context.Context, id string) (*Work, error)
	CreateWork(ctx context.Context, in WorkInput) (*Work, error)
	UpdateWork(ctx context.Context, id string, p WorkPatch) (*Work, error)
	DeleteWork(ctx context.Context, id string) (bool, error)

	Projects(ctx context.Context) ([]Project, error)
	Project(ctx context.Context, id string) (*Project, error)
	CreateProject(ctx context.Context, in ProjectInput) (*Project, error)
	UpdateProject(ctx context.Context, id string, p ProjectPatch) (*Project, error)
	DeleteProject(ctx context.Context, id string) (bool, error)

	BlogPosts(ctx context.Context) ([]BlogPost, error)
	BlogPost(ctx context.Context, id string) (*BlogPost, error)
	CreateBlogPost(ctx context.Context, in BlogPostInput) (*BlogPost, error)
	UpdateBlogPost(ctx context.Context, id string, p BlogPostPatch) (*BlogPost, error)
	DeleteBlogPost(ctx context.Context, id string) (bool, error)

	Quotes(ctx context.Context) ([]Quote, error)
	Quote(ctx context.Context, id string) (*Quote, error)
	CreateQuote(ctx context.Context, in QuoteInput) (*Quote, error)
	UpdateQuote(ctx context.Context, id string, p QuotePatch) (*Quote, error)
	DeleteQuote(ctx context.Context, id string) (bool, error)

	Homepage(ctx context.Context) (*Homepage, error)
	UpdateHomepage(ctx context.Context, in HomepageInput) (*Homepage, error)

	// AddReaction returns false without mutating anything when the
	// (postID, user) pair has already reacted. "Already reacted" is an
	// ordinary negative result, not an error.
	AddReaction(ctx context.Context, postID string, typ ReactionType, user string) (bool, error)
	RemoveReaction(ctx context.Context, postID, user string) (bool, error)
	ChangeReaction(ctx context.Context, postID string, typ ReactionType, user string) (bool, error)
	HasUserReacted(ctx context.Context, postID, user string) (bool, error)

	// TrackPageView bumps the aggregate page-view counter on today's day
	// record, the per-item map for essay/work/blog kinds, and the target
	// entity's own view counter where one exists. The quotes kind bumps
	// only the aggregate quote counter.
	TrackPageView(ctx context.Context, kind PageKind, itemID string) error

	// AnalyticsRange returns day records within [start, end] (either bound
	// may be empty), newest first.
	AnalyticsRange(ctx context.Context, start, end string) ([]DayStats, error)

	// PruneAnalytics removes day records older than the given date and
	// returns how many were removed.
	PruneAnalytics(ctx context.Context, before string) (int, error)

	Close() error
}

// OpenStore selects the backend once at startup: Postgres when a connection
// URL is configured, otherwise the file-backed store. The choice is injected
// into the App; nothing else in the codebase inspects the environment.
func OpenStore(ctx context.Context, cfg *Config) (Store, error) {
	if cfg.DatabaseURL != "" {
		log.Println("store: using postgres backend")
		return NewPGStore(ctx, cfg.DatabaseURL)
	}
	log.Println("store: using file backend (data will not survive without a persistent volume)")
	return NewFileStore(cfg.DataDir, cfg.UploadsDir)
}

// newID returns a collision-resistant record identifier.
func newID() string {
	return uuid.NewString()
}
