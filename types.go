package atelier

import "time"

// ReactionType identifies one of the three reactions a blog post accepts.
type ReactionType string

const (
	ReactionHeart       ReactionType = "heart"
	ReactionDove        ReactionType = "dove"
	ReactionBrokenHeart ReactionType = "brokenHeart"
)

// Valid reports whether t is one of the known reaction types.
func (t ReactionType) Valid() bool {
	switch t {
	case ReactionHeart, ReactionDove, ReactionBrokenHeart:
		return true
	}
	return false
}

// ReactionCounts holds the per-type reaction totals denormalized onto a BlogPost.
type ReactionCounts struct {
	Heart       int `json:"heart"`
	Dove        int `json:"dove"`
	BrokenHeart int `json:"brokenHeart"`
}

// Total returns the sum of all three counters.
func (r ReactionCounts) Total() int {
	return r.Heart + r.Dove + r.BrokenHeart
}

// Essay is a long-form piece of writing. Content is stored as opaque HTML;
// Date and ReadingTime are free-text display strings.
type Essay struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Content     string    `json:"content"`
	Summary     string    `json:"summary"`
	Date        string    `json:"date"`
	ReadingTime string    `json:"readingTime"`
	Tags        []string  `json:"tags"`
	Views       int       `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Work is an academic work with an optional cover image.
type Work struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	Date      string    `json:"date"`
	Views     int       `json:"views"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Project is a portfolio entry.
type Project struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Company      string    `json:"company,omitempty"`
	Date         string    `json:"date"`
	Image        string    `json:"image,omitempty"`
	Technologies []string  `json:"technologies"`
	Link         string    `json:"link,omitempty"`
	Views        int       `json:"views"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BlogPost is a short post, optionally mirroring an external LinkedIn post.
// Image may point at an uploaded image or video.
type BlogPost struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Slug        string         `json:"slug"`
	Content     string         `json:"content"`
	Image       string         `json:"image,omitempty"`
	Date        string         `json:"date"`
	LinkedInURL string         `json:"linkedInUrl,omitempty"`
	Reactions   ReactionCounts `json:"reactions"`
	Views       int            `json:"views"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Quote is a short attributed quotation. Quotes carry no view counter;
// quote-page views are aggregated on the day record instead.
type Quote struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Reaction records a single user's reaction to a blog post. At most one
// reaction exists per (PostID, UserIdentifier) pair.
type Reaction struct {
	PostID         string       `json:"postId"`
	Type           ReactionType `json:"type"`
	UserIdentifier string       `json:"userIdentifier"`
	CreatedAt      time.Time    `json:"createdAt"`
}

// DayStats is one calendar day of aggregated analytics, created lazily on
// the first tracked view of that day. Date is formatted as 2006-01-02.
type DayStats struct {
	Date           string         `json:"date"`
	PageViews      int            `json:"pageViews"`
	UniqueVisitors int            `json:"uniqueVisitors"`
	EssayViews     map[string]int `json:"essayViews"`
	WorkViews      map[string]int `json:"workViews"`
	BlogViews      map[string]int `json:"blogViews"`
	QuoteViews     int            `json:"quoteViews"`
}

// Homepage is the editable landing-page content.
type Homepage struct {
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DefaultHomepage is returned when no homepage content has been saved yet.
func DefaultHomepage() *Homepage {
	return &Homepage{
		Title:       "Welcome",
		Subtitle:    "Essays, works and projects",
		Description: "A personal space for essays, academic works, projects and collected quotes.",
	}
}

// --- Create inputs ---
//
// Inputs carry only caller-settable fields; the store assigns id,
// timestamps and counters.

type EssayInput struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Content     string   `json:"content"`
	Summary     string   `json:"summary"`
	Date        string   `json:"date"`
	ReadingTime string   `json:"readingTime"`
	Tags        []string `json:"tags"`
}

type WorkInput struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
	Image   string `json:"image"`
	Date    string `json:"date"`
}

type ProjectInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Company      string   `json:"company"`
	Date         string   `json:"date"`
	Image        string   `json:"image"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link"`
}

type BlogPostInput struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Content     string `json:"content"`
	Image       string `json:"image"`
	Date        string `json:"date"`
	LinkedInURL string `json:"linkedInUrl"`
}

type QuoteInput struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

type HomepageInput struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
}

// --- Partial updates ---
//
// Patch fields are pointers so an update can distinguish "not provided"
// from "set to the zero value". Only non-nil fields are applied; UpdatedAt
// is always refreshed.

type EssayPatch struct {
	Title       *string   `json:"title"`
	Slug        *string   `json:"slug"`
	Content     *string   `json:"content"`
	Summary     *string   `json:"summary"`
	Date        *string   `json:"date"`
	ReadingTime *string   `json:"readingTime"`
	Tags        *[]string `json:"tags"`
}

type WorkPatch struct {
	Title   *string `json:"title"`
	Slug    *string `json:"slug"`
	Content *string `json:"content"`
	Image   *string `json:"image"`
	Date    *string `json:"date"`
}

type ProjectPatch struct {
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	Company      *string   `json:"company"`
	Date         *string   `json:"date"`
	Image        *string   `json:"image"`
	Technologies *[]string `json:"technologies"`
	Link         *string   `json:"link"`
}

type BlogPostPatch struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Content     *string `json:"content"`
	Image       *string `json:"image"`
	Date        *string `json:"date"`
	LinkedInURL *string `json:"linkedInUrl"`
}

type QuotePatch struct {
	Text   *string `json:"text"`
	Author *string `json:"author"`
}
