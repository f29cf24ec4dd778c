package atelier

import (
	"context"
	"fmt"
)

// MigrationReport counts the records copied by a file-to-Postgres migration.
type MigrationReport struct {
	Essays    int `json:"essays"`
	Works     int `json:"works"`
	Projects  int `json:"projects"`
	BlogPosts int `json:"blogPosts"`
	Quotes    int `json:"quotes"`
	Reactions int `json:"reactions"`
	Analytics int `json:"analytics"`
	Homepage  int `json:"homepage"`
}

// MigrateToPostgres copies the entire file-backed data set into dst,
// preserving ids, timestamps, view counters and reaction totals. Rows whose
// ids already exist in the destination cause the migration to fail rather
// than silently merge; run it against an empty database.
func MigrateToPostgres(ctx context.Context, src *FileStore, dst *PGStore) (*MigrationReport, error) {
	report := &MigrationReport{}

	essays, err := src.Essays(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range essays {
		if e.Tags == nil {
			e.Tags = []string{}
		}
		if err := dst.insertEssay(ctx, e); err != nil {
			return nil, fmt.Errorf("migrate essay %s: %w", e.ID, err)
		}
		report.Essays++
	}

	works, err := src.Works(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range works {
		if err := dst.insertWork(ctx, w); err != nil {
			return nil, fmt.Errorf("migrate work %s: %w", w.ID, err)
		}
		report.Works++
	}

	projects, err := src.Projects(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.Technologies == nil {
			p.Technologies = []string{}
		}
		if err := dst.insertProject(ctx, p); err != nil {
			return nil, fmt.Errorf("migrate project %s: %w", p.ID, err)
		}
		report.Projects++
	}

	posts, err := src.BlogPosts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if err := dst.insertBlogPost(ctx, p); err != nil {
			return nil, fmt.Errorf("migrate blog post %s: %w", p.ID, err)
		}
		report.BlogPosts++
	}

	quotes, err := src.Quotes(ctx)
	if err != nil {
		return nil, err
	}
	for _, q := range quotes {
		if err := dst.insertQuote(ctx, q); err != nil {
			return nil, fmt.Errorf("migrate quote %s: %w", q.ID, err)
		}
		report.Quotes++
	}

	src.mu.Lock()
	reactions := append([]Reaction(nil), src.reactions...)
	analytics := make([]DayStats, 0, len(src.analytics))
	for _, d := range src.analytics {
		analytics = append(analytics, cloneDayStats(d))
	}
	src.mu.Unlock()

	for _, r := range reactions {
		if err := dst.insertReaction(ctx, r); err != nil {
			return nil, fmt.Errorf("migrate reaction %s/%s: %w", r.PostID, r.UserIdentifier, err)
		}
		report.Reactions++
	}
	for _, d := range analytics {
		if err := dst.insertDayStats(ctx, d); err != nil {
			return nil, fmt.Errorf("migrate analytics %s: %w", d.Date, err)
		}
		report.Analytics++
	}

	home, err := src.Homepage(ctx)
	if err != nil {
		return nil, err
	}
	if home != nil {
		if _, err := dst.UpdateHomepage(ctx, HomepageInput{
			Title:       home.Title,
			Subtitle:    home.Subtitle,
			Description: home.Description,
		}); err != nil {
			return nil, fmt.Errorf("migrate homepage: %w", err)
		}
		report.Homepage = 1
	}

	return report, nil
}
