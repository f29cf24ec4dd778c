package atelier

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStore(dir, t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s, dir
}

func TestFileStoreSeedsOnFirstRun(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	essays, err := s.Essays(ctx)
	if err != nil {
		t.Fatalf("Essays: %v", err)
	}
	if len(essays) == 0 {
		t.Fatal("expected seeded essays")
	}
	quotes, err := s.Quotes(ctx)
	if err != nil {
		t.Fatalf("Quotes: %v", err)
	}
	if len(quotes) != 10 {
		t.Fatalf("expected 10 seeded quotes, got %d", len(quotes))
	}
}

func TestSeededWorksOrderIsStable(t *testing.T) {
	s, dir := setupTestStore(t)
	ctx := context.Background()

	works, err := s.Works(ctx)
	if err != nil {
		t.Fatalf("Works: %v", err)
	}
	if len(works) < 2 {
		t.Fatalf("expected seeded works, got %d", len(works))
	}
	for i := 1; i < len(works); i++ {
		if !works[i-1].CreatedAt.After(works[i].CreatedAt) {
			t.Fatalf("works %d and %d share a timestamp; ordering would be nondeterministic", i-1, i)
		}
	}

	reloaded, err := NewFileStore(dir, t.TempDir())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	again, err := reloaded.Works(ctx)
	if err != nil {
		t.Fatalf("Works after reload: %v", err)
	}
	for i := range works {
		if works[i].ID != again[i].ID {
			t.Fatalf("work order changed across reload at %d: %s != %s", i, works[i].ID, again[i].ID)
		}
	}
}

func TestEssayCRUD(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	e, err := s.CreateEssay(ctx, EssayInput{
		Title: "Test Essay", Slug: "test-essay", Content: "body",
		Summary: "sum", Date: "May 1, 2025", ReadingTime: "3 min read",
		Tags: []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("CreateEssay: %v", err)
	}
	if e.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := s.Essay(ctx, e.ID)
	if err != nil {
		t.Fatalf("Essay: %v", err)
	}
	if got == nil || got.Title != "Test Essay" {
		t.Fatalf("lookup mismatch: %+v", got)
	}

	// partial update leaves unmentioned fields alone
	time.Sleep(5 * time.Millisecond)
	title := "Renamed"
	upd, err := s.UpdateEssay(ctx, e.ID, EssayPatch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateEssay: %v", err)
	}
	if upd.Title != "Renamed" {
		t.Fatalf("title not applied: %q", upd.Title)
	}
	if upd.Content != "body" || upd.Summary != "sum" || len(upd.Tags) != 2 {
		t.Fatalf("unpatched fields changed: %+v", upd)
	}
	if !upd.UpdatedAt.After(e.UpdatedAt) {
		t.Fatal("UpdatedAt not refreshed")
	}
	if !upd.CreatedAt.Equal(e.CreatedAt) {
		t.Fatal("CreatedAt must not change on update")
	}

	missing, err := s.UpdateEssay(ctx, "no-such-id", EssayPatch{Title: &title})
	if err != nil || missing != nil {
		t.Fatalf("update of absent id: got %v, %v", missing, err)
	}

	ok, err := s.DeleteEssay(ctx, e.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteEssay: %v, %v", ok, err)
	}
	ok, err = s.DeleteEssay(ctx, e.ID)
	if err != nil || ok {
		t.Fatalf("second delete should report false, got %v, %v", ok, err)
	}
}

func TestReactionUniqueness(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p, err := s.CreateBlogPost(ctx, BlogPostInput{Title: "Post", Slug: "post", Content: "c"})
	if err != nil {
		t.Fatalf("CreateBlogPost: %v", err)
	}

	added, err := s.AddReaction(ctx, p.ID, ReactionHeart, "1.2.3.4")
	if err != nil || !added {
		t.Fatalf("first AddReaction: %v, %v", added, err)
	}

	// same user, same post: rejected regardless of type
	added, err = s.AddReaction(ctx, p.ID, ReactionDove, "1.2.3.4")
	if err != nil {
		t.Fatalf("duplicate AddReaction: %v", err)
	}
	if added {
		t.Fatal("duplicate reaction must be rejected")
	}

	got, _ := s.BlogPost(ctx, p.ID)
	if got.Reactions.Heart != 1 || got.Reactions.Dove != 0 {
		t.Fatalf("counters wrong after duplicate: %+v", got.Reactions)
	}

	added, err = s.AddReaction(ctx, p.ID, ReactionHeart, "5.6.7.8")
	if err != nil || !added {
		t.Fatalf("second user AddReaction: %v, %v", added, err)
	}
	got, _ = s.BlogPost(ctx, p.ID)
	if got.Reactions.Heart != 2 {
		t.Fatalf("expected 2 hearts, got %d", got.Reactions.Heart)
	}
}

func TestChangeAndRemoveReaction(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	p, _ := s.CreateBlogPost(ctx, BlogPostInput{Title: "Post", Slug: "post", Content: "c"})
	if _, err := s.AddReaction(ctx, p.ID, ReactionHeart, "u1"); err != nil {
		t.Fatalf("AddReaction: %v", err)
	}

	changed, err := s.ChangeReaction(ctx, p.ID, ReactionBrokenHeart, "u1")
	if err != nil || !changed {
		t.Fatalf("ChangeReaction: %v, %v", changed, err)
	}
	got, _ := s.BlogPost(ctx, p.ID)
	if got.Reactions.Heart != 0 || got.Reactions.BrokenHeart != 1 {
		t.Fatalf("counters after change: %+v", got.Reactions)
	}

	// changing to the same type is a no-op success
	changed, err = s.ChangeReaction(ctx, p.ID, ReactionBrokenHeart, "u1")
	if err != nil || !changed {
		t.Fatalf("same-type change: %v, %v", changed, err)
	}

	changed, err = s.ChangeReaction(ctx, p.ID, ReactionHeart, "unknown")
	if err != nil || changed {
		t.Fatalf("change without existing reaction: %v, %v", changed, err)
	}

	removed, err := s.RemoveReaction(ctx, p.ID, "u1")
	if err != nil || !removed {
		t.Fatalf("RemoveReaction: %v, %v", removed, err)
	}
	got, _ = s.BlogPost(ctx, p.ID)
	if got.Reactions.Total() != 0 {
		t.Fatalf("counters after remove: %+v", got.Reactions)
	}
	reacted, _ := s.HasUserReacted(ctx, p.ID, "u1")
	if reacted {
		t.Fatal("HasUserReacted should be false after removal")
	}
}

func TestTrackPageView(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	e, _ := s.CreateEssay(ctx, EssayInput{Title: "Viewed", Slug: "viewed", Content: "c"})
	for i := 0; i < 3; i++ {
		if err := s.TrackPageView(ctx, PageEssay, e.ID); err != nil {
			t.Fatalf("TrackPageView: %v", err)
		}
	}
	if err := s.TrackPageView(ctx, PageQuotes, ""); err != nil {
		t.Fatalf("TrackPageView quotes: %v", err)
	}

	got, _ := s.Essay(ctx, e.ID)
	if got.Views != 3 {
		t.Fatalf("essay views = %d, want 3", got.Views)
	}

	today := time.Now().UTC().Format("2006-01-02")
	days, err := s.AnalyticsRange(ctx, today, today)
	if err != nil {
		t.Fatalf("AnalyticsRange: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected one day record, got %d", len(days))
	}
	d := days[0]
	if d.PageViews != 4 {
		t.Fatalf("pageViews = %d, want 4", d.PageViews)
	}
	if d.EssayViews[e.ID] != 3 {
		t.Fatalf("essayViews[%s] = %d, want 3", e.ID, d.EssayViews[e.ID])
	}
	if d.QuoteViews != 1 {
		t.Fatalf("quoteViews = %d, want 1", d.QuoteViews)
	}
}

func TestAnalyticsRangeReturnsDetachedCopies(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	e, _ := s.CreateEssay(ctx, EssayInput{Title: "Viewed", Slug: "viewed", Content: "c"})
	if err := s.TrackPageView(ctx, PageEssay, e.ID); err != nil {
		t.Fatalf("TrackPageView: %v", err)
	}

	days, err := s.AnalyticsRange(ctx, "", "")
	if err != nil {
		t.Fatalf("AnalyticsRange: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected one day record, got %d", len(days))
	}

	// later tracking must not show through an earlier result
	if err := s.TrackPageView(ctx, PageEssay, e.ID); err != nil {
		t.Fatalf("TrackPageView: %v", err)
	}
	if got := days[0].EssayViews[e.ID]; got != 1 {
		t.Fatalf("earlier result mutated: essayViews = %d, want 1", got)
	}

	// mutating a result must not reach the store
	days[0].EssayViews[e.ID] = 99
	fresh, _ := s.AnalyticsRange(ctx, "", "")
	if got := fresh[0].EssayViews[e.ID]; got != 2 {
		t.Fatalf("store mutated through result: essayViews = %d, want 2", got)
	}
}

// Serializing an AnalyticsRange result while views keep arriving must be
// safe; run with -race to catch shared map headers.
func TestAnalyticsRangeSafeUnderConcurrentTracking(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	e, _ := s.CreateEssay(ctx, EssayInput{Title: "Busy", Slug: "busy", Content: "c"})
	if err := s.TrackPageView(ctx, PageEssay, e.ID); err != nil {
		t.Fatalf("TrackPageView: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			if err := s.TrackPageView(ctx, PageEssay, e.ID); err != nil {
				t.Errorf("TrackPageView: %v", err)
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		days, err := s.AnalyticsRange(ctx, "", "")
		if err != nil {
			t.Fatalf("AnalyticsRange: %v", err)
		}
		if _, err := json.Marshal(days); err != nil {
			t.Fatalf("marshal: %v", err)
		}
	}
	wg.Wait()
}

func TestPruneAnalytics(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	s.analytics = []DayStats{
		{Date: "2024-01-01", PageViews: 10},
		{Date: "2024-06-01", PageViews: 5},
		{Date: "2025-01-01", PageViews: 2},
	}
	removed, err := s.PruneAnalytics(ctx, "2024-12-31")
	if err != nil {
		t.Fatalf("PruneAnalytics: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	days, _ := s.AnalyticsRange(ctx, "", "")
	if len(days) != 1 || days[0].Date != "2025-01-01" {
		t.Fatalf("unexpected remaining days: %+v", days)
	}
}

func TestFileStoreSurvivesReload(t *testing.T) {
	s, dir := setupTestStore(t)
	ctx := context.Background()

	e, err := s.CreateEssay(ctx, EssayInput{Title: "Persisted", Slug: "persisted", Content: "c"})
	if err != nil {
		t.Fatalf("CreateEssay: %v", err)
	}
	if _, err := s.UpdateHomepage(ctx, HomepageInput{Title: "Hi", Subtitle: "Sub", Description: "D"}); err != nil {
		t.Fatalf("UpdateHomepage: %v", err)
	}

	reloaded, err := NewFileStore(dir, t.TempDir())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got, err := reloaded.Essay(ctx, e.ID)
	if err != nil || got == nil {
		t.Fatalf("essay lost across reload: %v, %v", got, err)
	}
	h, err := reloaded.Homepage(ctx)
	if err != nil || h == nil || h.Title != "Hi" {
		t.Fatalf("homepage lost across reload: %+v, %v", h, err)
	}
}

func TestDeleteRemovesReferencedMedia(t *testing.T) {
	dataDir := t.TempDir()
	uploads := t.TempDir()
	s, err := NewFileStore(dataDir, uploads)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	writeUpload(t, uploads, "cover.jpg")
	writeUpload(t, uploads, "inline.png")
	writeUpload(t, uploads, "unrelated.jpg")

	w, err := s.CreateWork(ctx, WorkInput{
		Title: "W", Slug: "w",
		Image:   "/uploads/cover.jpg",
		Content: `intro <img src="/uploads/inline.png"> outro`,
	})
	if err != nil {
		t.Fatalf("CreateWork: %v", err)
	}
	if _, err := s.DeleteWork(ctx, w.ID); err != nil {
		t.Fatalf("DeleteWork: %v", err)
	}

	assertGone(t, uploads, "cover.jpg")
	assertGone(t, uploads, "inline.png")
	assertPresent(t, uploads, "unrelated.jpg")
}
