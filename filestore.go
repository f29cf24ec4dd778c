package atelier

import (
	"context"
	"log"
	"maps"
	"sort"
	"sync"
	"time"
)

// FileStore is the authoritative in-process store when no relational backend
// is configured. All entities live in keyed maps; every mutation rewrites the
// full JSON snapshot through the storage primitive, synchronously and
// unconditionally. A single mutex guards the maps so concurrent handlers
// cannot corrupt them; the observable contract is unchanged.
type FileStore struct {
	mu         sync.Mutex
	file       *snapshotFile
	uploadsDir string

	essays    map[string]Essay
	works     map[string]Work
	projects  map[string]Project
	posts     map[string]BlogPost
	quotes    map[string]Quote
	reactions []Reaction
	analytics []DayStats
	homepage  *Homepage
}

// NewFileStore loads the snapshot from dataDir, or seeds default content on
// first run. uploadsDir is where deleted entities' referenced media files
// are cleaned up from.
func NewFileStore(dataDir, uploadsDir string) (*FileStore, error) {
	s := &FileStore{
		file:       newSnapshotFile(dataDir),
		uploadsDir: uploadsDir,
		essays:     make(map[string]Essay),
		works:      make(map[string]Work),
		projects:   make(map[string]Project),
		posts:      make(map[string]BlogPost),
		quotes:     make(map[string]Quote),
	}

	snap, err := s.file.Load()
	if err != nil {
		log.Printf("filestore: snapshot unreadable, reseeding: %v", err)
		snap = nil
	}
	if snap == nil {
		snap = seedSnapshot()
		if !s.file.Save(snap) {
			log.Println("filestore: seed not persisted (read-only medium)")
		}
	}
	s.install(snap)
	return s, nil
}

func (s *FileStore) install(snap *snapshot) {
	for _, e := range snap.Essays {
		s.essays[e.ID] = e
	}
	for _, w := range snap.Works {
		s.works[w.ID] = w
	}
	for _, p := range snap.Projects {
		s.projects[p.ID] = p
	}
	for _, p := range snap.BlogPosts {
		s.posts[p.ID] = p
	}
	for _, q := range snap.Quotes {
		s.quotes[q.ID] = q
	}
	s.reactions = snap.Reactions
	s.analytics = snap.Analytics
	s.homepage = snap.Homepage
}

// persistLocked rewrites the whole snapshot. Callers must hold s.mu.
func (s *FileStore) persistLocked() {
	snap := &snapshot{
		Essays:    make([]Essay, 0, len(s.essays)),
		Works:     make([]Work, 0, len(s.works)),
		Projects:  make([]Project, 0, len(s.projects)),
		BlogPosts: make([]BlogPost, 0, len(s.posts)),
		Quotes:    make([]Quote, 0, len(s.quotes)),
		Reactions: s.reactions,
		Analytics: s.analytics,
		Homepage:  s.homepage,
	}
	for _, e := range s.essays {
		snap.Essays = append(snap.Essays, e)
	}
	for _, w := range s.works {
		snap.Works = append(snap.Works, w)
	}
	for _, p := range s.projects {
		snap.Projects = append(snap.Projects, p)
	}
	for _, p := range s.posts {
		snap.BlogPosts = append(snap.BlogPosts, p)
	}
	for _, q := range s.quotes {
		snap.Quotes = append(snap.Quotes, q)
	}
	s.file.Save(snap)
}

// Close is a no-op; the snapshot is rewritten on every mutation.
func (s *FileStore) Close() error { return nil }

// --- Essays ---

func (s *FileStore) Essays(ctx context.Context) ([]Essay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Essay, 0, len(s.essays))
	for _, e := range s.essays {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *FileStore) Essay(ctx context.Context, id string) (*Essay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.essays[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (s *FileStore) CreateEssay(ctx context.Context, in EssayInput) (*Essay, error) {
	now := time.Now().UTC()
	e := Essay{
		ID:          newID(),
		Title:       in.Title,
		Slug:        in.Slug,
		Content:     in.Content,
		Summary:     in.Summary,
		Date:        in.Date,
		ReadingTime: in.ReadingTime,
		Tags:        in.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.essays[e.ID] = e
	s.persistLocked()
	return &e, nil
}

func (s *FileStore) UpdateEssay(ctx context.Context, id string, p EssayPatch) (*Essay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.essays[id]
	if !ok {
		return nil, nil
	}
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Slug != nil {
		e.Slug = *p.Slug
	}
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.Summary != nil {
		e.Summary = *p.Summary
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.ReadingTime != nil {
		e.ReadingTime = *p.ReadingTime
	}
	if p.Tags != nil {
		e.Tags = *p.Tags
	}
	e.UpdatedAt = time.Now().UTC()
	s.essays[id] = e
	s.persistLocked()
	return &e, nil
}

func (s *FileStore) DeleteEssay(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.essays[id]
	if !ok {
		return false, nil
	}
	removeUploadedMedia(s.uploadsDir, "", e.Content)
	delete(s.essays, id)
	s.persistLocked()
	return true, nil
}

// --- Works ---

func (s *FileStore) Works(ctx context.Context) ([]Work, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Work, 0, len(s.works))
	for _, w := range s.works {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *FileStore) Work(ctx context.Context, id string) (*Work, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.works[id]; ok {
		return &w, nil
	}
	return nil, nil
}

func (s *FileStore) CreateWork(ctx context.Context, in WorkInput) (*Work, error) {
	now := time.Now().UTC()
	w := Work{
		ID:        newID(),
		Title:     in.Title,
		Slug:      in.Slug,
		Content:   in.Content,
		Image:     in.Image,
		Date:      in.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.works[w.ID] = w
	s.persistLocked()
	return &w, nil
}

func (s *FileStore) UpdateWork(ctx context.Context, id string, p WorkPatch) (*Work, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.works[id]
	if !ok {
		return nil, nil
	}
	if p.Title != nil {
		w.Title = *p.Title
	}
	if p.Slug != nil {
		w.Slug = *p.Slug
	}
	if p.Content != nil {
		w.Content = *p.Content
	}
	if p.Image != nil {
		w.Image = *p.Image
	}
	if p.Date != nil {
		w.Date = *p.Date
	}
	w.UpdatedAt = time.Now().UTC()
	s.works[id] = w
	s.persistLocked()
	return &w, nil
}

func (s *FileStore) DeleteWork(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.works[id]
	if !ok {
		return false, nil
	}
	removeUploadedMedia(s.uploadsDir, w.Image, w.Content)
	delete(s.works, id)
	s.persistLocked()
	return true, nil
}

// --- Projects ---

func (s *FileStore) Projects(ctx context.Context) ([]Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *FileStore) Project(ctx context.Context, id string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.projects[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *FileStore) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	now := time.Now().UTC()
	p := Project{
		ID:           newID(),
		Title:        in.Title,
		Description:  in.Description,
		Company:      in.Company,
		Date:         in.Date,
		Image:        in.Image,
		Technologies: in.Technologies,
		Link:         in.Link,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
	s.persistLocked()
	return &p, nil
}

func (s *FileStore) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, nil
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Company != nil {
		p.Company = *patch.Company
	}
	if patch.Date != nil {
		p.Date = *patch.Date
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Technologies != nil {
		p.Technologies = *patch.Technologies
	}
	if patch.Link != nil {
		p.Link = *patch.Link
	}
	p.UpdatedAt = time.Now().UTC()
	s.projects[id] = p
	s.persistLocked()
	return &p, nil
}

func (s *FileStore) DeleteProject(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return false, nil
	}
	removeUploadedMedia(s.uploadsDir, p.Image, "")
	delete(s.projects, id)
	s.persistLocked()
	return true, nil
}

// --- Blog posts ---

func (s *FileStore) BlogPosts(ctx context.Context) ([]BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]BlogPost, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *FileStore) BlogPost(ctx context.Context, id string) (*BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.posts[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *FileStore) CreateBlogPost(ctx context.Context, in BlogPostInput) (*BlogPost, error) {
	now := time.Now().UTC()
	p := BlogPost{
		ID:          newID(),
		Title:       in.Title,
		Slug:        in.Slug,
		Content:     in.Content,
		Image:       in.Image,
		Date:        in.Date,
		LinkedInURL: in.LinkedInURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[p.ID] = p
	s.persistLocked()
	return &p, nil
}

func (s *FileStore) UpdateBlogPost(ctx context.Context, id string, patch BlogPostPatch) (*BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Slug != nil {
		p.Slug = *patch.Slug
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Date != nil {
		p.Date = *patch.Date
	}
	if patch.LinkedInURL != nil {
		p.LinkedInURL = *patch.LinkedInURL
	}
	p.UpdatedAt = time.Now().UTC()
	s.posts[id] = p
	s.persistLocked()
	return &p, nil
}

func (s *FileStore) DeleteBlogPost(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return false, nil
	}
	removeUploadedMedia(s.uploadsDir, p.Image, p.Content)
	delete(s.posts, id)
	s.persistLocked()
	return true, nil
}

// --- Quotes ---

func (s *FileStore) Quotes(ctx context.Context) ([]Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *FileStore) Quote(ctx context.Context, id string) (*Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q, ok := s.quotes[id]; ok {
		return &q, nil
	}
	return nil, nil
}

func (s *FileStore) CreateQuote(ctx context.Context, in QuoteInput) (*Quote, error) {
	now := time.Now().UTC()
	q := Quote{
		ID:        newID(),
		Text:      in.Text,
		Author:    in.Author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.ID] = q
	s.persistLocked()
	return &q, nil
}

func (s *FileStore) UpdateQuote(ctx context.Context, id string, p QuotePatch) (*Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quotes[id]
	if !ok {
		return nil, nil
	}
	if p.Text != nil {
		q.Text = *p.Text
	}
	if p.Author != nil {
		q.Author = *p.Author
	}
	q.UpdatedAt = time.Now().UTC()
	s.quotes[id] = q
	s.persistLocked()
	return &q, nil
}

func (s *FileStore) DeleteQuote(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quotes[id]; !ok {
		return false, nil
	}
	delete(s.quotes, id)
	s.persistLocked()
	return true, nil
}

// --- Homepage ---

func (s *FileStore) Homepage(ctx context.Context) (*Homepage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.homepage == nil {
		return nil, nil
	}
	h := *s.homepage
	return &h, nil
}

func (s *FileStore) UpdateHomepage(ctx context.Context, in HomepageInput) (*Homepage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := Homepage{
		Title:       in.Title,
		Subtitle:    in.Subtitle,
		Description: in.Description,
		UpdatedAt:   time.Now().UTC(),
	}
	s.homepage = &h
	s.persistLocked()
	out := h
	return &out, nil
}

// --- Reactions ---

func (s *FileStore) reactionIndexLocked(postID, user string) int {
	for i, r := range s.reactions {
		if r.PostID == postID && r.UserIdentifier == user {
			return i
		}
	}
	return -1
}

func (s *FileStore) AddReaction(ctx context.Context, postID string, typ ReactionType, user string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reactionIndexLocked(postID, user) >= 0 {
		return false, nil
	}
	s.reactions = append(s.reactions, Reaction{
		PostID:         postID,
		Type:           typ,
		UserIdentifier: user,
		CreatedAt:      time.Now().UTC(),
	})
	if p, ok := s.posts[postID]; ok {
		bumpReaction(&p.Reactions, typ, 1)
		s.posts[postID] = p
	}
	s.persistLocked()
	return true, nil
}

func (s *FileStore) RemoveReaction(ctx context.Context, postID, user string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.reactionIndexLocked(postID, user)
	if i < 0 {
		return false, nil
	}
	typ := s.reactions[i].Type
	s.reactions = append(s.reactions[:i], s.reactions[i+1:]...)
	if p, ok := s.posts[postID]; ok {
		bumpReaction(&p.Reactions, typ, -1)
		s.posts[postID] = p
	}
	s.persistLocked()
	return true, nil
}

func (s *FileStore) ChangeReaction(ctx context.Context, postID string, typ ReactionType, user string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.reactionIndexLocked(postID, user)
	if i < 0 {
		return false, nil
	}
	old := s.reactions[i].Type
	if old == typ {
		return true, nil
	}
	s.reactions[i].Type = typ
	if p, ok := s.posts[postID]; ok {
		bumpReaction(&p.Reactions, old, -1)
		bumpReaction(&p.Reactions, typ, 1)
		s.posts[postID] = p
	}
	s.persistLocked()
	return true, nil
}

func (s *FileStore) HasUserReacted(ctx context.Context, postID, user string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reactionIndexLocked(postID, user) >= 0, nil
}

// bumpReaction adjusts one counter by delta, clamping at zero.
func bumpReaction(c *ReactionCounts, typ ReactionType, delta int) {
	var field *int
	switch typ {
	case ReactionHeart:
		field = &c.Heart
	case ReactionDove:
		field = &c.Dove
	case ReactionBrokenHeart:
		field = &c.BrokenHeart
	default:
		return
	}
	*field += delta
	if *field < 0 {
		*field = 0
	}
}

// --- Analytics ---

func (s *FileStore) todayLocked() *DayStats {
	today := time.Now().UTC().Format("2006-01-02")
	for i := range s.analytics {
		if s.analytics[i].Date == today {
			return &s.analytics[i]
		}
	}
	s.analytics = append(s.analytics, DayStats{
		Date:       today,
		EssayViews: map[string]int{},
		WorkViews:  map[string]int{},
		BlogViews:  map[string]int{},
	})
	return &s.analytics[len(s.analytics)-1]
}

func (s *FileStore) TrackPageView(ctx context.Context, kind PageKind, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := s.todayLocked()
	day.PageViews++

	switch kind {
	case PageEssay:
		if itemID != "" {
			day.EssayViews[itemID]++
			if e, ok := s.essays[itemID]; ok {
				e.Views++
				s.essays[itemID] = e
			}
		}
	case PageWork:
		if itemID != "" {
			day.WorkViews[itemID]++
			if w, ok := s.works[itemID]; ok {
				w.Views++
				s.works[itemID] = w
			}
		}
	case PageBlog:
		if itemID != "" {
			day.BlogViews[itemID]++
			if p, ok := s.posts[itemID]; ok {
				p.Views++
				s.posts[itemID] = p
			}
		}
	case PageProject:
		if itemID != "" {
			if p, ok := s.projects[itemID]; ok {
				p.Views++
				s.projects[itemID] = p
			}
		}
	case PageQuotes:
		day.QuoteViews++
	}

	s.persistLocked()
	return nil
}

// cloneDayStats detaches the per-item maps so callers never share map
// headers with the store's live records.
func cloneDayStats(d DayStats) DayStats {
	d.EssayViews = maps.Clone(d.EssayViews)
	d.WorkViews = maps.Clone(d.WorkViews)
	d.BlogViews = maps.Clone(d.BlogViews)
	return d
}

func (s *FileStore) AnalyticsRange(ctx context.Context, start, end string) ([]DayStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []DayStats
	for _, a := range s.analytics {
		if start != "" && a.Date < start {
			continue
		}
		if end != "" && a.Date > end {
			continue
		}
		out = append(out, cloneDayStats(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *FileStore) PruneAnalytics(ctx context.Context, before string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.analytics[:0]
	removed := 0
	for _, a := range s.analytics {
		if a.Date < before {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	s.analytics = kept
	if removed > 0 {
		s.persistLocked()
	}
	return removed, nil
}
