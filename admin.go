package atelier

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
)

// --- Auth ---

func (a *App) handleLogin(c echo.Context) error {
	if !a.limiter.Allow(c.RealIP()) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Too many login attempts"})
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	if !VerifyPassword(a.cfg, req.Password) {
		a.limiter.Record(c.RealIP())
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid password"})
	}

	token, err := a.issuer.Issue()
	if err != nil {
		return err
	}
	if err := setAdminSession(c); err != nil {
		c.Logger().Warnf("login: session save: %v", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "token": token})
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		c.Logger().Warnf("logout: session clear: %v", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// --- Essays ---

func (a *App) adminCreateEssay(c echo.Context) error {
	var in EssayInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	in.Tags = FilterEmpty(in.Tags)
	e, err := a.store.CreateEssay(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

func (a *App) adminUpdateEssay(c echo.Context) error {
	var p EssayPatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	e, err := a.store.UpdateEssay(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return err
	}
	if e == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Essay not found"})
	}
	return c.JSON(http.StatusOK, e)
}

func (a *App) adminDeleteEssay(c echo.Context) error {
	ok, err := a.store.DeleteEssay(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Essay not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// --- Works ---

func (a *App) adminCreateWork(c echo.Context) error {
	var in WorkInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	w, err := a.store.CreateWork(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, w)
}

func (a *App) adminUpdateWork(c echo.Context) error {
	var p WorkPatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	w, err := a.store.UpdateWork(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return err
	}
	if w == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Work not found"})
	}
	return c.JSON(http.StatusOK, w)
}

func (a *App) adminDeleteWork(c echo.Context) error {
	ok, err := a.store.DeleteWork(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Work not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// --- Projects ---

func (a *App) adminCreateProject(c echo.Context) error {
	var in ProjectInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	in.Technologies = FilterEmpty(in.Technologies)
	p, err := a.store.CreateProject(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (a *App) adminUpdateProject(c echo.Context) error {
	var patch ProjectPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	p, err := a.store.UpdateProject(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Project not found"})
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) adminDeleteProject(c echo.Context) error {
	ok, err := a.store.DeleteProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Project not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// --- Blog posts ---

func (a *App) adminCreateBlogPost(c echo.Context) error {
	var in BlogPostInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	p, err := a.store.CreateBlogPost(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (a *App) adminUpdateBlogPost(c echo.Context) error {
	var patch BlogPostPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	p, err := a.store.UpdateBlogPost(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Post not found"})
	}
	return c.JSON(http.StatusOK, p)
}

func (a *App) adminDeleteBlogPost(c echo.Context) error {
	ok, err := a.store.DeleteBlogPost(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Post not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// --- Quotes ---

// adminListQuotes lists quotes without counting a quotes-page view.
func (a *App) adminListQuotes(c echo.Context) error {
	quotes, err := a.store.Quotes(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quotes)
}

func (a *App) adminCreateQuote(c echo.Context) error {
	var in QuoteInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	q, err := a.store.CreateQuote(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, q)
}

func (a *App) adminUpdateQuote(c echo.Context) error {
	var p QuotePatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	q, err := a.store.UpdateQuote(c.Request().Context(), c.Param("id"), p)
	if err != nil {
		return err
	}
	if q == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Quote not found"})
	}
	return c.JSON(http.StatusOK, q)
}

func (a *App) adminDeleteQuote(c echo.Context) error {
	ok, err := a.store.DeleteQuote(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Quote not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// --- Homepage ---

func (a *App) adminHomepage(c echo.Context) error {
	h, err := a.store.Homepage(c.Request().Context())
	if err != nil {
		return err
	}
	if h == nil {
		h = DefaultHomepage()
	}
	return c.JSON(http.StatusOK, h)
}

func (a *App) adminUpdateHomepage(c echo.Context) error {
	var in HomepageInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	h, err := a.store.UpdateHomepage(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h)
}

// --- Analytics ---

type topItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Views int    `json:"views"`
}

// adminAnalytics aggregates day records (optionally bounded by ?start and
// ?end dates) with content-level totals and the five most-viewed items of
// each kind.
func (a *App) adminAnalytics(c echo.Context) error {
	ctx := c.Request().Context()

	days, err := a.store.AnalyticsRange(ctx, c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return err
	}

	totalViews, totalQuoteViews := 0, 0
	for _, d := range days {
		totalViews += d.PageViews
		totalQuoteViews += d.QuoteViews
	}

	essays, err := a.store.Essays(ctx)
	if err != nil {
		return err
	}
	works, err := a.store.Works(ctx)
	if err != nil {
		return err
	}
	posts, err := a.store.BlogPosts(ctx)
	if err != nil {
		return err
	}
	quotes, err := a.store.Quotes(ctx)
	if err != nil {
		return err
	}
	projects, err := a.store.Projects(ctx)
	if err != nil {
		return err
	}

	totalReactions := 0
	for _, p := range posts {
		totalReactions += p.Reactions.Total()
	}

	topEssays := make([]topItem, 0, len(essays))
	for _, e := range essays {
		topEssays = append(topEssays, topItem{ID: e.ID, Title: e.Title, Views: e.Views})
	}
	topWorks := make([]topItem, 0, len(works))
	for _, w := range works {
		topWorks = append(topWorks, topItem{ID: w.ID, Title: w.Title, Views: w.Views})
	}
	topPosts := make([]topItem, 0, len(posts))
	for _, p := range posts {
		topPosts = append(topPosts, topItem{ID: p.ID, Title: p.Title, Views: p.Views})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"days":            days,
		"totalViews":      totalViews,
		"totalQuoteViews": totalQuoteViews,
		"totalReactions":  totalReactions,
		"counts": echo.Map{
			"essays":    len(essays),
			"works":     len(works),
			"blogPosts": len(posts),
			"quotes":    len(quotes),
			"projects":  len(projects),
		},
		"topEssays":    topN(topEssays, 5),
		"topWorks":     topN(topWorks, 5),
		"topBlogPosts": topN(topPosts, 5),
	})
}

func topN(items []topItem, n int) []topItem {
	sort.Slice(items, func(i, j int) bool { return items[i].Views > items[j].Views })
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// --- Migration ---

// adminMigrate copies the file-backed data set into the configured Postgres
// database. It only works when the server is running on the file backend
// and a DATABASE_URL is supplied in the request.
func (a *App) adminMigrate(c echo.Context) error {
	src, ok := a.store.(*FileStore)
	if !ok {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Server is already running on Postgres"})
	}

	var req struct {
		DatabaseURL string `json:"databaseUrl"`
	}
	if err := c.Bind(&req); err != nil || req.DatabaseURL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}

	ctx := c.Request().Context()
	dst, err := NewPGStore(ctx, req.DatabaseURL)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
	}
	defer dst.Close()

	report, err := MigrateToPostgres(ctx, src, dst)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "migrated": report})
}
