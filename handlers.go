package atelier

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Public read surface. Detail reads count as page views; list reads do not.

func (a *App) handleHomepage(c echo.Context) error {
	h, err := a.store.Homepage(c.Request().Context())
	if err != nil {
		return err
	}
	if h == nil {
		h = DefaultHomepage()
	}
	return c.JSON(http.StatusOK, h)
}

func (a *App) handleEssays(c echo.Context) error {
	essays, err := a.store.Essays(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, essays)
}

func (a *App) handleEssay(c echo.Context) error {
	ctx := c.Request().Context()
	e, err := a.store.Essay(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if e == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Essay not found"})
	}
	if err := a.store.TrackPageView(ctx, PageEssay, e.ID); err != nil {
		c.Logger().Warnf("track essay view: %v", err)
	}
	return c.JSON(http.StatusOK, e)
}

func (a *App) handleWorks(c echo.Context) error {
	works, err := a.store.Works(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, works)
}

func (a *App) handleWork(c echo.Context) error {
	ctx := c.Request().Context()
	w, err := a.store.Work(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if w == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Work not found"})
	}
	if err := a.store.TrackPageView(ctx, PageWork, w.ID); err != nil {
		c.Logger().Warnf("track work view: %v", err)
	}
	return c.JSON(http.StatusOK, w)
}

func (a *App) handleBlogPosts(c echo.Context) error {
	posts, err := a.store.BlogPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (a *App) handleBlogPost(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := a.store.BlogPost(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Post not found"})
	}
	if err := a.store.TrackPageView(ctx, PageBlog, p.ID); err != nil {
		c.Logger().Warnf("track blog view: %v", err)
	}
	return c.JSON(http.StatusOK, p)
}

// handleQuotes lists quotes and counts the read as one quotes-page view.
func (a *App) handleQuotes(c echo.Context) error {
	ctx := c.Request().Context()
	quotes, err := a.store.Quotes(ctx)
	if err != nil {
		return err
	}
	if err := a.store.TrackPageView(ctx, PageQuotes, ""); err != nil {
		c.Logger().Warnf("track quotes view: %v", err)
	}
	return c.JSON(http.StatusOK, quotes)
}

func (a *App) handleProjects(c echo.Context) error {
	projects, err := a.store.Projects(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, projects)
}

// handleTrackView lets clients report views the server cannot observe
// directly (client-side route transitions).
func (a *App) handleTrackView(c echo.Context) error {
	var req struct {
		Page   string `json:"page"`
		ItemID string `json:"itemId"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	kind := PageKind(req.Page)
	if !kind.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unknown page kind"})
	}
	if err := a.store.TrackPageView(c.Request().Context(), kind, req.ItemID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (a *App) handleProjectView(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	p, err := a.store.Project(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Project not found"})
	}
	if err := a.store.TrackPageView(ctx, PageProject, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// --- Reactions ---
//
// The reacting user is identified by client IP; one reaction per user per
// post. Adding twice is a client error with a friendly message, matching
// what the frontend surfaces.

type reactionRequest struct {
	PostID string       `json:"postId"`
	Type   ReactionType `json:"type"`
}

func (a *App) handleAddReaction(c echo.Context) error {
	var req reactionRequest
	if err := c.Bind(&req); err != nil || req.PostID == "" || !req.Type.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	ctx := c.Request().Context()

	post, err := a.store.BlogPost(ctx, req.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Post not found"})
	}

	added, err := a.store.AddReaction(ctx, req.PostID, req.Type, c.RealIP())
	if err != nil {
		return err
	}
	if !added {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "You have already reacted to this post"})
	}

	post, err = a.store.BlogPost(ctx, req.PostID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "reactions": post.Reactions})
}

func (a *App) handleRemoveReaction(c echo.Context) error {
	var req reactionRequest
	if err := c.Bind(&req); err != nil || req.PostID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	ctx := c.Request().Context()

	removed, err := a.store.RemoveReaction(ctx, req.PostID, c.RealIP())
	if err != nil {
		return err
	}
	if !removed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Reaction not found"})
	}

	post, err := a.store.BlogPost(ctx, req.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "reactions": post.Reactions})
}

func (a *App) handleChangeReaction(c echo.Context) error {
	var req reactionRequest
	if err := c.Bind(&req); err != nil || req.PostID == "" || !req.Type.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid data"})
	}
	ctx := c.Request().Context()

	changed, err := a.store.ChangeReaction(ctx, req.PostID, req.Type, c.RealIP())
	if err != nil {
		return err
	}
	if !changed {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Reaction not found"})
	}

	post, err := a.store.BlogPost(ctx, req.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "reactions": post.Reactions})
}

func (a *App) handleHasReacted(c echo.Context) error {
	postID := c.Param("id")
	reacted, err := a.store.HasUserReacted(c.Request().Context(), postID, c.RealIP())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"hasReacted": reacted})
}
