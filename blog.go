package sitebuilder

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleListPosts(c echo.Context) error {
	posts, err := a.Store.ListPosts(c.Request().Context(), 0)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"posts": posts})
}

type createPostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (a *App) handleCreatePost(c echo.Context) error {
	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := validateFields(
		field{name: "title", value: req.Title, max: 200, required: true},
		field{name: "body", value: req.Body, max: 100000},
	); err != nil {
		return err
	}
	post := Post{
		PostID: NewID(prefixPost),
		Title:  strings.TrimSpace(req.Title),
		Body:   req.Body,
		Date:   a.timestamp(),
	}
	if err := a.Store.CreatePost(c.Request().Context(), post); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{"post_id": post.PostID})
}

func (a *App) handleListComments(c echo.Context) error {
	comments, err := a.Store.ListComments(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"comments": comments})
}

type createCommentRequest struct {
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Content     string `json:"content"`
}

func (a *App) handleCreateComment(c echo.Context) error {
	if !a.submitLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many submissions. Try again later.")
	}
	var req createCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := validateFields(
		field{name: "author_name", value: req.AuthorName, max: 200, required: true},
		field{name: "author_email", value: req.AuthorEmail, max: 320, required: true, email: true},
		field{name: "content", value: req.Content, max: 5000, required: true},
	); err != nil {
		return err
	}
	comment := Comment{
		CommentID:   NewID(prefixComment),
		PostID:      c.Param("post_id"),
		AuthorName:  strings.TrimSpace(req.AuthorName),
		AuthorEmail: strings.TrimSpace(req.AuthorEmail),
		Content:     strings.TrimSpace(req.Content),
		PublishDate: a.timestamp(),
	}
	if err := a.Store.CreateComment(c.Request().Context(), comment); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]string{"comment_id": comment.CommentID})
}
