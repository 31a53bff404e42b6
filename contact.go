package sitebuilder

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contactRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Message string `json:"message" form:"message"`
}

func (r contactRequest) validate() error {
	return validateFields(
		field{name: "name", value: r.Name, max: 200, required: true},
		field{name: "email", value: r.Email, max: 320, required: true, email: true},
		field{name: "message", value: r.Message, max: 5000, required: true},
	)
}

// saveSubmission stores a contact message for siteID and returns it.
func (a *App) saveSubmission(ctx context.Context, siteID string, req contactRequest) (ContactSubmission, error) {
	sub := ContactSubmission{
		SubmissionID:   NewID(prefixSubmission),
		SiteID:         siteID,
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.TrimSpace(req.Email),
		Message:        strings.TrimSpace(req.Message),
		SubmissionDate: a.timestamp(),
	}
	if err := a.Store.CreateSubmission(ctx, sub); err != nil {
		return ContactSubmission{}, err
	}
	a.Log.Infow("contact submission stored", "site_id", siteID, "submission_id", sub.SubmissionID)
	return sub, nil
}

type submissionResponse struct {
	SubmissionID string `json:"submission_id"`
	Success      bool   `json:"success"`
}

func (a *App) handleCreateSubmission(c echo.Context) error {
	if !a.submitLimiter.Allow(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "Too many submissions. Try again later.")
	}
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}
	sub, err := a.saveSubmission(c.Request().Context(), c.Param("site_id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, submissionResponse{SubmissionID: sub.SubmissionID, Success: true})
}

func (a *App) handleListSubmissions(c echo.Context) error {
	subs, err := a.Store.ListSubmissions(c.Request().Context(), c.Param("site_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"submissions": subs})
}

func (a *App) handleGetContactSettings(c echo.Context) error {
	settings, err := a.Store.GetContactSettings(c.Request().Context(), c.Param("site_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

func (a *App) handleSaveContactSettings(c echo.Context) error {
	var settings ContactSettings
	if err := c.Bind(&settings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	m := settings.Map
	if m.Latitude < -90 || m.Latitude > 90 || m.Longitude < -180 || m.Longitude > 180 {
		return echo.NewHTTPError(http.StatusBadRequest, "map coordinates out of range")
	}
	if m.ZoomLevel < 0 || m.ZoomLevel > 20 {
		return echo.NewHTTPError(http.StatusBadRequest, "zoom_level must be between 0 and 20")
	}
	if err := a.Store.SaveContactSettings(c.Request().Context(), c.Param("site_id"), settings, a.timestamp()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResult{Success: true, Message: "Settings saved"})
}
