package sitebuilder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// CreateSubmission stores a contact form message.
func (s *Store) CreateSubmission(ctx context.Context, sub ContactSubmission) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO contact_submissions (submission_id, site_id, name, email, message, submission_date) VALUES (?, ?, ?, ?, ?, ?)`),
		sub.SubmissionID, sub.SiteID, sub.Name, sub.Email, sub.Message, sub.SubmissionDate)
	return err
}

// ListSubmissions returns a site's contact messages, newest first.
func (s *Store) ListSubmissions(ctx context.Context, siteID string) ([]ContactSubmission, error) {
	subs := []ContactSubmission{}
	err := s.db.SelectContext(ctx, &subs, s.q(`SELECT submission_id, site_id, name, email, message, submission_date FROM contact_submissions WHERE site_id = ? ORDER BY submission_date DESC, submission_id DESC`), siteID)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// GetContactSettings returns the stored settings for a site, or the defaults
// when none were saved yet.
func (s *Store) GetContactSettings(ctx context.Context, siteID string) (ContactSettings, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw, s.q(`SELECT settings FROM contact_settings WHERE site_id = ?`), siteID)
	if err := notFound(err); errors.Is(err, ErrNotFound) {
		return DefaultContactSettings(), nil
	} else if err != nil {
		return ContactSettings{}, err
	}
	settings := DefaultContactSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return ContactSettings{}, fmt.Errorf("decode contact settings for %s: %w", siteID, err)
	}
	return settings, nil
}

// SaveContactSettings inserts or replaces the settings of a site.
func (s *Store) SaveContactSettings(ctx context.Context, siteID string, settings ContactSettings, now string) error {
	raw, err := marshalJSON(settings)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, s.q(`
INSERT INTO contact_settings (site_id, settings, updated_at) VALUES (?, ?, ?)
ON CONFLICT (site_id) DO UPDATE SET
    settings = excluded.settings,
    updated_at = excluded.updated_at`), siteID, raw, now)
	return err
}
