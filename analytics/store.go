package analytics

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	timeLayout = "2006-01-02T15:04:05.000000Z07:00"
	saltKey    = "hash_salt"
)

// View is one recorded page view.
type View struct {
	ViewID    string `db:"view_id"`
	SiteID    string `db:"site_id"`
	PageID    string `db:"page_id"`
	VisitorID string `db:"visitor_id"`
	Browser   string `db:"browser"`
	OS        string `db:"os"`
	Device    string `db:"device"`
	Referrer  string `db:"referrer"`
	BotName   string `db:"bot_name"`
	ViewedAt  string `db:"viewed_at"`
}

// Count is a labelled counter used in Stats.
type Count struct {
	Label string `db:"label" json:"label"`
	Views int    `db:"views" json:"views"`
}

// Stats summarizes the human page views of one site over a time range.
type Stats struct {
	From           string  `json:"from"`
	To             string  `json:"to"`
	Views          int     `json:"views"`
	UniqueVisitors int     `json:"unique_visitors"`
	BotViews       int     `json:"bot_views"`
	Pages          []Count `json:"pages"`
	Referrers      []Count `json:"referrers"`
	Browsers       []Count `json:"browsers"`
	Devices        []Count `json:"devices"`
	Daily          []Count `json:"daily"`
}

// Store persists page views in the page_views table of the main database.
type Store struct {
	db *sqlx.DB
}

// NewStore returns a Store over db. The schema is owned by the main
// migrations.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Salt returns the installation salt, creating it on first use.
func (s *Store) Salt(ctx context.Context) (string, error) {
	var v string
	err := s.db.GetContext(ctx, &v, s.db.Rebind(`SELECT value FROM analytics_settings WHERE key = ?`), saltKey)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("read hash salt: %w", err)
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	v = hex.EncodeToString(b)
	// A concurrent first start may have won; keep whichever row exists.
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO analytics_settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO NOTHING`), saltKey, v); err != nil {
		return "", fmt.Errorf("store hash salt: %w", err)
	}
	if err := s.db.GetContext(ctx, &v, s.db.Rebind(`SELECT value FROM analytics_settings WHERE key = ?`), saltKey); err != nil {
		return "", fmt.Errorf("read hash salt: %w", err)
	}
	return v, nil
}

// Record inserts v, filling ViewID and ViewedAt when empty.
func (s *Store) Record(ctx context.Context, v View) error {
	if v.ViewID == "" {
		v.ViewID = uuid.NewString()
	}
	if v.ViewedAt == "" {
		v.ViewedAt = time.Now().UTC().Format(timeLayout)
	}
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO page_views (view_id, site_id, page_id, visitor_id, browser, os, device, referrer, bot_name, viewed_at)
VALUES (:view_id, :site_id, :page_id, :visitor_id, :browser, :os, :device, :referrer, :bot_name, :viewed_at)`, v)
	return err
}

// SiteStats aggregates the views of siteID in [from, to).
func (s *Store) SiteStats(ctx context.Context, siteID string, from, to time.Time) (Stats, error) {
	st := Stats{
		From: from.UTC().Format(timeLayout),
		To:   to.UTC().Format(timeLayout),
	}
	where := ` FROM page_views WHERE site_id = ? AND viewed_at >= ? AND viewed_at < ?`
	args := []any{siteID, st.From, st.To}

	row := s.db.QueryRowxContext(ctx, s.db.Rebind(`SELECT
    COALESCE(SUM(CASE WHEN bot_name = '' THEN 1 ELSE 0 END), 0),
    COUNT(DISTINCT CASE WHEN bot_name = '' THEN visitor_id END),
    COALESCE(SUM(CASE WHEN bot_name <> '' THEN 1 ELSE 0 END), 0)`+where), args...)
	if err := row.Scan(&st.Views, &st.UniqueVisitors, &st.BotViews); err != nil {
		return Stats{}, fmt.Errorf("totals: %w", err)
	}

	breakdowns := []struct {
		expr  string
		dst   *[]Count
		order string
	}{
		{"page_id", &st.Pages, "views DESC, label"},
		{"referrer", &st.Referrers, "views DESC, label"},
		{"browser", &st.Browsers, "views DESC, label"},
		{"device", &st.Devices, "views DESC, label"},
		{"SUBSTR(viewed_at, 1, 10)", &st.Daily, "label"},
	}
	for _, b := range breakdowns {
		*b.dst = []Count{}
		q := `SELECT ` + b.expr + ` AS label, COUNT(*) AS views` + where +
			` AND bot_name = '' GROUP BY ` + b.expr + ` ORDER BY ` + b.order + ` LIMIT 50`
		if err := s.db.SelectContext(ctx, b.dst, s.db.Rebind(q), args...); err != nil {
			return Stats{}, fmt.Errorf("breakdown by %s: %w", b.expr, err)
		}
	}
	return st, nil
}

// DeleteBefore removes views older than cutoff and returns how many went.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM page_views WHERE viewed_at < ?`), cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartRetention deletes views older than retention every interval until ctx
// is done. onErr receives failures; it may be nil.
func (s *Store) StartRetention(ctx context.Context, retention, interval time.Duration, onErr func(error)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if _, err := s.DeleteBefore(ctx, time.Now().Add(-retention)); err != nil && onErr != nil && ctx.Err() == nil {
				onErr(err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
