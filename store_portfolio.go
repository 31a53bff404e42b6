package sitebuilder

import "context"

// CreatePortfolioItem records an uploaded image.
func (s *Store) CreatePortfolioItem(ctx context.Context, it PortfolioItem) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO portfolio_items (item_id, title, image_url, filename, width, height, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		it.ItemID, it.Title, it.ImageURL, it.Filename, it.Width, it.Height, it.CreatedAt)
	return err
}

// GetPortfolioItem returns one item by id.
func (s *Store) GetPortfolioItem(ctx context.Context, itemID string) (PortfolioItem, error) {
	var it PortfolioItem
	err := s.db.GetContext(ctx, &it, s.q(`SELECT item_id, title, image_url, filename, width, height, created_at FROM portfolio_items WHERE item_id = ?`), itemID)
	return it, notFound(err)
}

// ListPortfolioItems returns all items, newest first.
func (s *Store) ListPortfolioItems(ctx context.Context) ([]PortfolioItem, error) {
	items := []PortfolioItem{}
	err := s.db.SelectContext(ctx, &items, `SELECT item_id, title, image_url, filename, width, height, created_at FROM portfolio_items ORDER BY created_at DESC, item_id DESC`)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// RenamePortfolioItem changes an item's title.
func (s *Store) RenamePortfolioItem(ctx context.Context, itemID, title string) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE portfolio_items SET title = ? WHERE item_id = ?`), title, itemID)
	if err != nil {
		return err
	}
	return expectRows(res)
}

// DeletePortfolioItem removes the row. The caller removes the file.
func (s *Store) DeletePortfolioItem(ctx context.Context, itemID string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM portfolio_items WHERE item_id = ?`), itemID)
	if err != nil {
		return err
	}
	return expectRows(res)
}
