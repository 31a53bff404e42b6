package sitebuilder

import "context"

// CreatePost inserts a blog post.
func (s *Store) CreatePost(ctx context.Context, p Post) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO posts (post_id, title, body, date) VALUES (?, ?, ?, ?)`),
		p.PostID, p.Title, p.Body, p.Date)
	return err
}

// GetPost returns a post by id.
func (s *Store) GetPost(ctx context.Context, postID string) (Post, error) {
	var p Post
	err := s.db.GetContext(ctx, &p, s.q(`SELECT post_id, title, body, date FROM posts WHERE post_id = ?`), postID)
	return p, notFound(err)
}

// ListPosts returns posts newest first. limit <= 0 returns all of them.
func (s *Store) ListPosts(ctx context.Context, limit int) ([]Post, error) {
	posts := []Post{}
	query := `SELECT post_id, title, body, date FROM posts ORDER BY date DESC, post_id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	if err := s.db.SelectContext(ctx, &posts, s.q(query), args...); err != nil {
		return nil, err
	}
	return posts, nil
}

// CreateComment inserts a comment. The post is not required to exist.
func (s *Store) CreateComment(ctx context.Context, c Comment) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO comments (comment_id, post_id, author_name, author_email, content, publish_date) VALUES (?, ?, ?, ?, ?, ?)`),
		c.CommentID, c.PostID, c.AuthorName, c.AuthorEmail, c.Content, c.PublishDate)
	return err
}

// ListComments returns the comments on a post, oldest first.
func (s *Store) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	comments := []Comment{}
	err := s.db.SelectContext(ctx, &comments, s.q(`SELECT comment_id, post_id, author_name, author_email, content, publish_date FROM comments WHERE post_id = ? ORDER BY publish_date, comment_id`), postID)
	if err != nil {
		return nil, err
	}
	return comments, nil
}
