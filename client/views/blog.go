package views

import (
	"context"

	"github.com/eringen/sitebuilder"
	"github.com/eringen/sitebuilder/client"
	"github.com/eringen/sitebuilder/client/appstore"
	"github.com/eringen/sitebuilder/client/query"
)

// BlogAPI is the part of the API the blog screen uses.
type BlogAPI interface {
	ListPosts(ctx context.Context) ([]sitebuilder.Post, error)
	CreatePost(ctx context.Context, title, body string) (string, error)
	ListComments(ctx context.Context, postID string) ([]sitebuilder.Comment, error)
	CreateComment(ctx context.Context, postID string, in client.CommentInput) (string, error)
}

// Blog lists posts and their comments. Anyone may comment; writing a post
// needs a login.
type Blog struct {
	base
	api BlogAPI
}

func NewBlog(api BlogAPI, cache *query.Cache, store *appstore.Store) *Blog {
	return &Blog{base: base{cache: cache, store: store}, api: api}
}

func (v *Blog) Posts(ctx context.Context) ([]sitebuilder.Post, error) {
	return fetch(ctx, v.base, postsKey(), v.api.ListPosts)
}

func (v *Blog) Comments(ctx context.Context, postID string) ([]sitebuilder.Comment, error) {
	return fetch(ctx, v.base, commentsKey(postID), func(ctx context.Context) ([]sitebuilder.Comment, error) {
		return v.api.ListComments(ctx, postID)
	})
}

func (v *Blog) AddComment(ctx context.Context, postID string, in client.CommentInput) (string, error) {
	var id string
	err := v.mutate("Comment posted", []query.Key{commentsKey(postID)}, func() error {
		var err error
		id, err = v.api.CreateComment(ctx, postID, in)
		return err
	})
	return id, err
}

func (v *Blog) CreatePost(ctx context.Context, title, body string) (string, error) {
	if err := v.requireAuth(); err != nil {
		return "", err
	}
	var id string
	err := v.mutate("Post published", []query.Key{postsKey()}, func() error {
		var err error
		id, err = v.api.CreatePost(ctx, title, body)
		return err
	})
	return id, err
}
