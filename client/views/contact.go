package views

import (
	"context"

	"github.com/eringen/sitebuilder"
	"github.com/eringen/sitebuilder/client"
	"github.com/eringen/sitebuilder/client/appstore"
	"github.com/eringen/sitebuilder/client/query"
)

// ContactAPI is the part of the API the contact page uses.
type ContactAPI interface {
	SubmitContact(ctx context.Context, siteID string, in client.ContactInput) (string, error)
	ListSubmissions(ctx context.Context, siteID string) ([]sitebuilder.ContactSubmission, error)
	GetContactSettings(ctx context.Context, siteID string) (sitebuilder.ContactSettings, error)
	SaveContactSettings(ctx context.Context, siteID string, s sitebuilder.ContactSettings) error
}

// Contact drives a site's contact form and its settings editor.
type Contact struct {
	base
	api    ContactAPI
	siteID string
}

func NewContact(api ContactAPI, cache *query.Cache, store *appstore.Store, siteID string) *Contact {
	return &Contact{base: base{cache: cache, store: store}, api: api, siteID: siteID}
}

// Submit sends the form. It does not need a login.
func (v *Contact) Submit(ctx context.Context, in client.ContactInput) (string, error) {
	var id string
	err := v.mutate("Thanks for your message", []query.Key{submissionsKey(v.siteID)}, func() error {
		var err error
		id, err = v.api.SubmitContact(ctx, v.siteID, in)
		return err
	})
	return id, err
}

func (v *Contact) Submissions(ctx context.Context) ([]sitebuilder.ContactSubmission, error) {
	return fetch(ctx, v.base, submissionsKey(v.siteID), func(ctx context.Context) ([]sitebuilder.ContactSubmission, error) {
		return v.api.ListSubmissions(ctx, v.siteID)
	})
}

func (v *Contact) Settings(ctx context.Context) (sitebuilder.ContactSettings, error) {
	return fetch(ctx, v.base, contactSettingsKey(v.siteID), func(ctx context.Context) (sitebuilder.ContactSettings, error) {
		return v.api.GetContactSettings(ctx, v.siteID)
	})
}

// SaveSettings stores s and caches it as the current settings.
func (v *Contact) SaveSettings(ctx context.Context, s sitebuilder.ContactSettings) error {
	if err := v.requireAuth(); err != nil {
		return err
	}
	err := v.mutate("Settings saved", nil, func() error {
		return v.api.SaveContactSettings(ctx, v.siteID, s)
	})
	if err == nil {
		query.Set(v.cache, contactSettingsKey(v.siteID), s)
	}
	return err
}
