package sitebuilder

import "github.com/segmentio/ksuid"

// Id prefixes, one per entity, so an id names its kind in logs and URLs.
const (
	prefixUser       = "user"
	prefixSite       = "site"
	prefixPost       = "post"
	prefixComment    = "comment"
	prefixSubmission = "submission"
	prefixItem       = "item"
)

// NewID returns prefix + "_" + a ksuid. Ksuids carry 128 random bits after the
// timestamp, so ids minted in the same millisecond do not collide.
func NewID(prefix string) string {
	return prefix + "_" + ksuid.New().String()
}
