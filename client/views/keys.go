package views

import (
	"strconv"

	"github.com/eringen/sitebuilder/client/query"
)

// Query keys shared by the controllers. Mutations invalidate by prefix, so
// everything below "sites"/<id> is dropped together when needed.

func templatesKey(category string) query.Key { return query.Key{"templates", category} }

func sitesKey() query.Key { return query.Key{"sites"} }

func pagesKey(siteID string) query.Key { return query.Key{"sites", siteID, "pages"} }

func pageKey(siteID, pageID string) query.Key {
	return query.Key{"sites", siteID, "pages", pageID}
}

func statsKey(siteID string, days int) query.Key {
	return query.Key{"sites", siteID, "stats", strconv.Itoa(days)}
}

func submissionsKey(siteID string) query.Key {
	return query.Key{"sites", siteID, "contact", "submissions"}
}

func contactSettingsKey(siteID string) query.Key {
	return query.Key{"sites", siteID, "contact", "settings"}
}

func postsKey() query.Key { return query.Key{"posts"} }

func commentsKey(postID string) query.Key { return query.Key{"posts", postID, "comments"} }

func portfolioKey() query.Key { return query.Key{"portfolio"} }
