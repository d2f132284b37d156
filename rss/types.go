package rss

import (
	"fmt"
	"time"
)

// Item is one advisory entry of the feed. Title, Link and Description hold the
// element text as written, surrounding whitespace included.
type Item struct {
	Title       string
	Link        string
	Description string
	GUID        string
	Published   time.Time
}

// rawItem holds the text of the first un-namespaced child of each name; nil
// when the item has no such child.
type rawItem struct {
	Title       *string
	Link        *string
	Description *string
	GUID        *string
	PubDate     *string
}

func (r *rawItem) child(local string) **string {
	switch local {
	case "title":
		return &r.Title
	case "link":
		return &r.Link
	case "description":
		return &r.Description
	case "guid":
		return &r.GUID
	case "pubDate":
		return &r.PubDate
	}
	return nil
}

// MissingFieldError reports an item without one of its required children.
// Index is the zero-based position of the item in the feed.
type MissingFieldError struct {
	Index int
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("item #%d: missing %s", e.Index, e.Field)
}
