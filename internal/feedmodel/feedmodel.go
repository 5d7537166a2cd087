// Package feedmodel defines the two record types the store bundles into a
// database: subscribed feeds and the posts pulled from them. Parsing RSS/
// Atom into these records belongs to an external collaborator; this
// package only owns the shapes and the natural-key functions the table
// layer hashes into ids.
package feedmodel

import "time"

// Feed is a subscribed source. Its natural key is the feed's URL: two Feed
// values with the same URL collapse to the same row regardless of how their
// other fields differ.
type Feed struct {
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	SiteURL     string    `json:"site_url,omitempty"`
	Description string    `json:"description,omitempty"`
	LastFetched time.Time `json:"last_fetched,omitempty"`
}

// NaturalKey implements table.Payload.
func (f Feed) NaturalKey() string { return f.URL }

// Post is a single entry pulled from a feed. Its natural key is the owning
// feed's id joined with the raw identifier the feed format assigns the entry
// (an Atom id or RSS guid, falling back to the entry link when neither is
// present) — never its own table id, which is derived from that key.
//
// FeedID references the owning Feed by the feed table's id, a value-level
// reference rather than a pointer: there is no cycle to manage.
type Post struct {
	RawID       string    `json:"raw_id"`
	FeedID      string    `json:"feed_id"`
	Title       string    `json:"title,omitempty"`
	Link        string    `json:"link,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// NaturalKey implements table.Payload. Scoping by FeedID means two different
// feeds that happen to reuse the same raw guid (a known RSS footgun) don't
// collide into a single row.
func (p Post) NaturalKey() string { return p.FeedID + "\x00" + p.RawID }
