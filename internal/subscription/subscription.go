// Package subscription reads and writes a human-editable TOML file listing
// feed subscriptions, for bulk import/export alongside the normal one-at-a-
// time `feed add`/`feed remove` transactions. It gives operators a way to
// check a feed list into their dotfiles and apply it to a fresh store in
// one shot.
package subscription

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/kantord/blogwarrior-go/internal/feedmodel"
)

// List is the on-disk shape of a subscription file.
type List struct {
	Feeds []Entry `toml:"feed"`
}

// Entry is one subscribed feed as it appears in the TOML file.
type Entry struct {
	URL         string `toml:"url"`
	Title       string `toml:"title,omitempty"`
	SiteURL     string `toml:"site_url,omitempty"`
	Description string `toml:"description,omitempty"`
}

// Load parses a subscription file at path.
func Load(path string) (List, error) {
	var list List
	if _, err := toml.DecodeFile(path, &list); err != nil {
		return List{}, fmt.Errorf("decoding subscription file %s: %w", path, err)
	}
	return list, nil
}

// Save writes feeds to path as a subscription file, overwriting it.
func Save(path string, feeds []feedmodel.Feed) error {
	list := List{Feeds: make([]Entry, len(feeds))}
	for i, f := range feeds {
		list.Feeds[i] = Entry{
			URL:         f.URL,
			Title:       f.Title,
			SiteURL:     f.SiteURL,
			Description: f.Description,
		}
	}

	f, err := os.Create(path) // #nosec G304 -- path is an operator-provided CLI argument
	if err != nil {
		return fmt.Errorf("creating subscription file %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(list); err != nil {
		return fmt.Errorf("encoding subscription file %s: %w", path, err)
	}
	return nil
}

// ToFeedModels converts the file's entries into feedmodel.Feed values ready
// for Upsert into the feeds table.
func (l List) ToFeedModels() []feedmodel.Feed {
	out := make([]feedmodel.Feed, len(l.Feeds))
	for i, e := range l.Feeds {
		out[i] = feedmodel.Feed{
			URL:         e.URL,
			Title:       e.Title,
			SiteURL:     e.SiteURL,
			Description: e.Description,
		}
	}
	return out
}
