package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kantord/blogwarrior-go/internal/feedmodel"
	"github.com/kantord/blogwarrior-go/internal/shorthand"
	"github.com/kantord/blogwarrior-go/internal/storedb"
	"github.com/kantord/blogwarrior-go/internal/subscription"
	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:     "feed",
	GroupID: "feeds",
	Short:   "Manage subscribed feeds",
}

var feedAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Subscribe to a feed",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db := openStore()
		defer db.Close()

		err := db.Transaction(func(tx *storedb.Tx) error {
			tx.Feeds.Upsert(feedmodel.Feed{URL: args[0]})
			return nil
		})
		if err != nil {
			FatalError("subscribing to %s: %v", args[0], err)
		}
		fmt.Printf("subscribed to %s\n", args[0])
	},
}

var feedRemoveCmd = &cobra.Command{
	Use:   "remove <url-or-shorthand>",
	Short: "Unsubscribe from a feed, deleting its posts",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db := openStore()
		defer db.Close()

		url, err := resolveFeedArg(db, args[0])
		if err != nil {
			FatalError("%v", err)
		}

		err = db.Transaction(func(tx *storedb.Tx) error {
			feedID, err := tx.Feeds.Delete(url)
			if err != nil {
				return fmt.Errorf("feed not found: %s", url)
			}
			for _, post := range tx.Posts.Items() {
				if post.FeedID == feedID {
					_, _ = tx.Posts.Delete(post.NaturalKey())
				}
			}
			return nil
		})
		if err != nil {
			FatalError("removing %s: %v", url, err)
		}
		fmt.Printf("unsubscribed from %s\n", url)
	},
}

var feedListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List subscribed feeds",
	Run: func(cmd *cobra.Command, args []string) {
		db := openStore()
		defer db.Close()

		feeds := db.Feeds.Items()
		if len(feeds) == 0 {
			fmt.Println("no subscribed feeds")
			return
		}
		sort.Slice(feeds, func(i, j int) bool { return feeds[i].URL < feeds[j].URL })

		ids := make([]string, len(feeds))
		for i, f := range feeds {
			ids[i] = db.Feeds.IDOf(f)
		}
		shorthands := shorthand.ComputeShorthands(ids)

		for i, f := range feeds {
			if f.Title == "" {
				fmt.Printf("@%s %s\n", shorthands[i], f.URL)
			} else {
				fmt.Printf("@%s %s (%s)\n", shorthands[i], f.URL, f.Title)
			}
		}
	},
}

var feedImportCmd = &cobra.Command{
	Use:   "import <subscriptions.toml>",
	Short: "Bulk-subscribe from a TOML subscription file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		list, err := subscription.Load(args[0])
		if err != nil {
			FatalError("%v", err)
		}

		db := openStore()
		defer db.Close()

		feeds := list.ToFeedModels()
		err = db.Transaction(func(tx *storedb.Tx) error {
			for _, f := range feeds {
				tx.Feeds.Upsert(f)
			}
			return nil
		})
		if err != nil {
			FatalError("importing subscriptions: %v", err)
		}
		fmt.Printf("imported %d feeds\n", len(feeds))
	},
}

var feedExportCmd = &cobra.Command{
	Use:   "export <subscriptions.toml>",
	Short: "Write the current subscriptions to a TOML file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db := openStore()
		defer db.Close()

		if err := subscription.Save(args[0], db.Feeds.Items()); err != nil {
			FatalError("%v", err)
		}
		fmt.Printf("wrote %s\n", args[0])
	},
}

func init() {
	feedCmd.AddCommand(feedAddCmd, feedRemoveCmd, feedListCmd, feedImportCmd, feedExportCmd)
}

// resolveFeedArg accepts either a literal feed URL or a "@shorthand"
// reference and returns the feed's URL (its natural key).
func resolveFeedArg(db *storedb.Database, arg string) (string, error) {
	if !strings.HasPrefix(arg, "@") {
		return arg, nil
	}
	sh := strings.TrimPrefix(arg, "@")

	feeds := db.Feeds.Items()
	sort.Slice(feeds, func(i, j int) bool { return feeds[i].URL < feeds[j].URL })
	ids := make([]string, len(feeds))
	for i, f := range feeds {
		ids[i] = db.Feeds.IDOf(f)
	}

	idx, ok := shorthand.Resolve(ids, sh)
	if !ok {
		return "", fmt.Errorf("unknown feed shorthand: @%s", sh)
	}
	return feeds[idx].URL, nil
}
