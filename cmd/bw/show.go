package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/kantord/blogwarrior-go/internal/render"
	"github.com/kantord/blogwarrior-go/internal/shorthand"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "List posts, optionally grouped and filtered",
	Run: func(cmd *cobra.Command, args []string) {
		group, _ := cmd.Flags().GetString("group")
		filter, _ := cmd.Flags().GetString("filter")

		keys, err := render.ParseGrouping(group)
		if err != nil {
			FatalError("%v", err)
		}

		db := openStore()
		defer db.Close()

		feeds := db.Feeds.Items()
		sort.Slice(feeds, func(i, j int) bool { return feeds[i].URL < feeds[j].URL })
		feedIDs := make([]string, len(feeds))
		for i, f := range feeds {
			feedIDs[i] = db.Feeds.IDOf(f)
		}
		feedShorthands := shorthand.ComputeShorthands(feedIDs)

		labelByFeedID := make(map[string]string, len(feeds))
		var filterFeedID string
		for i, f := range feeds {
			label := fmt.Sprintf("@%s %s", feedShorthands[i], f.URL)
			if f.Title != "" {
				label = fmt.Sprintf("@%s %s", feedShorthands[i], f.Title)
			}
			labelByFeedID[db.Feeds.IDOf(f)] = label

			if filter != "" && filter[0] == '@' && feedShorthands[i] == filter[1:] {
				filterFeedID = db.Feeds.IDOf(f)
			}
		}
		if filter != "" && filter[0] == '@' && filterFeedID == "" {
			FatalError("unknown feed shorthand: %s", filter)
		}

		posts := db.Posts.Items()
		sort.Slice(posts, func(i, j int) bool {
			if posts[i].PublishedAt.Equal(posts[j].PublishedAt) {
				return posts[i].RawID < posts[j].RawID
			}
			return posts[i].PublishedAt.After(posts[j].PublishedAt)
		})

		items := make([]render.Item, 0, len(posts))
		for i, p := range posts {
			if filterFeedID != "" && p.FeedID != filterFeedID {
				continue
			}
			items = append(items, render.Item{
				Shorthand:   shorthand.IndexToPositional(i),
				Title:       p.Title,
				FeedLabel:   labelByFeedID[p.FeedID],
				PublishedAt: p.PublishedAt,
			})
		}
		if len(items) == 0 {
			FatalError("no matching posts")
		}

		// EnvColorProfile honors NO_COLOR and CLICOLOR on top of the tty check.
		color := isatty.IsTerminal(os.Stdout.Fd()) && termenv.EnvColorProfile() != termenv.Ascii
		fmt.Print(render.Grouped(items, keys, color))
	},
}

func init() {
	showCmd.Flags().StringP("group", "g", "", "grouping keys: d (date), f (feed), df, fd")
	showCmd.Flags().StringP("filter", "F", "", "restrict to a single feed by @shorthand")
}
