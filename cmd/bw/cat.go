package main

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/glamour"
	"github.com/kantord/blogwarrior-go/internal/shorthand"
	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <shorthand>",
	Short: "Render a post's summary as markdown",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		db := openStore()
		defer db.Close()

		posts := db.Posts.Items()
		sort.Slice(posts, func(i, j int) bool {
			if posts[i].PublishedAt.Equal(posts[j].PublishedAt) {
				return posts[i].RawID < posts[j].RawID
			}
			return posts[i].PublishedAt.After(posts[j].PublishedAt)
		})

		for i, p := range posts {
			if shorthand.IndexToPositional(i) != args[0] {
				continue
			}
			if p.Summary == "" {
				FatalError("post has no summary")
			}
			rendered, err := glamour.Render(fmt.Sprintf("# %s\n\n%s\n", p.Title, p.Summary), "auto")
			if err != nil {
				FatalError("rendering summary: %v", err)
			}
			fmt.Print(rendered)
			return
		}
		FatalError("unknown shorthand: %s", args[0])
	},
}
