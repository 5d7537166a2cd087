package main

import (
	"fmt"
	"sort"

	"github.com/kantord/blogwarrior-go/internal/shorthand"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <shorthand>",
	Short: "Print the link for a post by its positional shorthand",
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
			if p.Link == "" {
				FatalError("post has no link")
			}
			fmt.Println(p.Link)
			return
		}
		FatalError("unknown shorthand: %s", args[0])
	},
}
