package main

import (
	"context"

	"github.com/kantord/blogwarrior-go/internal/bwconfig"
	"github.com/kantord/blogwarrior-go/internal/storedb"
	"github.com/spf13/cobra"
)

var rootCtx = context.Background()

var rootCmd = &cobra.Command{
	Use:   "bw",
	Short: "A git-synchronized feed reader store",
	Long: `bw manages a personal feed reader's subscriptions and posts in a
content-addressed, git-synchronized JSONL store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "feeds", Title: "Feed subscriptions:"},
		&cobra.Group{ID: "sync", Title: "Synchronization:"},
	)
	rootCmd.AddCommand(feedCmd, showCmd, openCmd, catCmd, syncCmd, cloneCmd, gitCmd, configCmd)
}

// resolveStoreDir returns the store directory to operate against.
func resolveStoreDir() string {
	dir, err := bwconfig.StoreDir()
	if err != nil {
		FatalError("resolving store directory: %v", err)
	}
	return dir
}

// openStore opens the store with table schemas sized from configuration,
// falling back to the built-in defaults for unset keys. The values must
// match whatever the store was first written with.
func openStore() *storedb.Database {
	feeds, posts := storedb.FeedsSchema, storedb.PostsSchema
	if n := bwconfig.GetInt("feeds.shard-characters"); n > 0 {
		feeds.ShardCharacters = n
	}
	if n := bwconfig.GetInt("feeds.expected-capacity"); n > 0 {
		feeds.ExpectedCapacity = n
	}
	if n := bwconfig.GetInt("posts.shard-characters"); n > 0 {
		posts.ShardCharacters = n
	}
	if n := bwconfig.GetInt("posts.expected-capacity"); n > 0 {
		posts.ExpectedCapacity = n
	}

	db, err := storedb.OpenWithSchemas(resolveStoreDir(), feeds, posts)
	if err != nil {
		FatalError("opening store: %v", err)
	}
	return db
}
