// Package sync drives the reconciliation state machine: it composes a
// storedb Database with a vcs.Repo, treating the store directory as a
// working tree that local writes flow through before being committed,
// fetched, merged and pushed. No step here talks to a real RSS/Atom feed;
// new posts arrive through the Collector collaborator, which embedders
// wire to a fetcher and tests wire to a fake. A nil Collector skips
// fetching and only reconciles local state against the remote.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/kantord/blogwarrior-go/internal/bwconfig"
	"github.com/kantord/blogwarrior-go/internal/diag"
	"github.com/kantord/blogwarrior-go/internal/feedmodel"
	"github.com/kantord/blogwarrior-go/internal/storedb"
	"github.com/kantord/blogwarrior-go/internal/storeerr"
	"github.com/kantord/blogwarrior-go/internal/table"
	"github.com/kantord/blogwarrior-go/internal/vcs"
)

// Collector is the feed-collector external collaborator: given a
// subscribed feed, it returns the posts observed since the feed's
// LastFetched time and the new LastFetched value to record.
type Collector interface {
	Collect(ctx context.Context, feed feedmodel.Feed) ([]feedmodel.Post, time.Time, error)
}

// Outcome reports which branch of the state machine a Run call took, so
// callers (the CLI's sync command) can print something meaningful without
// this package depending on any particular output format.
type Outcome string

const (
	OutcomeOffline        Outcome = "offline"         // no repository present
	OutcomeNoRemote       Outcome = "no_remote"       // repo present, no origin configured
	OutcomeFirstPush      Outcome = "first_push"      // no remote branch yet existed
	OutcomeUpToDate       Outcome = "up_to_date"      // HEAD already equals remote
	OutcomePushedAhead    Outcome = "pushed_ahead"    // local was strictly ahead, pushed
	OutcomeMerged         Outcome = "merged"          // histories diverged, merged and pushed
	OutcomeNothingToFetch Outcome = "nothing_to_fetch"
)

// Run executes one full sync cycle against the store directory storeDir,
// pulling new posts for every subscribed feed via collector, then
// reconciling with the remote over git.
func Run(ctx context.Context, storeDir string, collector Collector) (Outcome, error) {
	repo, present, err := vcs.Open(storeDir)
	if err != nil {
		return "", fmt.Errorf("opening repository: %w", err)
	}

	if present {
		dirty, err := repo.IsDirty()
		if err != nil {
			return "", fmt.Errorf("checking working tree cleanliness: %w", err)
		}
		if dirty {
			return "", fmt.Errorf("%w; commit or discard them before syncing", storeerr.ErrDirtyTree)
		}
	}

	feedsSchema, postsSchema := storedb.FeedsSchema, storedb.PostsSchema
	if n := bwconfig.GetInt("feeds.shard-characters"); n > 0 {
		feedsSchema.ShardCharacters = n
	}
	if n := bwconfig.GetInt("feeds.expected-capacity"); n > 0 {
		feedsSchema.ExpectedCapacity = n
	}
	if n := bwconfig.GetInt("posts.shard-characters"); n > 0 {
		postsSchema.ShardCharacters = n
	}
	if n := bwconfig.GetInt("posts.expected-capacity"); n > 0 {
		postsSchema.ExpectedCapacity = n
	}
	db, err := storedb.OpenWithSchemas(storeDir, feedsSchema, postsSchema)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := fetchAndApply(ctx, db, collector); err != nil {
		return "", fmt.Errorf("fetching and applying new posts: %w", err)
	}

	if !present {
		return OutcomeOffline, nil
	}

	if _, err := repo.AutoCommit("pull feeds"); err != nil {
		return "", fmt.Errorf("auto-committing: %w", err)
	}

	hasRemote, err := repo.HasRemote()
	if err != nil {
		return "", fmt.Errorf("checking for remote: %w", err)
	}
	if !hasRemote {
		return OutcomeNoRemote, nil
	}

	branch, err := repo.CurrentBranch()
	if err != nil {
		return "", fmt.Errorf("resolving current branch: %w", err)
	}

	remoteRef, found, err := repo.RemoteTrackingRef(branch)
	if err != nil {
		return "", fmt.Errorf("resolving remote-tracking ref: %w", err)
	}
	if !found {
		if err := vcs.Push(storeDir, branch); err != nil {
			return "", fmt.Errorf("pushing first sync: %w", err)
		}
		return OutcomeFirstPush, nil
	}

	if err := vcs.Fetch(storeDir); err != nil {
		return "", fmt.Errorf("fetching: %w", err)
	}

	remoteRef, found, err = repo.RemoteTrackingRef(branch)
	if err != nil {
		return "", fmt.Errorf("re-resolving remote-tracking ref after fetch: %w", err)
	}
	if !found {
		return OutcomeNothingToFetch, nil
	}

	head, err := repo.HeadCommit()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}
	remoteCommit, err := repo.CommitAt(remoteRef.Hash())
	if err != nil {
		return "", fmt.Errorf("resolving remote commit: %w", err)
	}

	if head.Hash == remoteCommit.Hash {
		return OutcomeUpToDate, nil
	}

	remoteIsAncestor, err := vcs.IsAncestor(remoteCommit, head)
	if err != nil {
		return "", fmt.Errorf("testing ancestry: %w", err)
	}
	if remoteIsAncestor {
		if err := vcs.Push(storeDir, branch); err != nil {
			return "", fmt.Errorf("pushing: %w", err)
		}
		return OutcomePushedAhead, nil
	}

	if err := mergeDiverged(db, repo, head, remoteCommit); err != nil {
		return "", fmt.Errorf("merging diverged histories: %w", err)
	}
	if err := vcs.Push(storeDir, branch); err != nil {
		return "", fmt.Errorf("pushing merge: %w", err)
	}
	return OutcomeMerged, nil
}

// fetchAndApply pulls new posts for every subscribed feed and records the
// feed's updated fetch time, all inside one transaction. A single feed's
// collection error is isolated to that feed: it is logged and skipped,
// never aborting the transaction or the feeds collected around it.
func fetchAndApply(ctx context.Context, db *storedb.Database, collector Collector) error {
	if collector == nil {
		return nil
	}
	feeds := db.Feeds.Items()
	return db.Transaction(func(tx *storedb.Tx) error {
		for _, feed := range feeds {
			posts, lastFetched, err := collector.Collect(ctx, feed)
			if err != nil {
				diag.Logf("collecting feed %s failed, skipping: %v", feed.URL, err)
				continue
			}
			for _, post := range posts {
				tx.Posts.Upsert(post)
			}
			feed.LastFetched = lastFetched
			tx.Feeds.Upsert(feed)
		}
		return nil
	})
}

// mergeDiverged handles diverged histories: read every
// table's rows out of the remote commit's tree, reconcile them into the
// local tables with last-writer-wins, save, auto-commit the result, then
// record a two-parent "ours" merge commit over HEAD and the remote ref.
func mergeDiverged(db *storedb.Database, repo *vcs.Repo, head, remoteCommit *object.Commit) error {
	feedBlobs, err := vcs.TableBlobs(remoteCommit, storedb.FeedsSchema.TableName)
	if err != nil {
		return fmt.Errorf("reading remote feeds tree: %w", err)
	}
	postBlobs, err := vcs.TableBlobs(remoteCommit, storedb.PostsSchema.TableName)
	if err != nil {
		return fmt.Errorf("reading remote posts tree: %w", err)
	}

	remoteFeeds, err := table.ParseShardBlobs[feedmodel.Feed](feedBlobs)
	if err != nil {
		return fmt.Errorf("parsing remote feeds: %w", err)
	}
	remotePosts, err := table.ParseShardBlobs[feedmodel.Post](postBlobs)
	if err != nil {
		return fmt.Errorf("parsing remote posts: %w", err)
	}

	if err := db.Transaction(func(tx *storedb.Tx) error {
		tx.Feeds.MergeRemote(remoteFeeds)
		tx.Posts.MergeRemote(remotePosts)
		return nil
	}); err != nil {
		return fmt.Errorf("merging remote rows: %w", err)
	}

	if _, err := repo.AutoCommit("merge remote feeds"); err != nil {
		return fmt.Errorf("auto-committing merge result: %w", err)
	}

	if _, err := repo.MergeCommit("sync: merge remote", head, remoteCommit); err != nil {
		return fmt.Errorf("creating merge commit: %w", err)
	}
	return nil
}
