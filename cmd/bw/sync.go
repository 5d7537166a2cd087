package main

import (
	"fmt"

	"github.com/kantord/blogwarrior-go/internal/sync"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Pull new posts and reconcile with the remote store",
	Run: func(cmd *cobra.Command, args []string) {
		outcome, err := sync.Run(rootCtx, resolveStoreDir(), nil)
		if err != nil {
			FatalError("%v", err)
		}

		switch outcome {
		case sync.OutcomeOffline:
			fmt.Println("synced (no git repository present)")
		case sync.OutcomeNoRemote:
			fmt.Println("warning: no remote configured, changes committed locally only")
		case sync.OutcomeFirstPush:
			fmt.Println("pushed first sync")
		case sync.OutcomeUpToDate:
			fmt.Println("already up to date")
		case sync.OutcomePushedAhead:
			fmt.Println("pushed local changes")
		case sync.OutcomeMerged:
			fmt.Println("merged remote changes and pushed")
		case sync.OutcomeNothingToFetch:
			fmt.Println("nothing to fetch")
		}
	},
}
