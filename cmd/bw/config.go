package main

import (
	"fmt"

	"github.com/kantord/blogwarrior-go/internal/bwconfig"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file with every tunable at its default",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := bwconfig.DefaultConfigPath()
		if err != nil {
			FatalError("%v", err)
		}
		if err := bwconfig.WriteDefaultConfig(path); err != nil {
			FatalError("%v", err)
		}
		fmt.Printf("wrote %s\n", path)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print the effective value of a configuration key",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(bwconfig.GetString(args[0]))
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configGetCmd)
}
