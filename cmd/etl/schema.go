package main

import (
	"fmt"

	"github.com/JonMunkholm/fleximart/internal/store"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the DDL of the tables the loader expects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), store.Schema())
		return err
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
