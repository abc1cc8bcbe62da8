package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/fleximart/internal/admin"
	"github.com/JonMunkholm/fleximart/internal/store/postgres"
	"github.com/spf13/cobra"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Empty the customers, products, orders and order_items tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes && !confirm(cmd, "This deletes every loaded row. Type 'yes' to continue: ") {
			return errors.New("reset cancelled")
		}

		pool, err := postgres.Connect(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		st := postgres.New(pool)
		defer st.Close()

		cleared, err := admin.ResetAll(cmd.Context(), st)
		if err != nil {
			return err
		}
		for _, c := range cleared {
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d rows removed\n", c.Table, c.Rows)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.EqualFold(strings.TrimSpace(line), "yes")
}
