package main

import (
	"time"

	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "List every card of a set",
	Long: `set walks all result pages of the compact search for a set and prints
one summary row per card, in page order.

The set name must match Gatherer's spelling, for example "Theros" or
"Magic 2014 Core Set".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cleanup, err := newCrawler(settings.cfg, settings.logger)
		if err != nil {
			return err
		}
		defer cleanup()

		start := time.Now()
		rows, err := c.FetchCardList(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		settings.logger.Info("set crawled", "set", args[0], "cards", len(rows), "elapsed", elapsed(start))
		return writeRows(cmd.OutOrStdout(), settings.output, rows)
	},
}
