package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var cardCmd = &cobra.Command{
	Use:   "card <multiverseid>",
	Short: "Show every face of a card",
	Long: `card fetches the oracle and the printed detail page of a card and prints
its faces. Split, flip and double-faced cards produce one entry per face;
the printed wording is attached to the face with the same collector number.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil || id <= 0 {
			return fmt.Errorf("multiverse id must be a positive integer, got %q", args[0])
		}

		c, cleanup, err := newCrawler(settings.cfg, settings.logger)
		if err != nil {
			return err
		}
		defer cleanup()

		start := time.Now()
		faces, err := c.FetchCard(cmd.Context(), id)
		if err != nil {
			return err
		}

		settings.logger.Info("card crawled", "multiverse_id", id, "faces", len(faces), "elapsed", elapsed(start))
		return writeFaces(cmd.OutOrStdout(), settings.output, faces)
	},
}
