package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kbmatch/internal/reconcile"
	"kbmatch/internal/record"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show resolution and fill rates for both collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats := make([]reconcile.CollectionStats, 0, 2)
			for _, kind := range []record.Kind{record.KindPerson, record.KindPlace} {
				s, err := ctx.loadStore(kind)
				if err != nil {
					return err
				}
				stats = append(stats, reconcile.ComputeStats(kind, s.Records()))
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(stats))
			return nil
		},
	}
}
