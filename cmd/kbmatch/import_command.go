package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kbmatch/internal/importer"
	"kbmatch/internal/store"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Merge the people and places CSV sources into the stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			people, places, err := ctx.openStores(logger)
			if err != nil {
				return err
			}
			defer people.Close()
			defer places.Close()

			imp := importer.New(cfg.Paths.PeopleCSV, cfg.Paths.PlacesCSV, logger)
			out := cmd.OutOrStdout()
			for _, s := range []*store.Store{people, places} {
				if _, err := s.Backup(); err != nil {
					return err
				}
				n, err := imp.Import(cmd.Context(), s)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Imported %d %s (%d total)\n", n, s.Kind().Collection(), s.Len())
			}
			return nil
		},
	}
}
