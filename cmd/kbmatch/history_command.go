package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"kbmatch/internal/journal"
	"kbmatch/internal/record"
	"kbmatch/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		collection string
		key        string
		session    string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled reconciliation decisions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return services.Wrap(services.ErrConfiguration, "cli", "history",
					"the decision journal is disabled (journal.enabled = false)", nil)
			}
			filter := journal.Filter{
				SessionID: strings.TrimSpace(session),
				Key:       strings.TrimSpace(key),
				Limit:     limit,
			}
			if strings.TrimSpace(collection) != "" {
				kind, err := parseCollectionArg(collection)
				if err != nil {
					return err
				}
				filter.Collection = kind.Collection()
			}

			j, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer j.Close()
			entries, err := j.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No decisions recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&collection, "collection", "", "Only show decisions for people or places")
	cmd.Flags().StringVar(&key, "key", "", "Only show decisions for this record key")
	cmd.Flags().StringVar(&session, "session", "", "Only show decisions from this run session")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of decisions (0 for all)")
	return cmd
}

func renderHistory(entries []journal.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.CreatedAt.Local().Format(time.DateTime),
			e.Collection,
			e.Key,
			e.Source,
			e.Decision,
			e.Outcome,
			shortIRI(e.IRI),
		})
	}
	return renderTable("Decisions",
		[]string{"When", "Collection", "Key", "Source", "Decision", "Outcome", "Entity"},
		rows, nil)
}

func shortIRI(iri string) string {
	if iri == "" {
		return "-"
	}
	if qid := record.QIDFromIRI(iri); qid != "" {
		return qid
	}
	return iri
}
