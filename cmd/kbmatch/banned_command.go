package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kbmatch/internal/banlist"
	"kbmatch/internal/logging"
)

func newBannedCommand(ctx *commandContext) *cobra.Command {
	bannedCmd := &cobra.Command{
		Use:   "banned",
		Short: "Manage entities that are never offered as candidates",
	}
	bannedCmd.AddCommand(newBannedListCommand(ctx))
	bannedCmd.AddCommand(newBannedAddCommand(ctx))
	return bannedCmd
}

func (c *commandContext) openBanlist() (*banlist.List, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		logger = logging.NewNop()
	}
	return banlist.New(cfg.Matching.Banned, cfg.Paths.BannedFile, logger)
}

func newBannedListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List banned entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := ctx.openBanlist()
			if err != nil {
				return err
			}
			entries := list.Entries()
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No banned entities")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				origin := "file"
				if e.Builtin {
					origin = "config"
				}
				added := "-"
				if !e.AddedAt.IsZero() {
					added = e.AddedAt.Local().Format(time.DateOnly)
				}
				note := e.Note
				if note == "" {
					note = "-"
				}
				rows = append(rows, []string{e.QID, origin, added, note})
			}
			fmt.Fprintln(out, renderTable("Banned", []string{"Entity", "Origin", "Added", "Note"}, rows, nil))
			return nil
		},
	}
}

func newBannedAddCommand(ctx *commandContext) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Ban an entity by QID or IRI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := ctx.openBanlist()
			if err != nil {
				return err
			}
			added, err := list.Add(args[0], note)
			if err != nil {
				return err
			}
			qid, _ := banlist.ParseID(args[0])
			out := cmd.OutOrStdout()
			if !added {
				fmt.Fprintf(out, "%s is already banned\n", qid)
				return nil
			}
			fmt.Fprintf(out, "Banned %s\n", qid)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Why the entity is banned")
	return cmd
}
