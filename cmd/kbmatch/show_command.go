package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kbmatch/internal/record"
	"kbmatch/internal/services"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "show <key>",
		Short: "Print one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseCollectionArg(collection)
			if err != nil {
				return err
			}
			s, err := ctx.loadStore(kind)
			if err != nil {
				return err
			}
			key := args[0]
			rec, ok := s.Get(key)
			if !ok {
				return services.Wrap(services.ErrNotFound, "cli", "show",
					fmt.Sprintf("no %s record with key %q", kind, key), nil)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRecord(kind, rec))
			return nil
		},
	}
	cmd.Flags().StringVar(&collection, "collection", "people", "Collection to read (people or places)")
	return cmd
}

func renderRecord(kind record.Kind, rec record.Record) string {
	rows := [][]string{
		{"Key", rec.Key},
		{"Name", rec.Name},
		{"Resolved", yesNo(rec.Resolved())},
		{"IRI", orDash(rec.IRI)},
		{"Description", orDash(rec.Description)},
		{"VIAF", orDash(rec.VIAF)},
		{"Aliases", strings.Join(rec.Aliases, "; ")},
		{"Image", orDash(rec.Image)},
	}
	if kind == record.KindPerson {
		rows = append(rows,
			[]string{"Birth", orDash(rec.Birth)},
			[]string{"Death", orDash(rec.Death)},
			[]string{"Gender", orDash(rec.Gender)},
		)
	} else {
		rows = append(rows,
			[]string{"Latitude", formatCoordinate(rec.Lat)},
			[]string{"Longitude", formatCoordinate(rec.Lon)},
		)
	}
	return renderTable("", []string{"Field", "Value"}, rows, nil)
}

func orDash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}

func formatCoordinate(value *float64) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
