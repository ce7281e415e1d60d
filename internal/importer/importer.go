package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"

	"kbmatch/internal/logging"
	"kbmatch/internal/reconcile"
	"kbmatch/internal/record"
	"kbmatch/internal/services"
)

const aliasSeparator = ";"

// Row is one parsed CSV line.
type Row struct {
	Line    int
	Name    string
	VIAF    string
	Aliases []string
	Lat     *float64
	Lon     *float64
}

// CSVImporter reads the people and places exports.
type CSVImporter struct {
	peoplePath string
	placesPath string
	logger     *slog.Logger
}

var _ reconcile.Importer = (*CSVImporter)(nil)

// New builds an importer. Either path may be empty to disable that collection.
func New(peoplePath, placesPath string, logger *slog.Logger) *CSVImporter {
	return &CSVImporter{
		peoplePath: strings.TrimSpace(peoplePath),
		placesPath: strings.TrimSpace(placesPath),
		logger:     logging.NewComponentLogger(logger, "importer"),
	}
}

// Import merges the CSV for dst's kind into dst and saves it once. A missing
// source file is reported and skipped.
func (i *CSVImporter) Import(ctx context.Context, dst reconcile.Collection) (int, error) {
	kind := dst.Kind()
	path := i.peoplePath
	if kind == record.KindPlace {
		path = i.placesPath
	}
	logger := i.logger.With(logging.String(logging.FieldCollection, kind.Collection()))
	if path == "" {
		return 0, nil
	}

	rows, err := ReadFile(path, kind)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.WarnWithContext(logger, "import source missing", "import_source_missing",
				logging.String("path", path),
				logging.String(logging.FieldImpact, "collection not imported"),
				logging.String(logging.FieldErrorHint, "set paths.people_csv / paths.places_csv"))
			return 0, nil
		}
		return 0, err
	}

	seen := make(map[string]int, len(rows))
	before := make(map[string]record.Record, len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if first, ok := seen[row.Name]; ok {
			logging.WarnWithContext(logger, "duplicate import key", "import_duplicate",
				logging.String(logging.FieldRecordKey, row.Name),
				logging.Int("line", row.Line),
				logging.Int("first_line", first),
				logging.String(logging.FieldImpact, "later row wins"),
				logging.String(logging.FieldErrorHint, "remove the duplicate from the CSV"))
		}
		seen[row.Name] = row.Line

		base, ok := before[row.Name]
		if !ok {
			if base, ok = dst.Get(row.Name); !ok {
				base = record.New(row.Name)
			}
			before[row.Name] = base
		}
		dst.Put(Merge(base, row))
	}
	if err := dst.Save(); err != nil {
		return 0, err
	}
	logger.Info("import complete", logging.String("path", path), logging.Int("record_count", len(seen)))
	return len(seen), nil
}

// Merge folds row into rec. Match results are never touched; VIAF and
// coordinates replace existing values only when the row has them.
func Merge(rec record.Record, row Row) record.Record {
	out := rec.Clone()
	if row.VIAF != "" {
		out.VIAF = record.StringPtr(row.VIAF)
	}
	for _, alias := range row.Aliases {
		if !slices.Contains(out.Aliases, alias) {
			out.Aliases = append(out.Aliases, alias)
		}
	}
	if row.Lat != nil && row.Lon != nil {
		out.Lat, out.Lon = row.Lat, row.Lon
	}
	out.NormalizeAliases()
	return out
}

// ReadFile parses a CSV export; files ending in .gz are decompressed.
func ReadFile(path string, kind record.Kind) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var src io.Reader = file
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		zr, err := gzip.NewReader(file)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "importer", "gunzip", path, err)
		}
		defer zr.Close()
		src = zr
	}
	rows, err := Read(src, kind)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "importer", "parse", path, err)
	}
	return rows, nil
}

// Read parses CSV rows for kind, skipping the header. Rows with an empty name
// are rejected.
func Read(src io.Reader, kind record.Kind) ([]Row, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	minFields := 3
	if kind == record.KindPlace {
		minFields = 5
	}

	var rows []Row
	line := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 {
			continue
		}
		if len(fields) < minFields {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, minFields, len(fields))
		}
		row, err := parseRow(fields, kind)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(fields []string, kind record.Kind) (Row, error) {
	row := Row{Name: strings.TrimSpace(fields[0])}
	if row.Name == "" {
		return Row{}, errors.New("empty name")
	}
	aliasField := fields[2]
	row.VIAF = strings.TrimSpace(fields[1])
	if kind == record.KindPlace {
		row.Lat = record.ParseCoordinate(fields[1])
		row.Lon = record.ParseCoordinate(fields[2])
		row.VIAF = strings.TrimSpace(fields[3])
		aliasField = fields[4]
	}
	for _, alias := range strings.Split(aliasField, aliasSeparator) {
		alias = strings.TrimSpace(alias)
		if alias == "" || alias == row.Name {
			continue
		}
		row.Aliases = append(row.Aliases, alias)
	}
	return row, nil
}
