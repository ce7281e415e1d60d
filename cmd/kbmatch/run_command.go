package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kbmatch/internal/banlist"
	"kbmatch/internal/config"
	"kbmatch/internal/console"
	"kbmatch/internal/importer"
	"kbmatch/internal/journal"
	"kbmatch/internal/logging"
	"kbmatch/internal/notifications"
	"kbmatch/internal/reconcile"
	"kbmatch/internal/services"
	"kbmatch/internal/store"
)

type runFlags struct {
	importFromSource   bool
	people             bool
	places             bool
	updateAll          bool
	startFrom          string
	reportBirthCountry bool
	confirmVIAF        bool
	bell               bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Interactively reconcile people and places against Wikidata",
		Long: `Walk the people and places collections in store order, query Wikidata for
each unresolved record and ask for confirmation on the console.

Flags override the [run] and [matching] sections of the configuration file.
Every accepted change is written to disk immediately; an interrupt leaves the
stores as of the last completed record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return executeRun(cmd, ctx, resolveRunOptions(cmd, cfg, flags), flags.bell)
		},
	}

	cmd.Flags().BoolVar(&flags.importFromSource, "import", false, "Import the CSV sources before searching")
	cmd.Flags().BoolVar(&flags.people, "people", false, "Run the person pass")
	cmd.Flags().BoolVar(&flags.places, "places", false, "Run the place pass")
	cmd.Flags().BoolVar(&flags.updateAll, "update-all", false, "Refresh already resolved records")
	cmd.Flags().StringVar(&flags.startFrom, "start-from", "", "Skip records before this key")
	cmd.Flags().BoolVar(&flags.reportBirthCountry, "report-birth-country", false, "Print the birth country of resolved people")
	cmd.Flags().BoolVar(&flags.confirmVIAF, "confirm-viaf", false, "Ask before accepting VIAF matches")
	cmd.Flags().BoolVar(&flags.bell, "bell", false, "Ring the terminal bell at every prompt")
	return cmd
}

// resolveRunOptions starts from the configuration and applies only the flags
// given on the command line.
func resolveRunOptions(cmd *cobra.Command, cfg *config.Config, flags runFlags) reconcile.Options {
	opts := reconcile.Options{
		ImportFromSource:   cfg.Run.ImportFromSource,
		SearchPeople:       cfg.Run.SearchPeople,
		SearchPlaces:       cfg.Run.SearchPlaces,
		UpdateAll:          cfg.Run.UpdateAll,
		StartFrom:          cfg.Run.StartFrom,
		ReportBirthCountry: cfg.Matching.ReportBirthCountry,
		ConfirmVIAF:        cfg.Matching.ConfirmVIAFMatches,
		BirthYearCutoff:    cfg.Matching.BirthYearCutoff,
	}
	changed := cmd.Flags().Changed
	if changed("import") {
		opts.ImportFromSource = flags.importFromSource
	}
	if changed("people") {
		opts.SearchPeople = flags.people
	}
	if changed("places") {
		opts.SearchPlaces = flags.places
	}
	if changed("update-all") {
		opts.UpdateAll = flags.updateAll
	}
	if changed("start-from") {
		opts.StartFrom = flags.startFrom
	}
	if changed("report-birth-country") {
		opts.ReportBirthCountry = flags.reportBirthCountry
	}
	if changed("confirm-viaf") {
		opts.ConfirmVIAF = flags.confirmVIAF
	}
	return opts
}

func executeRun(cmd *cobra.Command, ctx *commandContext, opts reconcile.Options, bell bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	baseLogger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sessionID := uuid.NewString()
	runCtx = services.WithSessionID(runCtx, sessionID)
	logger := logging.WithContext(runCtx, baseLogger)

	people, places, err := ctx.openStores(logger)
	if err != nil {
		return err
	}
	defer people.Close()
	defer places.Close()
	for _, s := range []*store.Store{people, places} {
		if _, err := s.Backup(); err != nil {
			return err
		}
	}

	source, err := ctx.newSource(logger)
	if err != nil {
		return err
	}
	banned, err := banlist.New(cfg.Matching.Banned, cfg.Paths.BannedFile, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	term := console.New(cmd.InOrStdin(), out,
		console.WithColor(console.ShouldColorize(out)),
		console.WithBell(bell))

	engineOpts := []reconcile.EngineOption{
		reconcile.WithLogger(logger),
		reconcile.WithNotifier(term),
		reconcile.WithImporter(importer.New(cfg.Paths.PeopleCSV, cfg.Paths.PlacesCSV, logger)),
	}
	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer j.Close()
		engineOpts = append(engineOpts, reconcile.WithRecorder(j.Session(sessionID)))
	}

	notifier := notifications.NewService(cfg)
	engine := reconcile.NewEngine(source, term, banned, opts, engineOpts...)

	logger.Info("run started",
		logging.Bool("import", opts.ImportFromSource),
		logging.Bool("people", opts.SearchPeople),
		logging.Bool("places", opts.SearchPlaces),
		logging.Bool("update_all", opts.UpdateAll),
		logging.String("start_from", opts.StartFrom))
	term.Instructions()

	started := time.Now()
	summaries, err := engine.Run(runCtx, people, places)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("run interrupted", logging.Duration("elapsed", time.Since(started)))
			return context.Canceled
		}
		logger.Error("run failed", logging.Error(err))
		notifyFailure(cmd.Context(), notifier, err, logger)
		return err
	}
	elapsed := time.Since(started)
	logger.Info("run finished", logging.Duration("elapsed", elapsed), logging.Int("passes", len(summaries)))

	for _, s := range summaries {
		if s.StartKeyMissing {
			term.Status("Start key", console.StatusWarn, fmt.Sprintf("%q not found in %s", opts.StartFrom, s.Collection))
		}
	}
	fmt.Fprintln(out, renderSummaries(summaries))
	fmt.Fprintln(out, renderStats([]reconcile.CollectionStats{
		reconcile.ComputeStats(people.Kind(), people.Records()),
		reconcile.ComputeStats(places.Kind(), places.Records()),
	}))

	if err := notifier.NotifyRunCompleted(cmd.Context(), summaries, elapsed); err != nil {
		logging.WarnWithContext(logger, "run notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no push message for this run"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"))
	}
	return nil
}

func notifyFailure(ctx context.Context, notifier notifications.Service, runErr error, logger *slog.Logger) {
	if err := notifier.NotifyRunFailed(ctx, runErr); err != nil {
		logging.WarnWithContext(logger, "failure notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run failure was not pushed"),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"))
	}
}
