package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Takenobou/class-calendar/internal/calendar"
	"github.com/Takenobou/class-calendar/internal/config"
	"github.com/Takenobou/class-calendar/internal/schedule"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if err := newApp(logger, os.Stdout).Run(ctx, os.Args); err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newApp builds the command tree. Exports without --out go to stdout.
func newApp(logger *slog.Logger, stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "calendarctl",
		Usage: "manage and export the class schedule",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create or upgrade the schedule tables",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withStore(ctx, func(_ config.Config, _ *schedule.Store) error {
						logger.Info("schema migrated")
						return nil
					})
				},
			},
			{
				Name:  "seed",
				Usage: "create sample instructors and scheduled classes",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "instructors", Aliases: []string{"n"}, Value: 10, Usage: "number of instructors to create"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withStore(ctx, func(cfg config.Config, store *schedule.Store) error {
						seeder, err := schedule.NewSeeder(store, cfg.ClassDates, cfg.Location(), nil)
						if err != nil {
							return err
						}
						created, err := seeder.Many(ctx, int(cmd.Int("instructors")))
						if err != nil {
							return fmt.Errorf("seed: %w", err)
						}
						logger.Info("seeded schedule", slog.Int("instructables", len(created)))
						return nil
					})
				},
			},
			{
				Name:  "export",
				Usage: "render the calendar to a file or stdout",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "pdf", Usage: "html, xlsx, csv, ics or pdf"},
					&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "render a single day (YYYY-MM-DD)"},
					&cli.BoolFlag{Name: "brief", Usage: "condensed PDF layout"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, stdout when empty"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					req := exportRequest{
						format: cmd.String("format"),
						date:   cmd.String("date"),
						brief:  cmd.Bool("brief"),
						out:    cmd.String("out"),
					}
					return withStore(ctx, func(cfg config.Config, store *schedule.Store) error {
						return export(ctx, cfg, store, req, stdout, logger)
					})
				},
			},
		},
	}
}

// withStore loads configuration, opens and migrates the store, and closes it
// once fn returns.
func withStore(ctx context.Context, fn func(config.Config, *schedule.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	store, err := schedule.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	return fn(cfg, store)
}

type exportRequest struct {
	format string
	date   string
	brief  bool
	out    string
}

func export(ctx context.Context, cfg config.Config, store *schedule.Store, req exportRequest, stdout io.Writer, logger *slog.Logger) error {
	format, err := calendar.ParseFormat(req.format)
	if err != nil {
		return err
	}

	builder, err := calendar.NewBuilder(calendar.Config{
		Name:        cfg.CalendarName,
		Description: cfg.CalendarDesc,
		Timezone:    cfg.Timezone,
		ClassDates:  cfg.ClassDates,
		BaseURL:     cfg.BaseURL,
	})
	if err != nil {
		return err
	}

	var day time.Time
	var rng schedule.Range
	if req.date != "" {
		day, err = time.ParseInLocation("2006-01-02", req.date, builder.Location())
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", req.date, err)
		}
		rng = schedule.Day(day, builder.Location())
	}

	items, err := store.Occurrences(ctx, rng)
	if err != nil {
		return err
	}

	opts := calendar.Options{Brief: format == calendar.FormatPDF && req.brief}
	render := func(w io.Writer) error {
		return builder.Render(w, format, builder.Schedule(items, day), opts)
	}
	if req.out == "" {
		err = render(stdout)
	} else {
		err = writeFile(req.out, render)
	}
	if err != nil {
		return err
	}

	logger.Info("calendar exported",
		slog.String("format", format.String()),
		slog.Int("occurrences", len(items)),
	)
	return nil
}

// writeFile creates path and reports both write and close failures.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
