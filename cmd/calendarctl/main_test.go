package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runApp(t *testing.T, stdout io.Writer, args ...string) error {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newApp(logger, stdout).Run(context.Background(), append([]string{"calendarctl"}, args...))
}

func useTempDatabase(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DATABASE_URL", "sqlite:"+filepath.Join(t.TempDir(), "calendar.db"))
}

func TestMigrateSeedExport(t *testing.T) {
	useTempDatabase(t)

	if err := runApp(t, io.Discard, "migrate"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := runApp(t, io.Discard, "seed", "--instructors", "3"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out := filepath.Join(t.TempDir(), "calendar.pdf")
	if err := runApp(t, io.Discard, "export", "--format", "pdf", "--brief", "--out", out); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a pdf, got %q", data[:min(len(data), 16)])
	}

	var stdout bytes.Buffer
	if err := runApp(t, &stdout, "export", "--format", "csv"); err != nil {
		t.Fatalf("export csv: %v", err)
	}
	// header plus one row per seeded instance
	if lines := strings.Count(stdout.String(), "\n"); lines < 4 {
		t.Fatalf("expected seeded rows in csv, got %d lines", lines)
	}
}

func TestExportDayOnEmptyDatabase(t *testing.T) {
	useTempDatabase(t)

	var stdout bytes.Buffer
	if err := runApp(t, &stdout, "export", "--format", "ics", "--date", "2025-07-28"); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "BEGIN:VCALENDAR") {
		t.Fatalf("unexpected ics %q", stdout.String())
	}
}

func TestExportRejectsBadInput(t *testing.T) {
	useTempDatabase(t)

	if err := runApp(t, io.Discard, "export", "--format", "docx"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
	if err := runApp(t, io.Discard, "export", "--format", "csv", "--date", "28/07/2025"); err == nil {
		t.Fatalf("expected invalid date error")
	}
}

func TestWriteFileReportsFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	failed := errors.New("render failed")
	if err := writeFile(path, func(io.Writer) error { return failed }); !errors.Is(err, failed) {
		t.Fatalf("expected render error, got %v", err)
	}

	if err := writeFile(filepath.Join(t.TempDir(), "missing", "out.csv"), func(io.Writer) error { return nil }); err == nil {
		t.Fatalf("expected create error for missing directory")
	}

	if err := writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "Date\n")
		return err
	}); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "Date\n" {
		t.Fatalf("unexpected contents %q", data)
	}
}
