// Package scheduletest provides SQLite-backed schedule stores for tests.
package scheduletest

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/Takenobou/class-calendar/internal/schedule"
)

// ClassDates are the fixture class dates used across tests.
var ClassDates = []time.Time{
	time.Date(2025, time.July, 28, 0, 0, 0, 0, time.UTC),
	time.Date(2025, time.July, 29, 0, 0, 0, 0, time.UTC),
	time.Date(2025, time.July, 30, 0, 0, 0, 0, time.UTC),
}

// NewStore opens a migrated store in a temporary SQLite file that is closed
// when the test ends.
func NewStore(t testing.TB) *schedule.Store {
	t.Helper()
	store, err := schedule.Open("sqlite:" + filepath.Join(t.TempDir(), "schedule.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

// NewSeeder returns a deterministic seeder over store using ClassDates.
func NewSeeder(t testing.TB, store *schedule.Store, loc *time.Location) *schedule.Seeder {
	t.Helper()
	seeder, err := schedule.NewSeeder(store, ClassDates, loc, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("new seeder: %v", err)
	}
	return seeder
}
