package schedule

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

var seedTopics = []string{"Arts & Sciences", "Dance", "Fiber Arts", "History", "Martial", "Music", "Woodworking"}

var seedCultures = []string{"Norse", "Byzantine", "Italian", "Japanese", "English", "Persian"}

// Seeder creates instructors and scheduled instructables, placing instances
// on the configured class dates. It backs fixtures and the seed command.
type Seeder struct {
	store      *Store
	classDates []time.Time
	location   *time.Location
	rand       *rand.Rand
	seq        int
}

// NewSeeder prepares a Seeder. A nil rng uses a randomly seeded source.
func NewSeeder(store *Store, classDates []time.Time, loc *time.Location, rng *rand.Rand) (*Seeder, error) {
	if len(classDates) == 0 {
		return nil, errors.New("at least one class date is required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Seeder{store: store, classDates: classDates, location: loc, rand: rng}, nil
}

// Instructor creates a new instructor.
func (s *Seeder) Instructor(ctx context.Context) (*Instructor, error) {
	s.seq++
	instructor := &Instructor{
		Name:  fmt.Sprintf("Instructor %d", s.seq),
		Email: fmt.Sprintf("instructor%d@example.com", s.seq),
	}
	if err := s.store.CreateInstructor(ctx, instructor); err != nil {
		return nil, err
	}
	return instructor, nil
}

// Scheduled creates an instructable owned by owner with repeatCount
// instances, the first on the first class date.
func (s *Seeder) Scheduled(ctx context.Context, owner *Instructor, repeatCount int) (*Instructable, error) {
	if repeatCount < 1 {
		repeatCount = 1
	}
	s.seq++
	topic := seedTopics[s.seq%len(seedTopics)]
	culture := seedCultures[s.seq%len(seedCultures)]

	instructable := &Instructable{
		UserID:          owner.ID,
		Name:            fmt.Sprintf("%s Class %d", topic, s.seq),
		DescriptionBook: fmt.Sprintf("Printed description %d: a %s look at %s techniques.", s.seq, culture, topic),
		DescriptionWeb:  fmt.Sprintf("Web description %d for %s.", s.seq, topic),
		Topic:           topic,
		Culture:         culture,
		Duration:        float64(1 + s.rand.IntN(2)),
		RepeatCount:     repeatCount,
	}

	hour := 9 + s.seq%8
	location := fmt.Sprintf("Room %d", 1+s.seq%5)
	for i := 0; i < repeatCount; i++ {
		d := s.classDates[i%len(s.classDates)]
		instructable.Instances = append(instructable.Instances, Instance{
			StartTime: time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, s.location),
			Location:  location,
		})
	}

	if err := s.store.CreateInstructable(ctx, instructable); err != nil {
		return nil, err
	}
	instructable.Instructor = *owner
	return instructable, nil
}

// Many creates n instructors, each owning one scheduled instructable with a
// repeat count of one or two.
func (s *Seeder) Many(ctx context.Context, n int) ([]Instructable, error) {
	out := make([]Instructable, 0, n)
	for i := 0; i < n; i++ {
		owner, err := s.Instructor(ctx)
		if err != nil {
			return nil, err
		}
		instructable, err := s.Scheduled(ctx, owner, s.rand.IntN(2)+1)
		if err != nil {
			return nil, err
		}
		out = append(out, *instructable)
	}
	return out, nil
}
