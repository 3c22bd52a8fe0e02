// Package constellation ties habit data, storage and the star layout into the
// operations the HTTP API, CLI and TUI share.
package constellation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/logging"
	"github.com/dd0wney/starry-habits/pkg/metrics"
	"github.com/dd0wney/starry-habits/pkg/storage"
	"github.com/dd0wney/starry-habits/pkg/visualization"
)

// ErrNoStore is returned by NewService without a store.
var ErrNoStore = errors.New("constellation: store is required")

// Options configures a Service. Only Store is required.
type Options struct {
	Store     storage.Store
	Logger    logging.Logger
	Metrics   *metrics.Registry
	Layout    *visualization.ConstellationLayout
	CacheSize int
	Seed      int64
	Clock     habits.Clock
}

// Service serializes every mutation of the habit data and writes each new
// version through to the store before it becomes visible.
type Service struct {
	mu   sync.Mutex
	data *habits.Data

	store   storage.Store
	session *Session
	cache   *visualization.LayoutCache
	layout  *visualization.ConstellationLayout
	logger  logging.Logger
	metrics *metrics.Registry
	clock   habits.Clock
}

// NewService creates a service over opts.Store. Data is loaded on first use.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, ErrNoStore
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewRegistry()
	}
	if opts.Layout == nil {
		opts.Layout = visualization.NewConstellationLayout(nil)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Service{
		store:   opts.Store,
		session: NewSession(opts.Seed),
		cache:   visualization.NewLayoutCache(opts.CacheSize),
		layout:  opts.Layout,
		logger:  opts.Logger.With(logging.Component("constellation")),
		metrics: opts.Metrics,
		clock:   opts.Clock,
	}
	s.logger.Info("session started", logging.Seed(s.session.Seed()))
	return s, nil
}

// Seed returns the session seed.
func (s *Service) Seed() int64 {
	return s.session.Seed()
}

// Today returns the current date key.
func (s *Service) Today() string {
	return habits.TodayKey(s.clock)
}

// Reshuffle rearranges the sky with a new session seed. Layouts of the old
// seed stay cached until evicted.
func (s *Service) Reshuffle() int64 {
	old := s.session.Seed()
	seed := s.session.Reshuffle()
	s.metrics.RecordReshuffle()
	s.logger.Info("session reshuffled", logging.Int64("previous_seed", old), logging.Seed(seed))
	return seed
}

// load returns the current data, reading the store once. Callers hold s.mu.
func (s *Service) load(ctx context.Context) (*habits.Data, error) {
	if s.data != nil {
		return s.data, nil
	}
	data, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	s.data = data
	s.updateCounts()
	return data, nil
}

// snapshot returns the current data. The result must not be modified.
func (s *Service) snapshot(ctx context.Context) (*habits.Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// mutate applies fn to the current data, saves the result and makes it current.
func (s *Service) mutate(ctx context.Context, op string, fn func(*habits.Data) (*habits.Data, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, next); err != nil {
		s.logger.Error("failed to save habits", logging.Operation(op), logging.Error(err))
		return fmt.Errorf("failed to save habits: %w", err)
	}
	s.data = next
	s.updateCounts()
	return nil
}

func (s *Service) updateCounts() {
	s.metrics.SetHabitCounts(len(habits.ActiveHabits(s.data)), len(habits.ArchivedHabits(s.data)))
}

// Habits returns every habit, archived ones included, in creation order.
func (s *Service) Habits(ctx context.Context) ([]habits.Habit, error) {
	data, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]habits.Habit, len(data.Habits))
	copy(out, data.Habits)
	return out, nil
}

// Habit returns a single habit.
func (s *Service) Habit(ctx context.Context, id string) (habits.Habit, error) {
	data, err := s.snapshot(ctx)
	if err != nil {
		return habits.Habit{}, err
	}
	h, ok := habits.FindHabit(data, id)
	if !ok {
		return habits.Habit{}, habits.NewError("get").Habit(id).Cause(habits.ErrHabitNotFound).Err()
	}
	return h, nil
}

// AddHabit creates an active habit.
func (s *Service) AddHabit(ctx context.Context, in habits.HabitInput) (habits.Habit, error) {
	var created habits.Habit
	err := s.mutate(ctx, "add", func(d *habits.Data) (*habits.Data, error) {
		next, h, err := habits.AddHabit(d, in, s.clock())
		created = h
		return next, err
	})
	if err != nil {
		return habits.Habit{}, err
	}
	s.metrics.RecordHabitMutation("add")
	s.logger.Info("habit added", logging.HabitID(created.ID), logging.String("name", created.Name))
	return created, nil
}

// UpdateHabit changes the given fields of a habit and returns the result.
func (s *Service) UpdateHabit(ctx context.Context, id string, upd habits.HabitUpdate) (habits.Habit, error) {
	var updated habits.Habit
	err := s.mutate(ctx, "update", func(d *habits.Data) (*habits.Data, error) {
		next, err := habits.UpdateHabit(d, id, upd)
		if err != nil {
			return nil, err
		}
		updated, _ = habits.FindHabit(next, id)
		return next, nil
	})
	if err != nil {
		return habits.Habit{}, err
	}
	s.metrics.RecordHabitMutation("update")
	s.logger.Info("habit updated", logging.HabitID(id))
	return updated, nil
}

// ArchiveHabit hides a habit from the sky while keeping its history.
func (s *Service) ArchiveHabit(ctx context.Context, id string) error {
	err := s.mutate(ctx, "archive", func(d *habits.Data) (*habits.Data, error) {
		return habits.ArchiveHabit(d, id)
	})
	if err != nil {
		return err
	}
	s.metrics.RecordHabitMutation("archive")
	s.logger.Info("habit archived", logging.HabitID(id))
	return nil
}

// DeleteHabit removes a habit and its completions.
func (s *Service) DeleteHabit(ctx context.Context, id string) error {
	err := s.mutate(ctx, "delete", func(d *habits.Data) (*habits.Data, error) {
		return habits.DeleteHabit(d, id)
	})
	if err != nil {
		return err
	}
	s.metrics.RecordHabitMutation("delete")
	s.logger.Info("habit deleted", logging.HabitID(id))
	return nil
}

// Toggle flips a habit's completion on date ("" means today) and reports
// the new state. The layout is unaffected.
func (s *Service) Toggle(ctx context.Context, id, date string) (bool, error) {
	if date == "" {
		date = s.Today()
	}
	var completed bool
	err := s.mutate(ctx, "toggle", func(d *habits.Data) (*habits.Data, error) {
		next, done, err := habits.ToggleHabit(d, id, date)
		completed = done
		return next, err
	})
	if err != nil {
		return false, err
	}
	s.metrics.RecordToggle(completed)
	s.logger.Debug("habit toggled", logging.HabitID(id), logging.Date(date), logging.Bool("completed", completed))
	return completed, nil
}

// SetNote stores the reflection for date ("" means today).
func (s *Service) SetNote(ctx context.Context, date, note string) error {
	if date == "" {
		date = s.Today()
	}
	return s.mutate(ctx, "note", func(d *habits.Data) (*habits.Data, error) {
		return habits.SetNote(d, date, note)
	})
}

// Week builds the weekly grid for the week containing ref.
func (s *Service) Week(ctx context.Context, ref time.Time) (habits.Week, error) {
	data, err := s.snapshot(ctx)
	if err != nil {
		return habits.Week{}, err
	}
	return habits.BuildWeek(data, ref, s.Today()), nil
}

// Export returns a copy of all data.
func (s *Service) Export(ctx context.Context) (*habits.Data, error) {
	data, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return data.Clone(), nil
}

// Import replaces all data after checking it.
func (s *Service) Import(ctx context.Context, data *habits.Data) error {
	incoming := data.Clone()
	incoming.Normalize()
	if err := incoming.Check(); err != nil {
		return err
	}
	err := s.mutate(ctx, "import", func(*habits.Data) (*habits.Data, error) {
		return incoming, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("habits imported", logging.Count(len(incoming.Habits)))
	return nil
}

// Ping checks the backing store when it supports it.
func (s *Service) Ping(ctx context.Context) error {
	var store storage.Store = s.store
	for {
		if p, ok := store.(interface{ Ping(context.Context) error }); ok {
			return p.Ping(ctx)
		}
		u, ok := store.(interface{ Unwrap() storage.Store })
		if !ok {
			return nil
		}
		store = u.Unwrap()
	}
}

// CacheStats reports layout cache usage.
func (s *Service) CacheStats() (size int, hits, misses int64) {
	hits, misses, _ = s.cache.Stats()
	return s.cache.Size(), hits, misses
}

// Close closes the store.
func (s *Service) Close() error {
	return s.store.Close()
}
