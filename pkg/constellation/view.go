package constellation

import (
	"context"
	"time"

	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/logging"
	"github.com/dd0wney/starry-habits/pkg/visualization"
)

// Star is one active habit placed in the sky.
type Star struct {
	Habit     habits.Habit           `json:"habit"`
	Position  visualization.Position `json:"position"`
	Completed bool                   `json:"completed"`
	Momentum  int                    `json:"momentum"`
}

// View is the constellation for one day.
type View struct {
	Date           string               `json:"date"`
	Seed           int64                `json:"seed"`
	Stars          []Star               `json:"stars"`
	Edges          []visualization.Link `json:"edges"`
	CompletedCount int                  `json:"completedCount"`
	Total          int                  `json:"total"`
	AllComplete    bool                 `json:"allComplete"`
	Note           string               `json:"note,omitempty"`
}

// View builds the constellation for date ("" means today). Positions come
// from the layout cache and depend only on the active habit ids and the
// session seed.
func (s *Service) View(ctx context.Context, date string) (*View, error) {
	if date == "" {
		date = s.Today()
	}
	ref, err := habits.ParseDateKey(date)
	if err != nil {
		return nil, habits.NewError("view").Day(date).Cause(err).Err()
	}

	data, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	seed := s.session.Seed()
	active := habits.ActiveHabits(data)
	positions := s.positions(habits.ActiveIDs(data), seed)

	view := &View{
		Date:           date,
		Seed:           seed,
		Stars:          make([]Star, len(active)),
		Total:          len(active),
		CompletedCount: habits.CompletedCount(data, date),
	}
	for i, h := range active {
		view.Stars[i] = Star{
			Habit:     h,
			Position:  positions[i],
			Completed: habits.IsCompleted(data, h.ID, date),
			Momentum:  habits.Momentum(data, h.ID, ref),
		}
	}
	view.AllComplete = view.Total > 0 && view.CompletedCount == view.Total
	if log, ok := habits.DayLogFor(data, date); ok {
		view.Note = log.Note
	}

	view.Edges = visualization.NewConstellation(seed, view.exportStars(), visualization.ComputeEdges(positions)).Links
	return view, nil
}

func (s *Service) positions(ids []string, seed int64) []visualization.Position {
	start := time.Now()
	positions, stats, cached := s.cache.GetOrCompute(ids, seed, s.layout)
	if cached {
		s.metrics.RecordLayoutCached()
		return positions
	}

	elapsed := time.Since(start)
	s.metrics.RecordLayoutComputed(len(ids), elapsed, stats.Clustered, stats.Uniform, stats.Forced)
	s.metrics.SetLayoutCacheSize(s.cache.Size())
	s.logger.Debug("layout computed",
		logging.Seed(seed),
		logging.Count(len(ids)),
		logging.Int("clusters", stats.Clusters),
		logging.Int("forced", stats.Forced),
		logging.Latency(elapsed),
	)
	return positions
}

// Constellation converts the view for JSON or SVG export.
func (v *View) Constellation() *visualization.Constellation {
	return &visualization.Constellation{Seed: v.Seed, Stars: v.exportStars(), Links: v.Edges}
}

func (v *View) exportStars() []visualization.Star {
	stars := make([]visualization.Star, len(v.Stars))
	for i, st := range v.Stars {
		stars[i] = visualization.Star{
			ID:        st.Habit.ID,
			Label:     st.Habit.Name,
			Icon:      st.Habit.Icon,
			Position:  st.Position,
			Completed: st.Completed,
			Scale:     st.Habit.Importance.Scale(),
			Momentum:  st.Momentum,
		}
	}
	return stars
}

// Ritual returns the line shown when the day is saved.
func (v *View) Ritual(pick func(n int) int) string {
	return habits.RitualMessage(v.CompletedCount, v.Total, pick)
}
