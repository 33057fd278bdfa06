package tune

import (
	"math"
	"sort"

	"github.com/YuminosukeSato/ringtune/metrics"
	"github.com/YuminosukeSato/ringtune/pkg/errors"
)

// RankedEntry is one row of a ranked tuning summary.
type RankedEntry struct {
	Family      string
	ConfigIndex int
	Config      Config
	Mean        float64
	StdErr      float64
	Folds       int
}

// Selector ranks tuning results and extracts the best configuration per
// family. Ties and all-missing configurations break deterministically by
// configuration insertion order.
type Selector struct {
	Metric metrics.Metric

	races map[string]*RaceResult
	order []string
}

// NewSelector creates a selector for the given metric.
func NewSelector(metric metrics.Metric) *Selector {
	return &Selector{Metric: metric, races: make(map[string]*RaceResult)}
}

// Add registers one candidate's race result.
func (s *Selector) Add(rr *RaceResult) {
	if _, exists := s.races[rr.Family]; !exists {
		s.order = append(s.order, rr.Family)
	}
	s.races[rr.Family] = rr
}

// rank sorts results best-first. NaN means (all folds missing) sort last.
func (s *Selector) rank(results []*TuningResult) []RankedEntry {
	entries := make([]RankedEntry, len(results))
	for i, r := range results {
		entries[i] = RankedEntry{
			Family:      r.Family,
			ConfigIndex: r.ConfigIndex,
			Config:      r.Config,
			Mean:        r.Mean(),
			StdErr:      r.StdErr(),
			Folds:       r.FoldsEvaluated(),
		}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		ma, mb := entries[a].Mean, entries[b].Mean
		switch {
		case math.IsNaN(ma):
			return false
		case math.IsNaN(mb):
			return true
		case ma == mb:
			return entries[a].ConfigIndex < entries[b].ConfigIndex
		default:
			return s.Metric.Better(ma, mb)
		}
	})
	return entries
}

// Rank returns the ranked configurations of one family, best first.
func (s *Selector) Rank(family string) ([]RankedEntry, error) {
	rr, ok := s.races[family]
	if !ok {
		return nil, errors.NewValueError("Selector.Rank", "unknown family: "+family)
	}
	return s.rank(rr.Results), nil
}

// RankAll returns every configuration of every family in one ranked table.
func (s *Selector) RankAll() []RankedEntry {
	var all []*TuningResult
	for _, family := range s.order {
		all = append(all, s.races[family].Results...)
	}
	return s.rank(all)
}

// BestConfig returns the winning configuration of a family.
func (s *Selector) BestConfig(family string) (Config, error) {
	ranked, err := s.Rank(family)
	if err != nil {
		return nil, err
	}
	best := ranked[0]
	if math.IsNaN(best.Mean) {
		return nil, errors.NewValueError("Selector.BestConfig", "no configuration of "+family+" produced a valid metric")
	}
	return best.Config, nil
}

// Families returns the registered family names in insertion order.
func (s *Selector) Families() []string {
	return append([]string(nil), s.order...)
}
