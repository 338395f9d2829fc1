// Package decay models knowledge retention over time with the power-law
// forgetting curve of Averell & Heathcote (2011),
// https://www.sciencedirect.com/science/article/pii/S0022249610001100.
package decay

import (
	"math"
	"time"

	"github.com/Sumatoshi-tech/truckfactor/internal/blame"
)

// Forgetting-curve parameters fitted in the Averell & Heathcote study.
// They are fixed for production runs; tests construct models with other
// values to probe the curve shape.
const (
	// DefaultAsymptote is the retention level that is never forgotten.
	DefaultAsymptote = 0.19

	// DefaultInitialRetention is the retention level right after writing.
	DefaultInitialRetention = 0.78

	// DefaultCurvature controls how steeply retention falls off.
	DefaultCurvature = 0.68
)

// hoursPerDay converts a duration into whole-day age.
const hoursPerDay = 24

// Model converts raw line counts into retained-knowledge values as of a
// fixed reference instant. The reference is captured once per run so a
// run's outputs stay internally consistent even when it spans wall-clock
// time.
type Model struct {
	Asymptote        float64
	InitialRetention float64
	Curvature        float64
	Reference        time.Time
}

// NewModel builds a model with the study parameters and the given
// reference instant.
func NewModel(reference time.Time) Model {
	return Model{
		Asymptote:        DefaultAsymptote,
		InitialRetention: DefaultInitialRetention,
		Curvature:        DefaultCurvature,
		Reference:        reference,
	}
}

// AgeDays returns the whole days elapsed between date and the reference
// instant, clamped at zero for dates in the reference's future.
func (m Model) AgeDays(date time.Time) int {
	elapsed := m.Reference.Sub(date)
	if elapsed < 0 {
		return 0
	}

	return int(elapsed.Hours() / hoursPerDay)
}

// Retention returns the expected knowledge fraction retained after
// ageDays: a + (1-a)·b·(1+ageDays)^(-β). It decreases strictly in
// ageDays and stays within (Asymptote, Asymptote+(1-Asymptote)·b].
func (m Model) Retention(ageDays int) float64 {
	return m.Asymptote + (1-m.Asymptote)*m.InitialRetention*math.Pow(1+float64(ageDays), -m.Curvature)
}

// Value returns the decayed knowledge value of a fragment at the
// model's reference instant. It never exceeds the fragment's raw line
// count.
func (m Model) Value(frag blame.Fragment) float64 {
	return float64(frag.Lines) * m.Retention(m.AgeDays(frag.Date))
}
