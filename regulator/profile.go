// Package regulator infers a sampling temperature from the lexical content of a prompt.
//
// A prompt is classified against keyword sets ("creative", "analytical") with a neutral
// "balanced" prior, scored for structural complexity, and the two results are blended into
// a temperature inside the band configured for the winning label.
package regulator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TaskLabel names the inferred intent of a prompt.
type TaskLabel string

const (
	TaskCreative   TaskLabel = "creative"
	TaskAnalytical TaskLabel = "analytical"
	TaskBalanced   TaskLabel = "balanced"
)

// labelOrder is the iteration order used for scoring. Ties resolve to the earliest label.
var labelOrder = []TaskLabel{TaskCreative, TaskAnalytical, TaskBalanced}

// Labels returns every task label in scoring order.
func Labels() []TaskLabel {
	return append([]TaskLabel(nil), labelOrder...)
}

// TaskProfile maps a keyword-bearing label to its ordered keyword set.
type TaskProfile map[TaskLabel][]string

// TemperatureBand is a closed interval inside [0, 1].
type TemperatureBand struct {
	Min float64 `validate:"gte=0,lte=1"`
	Max float64 `validate:"gte=0,lte=1,gtefield=Min"`
}

// TemperatureRange maps every task label to the band its temperature is drawn from.
type TemperatureRange map[TaskLabel]TemperatureBand

// Default clamp applied to every selected temperature.
const (
	DefaultFloor   = 0.1
	DefaultCeiling = 0.9
)

// Confidence below this threshold pulls the temperature toward the neutral anchor.
const (
	confidenceThreshold = 0.8
	neutralAnchor       = 0.5
)

// DefaultTaskProfile returns the built-in keyword sets.
func DefaultTaskProfile() TaskProfile {
	return TaskProfile{
		TaskCreative: {
			"creative", "imagine", "story", "poem", "write", "create", "design",
			"invent", "fiction", "brainstorm", "novel", "song", "fantasy",
		},
		TaskAnalytical: {
			"analyze", "analysis", "explain", "calculate", "compare", "evaluate",
			"solve", "debug", "code", "logic", "prove", "data", "math", "technical", "fact",
		},
	}
}

// DefaultTemperatureRange returns the built-in band per label.
func DefaultTemperatureRange() TemperatureRange {
	return TemperatureRange{
		TaskCreative:   {Min: 0.7, Max: 0.9},
		TaskAnalytical: {Min: 0.1, Max: 0.3},
		TaskBalanced:   {Min: 0.4, Max: 0.6},
	}
}

var validate = validator.New()

func (p TaskProfile) clone() (TaskProfile, error) {
	out := make(TaskProfile, len(p))
	for label, keywords := range p {
		if label != TaskCreative && label != TaskAnalytical {
			return nil, fmt.Errorf("task profile: unsupported label %q", label)
		}
		lowered := make([]string, 0, len(keywords))
		for _, kw := range keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				lowered = append(lowered, kw)
			}
		}
		out[label] = lowered
	}
	return out, nil
}

func (r TemperatureRange) clone() (TemperatureRange, error) {
	out := make(TemperatureRange, len(labelOrder))
	for _, label := range labelOrder {
		band, ok := r[label]
		if !ok {
			return nil, fmt.Errorf("temperature range: missing band for %q", label)
		}
		if err := validate.Struct(band); err != nil {
			return nil, fmt.Errorf("temperature range: invalid band for %q: %w", label, err)
		}
		out[label] = band
	}
	for label := range r {
		if _, ok := out[label]; !ok {
			return nil, fmt.Errorf("temperature range: unsupported label %q", label)
		}
	}
	return out, nil
}
