package regulator

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Regulator holds the immutable keyword and band configuration shared by every call.
// It keeps no per-prompt state and is safe for concurrent use.
type Regulator struct {
	profile TaskProfile
	ranges  TemperatureRange
	floor   float64
	ceiling float64
}

// Analysis is the per-call result of inspecting a prompt.
type Analysis struct {
	Task        TaskLabel `json:"task"`
	Confidence  float64   `json:"confidence"`
	Complexity  float64   `json:"complexity"`
	Temperature float64   `json:"temperature"`
}

// Option configures a Regulator at construction time.
type Option func(*Regulator)

// WithTaskProfile replaces the keyword sets.
func WithTaskProfile(profile TaskProfile) Option {
	return func(r *Regulator) {
		r.profile = profile
	}
}

// WithTemperatureRange replaces the per-label bands.
func WithTemperatureRange(ranges TemperatureRange) Option {
	return func(r *Regulator) {
		r.ranges = ranges
	}
}

// WithBounds replaces the final clamp applied to every temperature.
func WithBounds(floor, ceiling float64) Option {
	return func(r *Regulator) {
		r.floor = floor
		r.ceiling = ceiling
	}
}

// New builds a Regulator from the defaults and the given options. The supplied
// profile and ranges are copied, so later changes by the caller have no effect.
func New(opts ...Option) (*Regulator, error) {
	r := &Regulator{
		profile: DefaultTaskProfile(),
		ranges:  DefaultTemperatureRange(),
		floor:   DefaultFloor,
		ceiling: DefaultCeiling,
	}
	for _, opt := range opts {
		opt(r)
	}

	profile, err := r.profile.clone()
	if err != nil {
		return nil, err
	}
	ranges, err := r.ranges.clone()
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(TemperatureBand{Min: r.floor, Max: r.ceiling}); err != nil {
		return nil, fmt.Errorf("invalid temperature bounds [%v, %v]: %w", r.floor, r.ceiling, err)
	}

	r.profile = profile
	r.ranges = ranges
	return r, nil
}

var (
	defaultOnce      sync.Once
	defaultRegulator *Regulator
)

// Default returns a shared Regulator built from the built-in configuration.
func Default() *Regulator {
	defaultOnce.Do(func() {
		r, err := New()
		if err != nil {
			panic(fmt.Sprintf("regulator: invalid built-in configuration: %v", err))
		}
		defaultRegulator = r
	})
	return defaultRegulator
}

// Classify returns the dominant task label for the prompt and its normalized score.
//
// Each keyword contained in the lower-cased prompt adds one to its label; the
// balanced label starts at one so an unmatched prompt classifies as balanced with
// confidence 1. Matching is plain substring containment, so short keywords can hit
// inside longer words.
func (r *Regulator) Classify(prompt string) (TaskLabel, float64) {
	lowered := strings.ToLower(prompt)

	scores := map[TaskLabel]float64{
		TaskCreative:   0,
		TaskAnalytical: 0,
		TaskBalanced:   1,
	}
	for _, label := range []TaskLabel{TaskCreative, TaskAnalytical} {
		for _, keyword := range r.profile[label] {
			if strings.Contains(lowered, keyword) {
				scores[label]++
			}
		}
	}

	var total float64
	for _, label := range labelOrder {
		total += scores[label]
	}

	best := TaskBalanced
	bestScore := -1.0
	for _, label := range labelOrder {
		normalized := scores[label] / total
		if normalized > bestScore {
			best, bestScore = label, normalized
		}
	}
	return best, bestScore
}

// ScoreComplexity returns a structural complexity score in [0, 1].
func (r *Regulator) ScoreComplexity(prompt string) float64 {
	words := len(strings.Fields(prompt))
	// Trailing empty segments count as sentences.
	sentences := max(len(strings.Split(prompt, ".")), 1)

	wordFactor := math.Min(float64(words)/100, 1)
	sentenceComplexity := math.Min(float64(words)/float64(sentences)/20, 1)
	questionFactor := math.Min(float64(strings.Count(prompt, "?"))/3, 1)

	var specialFactor float64
	if length := utf8.RuneCountInString(prompt); length > 0 {
		specialFactor = math.Min(float64(countSpecial(prompt))/float64(length), 1)
	}

	complexity := 0.3*wordFactor + 0.3*sentenceComplexity + 0.2*questionFactor + 0.2*specialFactor
	return clamp(complexity, 0, 1)
}

// SelectTemperature interpolates inside the label's band by complexity, softens the
// result toward 0.5 when confidence is low, then clamps and rounds to two decimals.
// Unknown labels use the balanced band.
func (r *Regulator) SelectTemperature(label TaskLabel, confidence, complexity float64) float64 {
	band, ok := r.ranges[label]
	if !ok {
		band = r.ranges[TaskBalanced]
	}

	temperature := band.Min + (band.Max-band.Min)*complexity
	if confidence < confidenceThreshold {
		adjustment := (1 - confidence) * 0.5
		temperature = temperature*(1-adjustment) + neutralAnchor*adjustment
	}

	if math.IsNaN(temperature) {
		temperature = neutralAnchor
	}
	return round2(clamp(temperature, r.floor, r.ceiling))
}

// Analyze classifies and scores the prompt and selects its temperature.
func (r *Regulator) Analyze(prompt string) Analysis {
	label, confidence := r.Classify(prompt)
	complexity := r.ScoreComplexity(prompt)
	return Analysis{
		Task:        label,
		Confidence:  confidence,
		Complexity:  complexity,
		Temperature: r.SelectTemperature(label, confidence, complexity),
	}
}

// Regulate returns the temperature inferred for the prompt.
func (r *Regulator) Regulate(prompt string) float64 {
	return r.Analyze(prompt).Temperature
}

// Bounds returns the final clamp.
func (r *Regulator) Bounds() (floor, ceiling float64) {
	return r.floor, r.ceiling
}

// Band returns the configured band for label.
func (r *Regulator) Band(label TaskLabel) (TemperatureBand, bool) {
	band, ok := r.ranges[label]
	return band, ok
}

// countSpecial counts characters that are not ASCII letters, ASCII digits or whitespace.
func countSpecial(s string) int {
	n := 0
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case unicode.IsSpace(c):
		default:
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
