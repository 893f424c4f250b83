// Package chat runs a single-user chat session: it infers a temperature for each
// prompt, sends it to the selected model and saves any code blocks in the reply.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/teilomillet/groqchat/codeblock"
	"github.com/teilomillet/groqchat/config"
	"github.com/teilomillet/groqchat/llm"
	"github.com/teilomillet/groqchat/providers"
	"github.com/teilomillet/groqchat/regulator"
	"github.com/teilomillet/groqchat/utils"
)

var (
	ErrEmptyPrompt        = errors.New("please enter a prompt")
	ErrUnsupportedModel   = errors.New("unsupported model")
	ErrInvalidTemperature = errors.New("temperature must be within [0, 1]")
)

// Reply is the outcome of one submitted prompt. Analysis is nil when the
// temperature was set manually.
type Reply struct {
	Text        string
	Model       string
	Temperature float64
	Analysis    *regulator.Analysis
	Usage       *providers.Usage
	SavedFiles  []string
}

// Session holds everything that lives for one chat window.
type Session struct {
	id           string
	client       llm.LLM
	regulator    *regulator.Regulator
	memory       *llm.Memory
	saver        *codeblock.Saver
	logger       utils.Logger
	systemPrompt string
	provider     string
	allowCustom  bool

	mu          sync.RWMutex
	model       string
	temperature float64
	auto        bool
}

// Option customizes a Session.
type Option func(*Session)

// WithRegulator replaces the regulator built from the configuration.
func WithRegulator(r *regulator.Regulator) Option {
	return func(s *Session) {
		s.regulator = r
	}
}

// WithMemory keeps conversation history between prompts.
func WithMemory(m *llm.Memory) Option {
	return func(s *Session) {
		s.memory = m
	}
}

// WithSaver replaces the code block saver.
func WithSaver(saver *codeblock.Saver) Option {
	return func(s *Session) {
		s.saver = saver
	}
}

// WithLogger sets the session logger.
func WithLogger(logger utils.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session around client using cfg.
func NewSession(cfg *config.Config, client llm.LLM, opts ...Option) (*Session, error) {
	s := &Session{
		id:           uuid.NewString(),
		client:       client,
		systemPrompt: cfg.SystemPrompt,
		provider:     cfg.Provider,
		allowCustom:  cfg.AllowCustomModels,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		auto:         cfg.AutoTemperature,
		saver:        codeblock.NewSaver(cfg.OutputDir),
		logger:       utils.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.regulator == nil {
		r, err := NewRegulator(cfg.Regulator)
		if err != nil {
			return nil, err
		}
		s.regulator = r
	}
	if err := s.checkModel(s.model); err != nil {
		return nil, err
	}

	s.logger.Debug("Session created", "session", s.id, "provider", s.provider, "model", s.model, "auto_temperature", s.auto)
	return s, nil
}

// NewRegulator builds a regulator from rc, keeping the built-in keyword sets
// where rc leaves them empty.
func NewRegulator(rc config.RegulatorConfig) (*regulator.Regulator, error) {
	profile := regulator.DefaultTaskProfile()
	if len(rc.CreativeKeywords) > 0 {
		profile[regulator.TaskCreative] = rc.CreativeKeywords
	}
	if len(rc.AnalyticalKeywords) > 0 {
		profile[regulator.TaskAnalytical] = rc.AnalyticalKeywords
	}

	r, err := regulator.New(
		regulator.WithTaskProfile(profile),
		regulator.WithTemperatureRange(regulator.TemperatureRange{
			regulator.TaskCreative:   {Min: rc.CreativeMin, Max: rc.CreativeMax},
			regulator.TaskAnalytical: {Min: rc.AnalyticalMin, Max: rc.AnalyticalMax},
			regulator.TaskBalanced:   {Min: rc.BalancedMin, Max: rc.BalancedMax},
		}),
		regulator.WithBounds(rc.Floor, rc.Ceiling),
	)
	if err != nil {
		return nil, fmt.Errorf("build temperature regulator: %w", err)
	}
	return r, nil
}

func (s *Session) ID() string {
	return s.id
}

// Models returns the models offered for the session's provider.
func (s *Session) Models() []string {
	return providers.SupportedModels(s.provider)
}

func (s *Session) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// SetModel selects the model used by later prompts.
func (s *Session) SetModel(model string) error {
	if err := s.checkModel(model); err != nil {
		return err
	}
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
	s.logger.Info("Model selected", "session", s.id, "model", model)
	return nil
}

func (s *Session) checkModel(model string) error {
	if model == "" || (!s.allowCustom && !providers.IsSupportedModel(s.provider, model)) {
		return fmt.Errorf("%w: %q", ErrUnsupportedModel, model)
	}
	return nil
}

// SetTemperature fixes the temperature and turns automatic regulation off.
func (s *Session) SetTemperature(temperature float64) error {
	if temperature < 0 || temperature > 1 || temperature != temperature {
		return fmt.Errorf("%w: %v", ErrInvalidTemperature, temperature)
	}
	s.mu.Lock()
	s.temperature = temperature
	s.auto = false
	s.mu.Unlock()
	return nil
}

// EnableAutoTemperature turns automatic regulation back on.
func (s *Session) EnableAutoTemperature() {
	s.mu.Lock()
	s.auto = true
	s.mu.Unlock()
}

// AutoTemperature reports whether temperatures are inferred from prompts.
func (s *Session) AutoTemperature() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auto
}

// Preview analyzes prompt without sending it, for live display while typing.
func (s *Session) Preview(prompt string) regulator.Analysis {
	return s.regulator.Analyze(prompt)
}

// Temperature returns the temperature that submitting prompt would use.
func (s *Session) Temperature(prompt string) (float64, *regulator.Analysis) {
	s.mu.RLock()
	auto, manual := s.auto, s.temperature
	s.mu.RUnlock()

	if !auto {
		return manual, nil
	}
	analysis := s.regulator.Analyze(prompt)
	return analysis.Temperature, &analysis
}

// Submit sends prompt to the selected model. When the reply contains fenced
// code, the blocks are written to the output directory and listed in the Reply.
func (s *Session) Submit(ctx context.Context, prompt string) (*Reply, error) {
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	model := s.Model()
	temperature, analysis := s.Temperature(prompt)
	if analysis != nil {
		s.logger.Debug("Temperature regulated", "session", s.id, "task", analysis.Task,
			"confidence", analysis.Confidence, "complexity", analysis.Complexity, "temperature", temperature)
	}

	req := &providers.Request{SystemPrompt: s.systemPrompt}
	if s.memory != nil {
		req.Messages = s.memory.Messages()
	}
	req.Messages = append(req.Messages, providers.Message{Role: providers.RoleUser, Content: prompt})

	resp, err := s.client.Generate(ctx, req, llm.WithModel(model), llm.WithTemperature(temperature))
	if err != nil {
		s.logger.Error("Generation failed", "session", s.id, "model", model, "error", err)
		return nil, fmt.Errorf("generate response: %w", err)
	}

	reply := &Reply{
		Text:        resp.AsText(),
		Model:       model,
		Temperature: temperature,
		Analysis:    analysis,
		Usage:       resp.Usage,
	}

	if s.memory != nil {
		s.memory.Add(providers.RoleUser, prompt)
		s.memory.Add(providers.RoleAssistant, reply.Text)
	}

	if codeblock.HasFence(reply.Text) {
		paths, err := s.saver.Save(codeblock.Extract(reply.Text))
		reply.SavedFiles = paths
		switch {
		case errors.Is(err, codeblock.ErrNoBlocks):
			s.logger.Info("No code blocks to save", "session", s.id)
		case err != nil:
			return reply, fmt.Errorf("save code blocks: %w", err)
		default:
			s.logger.Info("Code saved", "session", s.id, "files", paths)
		}
	}

	return reply, nil
}

// Reset forgets the conversation history, if any.
func (s *Session) Reset() {
	if s.memory != nil {
		s.memory.Clear()
	}
}
