package llm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/teilomillet/groqchat/providers"
	"github.com/teilomillet/groqchat/utils"
)

// TokenCounter counts the tokens a text costs.
type TokenCounter interface {
	CountTokens(text string) int
}

// TiktokenCounter counts tokens with a BPE encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter returns a counter for model, falling back to cl100k_base
// for models tiktoken does not know (which includes every Groq-hosted model).
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to get default encoding: %w", err)
		}
	}
	return &TiktokenCounter{encoding: encoding}, nil
}

func (c *TiktokenCounter) CountTokens(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// MemoryMessage is a single remembered turn.
type MemoryMessage struct {
	Role    string
	Content string
	Tokens  int
}

// Memory keeps the conversation history within a token budget, dropping the
// oldest turns first. It is safe for concurrent use.
type Memory struct {
	counter     TokenCounter
	logger      utils.Logger
	messages    []MemoryMessage
	totalTokens int
	maxTokens   int
	mutex       sync.Mutex
}

// NewMemory creates a memory bounded to maxTokens.
func NewMemory(maxTokens int, counter TokenCounter, logger utils.Logger) *Memory {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Memory{
		counter:   counter,
		logger:    logger,
		maxTokens: maxTokens,
	}
}

// Add appends a turn and truncates older turns if the budget is exceeded.
func (m *Memory) Add(role, content string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	tokens := m.counter.CountTokens(content)
	m.messages = append(m.messages, MemoryMessage{Role: role, Content: content, Tokens: tokens})
	m.totalTokens += tokens

	m.truncate()
	m.logger.Debug("Added message to memory", "role", role, "tokens", tokens, "total_tokens", m.totalTokens)
}

// truncate keeps at least the newest message even when it alone exceeds the budget.
func (m *Memory) truncate() {
	for m.totalTokens > m.maxTokens && len(m.messages) > 1 {
		removed := m.messages[0]
		m.messages = m.messages[1:]
		m.totalTokens -= removed.Tokens
		m.logger.Debug("Removed message from memory", "role", removed.Role, "tokens", removed.Tokens, "total_tokens", m.totalTokens)
	}
}

// Messages returns the remembered turns as provider messages, oldest first.
func (m *Memory) Messages() []providers.Message {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	out := make([]providers.Message, len(m.messages))
	for i, msg := range m.messages {
		out[i] = providers.Message{Role: msg.Role, Content: msg.Content}
	}
	return out
}

// Transcript renders the history as "role: content" lines.
func (m *Memory) Transcript() string {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var b strings.Builder
	for _, msg := range m.messages {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return b.String()
}

// TotalTokens returns the tokens currently held.
func (m *Memory) TotalTokens() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.totalTokens
}

// Clear forgets every turn.
func (m *Memory) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.messages = nil
	m.totalTokens = 0
	m.logger.Debug("Cleared memory")
}
