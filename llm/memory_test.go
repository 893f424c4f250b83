package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/teilomillet/groqchat/providers"
	"github.com/teilomillet/groqchat/utils"
)

// wordCounter counts whitespace-separated words as tokens.
type wordCounter struct{}

func (wordCounter) CountTokens(text string) int {
	return len(strings.Fields(text))
}

func TestMemory(t *testing.T) {
	logger := &utils.MockLogger{}
	logger.On("Debug", "Added message to memory", mock.Anything).Return()
	logger.On("Debug", "Removed message from memory", mock.Anything).Return()
	logger.On("Debug", "Cleared memory", mock.Anything).Return()

	t.Run("Add and Transcript", func(t *testing.T) {
		memory := NewMemory(100, wordCounter{}, logger)
		memory.Add(providers.RoleUser, "Hello")
		memory.Add(providers.RoleAssistant, "Hi there!")

		transcript := memory.Transcript()
		assert.Contains(t, transcript, "user: Hello")
		assert.Contains(t, transcript, "assistant: Hi there!")
		assert.Equal(t, 3, memory.TotalTokens())
		assert.Equal(t, []providers.Message{
			{Role: providers.RoleUser, Content: "Hello"},
			{Role: providers.RoleAssistant, Content: "Hi there!"},
		}, memory.Messages())
	})

	t.Run("Truncate", func(t *testing.T) {
		memory := NewMemory(5, wordCounter{}, logger)
		memory.Add(providers.RoleUser, "one two three")
		memory.Add(providers.RoleAssistant, "four five six")

		messages := memory.Messages()
		assert.Len(t, messages, 1)
		assert.Equal(t, "four five six", messages[0].Content)
		assert.Equal(t, 3, memory.TotalTokens())
		logger.AssertCalled(t, "Debug", "Removed message from memory", mock.Anything)
	})

	t.Run("Keeps newest message over budget", func(t *testing.T) {
		memory := NewMemory(2, wordCounter{}, logger)
		memory.Add(providers.RoleUser, "this message is far too long")

		assert.Len(t, memory.Messages(), 1)
	})

	t.Run("Clear", func(t *testing.T) {
		memory := NewMemory(100, wordCounter{}, logger)
		memory.Add(providers.RoleUser, "Hello")
		memory.Clear()

		assert.Empty(t, memory.Messages())
		assert.Equal(t, 0, memory.TotalTokens())
		assert.Empty(t, memory.Transcript())
	})
}
