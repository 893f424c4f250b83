package codeblock

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reply = "Here you go:\n" +
	"```python\n" +
	"def hello():\n" +
	"    print('hi')\n" +
	"```\n" +
	"and a query\n" +
	"  ```sql\n" +
	"SELECT 1;\n" +
	"  ```\n" +
	"```\n" +
	"plain text\n"

func TestExtract(t *testing.T) {
	blocks := Extract(reply)
	require.Len(t, blocks, 3)

	assert.Equal(t, "python", blocks[0].Language)
	assert.Equal(t, "def hello():\n    print('hi')", blocks[0].Content())

	assert.Equal(t, "sql", blocks[1].Language)
	assert.Equal(t, []string{"SELECT 1;"}, blocks[1].Lines)

	// unterminated trailing block keeps its lines; the trailing empty line is part of it.
	assert.Equal(t, "txt", blocks[2].Language)
	assert.Equal(t, []string{"plain text", ""}, blocks[2].Lines)
}

func TestExtractEdgeCases(t *testing.T) {
	assert.Empty(t, Extract("no code here"))
	assert.False(t, HasFence("no code here"))
	assert.True(t, HasFence(reply))

	empty := Extract("```go\n```")
	require.Len(t, empty, 1)
	assert.Equal(t, "go", empty[0].Language)
	assert.Empty(t, empty[0].Content())

	assert.Empty(t, Extract("```go"))
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, "py", ExtensionFor("Python"))
	assert.Equal(t, "sh", ExtensionFor("bash"))
	assert.Equal(t, "kt", ExtensionFor("kotlin"))
	assert.Equal(t, "txt", ExtensionFor("brainfuck"))
	assert.Equal(t, "txt", ExtensionFor(""))
}

func TestSaverSave(t *testing.T) {
	dir := t.TempDir()
	saver := NewSaver(dir)
	saver.Now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }

	blocks := Extract(reply)
	paths, err := saver.Save(blocks)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	assert.Equal(t, filepath.Join(dir, "generated_code_20240309_140507_1.py"), paths[0])
	assert.Equal(t, filepath.Join(dir, "generated_code_20240309_140507_2.sql"), paths[1])
	assert.Equal(t, filepath.Join(dir, "generated_code_20240309_140507_3.txt"), paths[2])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "def hello():\n    print('hi')", string(data))

	t.Run("collisions get a counter", func(t *testing.T) {
		again, err := saver.Save(blocks[:1])
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "generated_code_20240309_140507_1_1.py"), again[0])

		third, err := saver.Save(blocks[:1])
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "generated_code_20240309_140507_1_2.py"), third[0])
	})

	t.Run("nothing to save", func(t *testing.T) {
		_, err := saver.Save(nil)
		assert.ErrorIs(t, err, ErrNoBlocks)
	})
}
