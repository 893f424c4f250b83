// Package codeblock pulls fenced code blocks out of a model reply and saves them
// to uniquely named files.
package codeblock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const fence = "```"

// Block is one fenced code block.
type Block struct {
	Language string
	Lines    []string
}

// Content joins the block's lines with newlines.
func (b Block) Content() string {
	return strings.Join(b.Lines, "\n")
}

// HasFence reports whether text contains a code fence at all.
func HasFence(text string) bool {
	return strings.Contains(text, fence)
}

// Extract returns the fenced blocks of response in order. A line whose trimmed
// form starts with ``` toggles a block; the text after an opening fence names the
// language ("txt" when absent). An unterminated final block is kept if it has lines.
func Extract(response string) []Block {
	var (
		blocks  []Block
		current []string
		lang    string
		inBlock bool
	)

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, fence):
			if inBlock {
				blocks = append(blocks, Block{Language: lang, Lines: current})
				current = nil
			} else {
				lang = strings.TrimSpace(strings.ReplaceAll(trimmed, fence, ""))
				if lang == "" {
					lang = "txt"
				}
			}
			inBlock = !inBlock
		case inBlock:
			current = append(current, line)
		}
	}

	if len(current) > 0 {
		blocks = append(blocks, Block{Language: lang, Lines: current})
	}
	return blocks
}

var extensions = map[string]string{
	"python":     "py",
	"java":       "java",
	"javascript": "js",
	"csharp":     "cs",
	"cpp":        "cpp",
	"c":          "c",
	"ruby":       "rb",
	"swift":      "swift",
	"php":        "php",
	"go":         "go",
	"kotlin":     "kt",
	"rust":       "rs",
	"typescript": "ts",
	"html":       "html",
	"css":        "css",
	"sql":        "sql",
	"bash":       "sh",
	"txt":        "txt",
}

// ExtensionFor maps a fence language to a file extension, defaulting to "txt".
func ExtensionFor(language string) string {
	if ext, ok := extensions[strings.ToLower(language)]; ok {
		return ext
	}
	return "txt"
}

// Saver writes blocks into Dir.
type Saver struct {
	Dir    string
	Prefix string
	Now    func() time.Time
}

// NewSaver returns a Saver writing generated_code_* files into dir.
func NewSaver(dir string) *Saver {
	return &Saver{Dir: dir, Prefix: "generated_code", Now: time.Now}
}

// ErrNoBlocks is returned by Save when there is nothing to write.
var ErrNoBlocks = errors.New("no valid code blocks found in the response")

// Save writes each block to <prefix>_<timestamp>_<n>.<ext>, appending _<counter>
// until the name is unused, and returns the written paths in block order.
func (s *Saver) Save(blocks []Block) ([]string, error) {
	if len(blocks) == 0 {
		return nil, ErrNoBlocks
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	base := fmt.Sprintf("%s_%s", s.Prefix, now().Format("20060102_150405"))

	paths := make([]string, 0, len(blocks))
	for i, block := range blocks {
		path, err := s.write(base, i+1, block)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *Saver) write(base string, n int, block Block) (string, error) {
	ext := ExtensionFor(block.Language)
	name := fmt.Sprintf("%s_%d.%s", base, n, ext)
	for counter := 1; ; counter++ {
		path := filepath.Join(s.Dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			name = fmt.Sprintf("%s_%d_%d.%s", base, n, counter, ext)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
		_, werr := f.WriteString(block.Content())
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return "", fmt.Errorf("write %s: %w", path, werr)
		}
		return path, nil
	}
}
