// Package story loads the story catalogue and the script system prompt.
package story

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"storyreel/internal/services"
)

var blankLine = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)

// Catalog is an ordered list of stories. Story 1 is the first entry.
type Catalog struct {
	path    string
	stories []string
}

// Parse splits text into stories separated by blank lines. Lines holding
// only spaces or tabs are blank, and runs of blank lines count as a single
// separator, so no story is ever empty.
func Parse(text string) []string {
	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return nil
	}
	parts := blankLine.Split(text, -1)
	stories := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			stories = append(stories, part)
		}
	}
	return stories
}

// Load reads the catalogue at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "script", "load stories", "stories file "+path+" not found", err)
		}
		return nil, services.Wrap(services.ErrIO, "script", "load stories", path, err)
	}
	return &Catalog{path: path, stories: Parse(string(data))}, nil
}

// Len reports how many stories the catalogue holds.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.stories)
}

// Story returns story n (1-based).
func (c *Catalog) Story(n int) (string, error) {
	if n < 1 || n > c.Len() {
		return "", services.Wrap(services.ErrNotFound, "script", "select story",
			fmt.Sprintf("story %d not found in %s (%d available)", n, c.path, c.Len()), nil)
	}
	return c.stories[n-1], nil
}

// LoadPrompt reads the system prompt. A missing file yields an empty prompt.
func LoadPrompt(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", services.Wrap(services.ErrIO, "script", "load prompt", path, err)
	}
	return string(data), nil
}
