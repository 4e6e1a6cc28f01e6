package metadata

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	MaxReadmeExcerpt = 1500
	minReadmeLine    = 10
)

var (
	readmeNames = []string{"README.md", "README", "readme.md", "Readme.md"}

	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

	skipLinePrefixes = []string{"#", "[", "!", "```", "<!--", "* ", "- "}
)

var markdown = goldmark.New()

func (e *Extractor) readmeExcerpt(root string) string {
	for _, name := range readmeNames {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		return ReadmeExcerpt(data)
	}
	return ""
}

// ReadmeExcerpt keeps the prose lines of a README, up to MaxReadmeExcerpt
// bytes. Code blocks, headings, badges, list items and HTML are dropped.
func ReadmeExcerpt(src []byte) string {
	content := htmlTagPattern.ReplaceAllString(string(stripCodeBlocks(src)), "")

	var b strings.Builder
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if skipReadmeLine(line) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(line)
		if b.Len() >= MaxReadmeExcerpt {
			break
		}
	}

	return truncateExcerpt(b.String())
}

func skipReadmeLine(line string) bool {
	if len(line) < minReadmeLine || strings.Contains(line, "shields.io") {
		return true
	}
	for _, prefix := range skipLinePrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

// stripCodeBlocks blanks the content lines of fenced and indented code
// blocks, keeping line breaks in place.
func stripCodeBlocks(src []byte) []byte {
	doc := markdown.Parser().Parse(text.NewReader(src))

	out := bytes.Clone(src)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				for j := seg.Start; j < seg.Stop && j < len(out); j++ {
					if out[j] != '\n' {
						out[j] = ' '
					}
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

func truncateExcerpt(s string) string {
	if len(s) <= MaxReadmeExcerpt {
		return s
	}

	cut := MaxReadmeExcerpt
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	s = s[:cut]
	if i := strings.LastIndex(s, " "); i > 0 {
		s = s[:i]
	}
	return s + "..."
}
