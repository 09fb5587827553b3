package md2html

import (
	"bytes"
	"fmt"
	"math"
	"unicode"

	"github.com/goccy/go-yaml"
)

// FrontMatter holds the metadata of a YAML header block.
type FrontMatter map[string]any

// String returns the value for key if it is a string.
func (fm FrontMatter) String(key string) string {
	if fm == nil {
		return ""
	}
	if s, ok := fm[key].(string); ok {
		return s
	}
	return ""
}

var frontMatterDelim = []byte("---")

// SplitFrontMatter separates a leading YAML block delimited by "---" lines
// from the Markdown body. A document without front matter returns a nil
// FrontMatter and the unchanged source. When the block is present but not
// valid YAML, the unchanged source is returned together with the error so
// the caller can log it and carry on.
func SplitFrontMatter(src []byte) (FrontMatter, []byte, error) {
	open, next, ok := nextLine(src, 0)
	if !ok || !bytes.Equal(bytes.TrimSpace(trimBOM(open)), frontMatterDelim) {
		return nil, src, nil
	}
	first, _, ok := nextLine(src, next)
	if !ok || !frontMatterMetadataLikely(first) {
		return nil, src, nil
	}
	start := next
	for idx := next; idx < len(src); {
		line, after, ok := nextLine(src, idx)
		if !ok {
			break
		}
		if bytes.Equal(bytes.TrimSpace(line), frontMatterDelim) {
			fm := FrontMatter{}
			if err := yaml.Unmarshal(src[start:idx], &fm); err != nil {
				return nil, src, fmt.Errorf("md2html: front matter: %w", err)
			}
			return fm, src[after:], nil
		}
		idx = after
	}
	return nil, src, nil
}

func nextLine(src []byte, start int) ([]byte, int, bool) {
	if start >= len(src) {
		return nil, start, false
	}
	i := bytes.IndexByte(src[start:], '\n')
	if i < 0 {
		return trimCR(src[start:]), len(src), true
	}
	return trimCR(src[start : start+i]), start + i + 1, true
}

func frontMatterMetadataLikely(line []byte) bool {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return false
	}
	if bytes.HasPrefix(trimmed, []byte("#")) || bytes.HasPrefix(trimmed, []byte("{")) {
		return true
	}
	return bytes.Contains(trimmed, []byte(":"))
}

func trimCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}

func trimBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

// ---- Reading time ----

const wordsPerMinute = 200

// ReadingTime carries the statistics shown in the reading-time banner.
type ReadingTime struct {
	Words   int
	Minutes float64
}

// RoundedMinutes is the ceiling of Minutes.
func (rt ReadingTime) RoundedMinutes() int {
	return int(math.Ceil(rt.Minutes))
}

// CountReadingTime counts words in text. Every CJK ideograph and kana
// counts as a word of its own; other words are runs of letters or digits.
func CountReadingTime(text []byte) ReadingTime {
	words := 0
	inWord := false
	for _, r := range string(text) {
		switch {
		case isCJK(r):
			words++
			inWord = false
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' && inWord:
			if !inWord {
				words++
				inWord = true
			}
		default:
			inWord = false
		}
	}
	return ReadingTime{
		Words:   words,
		Minutes: float64(words) / wordsPerMinute,
	}
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}
