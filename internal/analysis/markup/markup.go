package markup

import "strings"

// Kind 区分消息片段的类型。
type Kind string

const (
	Dialogue  Kind = "dialogue"
	Narration Kind = "narration"
)

// Segment is one run of reply text, either spoken dialogue or a narrated
// action written between asterisks.
type Segment struct {
	Kind Kind
	Text string
}

// Parse splits reply content on the *action* asterisk convention used by
// the character system prompts. Text between a balanced pair of asterisks
// becomes a narration segment; everything else is dialogue. An unbalanced
// trailing asterisk is treated as literal text.
func Parse(content string) []Segment {
	var segments []Segment
	appendSegment := func(kind Kind, text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		segments = append(segments, Segment{Kind: kind, Text: text})
	}

	rest := content
	for {
		open := strings.IndexByte(rest, '*')
		if open < 0 {
			appendSegment(Dialogue, rest)
			break
		}
		end := strings.IndexByte(rest[open+1:], '*')
		if end < 0 {
			// 没有闭合星号，按普通文本处理。
			appendSegment(Dialogue, rest)
			break
		}
		appendSegment(Dialogue, rest[:open])
		appendSegment(Narration, rest[open+1:open+1+end])
		rest = rest[open+end+2:]
	}

	return segments
}

// Composite reports whether the content carries narrated actions and
// therefore needs structured rendering.
func Composite(content string) bool {
	for _, seg := range Parse(content) {
		if seg.Kind == Narration {
			return true
		}
	}
	return false
}
