package token

import (
	"strings"

	"tome/internal/source"
)

type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota
	// TriviaNewline is a run of newlines not terminating a statement (blank or comment-only lines).
	TriviaNewline
	// TriviaLineComment is `# ...` up to, not including, the newline.
	TriviaLineComment
	// TriviaBlockComment is a whole `=begin ... =end` block.
	TriviaBlockComment
	// TriviaContinuation is a backslash-newline.
	TriviaContinuation
	// TriviaHeredocBody holds the lines of a heredoc including the terminator line.
	TriviaHeredocBody
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaSpace:
		return "space"
	case TriviaNewline:
		return "newline"
	case TriviaLineComment:
		return "line_comment"
	case TriviaBlockComment:
		return "block_comment"
	case TriviaContinuation:
		return "continuation"
	case TriviaHeredocBody:
		return "heredoc_body"
	}
	return "unknown"
}

type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

// Newlines counts '\n' bytes in a newline trivia.
func (t Trivia) Newlines() int {
	return strings.Count(t.Text, "\n")
}

// IsComment reports whether the trivia carries comment text.
func (t Trivia) IsComment() bool {
	return t.Kind == TriviaLineComment || t.Kind == TriviaBlockComment
}
