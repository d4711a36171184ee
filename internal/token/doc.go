// Package token defines lexical token kinds and trivia for Ruby sources.
// Invariants:
//   - Token.Text is the exact slice of the original source.
//   - Token.Span matches Text exactly (Start..End).
//   - Comments, blank lines and `=begin`/`=end` blocks are leading Trivia of
//     the next significant token and never appear in the main token stream.
//   - A line that carries significant tokens ends with exactly one Newline token;
//     the parser decides where a newline terminates a statement.
//   - Heredoc bodies are trivia (TriviaHeredocBody) of the token that follows them;
//     the heredoc opener itself is a Heredoc token.
package token
