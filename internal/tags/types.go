package tags

import "strings"

// extractTypes strips a leading `[A, B<C>, Hash{K => V}]` list from s.
func extractTypes(s string) (types []string, rest string, err error) {
	t := strings.TrimLeft(s, " \t\n")
	if !strings.HasPrefix(t, "[") {
		return nil, s, nil
	}
	end := matchCloseAngles(t, 0, true)
	if end < 0 {
		return nil, s, errUnclosedTypes
	}
	return splitTopLevel(t[1:end]), t[end+1:], nil
}

// matchClose returns the index of the bracket closing s[open], or -1.
func matchClose(s string, open int) int {
	return matchCloseAngles(s, open, false)
}

func matchCloseAngles(s string, open int, angles bool) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch c := s[i]; {
		case c == '(' || c == '[' || c == '{' || angles && c == '<':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case angles && c == '>':
			if i > 0 && s[i-1] == '=' {
				continue // `=>` в Hash{K => V}
			}
			depth--
		}
		if depth == 0 {
			return i
		}
	}
	return -1
}

// splitTopLevel splits s on commas outside brackets and trims the parts.
func splitTopLevel(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '>':
			if depth > 0 && (i == 0 || s[i-1] != '=') {
				depth--
			}
		case ',':
			if depth == 0 {
				if part := strings.TrimSpace(s[start:i]); part != "" {
					out = append(out, part)
				}
				start = i + 1
			}
		}
	}
	if part := strings.TrimSpace(s[start:]); part != "" {
		out = append(out, part)
	}
	return out
}
