package source

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// magicComment matches `# encoding: x`, `# -*- coding: x -*-` and `# vim: fileencoding=x`.
var magicComment = regexp.MustCompile(`^#.*?coding[:=]\s*([A-Za-z0-9_.\-]+)`)

// DeclaredEncoding returns the encoding named by a magic comment on the first
// line, or on the second when the first is a shebang. "" when none.
func DeclaredEncoding(content []byte) string {
	lines := bytes.SplitN(content, []byte{'\n'}, 3)
	for i, ln := range lines {
		if i > 1 {
			break
		}
		ln = bytes.TrimSpace(ln)
		if i == 0 && bytes.HasPrefix(ln, []byte("#!")) {
			continue
		}
		if m := magicComment.FindSubmatch(ln); m != nil {
			return string(m[1])
		}
		if i == 0 {
			break
		}
	}
	return ""
}

func isUTF8Name(name string) bool {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8", "us-ascii", "ascii", "ascii-8bit", "binary":
		return true
	}
	return false
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported source encoding %q", name)
	}
	return enc, nil
}

// Transcode converts content declared in a non-UTF-8 encoding into UTF-8.
// It returns the (possibly unchanged) content, the declared encoding name
// and whether a conversion happened.
func Transcode(content []byte) ([]byte, string, bool, error) {
	name := DeclaredEncoding(content)
	if isUTF8Name(name) {
		return content, "", false, nil
	}
	enc, err := lookupEncoding(name)
	if err != nil {
		return content, name, false, err
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), content)
	if err != nil {
		return content, name, false, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, name, true, nil
}
