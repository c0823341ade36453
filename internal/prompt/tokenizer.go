package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTemplateSyntax is returned for malformed conditional markers. Such a
// template is a defect and must never be shipped half-evaluated.
var ErrTemplateSyntax = errors.New("template syntax error")

// SyntaxError describes where a template failed to parse.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template syntax error at offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrTemplateSyntax
}

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenVar
	tokenIfOpen
	tokenIfClose
)

type token struct {
	kind   tokenKind
	text   string // literal text, or the variable name
	offset int
}

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// tokenize splits src into literal, variable and conditional tokens.
// A "{{...}}" whose body is not an identifier and not a block marker is kept
// as literal text. Scanning restarts at the last "{{" before a "}}", so a
// stray opening delimiter never hides the marker that follows it.
func tokenize(src string) ([]token, error) {
	var tokens []token
	var text strings.Builder
	textStart := 0

	flush := func() {
		if text.Len() > 0 {
			tokens = append(tokens, token{kind: tokenText, text: text.String(), offset: textStart})
			text.Reset()
		}
	}

	pos := 0
	for pos < len(src) {
		start := strings.Index(src[pos:], openDelim)
		if start < 0 {
			if text.Len() == 0 {
				textStart = pos
			}
			text.WriteString(src[pos:])
			break
		}
		start += pos

		end := strings.Index(src[start+len(openDelim):], closeDelim)
		if end < 0 {
			if text.Len() == 0 {
				textStart = pos
			}
			text.WriteString(src[pos:])
			break
		}
		end += start + len(openDelim)
		if inner := strings.LastIndex(src[start+len(openDelim):end], openDelim); inner >= 0 {
			start += len(openDelim) + inner
		}

		body := strings.TrimSpace(src[start+len(openDelim) : end])
		tok, isMarker, err := classify(body, start)
		if err != nil {
			return nil, err
		}

		if text.Len() == 0 {
			textStart = pos
		}
		if !isMarker {
			// body holds no "{{" here, so the whole span is plain text.
			text.WriteString(src[pos : end+len(closeDelim)])
			pos = end + len(closeDelim)
			continue
		}

		text.WriteString(src[pos:start])
		flush()
		tokens = append(tokens, tok)
		pos = end + len(closeDelim)
	}
	flush()

	return tokens, nil
}

func classify(body string, offset int) (token, bool, error) {
	switch {
	case strings.HasPrefix(body, "#"):
		fields := strings.Fields(body[1:])
		if len(fields) == 0 || fields[0] != "if" {
			return token{}, false, &SyntaxError{Offset: offset, Msg: fmt.Sprintf("unsupported block %q", body)}
		}
		if len(fields) != 2 || !isIdent(fields[1]) {
			return token{}, false, &SyntaxError{Offset: offset, Msg: fmt.Sprintf("malformed conditional %q", body)}
		}
		return token{kind: tokenIfOpen, text: fields[1], offset: offset}, true, nil
	case strings.HasPrefix(body, "/"):
		if strings.TrimSpace(body[1:]) != "if" {
			return token{}, false, &SyntaxError{Offset: offset, Msg: fmt.Sprintf("unsupported block end %q", body)}
		}
		return token{kind: tokenIfClose, offset: offset}, true, nil
	case isIdent(body):
		return token{kind: tokenVar, text: body, offset: offset}, true, nil
	default:
		return token{}, false, nil
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
