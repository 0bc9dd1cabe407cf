package syntax

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseError reports text that is not a well-formed single YAML document.
type ParseError struct {
	Line   int // 1-based, 0 when unknown
	Column int // 1-based, 0 when unknown
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

var yamlLinePrefix = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

func newParseError(err error) *ParseError {
	msg := err.Error()
	if m := yamlLinePrefix.FindStringSubmatch(msg); m != nil {
		line, convErr := strconv.Atoi(m[1])
		if convErr == nil {
			return &ParseError{Line: line, Msg: m[2]}
		}
	}
	return &ParseError{Msg: strings.TrimPrefix(msg, "yaml: ")}
}
