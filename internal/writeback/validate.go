package writeback

import (
	"bytes"
	"errors"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"
)

// Validate checks content against the format implied by name's extension
// and returns a *ParseError when it does not parse. Unknown extensions pass
// through without validation.
func Validate(content []byte, name string) error {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		if _, err := oj.Parse(content); err != nil {
			return &ParseError{Path: name, Message: err.Error(), Err: err}
		}
	case ".toml":
		var v map[string]any
		if _, err := toml.NewDecoder(bytes.NewReader(content)).Decode(&v); err != nil {
			return TOMLError(name, err)
		}
	case ".yaml", ".yml":
		var n yaml.Node
		if err := yaml.Unmarshal(content, &n); err != nil {
			return &ParseError{Path: name, Message: err.Error(), Err: err}
		}
	case ".env":
		if i := bytes.IndexByte(content, 0); i >= 0 {
			line, col := Position(content, int64(i))
			return &ParseError{Path: name, Line: line, Column: col, Message: "NUL byte in env file"}
		}
	}
	return nil
}

// TOMLError converts a TOML decode error into a *ParseError, keeping the
// decoder's position when it reports one.
func TOMLError(name string, err error) *ParseError {
	pe := &ParseError{Path: name, Message: err.Error(), Err: err}
	var terr toml.ParseError
	if errors.As(err, &terr) {
		pe.Line = terr.Position.Line
		pe.Column = terr.Position.Col
		pe.Message = terr.Message
	}
	return pe
}
