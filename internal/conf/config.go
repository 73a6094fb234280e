package conf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/agentic-research/agentstack/api"
	"github.com/agentic-research/agentstack/internal/writeback"
	"github.com/tidwall/jsonc"
)

// ConfigFilename is the settings document at the project root.
const ConfigFilename = "agentstack.json"

// Version is the tool version recorded in new settings documents.
// Overridden at build time with -ldflags "-X .../internal/conf.Version=...".
var Version = "0.2.1"

// ConfigFile is the parsed settings document. Assign to the embedded
// Settings fields inside Update; the file is rewritten when Update returns.
type ConfigFile struct {
	api.Settings
	ws     *Workspace
	scoped bool
}

// OpenConfig reads agentstack.json from ws (the process workspace if nil).
// A missing file is an error: every valid project already has one.
func OpenConfig(ws *Workspace) (*ConfigFile, error) {
	ws = Resolve(ws)
	data, err := writeback.ReadFile(ws.FS(), ConfigFilename)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", ws.Path(), err)
	}
	c := &ConfigFile{Settings: api.DefaultSettings(Version), ws: ws}
	if err := c.unmarshal(data); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ConfigFile) unmarshal(data []byte) error {
	// Hand-edited files may carry comments or trailing commas; ToJSON
	// blanks them out without shifting offsets.
	clean := jsonc.ToJSON(data)
	name := c.ws.Join(ConfigFilename)

	trimmed := bytes.TrimSpace(clean)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		return &writeback.ParseError{Path: name, Line: 1, Column: 1, Message: "settings document must be a JSON object"}
	}

	if err := json.Unmarshal(clean, &c.Settings); err != nil {
		pe := &writeback.ParseError{Path: name, Message: err.Error(), Err: err}
		var se *json.SyntaxError
		var te *json.UnmarshalTypeError
		switch {
		case errors.As(err, &se):
			pe.Line, pe.Column = writeback.Position(clean, se.Offset)
		case errors.As(err, &te):
			pe.Line, pe.Column = writeback.Position(clean, te.Offset)
		}
		return pe
	}
	if c.Tools == nil {
		c.Tools = []string{}
	}
	return nil
}

// Marshal renders the settings in schema order with four-space indent and
// no trailing newline. Absent optionals are written as null, and text
// outside printable ASCII is \u-escaped so files written by the Python
// tooling round-trip byte for byte.
func (c *ConfigFile) Marshal() ([]byte, error) {
	s := c.Settings
	if s.Tools == nil {
		s.Tools = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return asciiOnly(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// asciiOnly escapes DEL and every non-ASCII rune, using surrogate pairs
// above the BMP. Outside strings the encoder emits only ASCII.
func asciiOnly(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		if c := data[0]; c < utf8.RuneSelf && c != 0x7f {
			out = append(out, c)
			data = data[1:]
			continue
		}
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			out = fmt.Appendf(out, `\u%04x\u%04x`, r1, r2)
			continue
		}
		out = fmt.Appendf(out, `\u%04x`, r)
	}
	return out
}

// Write serializes the settings and atomically replaces the file. Inside
// Update the write is held until the scope commits.
func (c *ConfigFile) Write() error {
	if c.scoped {
		return nil
	}
	return c.commit()
}

func (c *ConfigFile) commit() error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := writeback.Replace(c.ws.FS(), ConfigFilename, data); err != nil {
		return fmt.Errorf("write %s: %w", c.ws.Join(ConfigFilename), err)
	}
	log := c.ws.Logger()
	log.Debug().Str("file", ConfigFilename).Int("bytes", len(data)).Msg("settings written")
	return nil
}

// Update runs fn against the settings and writes them back once fn returns
// nil. If fn fails (or panics) the file is not touched and the in-memory
// settings are rolled back to what they were before the call. A nested
// Update commits with the outermost one.
func (c *ConfigFile) Update(fn func(*ConfigFile) error) error {
	saved := c.Settings.Clone()
	outer := !c.scoped
	c.scoped = true
	committed := false
	defer func() {
		if outer {
			c.scoped = false
		}
		if !committed {
			c.Settings = saved
		}
	}()

	err := writeback.Transact(func() error { return fn(c) }, func() error {
		if !outer {
			return nil
		}
		c.scoped = false
		return c.commit()
	})
	committed = err == nil
	return err
}

// Workspace returns the workspace the file was read from.
func (c *ConfigFile) Workspace() *Workspace { return c.ws }
