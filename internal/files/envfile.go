package files

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/agentstack/internal/conf"
	"github.com/agentic-research/agentstack/internal/writeback"
	"github.com/spf13/cast"
)

// EnvFilename is the environment file at the project root.
const EnvFilename = ".env"

// ErrOverwrite is returned by Add for a key that is already defined.
var ErrOverwrite = errors.New("env file does not allow overwriting values")

// EnvFile is a KEY=VALUE file kept as its original text plus a lookup
// table built from the active lines. Existing lines are never rewritten;
// new keys are appended after them in the order they were added.
type EnvFile struct {
	ws       *conf.Workspace
	original string
	vars     map[string]string
	order    []string
	added    []string
	scoped   bool
}

// OpenEnv reads .env from ws (the process workspace if nil). A missing
// file is an empty store; it is created on the first write.
func OpenEnv(ws *conf.Workspace) (*EnvFile, error) {
	ws = conf.Resolve(ws)
	e := &EnvFile{ws: ws}
	data, err := writeback.ReadFile(ws.FS(), EnvFilename)
	switch {
	case errors.Is(err, writeback.ErrNotFound):
		data = nil
	case err != nil:
		return nil, err
	}
	e.parse(string(data))
	return e, nil
}

func (e *EnvFile) parse(text string) {
	e.original = text
	e.vars = make(map[string]string)
	e.order = nil
	e.added = nil
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := parseLine(line)
		if !ok {
			continue
		}
		if _, seen := e.vars[key]; !seen {
			e.order = append(e.order, key)
		}
		e.vars[key] = value // last definition wins
	}
}

// parseLine splits an active KEY=VALUE line. Blank lines, full-line
// comments and lines without '=' are inactive.
func parseLine(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}
	key, value, ok = strings.Cut(trimmed, "=")
	if !ok {
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

// Get returns the active value of key, or a *writeback.KeyError.
func (e *EnvFile) Get(key string) (string, error) {
	v, ok := e.vars[key]
	if !ok {
		return "", &writeback.KeyError{Key: key}
	}
	return v, nil
}

// Lookup returns the active value of key and whether it is defined.
func (e *EnvFile) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Has reports whether key has an active definition. Keys that only
// appear in comments are not defined.
func (e *EnvFile) Has(key string) bool {
	_, ok := e.vars[key]
	return ok
}

// Variables returns a copy of the active key/value mapping.
func (e *EnvFile) Variables() map[string]string {
	out := make(map[string]string, len(e.vars))
	for k, v := range e.vars {
		out[k] = v
	}
	return out
}

// Keys returns the defined keys in order of first definition.
func (e *EnvFile) Keys() []string {
	return append([]string(nil), e.order...)
}

// AppendIfNew defines key as value unless key is already defined, in which
// case the existing value stands and value is ignored. Non-string values
// are stored as their text form.
func (e *EnvFile) AppendIfNew(key string, value any) error {
	key = strings.TrimSpace(key)
	if e.Has(key) {
		return nil
	}
	text, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", writeback.ErrInvalidEntry, key, err)
	}
	text = strings.TrimSpace(text)
	if err := checkEntry(key, text); err != nil {
		return err
	}
	e.vars[key] = text
	e.order = append(e.order, key)
	e.added = append(e.added, key)
	return nil
}

// Add is AppendIfNew that refuses to ignore an existing definition.
func (e *EnvFile) Add(key string, value any) error {
	if e.Has(strings.TrimSpace(key)) {
		return fmt.Errorf("%s: %w", key, ErrOverwrite)
	}
	return e.AppendIfNew(key, value)
}

func checkEntry(key, value string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: empty key", writeback.ErrInvalidEntry)
	case strings.ContainsAny(key, "=#\r\n") || strings.ContainsAny(key, " \t"):
		return fmt.Errorf("%w: key %q", writeback.ErrInvalidEntry, key)
	case strings.ContainsAny(value, "\r\n"):
		return fmt.Errorf("%w: value for %s spans lines", writeback.ErrInvalidEntry, key)
	}
	return nil
}

// Bytes renders the file: the original text unchanged, then one line per
// appended key. A newline separates the two only if the original text does
// not already end with one.
func (e *EnvFile) Bytes() []byte {
	if len(e.added) == 0 {
		return []byte(e.original)
	}
	var b strings.Builder
	b.WriteString(e.original)
	if e.original != "" && !strings.HasSuffix(e.original, "\n") {
		b.WriteByte('\n')
	}
	for i, key := range e.added {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(e.vars[key])
	}
	return []byte(b.String())
}

// Write replaces the file on disk with Bytes. Nothing is written when no
// keys were appended. Inside Update the write is held until the scope
// commits.
func (e *EnvFile) Write() error {
	if e.scoped {
		return nil
	}
	return e.commit()
}

func (e *EnvFile) commit() error {
	if len(e.added) == 0 {
		return nil
	}
	data := e.Bytes()
	if err := writeback.Replace(e.ws.FS(), EnvFilename, data); err != nil {
		return fmt.Errorf("write %s: %w", e.ws.Join(EnvFilename), err)
	}
	log := e.ws.Logger()
	log.Debug().Str("file", EnvFilename).Strs("added", e.added).Msg("env file written")
	e.parse(string(data))
	return nil
}

// Update runs fn and writes the file once fn returns nil. On failure the
// file is untouched and the store is restored to its state before the call.
// A nested Update commits with the outermost one.
func (e *EnvFile) Update(fn func(*EnvFile) error) error {
	saved := e.snapshot()
	outer := !e.scoped
	e.scoped = true
	committed := false
	defer func() {
		if outer {
			e.scoped = false
		}
		if !committed {
			e.restore(saved)
		}
	}()

	err := writeback.Transact(func() error { return fn(e) }, func() error {
		if !outer {
			return nil
		}
		e.scoped = false
		return e.commit()
	})
	committed = err == nil
	return err
}

type envState struct {
	original string
	vars     map[string]string
	order    []string
	added    []string
}

func (e *EnvFile) snapshot() envState {
	return envState{
		original: e.original,
		vars:     e.Variables(),
		order:    append([]string(nil), e.order...),
		added:    append([]string(nil), e.added...),
	}
}

func (e *EnvFile) restore(s envState) {
	e.original = s.original
	e.vars = s.vars
	e.order = s.order
	e.added = s.added
}
