// Package agents reads and writes agent definitions in the project's
// agents.yaml. Each AgentConfig owns one top-level entry; writes leave the
// other entries and their comments as they were.
package agents

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/agentstack/internal/conf"
	"github.com/agentic-research/agentstack/internal/writeback"
	"gopkg.in/yaml.v3"
)

// AgentsFilename is the agents file relative to the project root.
const AgentsFilename = "src/config/agents.yaml"

// Placeholders written for fields a new agent is created without.
const (
	RolePlaceholder      = "Add your role here"
	GoalPlaceholder      = "Add your goal here"
	BackstoryPlaceholder = "Add your backstory here"
)

// AgentConfig is one agent entry.
type AgentConfig struct {
	Name      string
	Role      string
	Goal      string
	Backstory string
	LLM       string

	ws     *conf.Workspace
	exists bool
	scoped bool
}

type fields struct {
	Role      string `yaml:"role"`
	Goal      string `yaml:"goal"`
	Backstory string `yaml:"backstory"`
	LLM       string `yaml:"llm"`
}

// OpenAgent loads the entry called name from ws (the process workspace if
// nil). An agent that does not exist yet, or a missing agents file, yields
// an empty entry that is created on the first write.
func OpenAgent(ws *conf.Workspace, name string) (*AgentConfig, error) {
	ws = conf.Resolve(ws)
	if name == "" {
		return nil, fmt.Errorf("%w: empty agent name", writeback.ErrInvalidEntry)
	}
	doc, err := readDoc(ws)
	if err != nil {
		return nil, err
	}
	a := &AgentConfig{Name: name, ws: ws}
	node := lookup(doc.Content[0], name)
	a.exists = node != nil
	if node != nil && node.Kind == yaml.MappingNode {
		var f fields
		if err := node.Decode(&f); err != nil {
			return nil, &writeback.ParseError{Path: ws.Join(AgentsFilename), Line: node.Line, Column: node.Column, Message: err.Error(), Err: err}
		}
		a.Role, a.Goal, a.Backstory, a.LLM = f.Role, f.Goal, f.Backstory, f.LLM
	}
	return a, nil
}

// Exists reports whether the entry was in the agents file when opened.
func (a *AgentConfig) Exists() bool { return a.exists }

// FillDefaults sets empty fields of a new agent: placeholder text for role,
// goal and backstory, and defaultModel for LLM.
func (a *AgentConfig) FillDefaults(defaultModel string) {
	if a.Role == "" {
		a.Role = RolePlaceholder
	}
	if a.Goal == "" {
		a.Goal = GoalPlaceholder
	}
	if a.Backstory == "" {
		a.Backstory = BackstoryPlaceholder
	}
	if a.LLM == "" {
		a.LLM = defaultModel
	}
}

// AgentNames returns the agents defined in ws, in file order.
func AgentNames(ws *conf.Workspace) ([]string, error) {
	doc, err := readDoc(conf.Resolve(ws))
	if err != nil {
		return nil, err
	}
	root := doc.Content[0]
	names := make([]string, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		names = append(names, root.Content[i].Value)
	}
	return names, nil
}

// readDoc parses the agents file into a document whose single child is a
// mapping. A missing or empty file gives an empty mapping.
func readDoc(ws *conf.Workspace) (*yaml.Node, error) {
	data, err := writeback.ReadFile(ws.FS(), AgentsFilename)
	if err != nil && !errors.Is(err, writeback.ErrNotFound) {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &writeback.ParseError{Path: ws.Join(AgentsFilename), Message: err.Error(), Err: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}, nil
	}
	root := doc.Content[0]
	switch {
	case root.Kind == yaml.ScalarNode && root.Tag == "!!null":
		doc.Content[0] = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	case root.Kind != yaml.MappingNode:
		return nil, &writeback.ParseError{
			Path:    ws.Join(AgentsFilename),
			Line:    root.Line,
			Column:  root.Column,
			Message: "agents file must be a mapping of agent names",
		}
	}
	return &doc, nil
}

func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func setScalar(m *yaml.Node, key, value string) {
	if v := lookup(m, key); v != nil {
		v.Kind = yaml.ScalarNode
		v.Tag = "!!str"
		v.Value = value
		v.Content = nil
		if strings.Contains(value, "\n") {
			v.Style = yaml.LiteralStyle
		} else if v.Style == yaml.LiteralStyle || v.Style == yaml.FoldedStyle {
			v.Style = 0
		}
		return
	}
	m.Content = append(m.Content, scalar(key), scalar(value))
}

func scalar(value string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	if strings.Contains(value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	return n
}

// Marshal renders the agents file with this entry merged in. The file is
// re-read so entries written by others since OpenAgent are kept.
func (a *AgentConfig) Marshal() ([]byte, error) {
	doc, err := readDoc(a.ws)
	if err != nil {
		return nil, err
	}
	root := doc.Content[0]
	entry := lookup(root, a.Name)
	switch {
	case entry == nil:
		entry = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		root.Content = append(root.Content, scalar(a.Name), entry)
	case entry.Kind != yaml.MappingNode:
		// "name:" with no body decodes as null.
		*entry = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	setScalar(entry, "role", a.Role)
	setScalar(entry, "goal", a.Goal)
	setScalar(entry, "backstory", a.Backstory)
	setScalar(entry, "llm", a.LLM)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal agents: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshal agents: %w", err)
	}
	return buf.Bytes(), nil
}

// Write merges the entry into the agents file and atomically replaces it.
// Inside Update the write is held until the scope commits.
func (a *AgentConfig) Write() error {
	if a.scoped {
		return nil
	}
	return a.commit()
}

func (a *AgentConfig) commit() error {
	data, err := a.Marshal()
	if err != nil {
		return err
	}
	if err := writeback.Replace(a.ws.FS(), AgentsFilename, data); err != nil {
		return fmt.Errorf("write %s: %w", a.ws.Join(AgentsFilename), err)
	}
	log := a.ws.Logger()
	log.Debug().Str("file", AgentsFilename).Str("agent", a.Name).Msg("agent written")
	a.exists = true
	return nil
}

// Update runs fn and writes the entry once fn returns nil. On failure the
// file is untouched and the fields are restored. A nested Update commits
// with the outermost one.
func (a *AgentConfig) Update(fn func(*AgentConfig) error) error {
	saved := *a
	outer := !a.scoped
	a.scoped = true
	committed := false
	defer func() {
		if !committed {
			*a = saved
		}
		if outer {
			a.scoped = false
		}
	}()

	err := writeback.Transact(func() error { return fn(a) }, func() error {
		if !outer {
			return nil
		}
		a.scoped = false
		return a.commit()
	})
	committed = err == nil
	return err
}
