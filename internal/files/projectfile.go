package files

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/agentic-research/agentstack/internal/conf"
	"github.com/agentic-research/agentstack/internal/writeback"
	"github.com/ohler55/ojg/jp"
)

const (
	// ProjectFilename is the build descriptor at the project root.
	ProjectFilename = "pyproject.toml"
	// MetadataNamespace is the table project metadata is read from.
	MetadataNamespace = "tool.uv"
)

var metadataPath = jp.MustParseString("$." + MetadataNamespace)

// ProjectFile is a read-only view of pyproject.toml. Only the tool.uv
// table is interpreted; the rest of the document is kept as decoded.
type ProjectFile struct {
	ws   *conf.Workspace
	data map[string]any
}

// OpenProject reads pyproject.toml from ws (the process workspace if nil).
func OpenProject(ws *conf.Workspace) (*ProjectFile, error) {
	ws = conf.Resolve(ws)
	raw, err := writeback.ReadFile(ws.FS(), ProjectFilename)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", ws.Path(), err)
	}
	data := map[string]any{}
	if _, err := toml.NewDecoder(bytes.NewReader(raw)).Decode(&data); err != nil {
		return nil, writeback.TOMLError(ws.Join(ProjectFilename), err)
	}
	return &ProjectFile{ws: ws, data: data}, nil
}

// Raw returns the whole decoded document.
func (p *ProjectFile) Raw() map[string]any { return p.data }

// Metadata returns the tool.uv table, or a *writeback.MissingMetadataError
// when the document has none.
func (p *ProjectFile) Metadata() (map[string]any, error) {
	if table, ok := metadataPath.First(p.data).(map[string]any); ok {
		return table, nil
	}
	return nil, &writeback.MissingMetadataError{
		Path:      p.ws.Join(ProjectFilename),
		Namespace: MetadataNamespace,
		Message:   "No UV metadata found in " + ProjectFilename + ".",
	}
}

// Get returns a string key of the metadata table.
func (p *ProjectFile) Get(key string) (string, error) {
	table, err := p.Metadata()
	if err != nil {
		return "", err
	}
	v, ok := jp.C(key).First(table).(string)
	if !ok {
		return "", &writeback.KeyError{Key: MetadataNamespace + "." + key}
	}
	return v, nil
}

// Name returns tool.uv.name.
func (p *ProjectFile) Name() (string, error) { return p.Get("name") }

// Version returns tool.uv.version.
func (p *ProjectFile) Version() (string, error) { return p.Get("version") }

// Description returns tool.uv.description.
func (p *ProjectFile) Description() (string, error) { return p.Get("description") }
