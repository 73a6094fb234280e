package agents

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentic-research/agentstack/internal/conf"
	"github.com/agentic-research/agentstack/internal/writeback"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func setupProject(t *testing.T) (*conf.Workspace, string) {
	t.Helper()
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "agents.yaml"))
	require.NoError(t, err)
	target := filepath.Join(dir, filepath.FromSlash(AgentsFilename))
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, data, 0o644))
	return conf.NewWorkspace(dir), target
}

func readAgents(t *testing.T, path string) map[string]map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))
	return out
}

func TestOpenAgent(t *testing.T) {
	ws, _ := setupProject(t)

	agent, err := OpenAgent(ws, "researcher")
	require.NoError(t, err)
	assert.Equal(t, "researcher", agent.Name)
	assert.Equal(t, "Senior Researcher", agent.Role)
	assert.Equal(t, "Find things", agent.Goal)
	assert.Equal(t, "Has read everything.\n", agent.Backstory)
	assert.Equal(t, "openai/gpt-4o", agent.LLM)
}

func TestOpenAgent_New(t *testing.T) {
	ws, _ := setupProject(t)

	agent, err := OpenAgent(ws, "editor")
	require.NoError(t, err)
	assert.Equal(t, "editor", agent.Name)
	assert.Empty(t, agent.Role)
	assert.False(t, agent.Exists())

	existing, err := OpenAgent(ws, "writer")
	require.NoError(t, err)
	assert.True(t, existing.Exists())
}

func TestFillDefaults(t *testing.T) {
	ws, path := setupProject(t)

	agent, err := OpenAgent(ws, "editor")
	require.NoError(t, err)
	require.NoError(t, agent.Update(func(a *AgentConfig) error {
		a.Goal = "Polish drafts"
		a.FillDefaults("openai/gpt-4o")
		return nil
	}))
	assert.True(t, agent.Exists())

	got := readAgents(t, path)["editor"]
	assert.Equal(t, map[string]any{
		"role":      RolePlaceholder,
		"goal":      "Polish drafts",
		"backstory": BackstoryPlaceholder,
		"llm":       "openai/gpt-4o",
	}, got)
}

func TestAgentNames(t *testing.T) {
	ws, _ := setupProject(t)

	names, err := AgentNames(ws)
	require.NoError(t, err)
	assert.Equal(t, []string{"researcher", "writer"}, names)
}

func TestUpdate_AddsAgentKeepsOthers(t *testing.T) {
	ws, path := setupProject(t)

	agent, err := OpenAgent(ws, "editor")
	require.NoError(t, err)
	require.NoError(t, agent.Update(func(a *AgentConfig) error {
		a.Role = "Editor"
		a.Goal = "Tighten prose"
		a.Backstory = "Line one.\nLine two."
		a.LLM = "anthropic/claude-3-5-sonnet"
		return nil
	}))

	got := readAgents(t, path)
	assert.Equal(t, "Editor", got["editor"]["role"])
	assert.Equal(t, "Line one.\nLine two.", got["editor"]["backstory"])
	assert.Equal(t, 5, got["researcher"]["max_iter"], "untouched keys survive")
	assert.Equal(t, "Writer", got["writer"]["role"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Agents for the research crew.")
	assert.Contains(t, string(data), "# tuned by hand")

	names, err := AgentNames(ws)
	require.NoError(t, err)
	assert.Equal(t, []string{"researcher", "writer", "editor"}, names)
}

func TestUpdate_ChangesExistingAgent(t *testing.T) {
	ws, path := setupProject(t)

	agent, err := OpenAgent(ws, "writer")
	require.NoError(t, err)
	require.NoError(t, agent.Update(func(a *AgentConfig) error {
		a.LLM = "ollama/llama3"
		return nil
	}))

	got := readAgents(t, path)
	assert.Equal(t, "ollama/llama3", got["writer"]["llm"])
	assert.Equal(t, "Writes.", got["writer"]["backstory"])
	assert.Equal(t, "openai/gpt-4o", got["researcher"]["llm"])
}

func TestUpdate_ErrorAborts(t *testing.T) {
	ws, path := setupProject(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	agent, err := OpenAgent(ws, "writer")
	require.NoError(t, err)
	boom := errors.New("boom")
	err = agent.Update(func(a *AgentConfig) error {
		a.Role = "Changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "Writer", agent.Role)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestUpdate_WriteInScopeIsHeld(t *testing.T) {
	ws, path := setupProject(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	agent, err := OpenAgent(ws, "writer")
	require.NoError(t, err)
	boom := errors.New("boom")
	err = agent.Update(func(a *AgentConfig) error {
		a.Role = "Changed"
		require.NoError(t, a.Write())
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "Writer", agent.Role)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestWrite_MissingFileCreated(t *testing.T) {
	fsys := memfs.New()
	ws := conf.NewWorkspace("/p", conf.WithFilesystem(fsys))

	names, err := AgentNames(ws)
	require.NoError(t, err)
	assert.Empty(t, names)

	agent, err := OpenAgent(ws, "researcher")
	require.NoError(t, err)
	require.NoError(t, agent.Update(func(a *AgentConfig) error {
		a.Role = "Researcher"
		a.Goal = "Research"
		a.Backstory = "Curious"
		a.LLM = "openai/gpt-4o"
		return nil
	}))

	data, err := util.ReadFile(fsys, AgentsFilename)
	require.NoError(t, err)
	assert.Equal(t, `researcher:
  role: Researcher
  goal: Research
  backstory: Curious
  llm: openai/gpt-4o
`, string(data))
}

func TestOpenAgent_Invalid(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, AgentsFilename, []byte("- just\n- a list\n"), 0o644))
	ws := conf.NewWorkspace("/p", conf.WithFilesystem(fsys))

	_, err := OpenAgent(ws, "researcher")
	var pe *writeback.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Line)

	require.NoError(t, util.WriteFile(fsys, AgentsFilename, []byte("a: [b\n"), 0o644))
	_, err = OpenAgent(ws, "researcher")
	require.ErrorAs(t, err, &pe)
}

func TestOpenAgent_EmptyName(t *testing.T) {
	_, err := OpenAgent(conf.NewWorkspace("/p", conf.WithFilesystem(memfs.New())), "")
	assert.ErrorIs(t, err, writeback.ErrInvalidEntry)
}
