package writeback

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplace_Overwrites(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "a.txt", []byte("old"), 0o644))

	require.NoError(t, Replace(fsys, "a.txt", []byte("new")))

	got, err := util.ReadFile(fsys, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestReplace_CreatesParentDirs(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, Replace(fsys, "src/config/agents.yaml", []byte("a: {}\n")))

	got, err := util.ReadFile(fsys, "src/config/agents.yaml")
	require.NoError(t, err)
	assert.Equal(t, "a: {}\n", string(got))
}

func TestReplace_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	fsys := osfs.New(dir)
	require.NoError(t, Replace(fsys, "settings.json", []byte(`{"a": 1}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "settings.json", entries[0].Name())
}

func TestReplace_PreservesPermissions(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(target, []byte("A=1"), 0o600))

	require.NoError(t, Replace(osfs.New(dir), ".env", []byte("A=1\nB=2")))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestReplace_InvalidContentLeavesFile(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "agentstack.json", []byte(`{"framework": "crewai"}`), 0o644))

	err := Replace(fsys, "agentstack.json", []byte(`{"framework": `))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)

	got, err := util.ReadFile(fsys, "agentstack.json")
	require.NoError(t, err)
	assert.Equal(t, `{"framework": "crewai"}`, string(got))
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(memfs.New(), "nope.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr bool
	}{
		{"valid json", "a.json", `{"tools": []}`, false},
		{"broken json", "a.json", `{"tools": [}`, true},
		{"valid toml", "pyproject.toml", "[tool.uv]\nname = \"x\"\n", false},
		{"broken toml", "pyproject.toml", "[tool.uv\nname = \"x\"\n", true},
		{"valid yaml", "agents.yaml", "a:\n  role: r\n", false},
		{"broken yaml", "agents.yaml", "a:\n  role: [r\n", true},
		{"env", ".env", "A=1\n#B=2", false},
		{"env with nul", ".env", "A=1\x00", true},
		{"unknown extension", "notes.txt", "{{{", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.content), tt.file)
			if tt.wantErr {
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, tt.file, pe.Path)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_TOMLPosition(t *testing.T) {
	err := Validate([]byte("a = 1\nb = = 2\n"), "pyproject.toml")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
}

func TestTransact(t *testing.T) {
	commits := 0
	commit := func() error { commits++; return nil }

	require.NoError(t, Transact(func() error { return nil }, commit))
	assert.Equal(t, 1, commits)

	boom := errors.New("boom")
	err := Transact(func() error { return boom }, commit)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, commits, "failed scope must not commit")

	assert.Panics(t, func() {
		_ = Transact(func() error { panic("scope panicked") }, commit)
	})
	assert.Equal(t, 1, commits, "panicking scope must not commit")
}

func TestPosition(t *testing.T) {
	content := []byte("ab\ncd\nef")
	line, col := Position(content, 4)
	assert.Equal(t, 2, line)
	assert.Equal(t, 2, col)

	line, col = Position(content, 100)
	assert.Equal(t, 3, line)
	assert.Equal(t, 3, col)
}

func TestErrorTaxonomy(t *testing.T) {
	var err error = &MissingMetadataError{Path: "pyproject.toml", Namespace: "tool.uv", Message: "No UV metadata found in pyproject.toml."}
	assert.ErrorIs(t, err, ErrMissingMetadata)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, "No UV metadata found in pyproject.toml.", err.Error())

	err = &KeyError{Key: "ENV_VAR100"}
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.NotErrorIs(t, err, ErrMissingMetadata)

	err = NotFound("agentstack.json")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
}
