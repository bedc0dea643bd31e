package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidFiles(t *testing.T) {
	dir := t.TempDir()
	prog := writeFile(t, dir, "lists.pl", listsProgram+":- initialization(main).\n")
	cfg := writeFile(t, dir, "engine.cue", "max_steps: 5000\n")

	out, err := execute(t, "validate", prog, cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+prog+" (4 clauses, 2 predicates)")
	assert.Contains(t, out, "✓ "+cfg)
}

func TestValidate_ReportsProblems(t *testing.T) {
	dir := t.TempDir()
	syntax := writeFile(t, dir, "syntax.pl", "ok.\np(X :- q.\n")
	builtin := writeFile(t, dir, "builtin.pl", "ok.\natom(x).\n3 :- true.\n")
	cfg := writeFile(t, dir, "bad.cue", "max_steps: -1\n")

	out, err := execute(t, "--format", "json", "validate", syntax, builtin, cfg, filepath.Join(dir, "missing.pl"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Files, 4)

	syn := resp.Data.Files[0]
	require.Len(t, syn.Errors, 1)
	assert.Equal(t, ErrCodeSyntax, syn.Errors[0].Code)
	assert.Equal(t, 2, syn.Errors[0].Line)

	bi := resp.Data.Files[1]
	assert.Equal(t, 3, bi.Clauses)
	require.Len(t, bi.Errors, 2)
	assert.Equal(t, ErrCodeClause, bi.Errors[0].Code)
	assert.Contains(t, bi.Errors[0].Message, "permission_error")
	assert.Equal(t, 2, bi.Errors[0].Line)
	assert.Contains(t, bi.Errors[1].Message, "type_error")

	assert.Equal(t, ErrCodeConfig, resp.Data.Files[2].Errors[0].Code)
	assert.Equal(t, ErrCodeRead, resp.Data.Files[3].Errors[0].Code)
}

func TestValidate_RequiresArgs(t *testing.T) {
	_, err := execute(t, "validate")
	require.Error(t, err)
}
