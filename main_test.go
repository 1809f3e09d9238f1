package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "dropexec.yaml", "dataDir: data\nlog: {level: warn}\n")
	data := writeFile(t, dir, "data.yaml", `
tables:
  - name: enroll
    fields:
      - {name: esid, type: int}
      - {name: grade, type: varchar, length: 4}
    rows: [[1, A+], [2, B-], [1, C]]
`)
	query := writeFile(t, dir, "query.yaml", `
select: [esid, {fn: count, field: grade}]
from: [enroll]
groupBy: [esid]
`)

	out, err := execute(t, "run", "--config", config, "--data", data, "--query", query)
	require.NoError(t, err)
	assert.Equal(t, "esid  countOfgrade\n1     2\n2     1\n", out)

	out, err = execute(t, "explain", "-c", config, "-d", data, "-q", query, "--planner", "basic")
	require.NoError(t, err)
	assert.Contains(t, out, "groupby [esid] count(grade)")

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dropexec "+version+"\n", out)

	_, err = execute(t, "run", "--config", config)
	assert.Error(t, err)
}
