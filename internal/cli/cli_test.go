package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/dyntext/pkg/dyntext/history"
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func assertGolden(t *testing.T, name, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "dyntext", cmd.Use)
	assert.Contains(t, cmd.Long, "{a|b|c}")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"render", "expand", "run"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestRenderCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	renderCmd, _, err := cmd.Find([]string{"render"})
	require.NoError(t, err)

	counterFlag := renderCmd.Flags().Lookup("counter")
	require.NotNil(t, counterFlag)
	assert.Equal(t, "-1", counterFlag.DefValue)

	repeatFlag := renderCmd.Flags().Lookup("repeat")
	require.NotNil(t, repeatFlag)
	assert.Equal(t, "n", repeatFlag.Shorthand)
	assert.Equal(t, "1", repeatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "render", "{a|b}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRender_Cycle(t *testing.T) {
	out, _, err := execute(t, "render", "{a|b|c}", "--shuffle", "--autoincrement", "--repeat", "4")
	require.NoError(t, err)
	assertGolden(t, "render_cycle", out)
}

func TestRender_Debug(t *testing.T) {
	out, _, err := execute(t, "render", "Hello {fast|slow} car!",
		"--shuffle", "--autoincrement", "-n", "2", "--debug")
	require.NoError(t, err)
	assertGolden(t, "render_debug", out)
}

func TestRender_SeededIsReproducible(t *testing.T) {
	first, _, err := execute(t, "render", "{a|b|c|d|e|f|g|h}", "--seed", "42")
	require.NoError(t, err)
	second, _, err := execute(t, "render", "{a|b|c|d|e|f|g|h}", "--seed", "42")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRender_Prefix(t *testing.T) {
	out, _, err := execute(t, "render", "{a|b}", "--shuffle", "--counter", "1", "--prefix", "  x  ")
	require.NoError(t, err)
	assert.Equal(t, "x b\n", out)
}

func TestRender_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "render", "{a|b}", "--shuffle", "--autoincrement", "-n", "3")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   []RenderResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 3)

	assert.Equal(t, "a", resp.Data[0].Text)
	assert.Equal(t, int64(0), resp.Data[0].Counter)
	assert.Equal(t, "b", resp.Data[1].Text)
	assert.Equal(t, int64(1), resp.Data[1].Counter)
	assert.Equal(t, "a", resp.Data[2].Text)
	assert.Equal(t, 2, resp.Data[2].Total)
	assert.Empty(t, resp.Data[2].Error)
}

func TestRender_LimitFallsBackToInput(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "render", "{a|b|c}", "--limit", "2")
	require.NoError(t, err, "evaluation failures are soft")

	var resp struct {
		Data []RenderResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "{a|b|c}", resp.Data[0].Text)
	assert.Contains(t, resp.Data[0].Error, "combination limit exceeded")
	assert.Contains(t, resp.Data[0].Debug, "Error processing text: ")
}

func TestRender_InvalidRepeat(t *testing.T) {
	out, _, err := execute(t, "render", "{a|b}", "--repeat", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E000]")
}

func TestExpand_Text(t *testing.T) {
	out, _, err := execute(t, "expand", "{a|{b|c}} {x|y}")
	require.NoError(t, err)
	assertGolden(t, "expand_text", out)
}

func TestExpand_Paths(t *testing.T) {
	out, _, err := execute(t, "expand", "{a|{b|c}} {x|y}", "--paths")
	require.NoError(t, err)
	assertGolden(t, "expand_paths", out)
}

func TestExpand_Count(t *testing.T) {
	out, _, err := execute(t, "expand", "{a|b}{c|d|e}", "--count")
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)
}

func TestExpand_CountIgnoresLimit(t *testing.T) {
	out, _, err := execute(t, "expand", "{a|b}{c|d|e}", "--count", "--limit", "2")
	require.NoError(t, err)
	assert.Equal(t, "6\n", out)
}

func TestExpand_Limit(t *testing.T) {
	out, _, err := execute(t, "expand", "{a|b}{c|d}", "--limit", "3")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestExpand_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "expand", "{a|b}c")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ExpandResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, uint64(2), resp.Data.Count)
	require.Len(t, resp.Data.Combinations, 2)
	assert.Equal(t, "ac", resp.Data.Combinations[0].Text)
	assert.Equal(t, "{2/2}", resp.Data.Combinations[1].Path)
}

func TestExpand_VerboseGoesToStderr(t *testing.T) {
	out, errOut, err := execute(t, "-v", "expand", "{a|b}")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", out)
	assert.Contains(t, errOut, "1 group(s), 2 combination(s)")
}

func TestRun_Text(t *testing.T) {
	out, _, err := execute(t, "run", "testdata/pipeline.yaml")
	require.NoError(t, err)
	assertGolden(t, "run_text", out)
}

func TestRun_CyclesOverride(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "run", "testdata/pipeline.yaml", "--cycles", "1")
	require.NoError(t, err)

	var resp struct {
		Data RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Data.Cycles, 1)
}

func TestRun_History(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	out, _, err := execute(t, "--format", "json", "run", "testdata/pipeline.yaml", "--history", dbPath)
	require.NoError(t, err)

	var resp struct {
		Data RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Data.RunID)
	require.Len(t, resp.Data.Cycles, 3)
	assert.Equal(t, "bird", resp.Data.Cycles[2].Nodes[0].Text)
	assert.True(t, resp.Data.Cycles[2].Nodes[1].Cached)

	store, err := history.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.List(resp.Data.RunID)
	require.NoError(t, err)
	assert.Len(t, entries, 9)

	last, err := store.Last(resp.Data.RunID, "subject")
	require.NoError(t, err)
	assert.Equal(t, "bird", last.Text)
	assert.Equal(t, 3, last.Cycle)
}

func TestRun_MissingFile(t *testing.T) {
	out, _, err := execute(t, "run", "testdata/does-not-exist.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E001]")
}

func TestRun_InvalidPipeline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cycles: 2\n"), 0o600))

	_, _, err := execute(t, "run", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
