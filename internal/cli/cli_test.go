package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunBlinkerText(t *testing.T) {
	out, err := execute(t, "run", "--rows", "3", "--cols", "3",
		"--figure", "blinker@0,1", "--steps", "2", "--tps", "0")
	require.NoError(t, err)

	want := "gen 0 alive 3\n010\n010\n010\n" +
		"gen 1 alive 3\n000\n111\n000\n" +
		"gen 2 alive 3\n010\n010\n010\n"
	assert.Equal(t, want, out)
}

func TestRunJSONFrames(t *testing.T) {
	out, err := execute(t, "run", "--format", "json", "--rows", "4", "--cols", "4",
		"--figure", "block@1,1", "--command", "flip 0 0", "--steps", "1", "--tps", "0")
	require.NoError(t, err)

	type frame struct {
		Gen   int   `json:"gen"`
		Rows  int   `json:"rows"`
		Cols  int   `json:"cols"`
		Alive int   `json:"alive"`
		Cells []int `json:"cells"`
	}
	var frames []frame
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var resp struct {
			Status string `json:"status"`
			Data   frame  `json:"data"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		frames = append(frames, resp.Data)
	}
	require.Len(t, frames, 2)
	assert.Equal(t, 5, frames[0].Alive)
	assert.Equal(t, []int{1, 0, 0, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 0, 0, 0}, frames[0].Cells)
	assert.Equal(t, 1, frames[1].Gen)
	assert.Equal(t, 4, frames[1].Rows)
	assert.Len(t, frames[1].Cells, 16)
}

func TestRunSceneFileWithOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	doc := "name: demo\nrows: 6\ncols: 6\nsteps: 50\nstamps:\n  - {figure: block, row: 0, col: 0}\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	out, err := execute(t, "run", path, "--steps", "1", "--tps", "0")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "gen "), "--steps must override the scene")
	assert.True(t, strings.HasPrefix(out, "gen 0 alive 4\n110000\n110000\n"))
}

func TestRunRejectsBadInput(t *testing.T) {
	cases := map[string][]string{
		"format":      {"--format", "xml", "patterns"},
		"figure name": {"run", "--figure", "spaceship@0,0", "--steps", "1"},
		"figure pos":  {"run", "--figure", "glider@0", "--steps", "1"},
		"rows":        {"run", "--rows", "65", "--steps", "1"},
		"command":     {"run", "--command", "warp 1", "--steps", "1", "--tps", "0"},
		"scene":       {"run", filepath.Join(t.TempDir(), "none.yaml")},
	}
	for name, args := range cases {
		_, err := execute(t, args...)
		require.Error(t, err, name)
		assert.Equal(t, ExitCommandError, GetExitCode(err), name)
	}
}

func TestPatternsGolden(t *testing.T) {
	out, err := execute(t, "patterns")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "patterns", []byte(out))
}

func TestPatternsJSON(t *testing.T) {
	out, err := execute(t, "patterns", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []figureInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 7)
	assert.Equal(t, "blinker", resp.Data[0].Name)
	assert.Equal(t, []string{"1", "1", "1"}, resp.Data[0].Rows)
}

func TestRunRecordsHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "life.db")
	_, err := execute(t, "run", "--db", db, "--name", "blink", "--rows", "3", "--cols", "3",
		"--figure", "blinker@0,1", "--steps", "3", "--tps", "0")
	require.NoError(t, err)

	out, err := execute(t, "history", "list", "--db", db, "--format", "json")
	require.NoError(t, err)
	var list struct {
		Data []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Rows int    `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "blink", list.Data[0].Name)
	assert.Equal(t, 3, list.Data[0].Rows)
	id := list.Data[0].ID

	out, err = execute(t, "history", "show", "--db", db, id)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(out, "gen "), "initial frame plus three generations")

	out, err = execute(t, "history", "show", "--db", db, id, "--gen", "1")
	require.NoError(t, err)
	assert.Equal(t, "gen 1 alive 3\n000\n111\n000\n", out)

	_, err = execute(t, "history", "show", "--db", db, id, "--gen", "9")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistoryRequiresDB(t *testing.T) {
	_, err := execute(t, "history", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

func TestHistoryListEmpty(t *testing.T) {
	out, err := execute(t, "history", "list", "--db", filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	assert.Equal(t, "no runs recorded\n", out)
}

func TestParseFigureFlag(t *testing.T) {
	st, err := parseFigureFlag("glider@2, 5")
	require.NoError(t, err)
	assert.Equal(t, "glider", st.Figure)
	assert.Equal(t, 2, st.Row)
	assert.Equal(t, 5, st.Col)

	st, err = parseFigureFlag("block")
	require.NoError(t, err)
	assert.Zero(t, st.Row)

	_, err = parseFigureFlag("block@x,1")
	assert.Error(t, err)
	_, err = parseFigureFlag("block@1,y")
	assert.Error(t, err)
}

func TestRunEmitsQueuedFrames(t *testing.T) {
	out, err := execute(t, "run", "--rows", "3", "--cols", "3", "--figure", "blinker@0,1",
		"--command", "bang", "--command", "next", "--command", "bang", "--steps", "1", "--tps", "0")
	require.NoError(t, err)

	var headers []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "gen ") {
			headers = append(headers, line)
		}
	}
	assert.Equal(t, []string{
		"gen 0 alive 3", // bang
		"gen 1 alive 3", // next
		"gen 1 alive 3", // bang
		"gen 1 alive 3", // initial frame
		"gen 2 alive 3",
	}, headers)
	assert.True(t, strings.HasPrefix(out, "gen 0 alive 3\n010\n010\n010\ngen 1 alive 3\n000\n111\n000\n"))
}

func TestRunMinimalSceneFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: bare\nrows: 2\ncols: 2\nsteps: 1\ntps: 0\n"), 0644))

	out, err := execute(t, "run", path)
	require.NoError(t, err)
	assert.Equal(t, "gen 0 alive 0\n00\n00\ngen 1 alive 0\n00\n00\n", out)
}

func TestExecuteReportsErrors(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"run", "--format", "json", "--figure", "spaceship@0,0", "--steps", "1"})

	require.Equal(t, ExitCommandError, Execute(cmd))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "command_error", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "spaceship")

	stdout.Reset()
	stderr.Reset()
	cmd = NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"history", "show", "--db", filepath.Join(t.TempDir(), "h.db"), "missing"})
	require.Equal(t, ExitCommandError, Execute(cmd))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Error [command_error]: not found")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "x", assert.AnError)))
	assert.Equal(t, "x: "+assert.AnError.Error(), WrapExitError(ExitFailure, "x", assert.AnError).Error())
	assert.Equal(t, "plain", NewExitError(ExitFailure, "plain").Error())
	assert.Equal(t, "run_failed", ErrorCode(assert.AnError))
	assert.Equal(t, "command_error", ErrorCode(NewExitError(ExitCommandError, "x")))
}
