package cli

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-filterbench/benchmark"
	"github.com/nvr-ai/go-filterbench/benchmark/report"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestListCases(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)

	assert.Contains(t, out, "CASE")
	assert.Contains(t, out, "MorphologyEx")
	assert.Contains(t, out, "size, type, ksize")
	assert.Contains(t, out, "sizes: 1280x720 (0.92 MP), 1280x1024 (1.31 MP), 1920x1080 (2.07 MP)")
	assert.Contains(t, out, "10 cases, 315 instances, budget 20ms")
}

func TestListTypes(t *testing.T) {
	out, err := execute(t, "list", "--types", "CV_32FC4", "--sizes", "vga")
	require.NoError(t, err)

	assert.Contains(t, out, "Laplacian")
	assert.Contains(t, out, "Filter2D")
	assert.NotContains(t, out, "Blur")
	assert.Contains(t, out, "sizes: 640x480 (0.31 MP)")
	assert.Contains(t, out, "2 cases, 9 instances")

	_, err = execute(t, "list", "--types", "16UC3")
	assert.ErrorIs(t, err, benchmark.ErrConfiguration)
}

func TestListInstances(t *testing.T) {
	out, err := execute(t, "list", "^Resize$", "--instances", "--sizes", "vga")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"Resize/size=640x480/type=8UC1/scale=0.5",
		"Resize/size=640x480/type=8UC1/scale=2",
		"Resize/size=640x480/type=8UC4/scale=0.5",
		"Resize/size=640x480/type=8UC4/scale=2",
	}, lines)
}

func TestListRejectsBadInput(t *testing.T) {
	_, err := execute(t, "list", "(")
	assert.ErrorIs(t, err, benchmark.ErrConfiguration)

	_, err = execute(t, "list", "--sizes", "huge")
	assert.ErrorIs(t, err, benchmark.ErrConfiguration)
}

func TestRunNativeCSV(t *testing.T) {
	out, err := execute(t, "run",
		"--devices", "native",
		"--sizes", "32x24",
		"--run", "^Resize$",
		"--format", "csv",
		"--budget", "1ms",
		"--min-samples", "1",
		"--max-samples", "2",
	)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)

	statuses := map[string]int{}
	for _, rec := range records[1:] {
		assert.Equal(t, "Resize", rec[0])
		assert.Equal(t, "native", rec[2])
		statuses[rec[3]]++
	}
	assert.Equal(t, map[string]int{"measured": 2, "skipped": 2}, statuses)
}

func TestRunWritesReportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.json")
	_, err := execute(t, "run",
		"--devices", "native",
		"--sizes", "16x16",
		"--run", "Blur/size=16x16/type=8UC4/ksize=3",
		"--format", "json",
		"--output", path,
		"--budget", "1ms",
		"--min-samples", "1",
		"--max-samples", "1",
	)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], `"status":"measured"`)
}

// failingCloser accepts writes and fails on Close.
type failingCloser struct{ bytes.Buffer }

func (*failingCloser) Close() error { return errors.New("disk full") }

func TestRunReturnsCloseError(t *testing.T) {
	dest := &failingCloser{}
	restore := openReport
	openReport = func(string) (io.WriteCloser, error) { return dest, nil }
	defer func() { openReport = restore }()

	_, err := execute(t, "run",
		"--devices", "native",
		"--sizes", "16x16",
		"--run", "Blur/size=16x16/type=8UC4/ksize=3",
		"--format", "json",
		"--output", "run.json",
		"--budget", "1ms",
		"--min-samples", "1",
		"--max-samples", "1",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to close report: disk full")
	assert.Contains(t, dest.String(), `"status":"measured"`, "the report was written before closing")
}

func TestOutputKeepsStdoutReachable(t *testing.T) {
	cmd := newRunCmd()
	w, err := output(cmd, "-")
	require.NoError(t, err)
	assert.Same(t, os.Stdout, report.Unwrap(w), "terminal detection sees the real stdout")
	assert.NoError(t, w.Close())

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	w, err = output(cmd, "")
	require.NoError(t, err)
	assert.Same(t, &buf, report.Unwrap(w))
}

func TestRunConfigErrors(t *testing.T) {
	_, err := execute(t, "run", "--budget", "0s")
	assert.ErrorIs(t, err, benchmark.ErrConfiguration)

	_, err = execute(t, "run", "--min-samples", "5", "--max-samples", "2")
	assert.ErrorIs(t, err, benchmark.ErrConfiguration)

	_, err = execute(t, "run", "--devices", "cuda")
	assert.ErrorContains(t, err, "unknown device")

	_, err = execute(t, "run", "--format", "xml")
	assert.ErrorContains(t, err, "unknown report format")
}

func TestConfigFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	out, err := execute(t, "init-config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+path)

	cfg, err := benchmark.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, benchmark.DefaultConfig(), cfg)

	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--budget", "5ms", "--devices", "native,opencv"}))
	resolved, err := resolveConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, benchmark.Duration(5*time.Millisecond), resolved.TimeBudget)
	assert.Equal(t, []string{"native", "opencv"}, resolved.Devices)
	assert.Equal(t, benchmark.DefaultMinSamples, resolved.MinSamples)
}

func TestDevices(t *testing.T) {
	out, err := execute(t, "devices")
	require.NoError(t, err)
	assert.Contains(t, out, "opencv (")
	assert.Contains(t, out, "native (")
	assert.Contains(t, out, "operations: Blur, Filter2D, GaussianBlur, Resize")
}
