package generator

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/ChuLiYu/taskgen/internal/metrics"
	"github.com/ChuLiYu/taskgen/internal/random"
	"github.com/ChuLiYu/taskgen/internal/random/randomtest"
	"github.com/ChuLiYu/taskgen/internal/storage/archive"
	"github.com/ChuLiYu/taskgen/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestGenerator creates a Generator writing into a temporary directory
func createTestGenerator(t *testing.T, runs int, src random.Source, collector *metrics.Collector) (*Generator, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tasks.txt")
	gen, err := New(Config{
		ArchivePath: path,
		Runs:        runs,
		Logger:      quietLogger(),
	}, src, collector)
	require.NoError(t, err)
	return gen, path
}

func readArchive(t *testing.T, path string) []string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func metricValue(t *testing.T, c *metrics.Collector, name string) float64 {
	t.Helper()

	families, err := c.Gatherer().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		m := mf.GetMetric()[0]
		if m.GetCounter() != nil {
			return m.GetCounter().GetValue()
		}
		return m.GetGauge().GetValue()
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func assertValidRun(t *testing.T, run types.Run) {
	t.Helper()

	n := run.Len()
	require.GreaterOrEqual(t, n, 1)
	require.LessOrEqual(t, n, 20)

	priorities := make([]int, 0, n)
	for i, task := range run.Tasks {
		assert.Equal(t, i+1, task.Index)
		assert.GreaterOrEqual(t, task.BCET, 0.1)
		assert.GreaterOrEqual(t, task.WCET, task.BCET)
		priorities = append(priorities, task.Priority)
	}

	sort.Ints(priorities)
	for i, p := range priorities {
		assert.Equal(t, i+1, p, "priorities should be a permutation of 1..N")
	}
}

// ============================================================================
// Basic Functionality Tests
// ============================================================================

func TestNew_Defaults(t *testing.T) {
	gen, err := New(Config{}, random.New(1), nil)
	require.NoError(t, err)

	assert.Equal(t, archive.DefaultPath, gen.config.ArchivePath)
	assert.Equal(t, 1, gen.config.Runs)
	assert.NotNil(t, gen.log)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{Runs: -1}, random.New(1), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGenerate_FixedDraws(t *testing.T) {
	src := &randomtest.Fixed{Values: []float64{
		0.16,          // N = 3
		0.0, 0.5, 0.9, // execution times
		0.9, 0.1, 0.5, // priority draws [2, 0, 1]
	}}
	gen, _ := createTestGenerator(t, 1, src, nil)

	run, err := gen.Generate()
	require.NoError(t, err)
	require.Len(t, run.Tasks, 3)

	want := []types.Task{
		{Index: 1, BCET: 0.1, WCET: 0.1, Priority: 3},
		{Index: 2, BCET: 0.6, WCET: 0.85, Priority: 1},
		{Index: 3, BCET: 1.0, WCET: 1.45, Priority: 2},
	}
	for i, task := range run.Tasks {
		assert.Equal(t, want[i].Index, task.Index)
		assert.InDelta(t, want[i].BCET, task.BCET, 1e-9)
		assert.InDelta(t, want[i].WCET, task.WCET, 1e-9)
		assert.Equal(t, want[i].Priority, task.Priority)
	}
	assert.NotEqual(t, uuid.Nil, run.ID, "run should carry an id")
}

func TestGenerate_Seeded(t *testing.T) {
	a, _ := createTestGenerator(t, 1, random.New(42), nil)
	b, _ := createTestGenerator(t, 1, random.New(42), nil)

	for i := 0; i < 50; i++ {
		runA, err := a.Generate()
		require.NoError(t, err)
		runB, err := b.Generate()
		require.NoError(t, err)

		assert.Equal(t, runA.Tasks, runB.Tasks, "same seed should give the same tasks")
		assertValidRun(t, runA)
	}
}

func TestExecute_SingleRun(t *testing.T) {
	collector := metrics.NewCollector()
	gen, path := createTestGenerator(t, 1, random.New(7), collector)

	result, err := gen.Execute()
	require.NoError(t, err)
	require.Len(t, result.Runs, 1)
	assert.Equal(t, path, result.Path)

	lines := readArchive(t, path)
	run := result.Runs[0]
	require.Len(t, lines, run.Len()+1)
	for i, task := range run.Tasks {
		assert.Equal(t, archive.FormatTask(task), lines[i])
	}
	assert.Equal(t, archive.Separator, lines[len(lines)-1])

	assert.Equal(t, 1.0, metricValue(t, collector, "taskgen_runs_generated_total"))
	assert.Equal(t, float64(run.Len()), metricValue(t, collector, "taskgen_tasks_generated_total"))
}

func TestExecute_ArchiveRoundTrip(t *testing.T) {
	gen, path := createTestGenerator(t, 5, random.New(2024), nil)

	first, err := gen.Execute()
	require.NoError(t, err)
	second, err := gen.Execute()
	require.NoError(t, err)

	separators, taskLines := 0, 0
	for _, line := range readArchive(t, path) {
		if line == archive.Separator {
			separators++
			continue
		}
		assert.Len(t, strings.Fields(line), 4)
		taskLines++
	}

	assert.Equal(t, 10, separators)
	assert.Equal(t, first.Tasks+second.Tasks, taskLines)

	for _, run := range append(first.Runs, second.Runs...) {
		assertValidRun(t, run)
	}
}

// ============================================================================
// Error Handling Tests
// ============================================================================

func TestExecute_OpenFailure(t *testing.T) {
	collector := metrics.NewCollector()
	path := filepath.Join(t.TempDir(), "missing", "tasks.txt")

	gen, err := New(Config{ArchivePath: path, Logger: quietLogger()}, random.New(1), collector)
	require.NoError(t, err)

	result, err := gen.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrIO)
	assert.Empty(t, result.Runs)
	assert.Equal(t, 1.0, metricValue(t, collector, "taskgen_archive_write_failures_total"))
	assert.Equal(t, 0.0, metricValue(t, collector, "taskgen_runs_generated_total"))
}

// failingFile accepts the first okWrites writes, then fails every write.
type failingFile struct {
	strings.Builder
	okWrites int
	writes   int
	writeErr error
	closeErr error
}

func (f *failingFile) Write(p []byte) (int, error) {
	f.writes++
	if f.writes > f.okWrites {
		return 0, f.writeErr
	}
	return f.Builder.Write(p)
}

func (f *failingFile) Sync() error  { return nil }
func (f *failingFile) Close() error { return f.closeErr }

// useFile routes the generator's archive through f.
func useFile(gen *Generator, f archive.File) {
	gen.open = func(path string) (*archive.Writer, error) {
		return archive.NewWriter(f, path), nil
	}
}

func TestExecute_WriteFailureMidRun(t *testing.T) {
	collector := metrics.NewCollector()
	gen, _ := createTestGenerator(t, 3, random.New(5), collector)

	// Each run is flushed with a single write, so the second run fails.
	f := &failingFile{okWrites: 1, writeErr: errors.New("disk full")}
	useFile(gen, f)

	result, err := gen.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, archive.ErrIO)

	var ioErr *archive.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "write", ioErr.Op)

	require.Len(t, result.Runs, 1, "only the first run completed")
	assert.Equal(t, 1, strings.Count(f.String(), archive.Separator+"\n"), "first run stays in the archive")
	assert.Equal(t, result.Runs[0].Len()+1, strings.Count(f.String(), "\n"))

	assert.Equal(t, 1.0, metricValue(t, collector, "taskgen_archive_write_failures_total"))
	assert.Equal(t, 1.0, metricValue(t, collector, "taskgen_runs_generated_total"))
}

func TestExecute_CloseFailureAfterSuccessfulWrite(t *testing.T) {
	collector := metrics.NewCollector()
	gen, _ := createTestGenerator(t, 2, random.New(6), collector)

	f := &failingFile{okWrites: 10, closeErr: errors.New("bad descriptor")}
	useFile(gen, f)

	result, err := gen.Execute()
	require.Error(t, err)

	var ioErr *archive.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "close", ioErr.Op)
	assert.Len(t, result.Runs, 2, "both runs were written before close")
	assert.Equal(t, 1.0, metricValue(t, collector, "taskgen_archive_write_failures_total"))
}

func TestExecute_WriteErrorWinsOverCloseError(t *testing.T) {
	gen, _ := createTestGenerator(t, 1, random.New(8), nil)

	writeErr := errors.New("disk full")
	f := &failingFile{okWrites: 0, writeErr: writeErr, closeErr: errors.New("bad descriptor")}
	useFile(gen, f)

	_, err := gen.Execute()

	var ioErr *archive.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "write", ioErr.Op, "earlier error is kept when close also fails")
	assert.ErrorIs(t, err, writeErr)
}
