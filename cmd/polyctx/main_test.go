package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/polyctx/internal/duckdb"
	"github.com/inodb/polyctx/internal/mutctx"
	"github.com/inodb/polyctx/internal/output"
)

const refSeq = "ACGTTGCAAGCTTCGAGATCACGTTGCAAGCTTCGAGATCACGTTGCAAGCTTCGAGATC"

// setup isolates config lookups and writes chr1.fa wrapped at 50.
func setup(t *testing.T) (workDir, refDir string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Cleanup(viper.Reset)

	refDir = t.TempDir()
	var b strings.Builder
	b.WriteString(">chr1\n")
	for i := 0; i < len(refSeq); i += 50 {
		b.WriteString(refSeq[i:min(i+50, len(refSeq))])
		b.WriteByte('\n')
	}
	require.NoError(t, os.WriteFile(filepath.Join(refDir, "chr1.fa"), []byte(b.String()), 0644))
	return t.TempDir(), refDir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_NoArgsPrintsUsage(t *testing.T) {
	setup(t)
	for _, args := range [][]string{{}, {"count"}, {"predict"}} {
		assert.Equal(t, ExitSuccess, run(args), "args %v", args)
	}
}

func TestRun_WrongArgCount(t *testing.T) {
	setup(t)
	assert.Equal(t, ExitUsage, run([]string{"count", "1"}))
	assert.Equal(t, ExitUsage, run([]string{"predict", "a", "b"}))
	assert.Equal(t, ExitUsage, run([]string{"count", "x", "in.vcf"}))
	assert.Equal(t, ExitUsage, run([]string{"predict", "a", "b", "2"}))
}

func TestCount_EndToEnd(t *testing.T) {
	work, refDir := setup(t)
	input := writeFile(t, work, "in.vcf", strings.Join([]string{
		"##fileformat=VCFv4.2",
		"#CHROM\tPOS\tID\tREF\tALT",
		"1\t2\t.\tC\tT",    // ACG->T
		"1\t3\t.\tG\tG",    // reference matches alternate
		"chr1\t4\t.\tT\tA", // GTT->A folds to AAC->T
		"1\t5\t.\tT\tAC",   // unsupported
		"1\t1\t.\tA\tC",    // window off the start
	}, "\n")+"\n")

	code := run([]string{"count", "--reference-dir", refDir, "--db", filepath.Join(work, "runs.duckdb"), "1", input})
	require.Equal(t, ExitSuccess, code)

	report, err := os.ReadFile(filepath.Join(work, "in.vcf_counts.tsv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(report), "Context\tCount\tOne_mer"))
	assert.True(t, strings.HasPrefix(string(report), "Context\tCount\tOne_mer\n"))

	f, err := os.Open(filepath.Join(work, "in.vcf_counts.tsv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := output.ReadCounts(f)
	require.NoError(t, err)
	require.Len(t, rows, 96)

	counts := make(map[string]int64)
	for _, r := range rows {
		counts[r.Context] = r.Count
	}
	assert.Equal(t, int64(1), counts["ACG->T"])
	assert.Equal(t, int64(1), counts["AAC->T"])
	var total int64
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, int64(2), total)

	log, err := os.ReadFile(filepath.Join(work, "in.vcf_counts.log"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(log), "reference matches alternate"))
	assert.Contains(t, string(log), "unsupported alternate allele")
	assert.Contains(t, string(log), "outside")

	store, err := duckdb.Open(filepath.Join(work, "runs.duckdb"))
	require.NoError(t, err)
	defer store.Close()
	fp, err := duckdb.StatFile(input)
	require.NoError(t, err)
	ids, err := store.FindRuns("count", fp)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	byOneMer, err := store.CountsByOneMer(ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(2), byOneMer["C->T"]+byOneMer["A->T"])
}

func TestCount_MissingReferenceLeavesNoOutput(t *testing.T) {
	work, _ := setup(t)
	input := writeFile(t, work, "in.vcf", "1\t2\t.\tC\tT\n")
	out := filepath.Join(work, "counts.tsv")

	code := run([]string{"count", "--reference-dir", t.TempDir(), "-o", out, "1", input})
	assert.Equal(t, ExitError, code)
	assert.NoFileExists(t, out)

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func writeModel(t *testing.T, dir string) string {
	t.Helper()
	keys, err := mutctx.SequenceKeys(1)
	require.NoError(t, err)
	var b strings.Builder
	b.WriteString("Context\tc1\tc2\tc3\tp1\tp2\tp3\n")
	for _, k := range keys {
		b.WriteString(k + "\t0.25\t0\t0\t0.5\t0\t0\n")
	}
	return writeFile(t, dir, "model.tsv", b.String())
}

func TestPredict_EndToEnd(t *testing.T) {
	work, refDir := setup(t)
	modelPath := writeModel(t, work)
	regions := writeFile(t, work, "regions.bed", "track name=targets\nchr1\t10\t20\n")
	out := filepath.Join(work, "params.tsv")
	db := filepath.Join(work, "runs.duckdb")

	code := run([]string{"predict", "--reference-dir", refDir, "--db", db, "-o", out, regions, modelPath, "1"})
	require.Equal(t, ExitSuccess, code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "Chrom\tPos\tContext\tProbability", lines[0])
	assert.Equal(t, "chr1\t11\t"+refSeq[9:12]+"\t0.5", lines[1])

	store, err := duckdb.Open(db)
	require.NoError(t, err)
	defer store.Close()
	fp, err := duckdb.StatFile(regions)
	require.NoError(t, err)
	ids, err := store.FindRuns("predict-private", fp)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	sum, err := store.SummarizeParams(ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(10), sum.N)
	assert.InDelta(t, 5.0, sum.Sum, 1e-9)
}

func TestPredict_FailedScanRecordsNothing(t *testing.T) {
	work, refDir := setup(t)
	modelPath := writeModel(t, work)
	regions := writeFile(t, work, "regions.bed", "chr1\t10\t20\nchr9\t1\t5\n")
	out := filepath.Join(work, "params.tsv")
	db := filepath.Join(work, "runs.duckdb")

	code := run([]string{"predict", "--reference-dir", refDir, "--db", db, "-o", out, regions, modelPath, "1"})
	require.Equal(t, ExitError, code)
	assert.NoFileExists(t, out)

	store, err := duckdb.Open(db)
	require.NoError(t, err)
	defer store.Close()
	fp, err := duckdb.StatFile(regions)
	require.NoError(t, err)
	ids, err := store.FindRuns("predict-private", fp)
	require.NoError(t, err)
	assert.Empty(t, ids)

	var n int64
	require.NoError(t, store.DB().QueryRow("SELECT COUNT(*) FROM poibin_params").Scan(&n))
	assert.Equal(t, int64(0), n)
}

func TestPredict_MissingModel(t *testing.T) {
	work, refDir := setup(t)
	regions := writeFile(t, work, "regions.bed", "chr1\t10\t20\n")
	out := filepath.Join(work, "params.tsv")

	code := run([]string{"predict", "--reference-dir", refDir, "-o", out, regions, filepath.Join(work, "none.tsv"), "0"})
	assert.Equal(t, ExitError, code)
	assert.NoFileExists(t, out)
}

func TestConfigSetGet(t *testing.T) {
	setup(t)

	root := newRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"config", "set", "reference.dir", "/data/hg19"})
	require.NoError(t, root.Execute())
	assert.FileExists(t, filepath.Join(os.Getenv("HOME"), configName))

	buf.Reset()
	root = newRootCmd()
	root.SetOut(&buf)
	root.SetArgs([]string{"config", "get", "reference.dir"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "/data/hg19\n", buf.String())
}

func TestAnomalyLogPath(t *testing.T) {
	assert.Equal(t, "data/in.vcf_counts.log", anomalyLogPath("data/in.vcf.gz"))
	assert.Equal(t, "in.vcf_counts.log", anomalyLogPath("in.vcf"))
	assert.Equal(t, "stdin_counts.log", anomalyLogPath("-"))
}

func TestDetectInputFormat(t *testing.T) {
	dir := t.TempDir()
	mafPath := writeFile(t, dir, "muts.txt", "Hugo_Symbol\tChromosome\tStart_Position\n")

	tests := []struct {
		path string
		want string
	}{
		{"in.vcf", "vcf"},
		{"in.vcf.gz", "vcf"},
		{"in.maf", "maf"},
		{"study/data_mutations.txt", "maf"},
		{"-", "vcf"},
		{mafPath, "maf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, detectInputFormat(tt.path), tt.path)
	}
}
