package corrections

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fortune-backend/internal/bazi"
)

const sampleYAML = `
dates:
  - date: "2001-01-01"
    year: 庚午
    month: 庚午
    day: 庚午
    hours:
      - {from: 23, to: 24, pillar: 丙子}
      - {from: 0, to: 1, pillar: 甲子}
pillars:
  - {kind: month, year: 2002, month: 3, pillar: 甲寅}
  - {kind: day, year: 2002, month: 3, day: 5, pillar: 乙卯}
  - {kind: hour, year: 2002, month: 3, day: 5, hour: 9, pillar: 丙辰}
`

func requireSameTable(t *testing.T, want, got *bazi.Corrections) {
	t.Helper()
	if diff := cmp.Diff(want.Dates(), got.Dates()); diff != "" {
		t.Fatalf("dates mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Pillars(), got.Pillars()); diff != "" {
		t.Fatalf("pillars mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	want := bazi.DefaultCorrections()

	rows, err := Write(dir, want)
	require.NoError(t, err)
	// 1 个整盘修正 + 3 个时辰区间 + 3 个单柱修正
	assert.Equal(t, 7, rows)
	assert.FileExists(t, filepath.Join(dir, DefaultDBFileName))
	assert.NoFileExists(t, filepath.Join(dir, DefaultDBFileName+".tmp"))

	got, err := Load(dir)
	require.NoError(t, err)
	requireSameTable(t, want, got)

	// 从数据库加载的表与内置表排盘结果一致
	when := time.Date(1997, 4, 22, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, bazi.ComputePillars(when, bazi.Male), bazi.NewCalculator(got).Compute(when, bazi.Male))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

func TestParseYAML(t *testing.T) {
	c, err := ParseYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	dates := c.Dates()
	require.Len(t, dates, 1)
	assert.Equal(t, "2001-01-01", dates[0].Date())
	require.Len(t, dates[0].Hours, 2)
	assert.Equal(t, 0, dates[0].Hours[0].From)

	chart := bazi.NewCalculator(c).Compute(time.Date(2001, 1, 1, 23, 10, 0, 0, time.UTC), bazi.Female)
	assert.Equal(t, "庚午 庚午 庚午 丙子", chart.String())

	chart = bazi.NewCalculator(c).Compute(time.Date(2002, 3, 5, 9, 0, 0, 0, time.UTC), bazi.Male)
	assert.Equal(t, "甲寅", chart.Month.String())
	assert.Equal(t, "乙卯", chart.Day.String())
	assert.Equal(t, "丙辰", chart.Hour.String())
}

func TestParseYAMLRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"bad pillar":  "pillars:\n  - {kind: month, year: 2000, month: 1, pillar: 子甲}\n",
		"bad kind":    "pillars:\n  - {kind: year, year: 2000, month: 1, pillar: 甲子}\n",
		"bad month":   "pillars:\n  - {kind: month, year: 2000, month: 13, pillar: 甲子}\n",
		"bad hour":    "pillars:\n  - {kind: hour, year: 2000, month: 1, day: 1, hour: 24, pillar: 甲子}\n",
		"bad date":    "dates:\n  - {date: 2000/01/01, year: 甲子, month: 甲子, day: 甲子}\n",
		"bad window":  "dates:\n  - {date: \"2000-01-01\", year: 甲子, month: 甲子, day: 甲子, hours: [{from: 5, to: 3, pillar: 甲子}]}\n",
		"extra field": "dates: []\nextra: 1\n",
	}
	for name, doc := range cases {
		_, err := ParseYAML(strings.NewReader(doc))
		assert.Error(t, err, name)
	}

	c, err := ParseYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestMarshalYAMLRoundTrip(t *testing.T) {
	want, err := ParseYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	want.Merge(bazi.DefaultCorrections())

	b, err := MarshalYAML(want)
	require.NoError(t, err)
	assert.Contains(t, string(b), "1997-04-22")

	got, err := ParseYAML(bytes.NewReader(b))
	require.NoError(t, err)
	requireSameTable(t, want, got)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "extra.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0o644))
	out := filepath.Join(dir, "out.db")

	require.NoError(t, Generate(Options{OutputPath: out, FromYAML: yamlPath}, &bytes.Buffer{}))
	got, err := Load(out)
	require.NoError(t, err)
	assert.Len(t, got.Dates(), 2)
	assert.Len(t, got.Pillars(), 6)

	var buf bytes.Buffer
	require.NoError(t, Generate(Options{NoBuiltin: true, DumpYAML: true, FromYAML: yamlPath}, &buf))
	assert.Contains(t, buf.String(), "2001-01-01")
	assert.NotContains(t, buf.String(), "1997-04-22")

	assert.Error(t, Generate(Options{FromYAML: filepath.Join(dir, "missing.yaml"), OutputPath: out}, &buf))
}

func TestGenerateDefaultsToEnvPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CORRECTIONS_PATH", dir)

	require.NoError(t, Generate(Options{}, &bytes.Buffer{}))
	got, err := Load(filepath.Join(dir, DefaultDBFileName))
	require.NoError(t, err)
	assert.Equal(t, bazi.DefaultCorrections().Len(), got.Len())
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	_, err := Write(dir, bazi.DefaultCorrections())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loaded := make(chan *bazi.Corrections, 4)
	require.NoError(t, Watch(ctx, dir, func(c *bazi.Corrections) { loaded <- c }))

	extra, err := ParseYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	_, err = Write(dir, extra)
	require.NoError(t, err)

	select {
	case c := <-loaded:
		requireSameTable(t, extra, c)
	case <-time.After(3 * time.Second):
		t.Fatal("修正表未重新加载")
	}
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "", ResolvePath("  "))
	assert.Equal(t, filepath.Join("data", DefaultDBFileName), ResolvePath("data"))
	assert.Equal(t, "x/table.db", ResolvePath("x/table.db"))
}
