package csv_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/thumbcrawl"
	"github.com/fwojciec/thumbcrawl/csv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(t *testing.T, dir string) *thumbcrawl.RunResult {
	t.Helper()
	r := thumbcrawl.NewRunResult()
	r.Dir = dir
	require.NoError(t, r.Record(thumbcrawl.ThumbnailRef{SourceURL: "https://cdn.example.com/1.jpg", Title: "Alpha"}, thumbcrawl.Outcome{Done: true, Path: "Alpha.jpg"}))
	require.NoError(t, r.Record(thumbcrawl.ThumbnailRef{SourceURL: "https://cdn.example.com/2.jpg", Title: `Beta, "quoted"`}, thumbcrawl.Outcome{Reason: "network: HTTP 503"}))
	r.Seal()
	return r
}

func TestEncode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, csv.Encode(&buf, sampleResult(t, "")))

	assert.Equal(t, "done,url,title\n"+
		"true,https://cdn.example.com/1.jpg,Alpha\n"+
		"false,https://cdn.example.com/2.jpg,\"Beta, \"\"quoted\"\"\"\n", buf.String())
}

func TestReportWriter_WriteReport(t *testing.T) {
	t.Parallel()

	t.Run("writes result.csv into run directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		err := csv.NewReportWriter().WriteReport(context.Background(), sampleResult(t, dir))

		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(dir, "result.csv"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "done,url,title\n")
		assert.Contains(t, string(data), "true,https://cdn.example.com/1.jpg,Alpha\n")
	})

	t.Run("empty result writes header only", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		r := thumbcrawl.NewRunResult()
		r.Dir = dir

		require.NoError(t, csv.NewReportWriter().WriteReport(context.Background(), r))

		data, err := os.ReadFile(filepath.Join(dir, "result.csv"))
		require.NoError(t, err)
		assert.Equal(t, "done,url,title\n", string(data))
	})

	t.Run("requires directory", func(t *testing.T) {
		t.Parallel()

		err := csv.NewReportWriter().WriteReport(context.Background(), thumbcrawl.NewRunResult())

		assert.Equal(t, thumbcrawl.EINVALID, thumbcrawl.ErrorCode(err))
	})
}
