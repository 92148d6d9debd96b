package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/thumbcrawl"
	"github.com/fwojciec/thumbcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportWriter_WriteReport(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WriteReportFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *thumbcrawl.RunResult
		w := &mock.ReportWriter{
			WriteReportFn: func(_ context.Context, result *thumbcrawl.RunResult) error {
				calledWith = result
				return nil
			},
		}

		result := thumbcrawl.NewRunResult()
		err := w.WriteReport(context.Background(), result)

		require.NoError(t, err)
		assert.Same(t, result, calledWith)
	})

	t.Run("returns error from WriteReportFn", func(t *testing.T) {
		t.Parallel()

		w := &mock.ReportWriter{
			WriteReportFn: func(_ context.Context, _ *thumbcrawl.RunResult) error {
				return thumbcrawl.Errorf(thumbcrawl.EIO, "disk full")
			},
		}

		err := w.WriteReport(context.Background(), thumbcrawl.NewRunResult())

		assert.Equal(t, thumbcrawl.EIO, thumbcrawl.ErrorCode(err))
	})
}
