package providertest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingReporter captures harness failures so the shape checks can be
// exercised against nonconforming inputs without failing the enclosing test.
type recordingReporter struct {
	failures []string
}

func (r *recordingReporter) Helper() {}

func (r *recordingReporter) Errorf(format string, args ...any) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

// ---- checkSeriesShape ----

func TestCheckSeriesShape_ValidSeries(t *testing.T) {
	r := &recordingReporter{}
	checkSeriesShape(r, "scalar", "train", "loss", []int64{0, 1, 2}, 2)
	assert.Empty(t, r.failures)
}

func TestCheckSeriesShape_EmptySeriesReportedWithoutPanic(t *testing.T) {
	r := &recordingReporter{}
	checkSeriesShape(r, "scalar", "train", "loss", nil, 3)

	require.Len(t, r.failures, 1, "an empty series is one failure, not a crash")
	assert.Contains(t, r.failures[0], "present but empty")
}

func TestCheckSeriesShape_UnsortedSteps(t *testing.T) {
	r := &recordingReporter{}
	checkSeriesShape(r, "scalar", "train", "loss", []int64{0, 2, 2, 1}, 1)

	require.NotEmpty(t, r.failures)
	assert.Contains(t, r.failures[0], "not strictly ascending")
}

func TestCheckSeriesShape_MaxStepMismatch(t *testing.T) {
	r := &recordingReporter{}
	checkSeriesShape(r, "blob sequence", "train", "images", []int64{0, 5}, 7)

	require.Len(t, r.failures, 1)
	assert.Contains(t, r.failures[0], "MaxStep")
}
