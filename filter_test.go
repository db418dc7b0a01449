package tensorboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hasan-suufi/tensorboard"
)

func TestRunTagFilter_NilFilterAdmitsEverything(t *testing.T) {
	var f *tensorboard.RunTagFilter
	assert.True(t, f.Admits("any-run", "any-tag"))
	assert.True(t, f.Admits("", ""))
	assert.Nil(t, f.Runs())
	assert.Nil(t, f.Tags())
}

func TestRunTagFilter_NilSetsAdmitEverything(t *testing.T) {
	f := tensorboard.NewRunTagFilter(nil, nil)
	assert.True(t, f.Admits("train", "loss"))
	assert.True(t, f.Admits("no-such-run", "no-such-tag"))
}

func TestRunTagFilter_RunsOnly(t *testing.T) {
	f := tensorboard.NewRunTagFilter([]string{"a", "b"}, nil)
	assert.True(t, f.Admits("a", "anything"))
	assert.True(t, f.Admits("b", ""))
	assert.False(t, f.Admits("c", "anything"))
}

func TestRunTagFilter_TagsOnly(t *testing.T) {
	f := tensorboard.NewRunTagFilter(nil, []string{"loss"})
	assert.True(t, f.Admits("any-run", "loss"))
	assert.False(t, f.Admits("any-run", "accuracy"))
}

func TestRunTagFilter_BothDimensionsMustPass(t *testing.T) {
	f := tensorboard.NewRunTagFilter([]string{"train"}, []string{"loss"})
	assert.True(t, f.Admits("train", "loss"))
	assert.False(t, f.Admits("train", "accuracy"))
	assert.False(t, f.Admits("eval", "loss"))
	assert.False(t, f.Admits("eval", "accuracy"))
}

func TestRunTagFilter_EmptySetAdmitsNothing(t *testing.T) {
	f := tensorboard.NewRunTagFilter([]string{}, nil)
	assert.False(t, f.Admits("train", "loss"), "empty non-nil run set admits no run")
}

func TestRunTagFilter_DuplicatesAndOrderIrrelevant(t *testing.T) {
	a := tensorboard.NewRunTagFilter([]string{"x", "y", "x", "x"}, []string{"t2", "t1"})
	b := tensorboard.NewRunTagFilter([]string{"y", "x"}, []string{"t1", "t2", "t1"})

	assert.Equal(t, a.Runs(), b.Runs())
	assert.Equal(t, a.Tags(), b.Tags())
	for _, run := range []string{"x", "y", "z"} {
		for _, tag := range []string{"t1", "t2", "t3"} {
			assert.Equal(t, a.Admits(run, tag), b.Admits(run, tag),
				"filters built from equivalent sets must agree on (%s, %s)", run, tag)
		}
	}
}

func TestRunTagFilter_AccessorsAreSortedCopies(t *testing.T) {
	f := tensorboard.NewRunTagFilter([]string{"b", "a"}, []string{"z", "y"})
	runs := f.Runs()
	assert.Equal(t, []string{"a", "b"}, runs)
	runs[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, f.Runs(), "mutating the returned slice must not affect the filter")
	assert.Equal(t, []string{"y", "z"}, f.Tags())
}
