package providertest

import (
	"context"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/hasan-suufi/tensorboard"
)

// CheckProvider runs the contract's backend-independent invariants against an
// implementation. The experiment must exist and hold at least one scalar or
// blob-sequence series under pluginName; beyond that the harness makes no
// assumption about the backend's contents, so any DataProvider can run it in
// its own tests:
//
//	func TestConformance(t *testing.T) {
//	    p := newMyBackend(t, seedFixtures)
//	    providertest.CheckProvider(t, p, "exp1", "scalars")
//	}
//
// Checked invariants: listing/reading key congruence, step ordering and
// uniqueness, filter-only-narrows semantics, downsample capping and negative
// rejection, blob key validity and dereferencing, and concurrent-call safety.
func CheckProvider(t *testing.T, p tensorboard.DataProvider, experimentID, pluginName string) {
	t.Helper()
	ctx := context.Background()

	const readAll = 1 << 20 // far above any sane series size, so reads see every point

	scalarMeta, err := p.ListScalars(ctx, experimentID, pluginName, nil)
	if err != nil {
		t.Fatalf("ListScalars: %v", err)
	}
	scalarData, err := p.ReadScalars(ctx, experimentID, pluginName, readAll, nil)
	if err != nil {
		t.Fatalf("ReadScalars: %v", err)
	}
	blobMeta, err := p.ListBlobSequences(ctx, experimentID, pluginName, nil)
	if err != nil {
		t.Fatalf("ListBlobSequences: %v", err)
	}
	blobData, err := p.ReadBlobSequences(ctx, experimentID, pluginName, readAll, nil)
	if err != nil {
		t.Fatalf("ReadBlobSequences: %v", err)
	}
	if len(scalarMeta) == 0 && len(blobMeta) == 0 {
		t.Fatalf("no data under experiment %q plugin %q; the harness needs at least one series", experimentID, pluginName)
	}

	checkCongruence(t, "scalars", keysOf(scalarMeta), keysOf(scalarData))
	checkCongruence(t, "blob sequences", keysOf(blobMeta), keysOf(blobData))

	checkRunsExist(t, ctx, p, experimentID, keysOf(scalarMeta), keysOf(blobMeta))

	for run, tags := range scalarData {
		for tag, data := range tags {
			checkSeriesShape(t, "scalar", run, tag, stepsOfScalars(data), scalarMeta[run][tag].MaxStep)
		}
	}
	for run, tags := range blobData {
		for tag, data := range tags {
			checkSeriesShape(t, "blob sequence", run, tag, stepsOfBlobs(data), blobMeta[run][tag].MaxStep)
			for _, datum := range data {
				checkBlobRefs(t, ctx, p, run, tag, datum)
			}
		}
	}

	checkFilterNarrows(t, ctx, p, experimentID, pluginName, scalarMeta)
	checkDownsample(t, ctx, p, experimentID, pluginName)
	checkUnknownBlobKey(t, ctx, p)
	checkConcurrentCalls(t, ctx, p, experimentID, pluginName)
}

func keysOf[V any](m map[string]map[string]V) map[string]map[string]bool {
	out := map[string]map[string]bool{}
	for run, tags := range m {
		out[run] = map[string]bool{}
		for tag := range tags {
			out[run][tag] = true
		}
	}
	return out
}

// checkCongruence: every (run, tag) listed has data and vice versa.
func checkCongruence(t *testing.T, what string, listed, read map[string]map[string]bool) {
	t.Helper()
	for run, tags := range listed {
		for tag := range tags {
			if !read[run][tag] {
				t.Errorf("%s: (%s, %s) listed but absent from read result", what, run, tag)
			}
		}
	}
	for run, tags := range read {
		for tag := range tags {
			if !listed[run][tag] {
				t.Errorf("%s: (%s, %s) read but absent from listing", what, run, tag)
			}
		}
	}
}

// checkRunsExist: every run keying a listing is enumerated by ListRuns.
func checkRunsExist(t *testing.T, ctx context.Context, p tensorboard.DataProvider, experimentID string, keySets ...map[string]map[string]bool) {
	t.Helper()
	runs, err := p.ListRuns(ctx, experimentID)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	known := map[string]bool{}
	for _, run := range runs {
		known[run.RunName] = true
	}
	for _, keys := range keySets {
		for run := range keys {
			if !known[run] {
				t.Errorf("run %q appears in a listing but not in ListRuns", run)
			}
		}
	}
}

func stepsOfScalars(data []tensorboard.ScalarDatum) []int64 {
	steps := make([]int64, len(data))
	for i, d := range data {
		steps[i] = d.Step
	}
	return steps
}

func stepsOfBlobs(data []tensorboard.BlobSequenceDatum) []int64 {
	steps := make([]int64, len(data))
	for i, d := range data {
		steps[i] = d.Step
	}
	return steps
}

// reporter is the slice of testing.T the shape checks need; it lets the
// checks themselves be tested against nonconforming inputs.
type reporter interface {
	Helper()
	Errorf(format string, args ...any)
}

// checkSeriesShape validates one series' data against its listed metadata:
// strictly ascending unique steps, never present-but-empty, and a last step
// matching the advertised MaxStep. An empty series is reported and skipped
// rather than dereferenced.
func checkSeriesShape(r reporter, what, run, tag string, steps []int64, maxStep int64) {
	r.Helper()
	if len(steps) == 0 {
		r.Errorf("%s series %s/%s: present but empty; absence of data must be an absent key", what, run, tag)
		return
	}
	for i := 1; i < len(steps); i++ {
		if steps[i-1] >= steps[i] {
			r.Errorf("%s series %s/%s: steps not strictly ascending at index %d (%d then %d)", what, run, tag, i, steps[i-1], steps[i])
		}
	}
	if got := steps[len(steps)-1]; got != maxStep {
		r.Errorf("%s series %s/%s: last step %d != metadata MaxStep %d", what, run, tag, got, maxStep)
	}
}

func checkBlobRefs(t *testing.T, ctx context.Context, p tensorboard.DataProvider, run, tag string, datum tensorboard.BlobSequenceDatum) {
	t.Helper()
	for i, ref := range datum.Values {
		if err := tensorboard.ValidateBlobKey(ref.BlobKey); err != nil {
			t.Errorf("blob series %s/%s step %d index %d: invalid key: %v", run, tag, datum.Step, i, err)
			continue
		}
		if _, err := p.ReadBlob(ctx, ref.BlobKey); err != nil {
			t.Errorf("blob series %s/%s step %d index %d: ReadBlob(%q): %v", run, tag, datum.Step, i, ref.BlobKey, err)
		}
	}
}

func checkFilterNarrows(t *testing.T, ctx context.Context, p tensorboard.DataProvider, experimentID, pluginName string, full map[string]map[string]tensorboard.ScalarTimeSeries) {
	t.Helper()

	// A filter naming one existing pair yields exactly that pair.
	for run, tags := range full {
		for tag := range tags {
			filter := tensorboard.NewRunTagFilter([]string{run}, []string{tag})
			got, err := p.ListScalars(ctx, experimentID, pluginName, filter)
			if err != nil {
				t.Fatalf("ListScalars with filter (%s, %s): %v", run, tag, err)
			}
			if len(got) != 1 || len(got[run]) != 1 {
				t.Errorf("filter (%s, %s): want exactly that entry, got %d runs", run, tag, len(got))
			}
			break
		}
		break
	}

	// A filter naming nothing that exists yields an empty result, not an error.
	filter := tensorboard.NewRunTagFilter([]string{"providertest-no-such-run"}, nil)
	got, err := p.ListScalars(ctx, experimentID, pluginName, filter)
	if err != nil {
		t.Errorf("filter naming a nonexistent run must not error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("filter naming a nonexistent run must yield no entries, got %d runs", len(got))
	}
	data, err := p.ReadScalars(ctx, experimentID, pluginName, 10, filter)
	if err != nil {
		t.Errorf("read with nonexistent-run filter must not error, got %v", err)
	}
	if len(data) != 0 {
		t.Errorf("read with nonexistent-run filter must yield no entries, got %d runs", len(data))
	}
}

func checkDownsample(t *testing.T, ctx context.Context, p tensorboard.DataProvider, experimentID, pluginName string) {
	t.Helper()

	capped, err := p.ReadScalars(ctx, experimentID, pluginName, 1, nil)
	if err != nil {
		t.Fatalf("ReadScalars with downsample=1: %v", err)
	}
	for run, tags := range capped {
		for tag, data := range tags {
			if len(data) > 1 {
				t.Errorf("scalar series %s/%s: downsample=1 returned %d points", run, tag, len(data))
			}
		}
	}

	// A cap of zero admits no points, so no key may survive: a present
	// key always promises data.
	empty, err := p.ReadScalars(ctx, experimentID, pluginName, 0, nil)
	if err != nil {
		t.Fatalf("ReadScalars with downsample=0: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("scalars: downsample=0 must yield an empty result, got %d runs", len(empty))
	}
	emptyBlobs, err := p.ReadBlobSequences(ctx, experimentID, pluginName, 0, nil)
	if err != nil {
		t.Fatalf("ReadBlobSequences with downsample=0: %v", err)
	}
	if len(emptyBlobs) != 0 {
		t.Errorf("blob sequences: downsample=0 must yield an empty result, got %d runs", len(emptyBlobs))
	}

	if _, err := p.ReadScalars(ctx, experimentID, pluginName, -1, nil); !tensorboard.IsInvalidArgument(err) {
		t.Errorf("negative downsample: want InvalidArgument-kind error, got %v", err)
	}
	if _, err := p.ReadBlobSequences(ctx, experimentID, pluginName, -1, nil); !tensorboard.IsInvalidArgument(err) {
		t.Errorf("negative downsample (blobs): want InvalidArgument-kind error, got %v", err)
	}
}

func checkUnknownBlobKey(t *testing.T, ctx context.Context, p tensorboard.DataProvider) {
	t.Helper()
	// A freshly minted random key cannot be known to the backend.
	if _, err := p.ReadBlob(ctx, tensorboard.NewBlobKey()); !tensorboard.IsNotFound(err) {
		t.Errorf("unknown blob key: want NotFound-kind error, got %v", err)
	}
}

// checkConcurrentCalls interleaves every read operation from several
// goroutines. Failures here usually surface as data races under -race rather
// than as assertion errors.
func checkConcurrentCalls(t *testing.T, ctx context.Context, p tensorboard.DataProvider, experimentID, pluginName string) {
	t.Helper()
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			for j := 0; j < 10; j++ {
				if _, err := p.ListRuns(ctx, experimentID); err != nil {
					return err
				}
				if _, err := p.ListScalars(ctx, experimentID, pluginName, nil); err != nil {
					return err
				}
				if _, err := p.ReadScalars(ctx, experimentID, pluginName, 100, nil); err != nil {
					return err
				}
				if _, err := p.ReadBlobSequences(ctx, experimentID, pluginName, 100, nil); err != nil {
					return err
				}
				p.DataLocation(ctx, experimentID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Errorf("concurrent calls: %v", err)
	}
}
