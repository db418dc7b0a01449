// Package providertest provides a synthetic in-memory DataProvider for
// exercising code that consumes the data-access contract, together with a
// conformance harness (CheckProvider) that any backend can run against itself.
//
// The provider is seeded through Add*/Set* calls and read through the standard
// DataProvider interface. It holds everything in memory, derives series
// metadata from the seeded points, and honors the contract's filter,
// downsample, and error semantics exactly, so consumer tests observe the same
// behavior they would get from a real backend.
package providertest

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/hasan-suufi/tensorboard"
	"github.com/hasan-suufi/tensorboard/internal/downsample"
)

// SeriesMetadata is the producer-set portion of a time series' metadata,
// attached via SetSeriesMetadata. The step/wall-time portion is always
// derived from the seeded data.
type SeriesMetadata struct {
	PluginContent []byte
	Description   string
	DisplayName   string
}

type scalarSeries struct {
	meta SeriesMetadata
	data []tensorboard.ScalarDatum // sorted by step, unique steps
}

type blobSeries struct {
	meta SeriesMetadata
	data []tensorboard.BlobSequenceDatum // sorted by step, unique steps
}

type experiment struct {
	dataLocation string
	denied       bool
	runs         map[string]float64 // run name -> explicit start time (0 = derive)
	scalars      map[string]map[string]map[string]*scalarSeries
	blobs        map[string]map[string]map[string]*blobSeries
}

// Provider is a synthetic test source. The zero value is not usable; call New.
//
// Seeding methods and reads may be interleaved freely from multiple
// goroutines; every read observes a coherent snapshot under the lock.
type Provider struct {
	tensorboard.UnimplementedDataProvider

	logger *slog.Logger

	mu          sync.RWMutex
	experiments map[string]*experiment
	blobData    map[string][]byte // blob key -> payload, instance-scoped
}

var _ tensorboard.DataProvider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the structured logger used for seeding diagnostics.
// If not set, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// New returns an empty synthetic provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		experiments: map[string]*experiment{},
		blobData:    map[string][]byte{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(discardHandler{})
	}
	return p
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

// ---- seeding -------------------------------------------------------------

func (p *Provider) experimentLocked(experimentID string) *experiment {
	exp, ok := p.experiments[experimentID]
	if !ok {
		exp = &experiment{
			runs:    map[string]float64{},
			scalars: map[string]map[string]map[string]*scalarSeries{},
			blobs:   map[string]map[string]map[string]*blobSeries{},
		}
		p.experiments[experimentID] = exp
	}
	return exp
}

// CreateExperiment ensures an experiment exists, possibly with no runs.
// Seeding data creates experiments implicitly; this is for testing the
// empty-experiment case.
func (p *Provider) CreateExperiment(experimentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.experimentLocked(experimentID)
}

// SetDataLocation sets the string returned by DataLocation for an experiment.
func (p *Provider) SetDataLocation(experimentID, location string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.experimentLocked(experimentID).dataLocation = location
}

// DenyAccess makes every subsequent data operation on the experiment fail
// with a PermissionDenied-kind error, for testing caller error handling.
func (p *Provider) DenyAccess(experimentID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.experimentLocked(experimentID).denied = true
}

// AddRun registers a run, possibly before any of its data exists. startTime
// is seconds since epoch; zero means "derive from the earliest seeded datum",
// which is also what a run with no data reports.
func (p *Provider) AddRun(experimentID, runName string, startTime float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	exp := p.experimentLocked(experimentID)
	if _, ok := exp.runs[runName]; !ok || startTime != 0 {
		exp.runs[runName] = startTime
	}
}

// AddScalars seeds scalar points for one series, creating the experiment,
// run, and series as needed. Points re-seeded at an existing step replace the
// old datum; the series stays sorted by step with unique steps.
func (p *Provider) AddScalars(experimentID, pluginName, runName, tagName string, data []tensorboard.ScalarDatum) {
	p.mu.Lock()
	defer p.mu.Unlock()

	exp := p.experimentLocked(experimentID)
	if _, ok := exp.runs[runName]; !ok {
		exp.runs[runName] = 0
	}
	runs, ok := exp.scalars[pluginName]
	if !ok {
		runs = map[string]map[string]*scalarSeries{}
		exp.scalars[pluginName] = runs
	}
	tags, ok := runs[runName]
	if !ok {
		tags = map[string]*scalarSeries{}
		runs[runName] = tags
	}
	series, ok := tags[tagName]
	if !ok {
		series = &scalarSeries{}
		tags[tagName] = series
	}
	for _, d := range data {
		series.data = upsertByStep(series.data, d, func(d tensorboard.ScalarDatum) int64 { return d.Step })
	}
	p.logger.Debug("seeded scalars",
		"experiment", experimentID, "plugin", pluginName,
		"run", runName, "tag", tagName, "points", len(series.data))
}

// AddBlobSequence seeds one blob-sequence datum, minting a fresh random blob
// key per payload. Re-seeding an existing step replaces the datum and orphans
// its old keys (ReadBlob then reports them NotFound, matching a backend whose
// data was removed).
func (p *Provider) AddBlobSequence(experimentID, pluginName, runName, tagName string, step int64, wallTime float64, payloads ...[]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	exp := p.experimentLocked(experimentID)
	if _, ok := exp.runs[runName]; !ok {
		exp.runs[runName] = 0
	}
	runs, ok := exp.blobs[pluginName]
	if !ok {
		runs = map[string]map[string]*blobSeries{}
		exp.blobs[pluginName] = runs
	}
	tags, ok := runs[runName]
	if !ok {
		tags = map[string]*blobSeries{}
		runs[runName] = tags
	}
	series, ok := tags[tagName]
	if !ok {
		series = &blobSeries{}
		tags[tagName] = series
	}

	refs := make([]tensorboard.BlobReference, 0, len(payloads))
	for _, payload := range payloads {
		key := tensorboard.NewBlobKey()
		stored := make([]byte, len(payload))
		copy(stored, payload)
		p.blobData[key] = stored
		refs = append(refs, tensorboard.BlobReference{BlobKey: key})
	}
	datum := tensorboard.BlobSequenceDatum{Step: step, WallTime: wallTime, Values: refs}
	series.data = upsertByStep(series.data, datum, func(d tensorboard.BlobSequenceDatum) int64 { return d.Step })
}

// SetSeriesMetadata attaches producer metadata (plugin content, description,
// display name) to every series matching the given coordinates. It applies to
// scalar and blob-sequence series alike.
func (p *Provider) SetSeriesMetadata(experimentID, pluginName, runName, tagName string, meta SeriesMetadata) {
	p.mu.Lock()
	defer p.mu.Unlock()
	exp, ok := p.experiments[experimentID]
	if !ok {
		return
	}
	if series := lookupSeries(exp.scalars, pluginName, runName, tagName); series != nil {
		series.meta = meta
	}
	if series := lookupSeries(exp.blobs, pluginName, runName, tagName); series != nil {
		series.meta = meta
	}
}

// RemoveBlob forgets a blob payload while leaving references to it in place,
// simulating data that disappeared between a read and its dereference.
func (p *Provider) RemoveBlob(blobKey string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.blobData, blobKey)
}

func lookupSeries[S any](byPlugin map[string]map[string]map[string]*S, plugin, run, tag string) *S {
	if runs, ok := byPlugin[plugin]; ok {
		if tags, ok := runs[run]; ok {
			return tags[tag]
		}
	}
	return nil
}

func upsertByStep[T any](data []T, datum T, step func(T) int64) []T {
	i := sort.Search(len(data), func(i int) bool { return step(data[i]) >= step(datum) })
	if i < len(data) && step(data[i]) == step(datum) {
		data[i] = datum
		return data
	}
	data = append(data, datum)
	copy(data[i+1:], data[i:])
	data[i] = datum
	return data
}

// ---- DataProvider --------------------------------------------------------

func (p *Provider) lookupLocked(experimentID string) (*experiment, error) {
	exp, ok := p.experiments[experimentID]
	if !ok {
		return nil, tensorboard.NotFoundf("experiment %q not found", experimentID)
	}
	if exp.denied {
		return nil, tensorboard.PermissionDeniedf("access to experiment %q denied", experimentID)
	}
	return exp, nil
}

// DataLocation reports the seeded location, or "" for unknown experiments.
func (p *Provider) DataLocation(ctx context.Context, experimentID string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if exp, ok := p.experiments[experimentID]; ok && !exp.denied {
		return exp.dataLocation
	}
	return ""
}

// ListRuns enumerates runs in sorted-by-name order. The synthetic RunID is
// the run name; real backends use opaque IDs, so callers must not rely on
// this coincidence.
func (p *Provider) ListRuns(ctx context.Context, experimentID string) ([]tensorboard.Run, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	exp, err := p.lookupLocked(experimentID)
	if err != nil {
		return nil, err
	}
	runs := make([]tensorboard.Run, 0, len(exp.runs))
	for name, explicit := range exp.runs {
		runs = append(runs, tensorboard.Run{
			RunID:     name,
			RunName:   name,
			StartTime: p.startTimeLocked(exp, name, explicit),
		})
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].RunName < runs[j].RunName })
	return runs, nil
}

func (p *Provider) startTimeLocked(exp *experiment, runName string, explicit float64) float64 {
	if explicit != 0 {
		return explicit
	}
	earliest := 0.0
	seen := false
	for _, runs := range exp.scalars {
		if tags, ok := runs[runName]; ok {
			for _, series := range tags {
				for _, d := range series.data {
					if !seen || d.WallTime < earliest {
						earliest = d.WallTime
						seen = true
					}
				}
			}
		}
	}
	for _, runs := range exp.blobs {
		if tags, ok := runs[runName]; ok {
			for _, series := range tags {
				for _, d := range series.data {
					if !seen || d.WallTime < earliest {
						earliest = d.WallTime
						seen = true
					}
				}
			}
		}
	}
	return earliest
}

// ListScalars lists scalar series metadata for one plugin.
func (p *Provider) ListScalars(ctx context.Context, experimentID, pluginName string, filter *tensorboard.RunTagFilter) (map[string]map[string]tensorboard.ScalarTimeSeries, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	exp, err := p.lookupLocked(experimentID)
	if err != nil {
		return nil, err
	}
	result := map[string]map[string]tensorboard.ScalarTimeSeries{}
	for run, tags := range exp.scalars[pluginName] {
		for tag, series := range tags {
			if !filter.Admits(run, tag) || len(series.data) == 0 {
				continue
			}
			if result[run] == nil {
				result[run] = map[string]tensorboard.ScalarTimeSeries{}
			}
			result[run][tag] = scalarMetadata(series)
		}
	}
	return result, nil
}

// ReadScalars reads scalar data for one plugin, capped per series.
func (p *Provider) ReadScalars(ctx context.Context, experimentID, pluginName string, downsampleTo int, filter *tensorboard.RunTagFilter) (map[string]map[string][]tensorboard.ScalarDatum, error) {
	if err := tensorboard.ValidateDownsample(downsampleTo); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	exp, err := p.lookupLocked(experimentID)
	if err != nil {
		return nil, err
	}
	result := map[string]map[string][]tensorboard.ScalarDatum{}
	for run, tags := range exp.scalars[pluginName] {
		for tag, series := range tags {
			if !filter.Admits(run, tag) || len(series.data) == 0 {
				continue
			}
			capped := downsample.Series(series.data, downsampleTo)
			if len(capped) == 0 {
				// A present key promises data; a cap of zero must
				// drop the entry, not empty it.
				continue
			}
			if result[run] == nil {
				result[run] = map[string][]tensorboard.ScalarDatum{}
			}
			result[run][tag] = capped
		}
	}
	return result, nil
}

// ListBlobSequences lists blob-sequence series metadata for one plugin.
func (p *Provider) ListBlobSequences(ctx context.Context, experimentID, pluginName string, filter *tensorboard.RunTagFilter) (map[string]map[string]tensorboard.BlobSequenceTimeSeries, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	exp, err := p.lookupLocked(experimentID)
	if err != nil {
		return nil, err
	}
	result := map[string]map[string]tensorboard.BlobSequenceTimeSeries{}
	for run, tags := range exp.blobs[pluginName] {
		for tag, series := range tags {
			if !filter.Admits(run, tag) || len(series.data) == 0 {
				continue
			}
			if result[run] == nil {
				result[run] = map[string]tensorboard.BlobSequenceTimeSeries{}
			}
			result[run][tag] = blobMetadata(series)
		}
	}
	return result, nil
}

// ReadBlobSequences reads blob-sequence data for one plugin, capped per
// series.
func (p *Provider) ReadBlobSequences(ctx context.Context, experimentID, pluginName string, downsampleTo int, filter *tensorboard.RunTagFilter) (map[string]map[string][]tensorboard.BlobSequenceDatum, error) {
	if err := tensorboard.ValidateDownsample(downsampleTo); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	exp, err := p.lookupLocked(experimentID)
	if err != nil {
		return nil, err
	}
	result := map[string]map[string][]tensorboard.BlobSequenceDatum{}
	for run, tags := range exp.blobs[pluginName] {
		for tag, series := range tags {
			if !filter.Admits(run, tag) || len(series.data) == 0 {
				continue
			}
			capped := downsample.Series(series.data, downsampleTo)
			if len(capped) == 0 {
				continue
			}
			if result[run] == nil {
				result[run] = map[string][]tensorboard.BlobSequenceDatum{}
			}
			result[run][tag] = capped
		}
	}
	return result, nil
}

// ReadBlob dereferences a key minted by this provider instance.
func (p *Provider) ReadBlob(ctx context.Context, blobKey string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	payload, ok := p.blobData[blobKey]
	if !ok {
		return nil, tensorboard.NotFoundf("blob key %q not found", blobKey)
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

func scalarMetadata(series *scalarSeries) tensorboard.ScalarTimeSeries {
	last := series.data[len(series.data)-1]
	return tensorboard.ScalarTimeSeries{
		MaxStep:       last.Step,
		MaxWallTime:   maxWallTime(series.data, func(d tensorboard.ScalarDatum) float64 { return d.WallTime }),
		PluginContent: series.meta.PluginContent,
		Description:   series.meta.Description,
		DisplayName:   series.meta.DisplayName,
	}
}

func blobMetadata(series *blobSeries) tensorboard.BlobSequenceTimeSeries {
	last := series.data[len(series.data)-1]
	return tensorboard.BlobSequenceTimeSeries{
		MaxStep:        last.Step,
		MaxWallTime:    maxWallTime(series.data, func(d tensorboard.BlobSequenceDatum) float64 { return d.WallTime }),
		PluginContent:  series.meta.PluginContent,
		Description:    series.meta.Description,
		DisplayName:    series.meta.DisplayName,
		LatestMaxIndex: int64(len(last.Values)) - 1,
	}
}

func maxWallTime[T any](data []T, wallTime func(T) float64) float64 {
	max := wallTime(data[0])
	for _, d := range data[1:] {
		if wt := wallTime(d); wt > max {
			max = wt
		}
	}
	return max
}
