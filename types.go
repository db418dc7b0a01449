package tensorboard

import "bytes"

// Run is metadata about one run within an experiment. It is a value snapshot
// constructed by a backend while answering ListRuns and is never mutated.
//
// Run is comparable: two Runs are equal iff all three fields are equal, and
// Runs may be used as map keys.
type Run struct {
	// RunID is a unique opaque identifier for this run.
	RunID string
	// RunName is the user-facing name for this run.
	RunName string
	// StartTime is the wall time of the earliest recorded event in this
	// run, as seconds since epoch. Zero means the run has no recorded
	// events.
	StartTime float64
}

// ScalarTimeSeries is metadata about a scalar time series for one run and tag.
//
// The byte payload makes the struct non-comparable with ==; use Equal.
type ScalarTimeSeries struct {
	// MaxStep is the largest step value of any datum in this series; a
	// nonnegative integer.
	MaxStep int64
	// MaxWallTime is the largest wall time of any datum in this series, as
	// seconds since epoch.
	MaxWallTime float64
	// PluginContent is an opaque payload set by the plugin that produced
	// the data. It is not interpreted at this layer.
	PluginContent []byte
	// Description is an optional long-form Markdown description, empty if
	// unset.
	Description string
	// DisplayName is a deprecated Markdown display name, empty if unset.
	DisplayName string
}

// Equal reports structural equality over all fields.
func (ts ScalarTimeSeries) Equal(other ScalarTimeSeries) bool {
	return ts.MaxStep == other.MaxStep &&
		ts.MaxWallTime == other.MaxWallTime &&
		bytes.Equal(ts.PluginContent, other.PluginContent) &&
		ts.Description == other.Description &&
		ts.DisplayName == other.DisplayName
}

// BlobSequenceTimeSeries is metadata about a blob-sequence time series for one
// run and tag. Fields shared with ScalarTimeSeries carry the same meaning.
type BlobSequenceTimeSeries struct {
	MaxStep       int64
	MaxWallTime   float64
	PluginContent []byte
	Description   string
	DisplayName   string
	// LatestMaxIndex is the largest 0-based index present in the sequence
	// element recorded at MaxStep.
	LatestMaxIndex int64
}

// Equal reports structural equality over all fields.
func (ts BlobSequenceTimeSeries) Equal(other BlobSequenceTimeSeries) bool {
	return ts.MaxStep == other.MaxStep &&
		ts.MaxWallTime == other.MaxWallTime &&
		bytes.Equal(ts.PluginContent, other.PluginContent) &&
		ts.Description == other.Description &&
		ts.DisplayName == other.DisplayName &&
		ts.LatestMaxIndex == other.LatestMaxIndex
}

// ScalarDatum is a single point in a scalar time series. Comparable; usable as
// a map key.
type ScalarDatum struct {
	// Step is the logical time coordinate of this datum, unique within its
	// time series.
	Step int64
	// WallTime is the real-world time of this datum, seconds since epoch.
	WallTime float64
	// Value is the recorded scalar.
	Value float64
}

// BlobReference points at a blob indirectly, by key rather than by inline
// payload. Comparable; usable as a map key.
//
// BlobReference performs no validation of its own: key well-formedness is a
// contract on producers (see ValidateBlobKey), not enforced at construction,
// so that backends stay interchangeable regardless of where they choose to
// enforce it.
type BlobReference struct {
	// BlobKey uniquely identifies a blob within the provider instance that
	// produced it, and may be dereferenced via ReadBlob. Keys are
	// case-sensitive, non-empty strings restricted to the RFC 3986
	// unreserved characters [a-zA-Z0-9._~-] so they can be embedded in
	// URLs without encoding, and must never contain secret information.
	//
	// Keys are opaque to callers. A backend may encode structure into a
	// key, but callers must make no attempt to decode it.
	BlobKey string
	// URL optionally locates the blob for direct fetch, bypassing the
	// provider. Empty means no direct URL is available. When set it must
	// not expose secrets and must not point back at the provider's own
	// blob-fetch endpoint.
	URL string
}

// BlobSequenceDatum is a single point in a blob-sequence time series.
//
// The Values slice makes the struct non-comparable with ==; use Equal.
type BlobSequenceDatum struct {
	// Step is the logical time coordinate of this datum, unique within its
	// time series.
	Step int64
	// WallTime is the real-world time of this datum, seconds since epoch.
	WallTime float64
	// Values are the blob references recorded together at this step.
	// Order is significant.
	Values []BlobReference
}

// Equal reports structural equality over all fields, including element order
// of Values.
func (d BlobSequenceDatum) Equal(other BlobSequenceDatum) bool {
	if d.Step != other.Step || d.WallTime != other.WallTime || len(d.Values) != len(other.Values) {
		return false
	}
	for i := range d.Values {
		if d.Values[i] != other.Values[i] {
			return false
		}
	}
	return true
}
