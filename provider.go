// Package tensorboard defines the read-only data-access contract between a
// visualization front end and the stores that hold its time-series data.
//
// Data is organized by experiment, run, and tag: an experiment holds runs, a
// run holds tagged time series, and every tag lives in the namespace of the
// plugin that produced it. Backends — local log directories, networked
// multi-tenant stores, synthetic test sources — implement DataProvider; the
// front end holds one DataProvider per logical backend and never sees past it.
//
// The import graph enforces a strict no-cycle rule: subpackages (dispatch,
// providertest, otelprovider) import tensorboard, but tensorboard imports none
// of them. Everything exported here is pure contract: interfaces, immutable
// value types, and the error taxonomy all implementations signal through.
package tensorboard

import "context"

// DataProvider is the interface a backend implements to serve scalar and
// blob-sequence time series.
//
// Every operation is stateless and independently invocable; there is no
// required call ordering (ReadScalars may be called without ever calling
// ListScalars). Implementations must be safe for concurrent use from multiple
// goroutines. Each call's result must be internally consistent, but no
// snapshot consistency is guaranteed between distinct calls.
//
// Operations may block for I/O. No cancellation semantics are mandated:
// backends that honor ctx should surface cancellation or an internal deadline
// as an Internal-kind error rather than leaving the call pending.
//
// Unless noted otherwise, any operation may return a NotFound-kind error (the
// experiment does not exist) or any other kind from the taxonomy in errors.go.
//
// Two further operations, ListTensors and ReadTensors, are reserved but not
// yet specified; they are deliberately absent from this interface. See
// UnimplementedDataProvider.
type DataProvider interface {
	// DataLocation renders a human-readable description of where the
	// experiment's data physically lives, such as a filesystem path. It is
	// informational only and never fails; the empty string is the default
	// for backends with no meaningful answer.
	DataLocation(ctx context.Context, experimentID string) string

	// ListRuns enumerates all runs within an experiment. No particular
	// order is mandated; callers must not assume one.
	ListRuns(ctx context.Context, experimentID string) ([]Run, error)

	// ListScalars lists metadata about scalar time series produced by the
	// named plugin, keyed by run name and then tag name.
	//
	// The result contains a key for a (run, tag) pair only if data for it
	// actually exists: a nil filter admits everything, and a filter can
	// only narrow the result, never add entries. Filter entries naming
	// nonexistent runs or tags contribute nothing and cause no error.
	ListScalars(ctx context.Context, experimentID, pluginName string, filter *RunTagFilter) (map[string]map[string]ScalarTimeSeries, error)

	// ReadScalars reads scalar data, keyed by run name and then tag name.
	// Each series is sorted by ascending step with no duplicate steps.
	//
	// downsample caps the number of points returned per series; it is a
	// cap, not a target, and which points are dropped is backend-defined.
	// A negative downsample yields an InvalidArgument-kind error. Filter
	// semantics are those of ListScalars.
	ReadScalars(ctx context.Context, experimentID, pluginName string, downsample int, filter *RunTagFilter) (map[string]map[string][]ScalarDatum, error)

	// ListBlobSequences is ListScalars for blob-sequence time series.
	ListBlobSequences(ctx context.Context, experimentID, pluginName string, filter *RunTagFilter) (map[string]map[string]BlobSequenceTimeSeries, error)

	// ReadBlobSequences is ReadScalars for blob-sequence time series.
	ReadBlobSequences(ctx context.Context, experimentID, pluginName string, downsample int, filter *RunTagFilter) (map[string]map[string][]BlobSequenceDatum, error)

	// ReadBlob dereferences a blob key previously returned inside a
	// BlobReference from this same provider instance; keys are not
	// portable across providers. Returns a NotFound-kind error if the key
	// is unrecognized or the referenced data has since been removed.
	ReadBlob(ctx context.Context, blobKey string) ([]byte, error)
}

// ValidateDownsample checks a downsample cap per the ReadScalars and
// ReadBlobSequences contract. Backends should call it before doing any work so
// every implementation rejects the same inputs identically.
func ValidateDownsample(downsample int) error {
	if downsample < 0 {
		return InvalidArgumentf("downsample must be nonnegative, got %d", downsample)
	}
	return nil
}

// UnimplementedDataProvider provides defaults for the optional and reserved
// parts of the contract. Backends may embed it to pick up the default
// DataLocation and to reserve the ListTensors/ReadTensors method names ahead
// of their future specification; the required DataProvider methods are
// deliberately not stubbed, so the compiler still holds embedders to the full
// interface.
type UnimplementedDataProvider struct{}

// DataLocation returns the documented default, the empty string.
func (UnimplementedDataProvider) DataLocation(ctx context.Context, experimentID string) string {
	return ""
}

// ListTensors is reserved and not yet specified.
func (UnimplementedDataProvider) ListTensors(ctx context.Context, experimentID string) error {
	return ErrUnimplemented
}

// ReadTensors is reserved and not yet specified.
func (UnimplementedDataProvider) ReadTensors(ctx context.Context, experimentID string) error {
	return ErrUnimplemented
}
