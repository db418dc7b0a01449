// Package dispatch composes several DataProviders behind a single experiment
// namespace, so one front end can serve data from heterogeneous backends.
//
// Each sub-provider is registered under a prefix. An experiment ID of the form
// "prefix:rest" routes to that sub-provider with experiment ID "rest"; an ID
// with no colon routes to the configured default sub-provider. Blob keys
// minted by sub-providers are rewritten to "prefix.subkey" on the way out and
// unwrapped again by ReadBlob, so they stay valid against the dispatcher
// instance that produced them.
package dispatch

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hasan-suufi/tensorboard"
)

// Provider routes DataProvider calls to registered sub-providers. Construct
// with New; safe for concurrent use (the routing tables are immutable after
// construction, and sub-providers carry their own guarantees).
type Provider struct {
	providers     map[string]tensorboard.DataProvider
	defaultPrefix string // "" if no default route
	logger        *slog.Logger
}

var _ tensorboard.DataProvider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithDefault selects the sub-provider, by its registered prefix, that also
// serves unprefixed experiment IDs. Without it, unprefixed IDs are NotFound.
func WithDefault(prefix string) Option {
	return func(p *Provider) { p.defaultPrefix = prefix }
}

// WithLogger sets the structured logger for routing diagnostics. If not set,
// routing failures are logged to slog's default logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// New constructs a dispatcher over the given sub-providers, keyed by prefix.
// Prefixes must be non-empty and restricted to [a-zA-Z0-9_-]; the dot is
// deliberately excluded so that the first dot in a wrapped blob key
// unambiguously separates prefix from sub-key. A WithDefault prefix must name
// a registered provider.
func New(providers map[string]tensorboard.DataProvider, opts ...Option) (*Provider, error) {
	p := &Provider{
		providers: make(map[string]tensorboard.DataProvider, len(providers)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	for prefix, sub := range providers {
		if err := validatePrefix(prefix); err != nil {
			return nil, err
		}
		if sub == nil {
			return nil, tensorboard.InvalidArgumentf("nil provider registered under prefix %q", prefix)
		}
		p.providers[prefix] = sub
	}
	if p.defaultPrefix != "" {
		if _, ok := p.providers[p.defaultPrefix]; !ok {
			return nil, tensorboard.InvalidArgumentf("default prefix %q names no registered provider", p.defaultPrefix)
		}
	}
	return p, nil
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return tensorboard.InvalidArgumentf("provider prefix must not be empty")
	}
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9', c == '_', c == '-':
		default:
			return tensorboard.InvalidArgumentf("provider prefix %q contains invalid byte %q", prefix, c)
		}
	}
	return nil
}

// route resolves an experiment ID to (prefix, sub-provider, sub-experiment).
func (p *Provider) route(experimentID string) (string, tensorboard.DataProvider, string, error) {
	if prefix, rest, ok := strings.Cut(experimentID, ":"); ok {
		if sub, found := p.providers[prefix]; found {
			return prefix, sub, rest, nil
		}
		// Do not echo the set of known prefixes; backend topology is
		// not the caller's business.
		return "", nil, "", tensorboard.NotFoundf("experiment %q not found", experimentID)
	}
	if p.defaultPrefix != "" {
		return p.defaultPrefix, p.providers[p.defaultPrefix], experimentID, nil
	}
	return "", nil, "", tensorboard.NotFoundf("experiment %q not found", experimentID)
}

// DataLocation delegates to the routed sub-provider; unroutable experiment
// IDs yield the documented default, the empty string.
func (p *Provider) DataLocation(ctx context.Context, experimentID string) string {
	_, sub, rest, err := p.route(experimentID)
	if err != nil {
		p.logger.Debug("dispatch: unroutable experiment id", "experiment", experimentID)
		return ""
	}
	return sub.DataLocation(ctx, rest)
}

// ListRuns delegates to the routed sub-provider.
func (p *Provider) ListRuns(ctx context.Context, experimentID string) ([]tensorboard.Run, error) {
	_, sub, rest, err := p.route(experimentID)
	if err != nil {
		return nil, err
	}
	return sub.ListRuns(ctx, rest)
}

// ListScalars delegates to the routed sub-provider.
func (p *Provider) ListScalars(ctx context.Context, experimentID, pluginName string, filter *tensorboard.RunTagFilter) (map[string]map[string]tensorboard.ScalarTimeSeries, error) {
	_, sub, rest, err := p.route(experimentID)
	if err != nil {
		return nil, err
	}
	return sub.ListScalars(ctx, rest, pluginName, filter)
}

// ReadScalars delegates to the routed sub-provider.
func (p *Provider) ReadScalars(ctx context.Context, experimentID, pluginName string, downsample int, filter *tensorboard.RunTagFilter) (map[string]map[string][]tensorboard.ScalarDatum, error) {
	_, sub, rest, err := p.route(experimentID)
	if err != nil {
		return nil, err
	}
	return sub.ReadScalars(ctx, rest, pluginName, downsample, filter)
}

// ListBlobSequences delegates to the routed sub-provider.
func (p *Provider) ListBlobSequences(ctx context.Context, experimentID, pluginName string, filter *tensorboard.RunTagFilter) (map[string]map[string]tensorboard.BlobSequenceTimeSeries, error) {
	_, sub, rest, err := p.route(experimentID)
	if err != nil {
		return nil, err
	}
	return sub.ListBlobSequences(ctx, rest, pluginName, filter)
}

// ReadBlobSequences delegates to the routed sub-provider and rewrites every
// returned blob key into the dispatcher's namespace.
func (p *Provider) ReadBlobSequences(ctx context.Context, experimentID, pluginName string, downsample int, filter *tensorboard.RunTagFilter) (map[string]map[string][]tensorboard.BlobSequenceDatum, error) {
	prefix, sub, rest, err := p.route(experimentID)
	if err != nil {
		return nil, err
	}
	result, err := sub.ReadBlobSequences(ctx, rest, pluginName, downsample, filter)
	if err != nil {
		return nil, err
	}
	for _, tags := range result {
		for tag, data := range tags {
			wrapped := make([]tensorboard.BlobSequenceDatum, len(data))
			for i, datum := range data {
				values := make([]tensorboard.BlobReference, len(datum.Values))
				for j, ref := range datum.Values {
					values[j] = tensorboard.BlobReference{
						BlobKey: prefix + "." + ref.BlobKey,
						URL:     ref.URL,
					}
				}
				wrapped[i] = tensorboard.BlobSequenceDatum{
					Step:     datum.Step,
					WallTime: datum.WallTime,
					Values:   values,
				}
			}
			tags[tag] = wrapped
		}
	}
	return result, nil
}

// ReadBlob unwraps a "prefix.subkey" blob key and delegates to the owning
// sub-provider.
func (p *Provider) ReadBlob(ctx context.Context, blobKey string) ([]byte, error) {
	prefix, rest, ok := strings.Cut(blobKey, ".")
	if !ok {
		return nil, tensorboard.NotFoundf("blob key %q not found", blobKey)
	}
	sub, found := p.providers[prefix]
	if !found {
		return nil, tensorboard.NotFoundf("blob key %q not found", blobKey)
	}
	return sub.ReadBlob(ctx, rest)
}
