package dispatch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasan-suufi/tensorboard"
	"github.com/hasan-suufi/tensorboard/dispatch"
	"github.com/hasan-suufi/tensorboard/providertest"
)

func newFixture(t *testing.T) (*dispatch.Provider, *providertest.Provider, *providertest.Provider) {
	t.Helper()

	local := providertest.New()
	local.SetDataLocation("exp1", "/logs/exp1")
	local.AddScalars("exp1", "scalars", "train", "loss", []tensorboard.ScalarDatum{
		{Step: 0, WallTime: 100, Value: 1.0},
		{Step: 1, WallTime: 101, Value: 0.5},
	})

	remote := providertest.New()
	remote.AddScalars("shared", "scalars", "worker", "throughput", []tensorboard.ScalarDatum{
		{Step: 0, WallTime: 500, Value: 9000},
	})
	remote.AddBlobSequence("shared", "images", "worker", "samples", 0, 500, []byte("pixels"))

	d, err := dispatch.New(map[string]tensorboard.DataProvider{
		"local":  local,
		"remote": remote,
	}, dispatch.WithDefault("local"))
	require.NoError(t, err)
	return d, local, remote
}

// ---- construction --------------------------------------------------------

func TestNew_RejectsBadPrefixes(t *testing.T) {
	sub := providertest.New()
	for _, prefix := range []string{"", "has.dot", "has:colon", "has space"} {
		_, err := dispatch.New(map[string]tensorboard.DataProvider{prefix: sub})
		require.Error(t, err, "prefix %q", prefix)
		assert.True(t, tensorboard.IsInvalidArgument(err), "prefix %q", prefix)
	}
}

func TestNew_RejectsNilProvider(t *testing.T) {
	_, err := dispatch.New(map[string]tensorboard.DataProvider{"p": nil})
	assert.True(t, tensorboard.IsInvalidArgument(err))
}

func TestNew_RejectsUnknownDefault(t *testing.T) {
	_, err := dispatch.New(
		map[string]tensorboard.DataProvider{"local": providertest.New()},
		dispatch.WithDefault("remote"),
	)
	assert.True(t, tensorboard.IsInvalidArgument(err))
}

// ---- routing -------------------------------------------------------------

func TestRouting_PrefixedIDs(t *testing.T) {
	d, _, _ := newFixture(t)
	ctx := context.Background()

	got, err := d.ReadScalars(ctx, "remote:shared", "scalars", 10, nil)
	require.NoError(t, err)
	require.Contains(t, got, "worker")
	assert.Equal(t, 9000.0, got["worker"]["throughput"][0].Value)
}

func TestRouting_UnprefixedIDsUseDefault(t *testing.T) {
	d, _, _ := newFixture(t)
	ctx := context.Background()

	got, err := d.ListScalars(ctx, "exp1", "scalars", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "train")

	runs, err := d.ListRuns(ctx, "exp1")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "train", runs[0].RunName)
}

func TestRouting_UnknownPrefixIsNotFound(t *testing.T) {
	d, _, _ := newFixture(t)

	_, err := d.ListRuns(context.Background(), "nowhere:exp1")
	require.Error(t, err)
	assert.True(t, tensorboard.IsNotFound(err))
	assert.NotContains(t, err.Error(), "local", "routing table must not leak into messages")
	assert.NotContains(t, err.Error(), "remote", "routing table must not leak into messages")
}

func TestRouting_NoDefaultMeansUnprefixedIsNotFound(t *testing.T) {
	d, err := dispatch.New(map[string]tensorboard.DataProvider{"local": providertest.New()})
	require.NoError(t, err)

	_, err = d.ListRuns(context.Background(), "exp1")
	assert.True(t, tensorboard.IsNotFound(err))
}

func TestRouting_SubProviderErrorsPassThrough(t *testing.T) {
	d, _, _ := newFixture(t)

	_, err := d.ListRuns(context.Background(), "remote:no-such-experiment")
	require.Error(t, err)
	assert.True(t, tensorboard.IsNotFound(err))
}

func TestDataLocation_RoutesAndDefaultsToEmpty(t *testing.T) {
	d, _, _ := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, "/logs/exp1", d.DataLocation(ctx, "local:exp1"))
	assert.Equal(t, "/logs/exp1", d.DataLocation(ctx, "exp1"))
	assert.Equal(t, "", d.DataLocation(ctx, "nowhere:exp1"), "DataLocation never fails")
}

// ---- blob key namespacing ------------------------------------------------

func TestBlobKeys_WrappedAndDereferencable(t *testing.T) {
	d, _, _ := newFixture(t)
	ctx := context.Background()

	read, err := d.ReadBlobSequences(ctx, "remote:shared", "images", 10, nil)
	require.NoError(t, err)
	refs := read["worker"]["samples"][0].Values
	require.Len(t, refs, 1)

	key := refs[0].BlobKey
	require.NoError(t, tensorboard.ValidateBlobKey(key), "wrapped keys stay charset-valid")
	assert.Equal(t, "remote.", key[:7])

	payload, err := d.ReadBlob(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("pixels"), payload)
}

func TestReadBlob_SubProviderKeyIsNotPortableToDispatcher(t *testing.T) {
	d, _, remote := newFixture(t)
	ctx := context.Background()

	read, err := remote.ReadBlobSequences(ctx, "shared", "images", 10, nil)
	require.NoError(t, err)
	rawKey := read["worker"]["samples"][0].Values[0].BlobKey

	_, err = d.ReadBlob(ctx, rawKey)
	require.Error(t, err)
	assert.True(t, tensorboard.IsNotFound(err), "unwrapped keys do not resolve against the dispatcher")
}

func TestReadBlob_UnknownPrefix(t *testing.T) {
	d, _, _ := newFixture(t)

	_, err := d.ReadBlob(context.Background(), "nowhere."+tensorboard.NewBlobKey())
	assert.True(t, tensorboard.IsNotFound(err))
}

// ---- conformance ---------------------------------------------------------

func TestCheckProvider_PassesThroughDispatcher(t *testing.T) {
	d, _, _ := newFixture(t)
	providertest.CheckProvider(t, d, "remote:shared", "scalars")
}
