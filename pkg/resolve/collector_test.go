package resolve_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmops/lmstate/pkg/lmapi"
)

func TestCollectorGroupID(t *testing.T) {
	r, srv := newResolver(t)
	srv.AddCollectorGroup("secondary")
	primary := srv.AddCollectorGroup("primary")

	id, err := r.CollectorGroupID(context.Background(), "primary")
	require.NoError(t, err)
	assert.Equal(t, primary.ID, id)
}

func TestCollectorGroupIDExactMatch(t *testing.T) {
	r, srv := newResolver(t)
	srv.AddCollectorGroup("primary")

	_, err := r.CollectorGroupID(context.Background(), "Primary")
	require.Error(t, err)
	assert.True(t, lmapi.IsNotFound(err))
}

func TestCollectorGroupIDNotFound(t *testing.T) {
	r, _ := newResolver(t)

	_, err := r.CollectorGroupID(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.True(t, lmapi.IsNotFound(err))
	assert.Contains(t, err.Error(), `"does-not-exist"`)
}

func TestNetflowCollectorID(t *testing.T) {
	r, srv := newResolver(t)
	nf := srv.AddCollector("nf-collector-1")
	srv.AddCollector("other")

	id, err := r.NetflowCollectorID(context.Background(), "nf-collector-1")
	require.NoError(t, err)
	assert.Equal(t, nf.ID, id)

	_, err = r.NetflowCollectorID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, lmapi.IsNotFound(err))
}
