package resolve_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmops/lmstate/pkg/lmapi"
	"github.com/lmops/lmstate/pkg/lmapi/apitest"
	"github.com/lmops/lmstate/pkg/resolve"
)

func newResolver(t *testing.T) (*resolve.Resolver, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	return resolve.New(lmapi.New(srv.Account())), srv
}

func TestResolvePathCreatesMissingChain(t *testing.T) {
	r, srv := newResolver(t)

	result, err := r.ResolvePath(context.Background(), []string{"infra", "web"}, resolve.PathOptions{
		CreateMissing: true,
	})
	require.NoError(t, err)

	require.Len(t, result.IDs, 2)
	assert.Equal(t, result.IDs[1], result.LeafID)
	assert.Equal(t, []string{"infra", "infra/web"}, result.Created)
	assert.Empty(t, result.Warnings)

	infra := srv.GroupByPath("infra")
	require.NotNil(t, infra)
	web := srv.GroupByPath("infra", "web")
	require.NotNil(t, web)
	assert.Equal(t, infra.ID, web.ParentID)
	assert.Equal(t, web.ID, result.LeafID)
	assert.Equal(t, 2, srv.GroupCount())
}

func TestResolvePathReusesExistingSegments(t *testing.T) {
	r, srv := newResolver(t)
	infra := srv.AddGroup(0, "infra")

	result, err := r.ResolvePath(context.Background(), []string{"infra", "web"}, resolve.PathOptions{
		CreateMissing: true,
	})
	require.NoError(t, err)

	assert.Equal(t, infra.ID, result.IDs[0])
	assert.Equal(t, []string{"infra/web"}, result.Created)
	assert.Equal(t, 2, srv.GroupCount())
}

func TestResolvePathEmptyPathIsRoot(t *testing.T) {
	r, _ := newResolver(t)

	result, err := r.ResolvePath(context.Background(), nil, resolve.PathOptions{})
	require.NoError(t, err)
	assert.Equal(t, lmapi.RootGroupID, result.LeafID)
	assert.Empty(t, result.IDs)
	assert.Empty(t, result.Created)
}

func TestResolvePathMissingWithoutCreate(t *testing.T) {
	r, srv := newResolver(t)
	srv.AddGroup(0, "infra")

	_, err := r.ResolvePath(context.Background(), []string{"infra", "web"}, resolve.PathOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, resolve.ErrPathMissing)
	assert.Contains(t, err.Error(), `"infra/web"`)

	// The walk must not have created anything.
	assert.Equal(t, 1, srv.GroupCount())
}

func TestResolvePathLeafCollectorGroup(t *testing.T) {
	r, srv := newResolver(t)

	result, err := r.ResolvePath(context.Background(), []string{"infra", "web"}, resolve.PathOptions{
		CreateMissing:        true,
		LeafCollectorGroupID: 7,
	})
	require.NoError(t, err)

	// Only the leaf carries the collector group; intermediates get
	// minimal defaults.
	infra := srv.GroupByPath("infra")
	require.NotNil(t, infra)
	assert.Zero(t, infra.DefaultCollectorGroupID)

	web := srv.Group(result.LeafID)
	require.NotNil(t, web)
	assert.Equal(t, 7, web.DefaultCollectorGroupID)
	assert.Equal(t, 7, web.DefaultAutoBalancedCollectorGroupID)
}

func TestResolvePathDuplicateNamesLowestID(t *testing.T) {
	r, srv := newResolver(t)
	srv.AddGroupWithID(30, lmapi.RootGroupID, "infra")
	srv.AddGroupWithID(20, lmapi.RootGroupID, "infra")

	for i := 0; i < 3; i++ {
		result, err := r.ResolvePath(context.Background(), []string{"infra"}, resolve.PathOptions{})
		require.NoError(t, err)
		assert.Equal(t, 20, result.LeafID)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], `2 groups named "infra"`)
	}
}
