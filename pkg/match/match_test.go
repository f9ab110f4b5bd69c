package match_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmops/lmstate/pkg/lmapi"
	"github.com/lmops/lmstate/pkg/lmapi/apitest"
	"github.com/lmops/lmstate/pkg/match"
)

func newMatcher(t *testing.T) (*match.Matcher, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	return match.New(lmapi.New(srv.Account())), srv
}

func TestDeviceMatchInScope(t *testing.T) {
	m, srv := newMatcher(t)
	infra := srv.AddGroup(0, "infra")
	dev := srv.AddDevice(infra.ID, "web-01.example.com")

	remote, warn, err := m.Device(context.Background(), infra.ID, "web-01.example.com")
	require.NoError(t, err)
	require.NotNil(t, remote)
	assert.Equal(t, dev.ID, remote.ID)
	assert.Equal(t, infra.ID, remote.ParentScopeID)
	assert.Empty(t, warn)
}

func TestDeviceMatchIgnoresOtherScopes(t *testing.T) {
	m, srv := newMatcher(t)
	infra := srv.AddGroup(0, "infra")
	staging := srv.AddGroup(0, "staging")
	srv.AddDevice(staging.ID, "web-01.example.com")

	// Same name exists, but in a different host group: no match.
	remote, warn, err := m.Device(context.Background(), infra.ID, "web-01.example.com")
	require.NoError(t, err)
	assert.Nil(t, remote)
	assert.Empty(t, warn)
}

func TestDeviceMatchAbsent(t *testing.T) {
	m, srv := newMatcher(t)
	infra := srv.AddGroup(0, "infra")

	remote, warn, err := m.Device(context.Background(), infra.ID, "nope")
	require.NoError(t, err)
	assert.Nil(t, remote)
	assert.Empty(t, warn)
}

func TestDeviceMatchDuplicatesLowestID(t *testing.T) {
	m, srv := newMatcher(t)
	infra := srv.AddGroup(0, "infra")
	first := srv.AddDevice(infra.ID, "web-01.example.com")
	srv.AddDevice(infra.ID, "web-01.example.com")

	// Repeated calls must keep picking the same device.
	for i := 0; i < 3; i++ {
		remote, warn, err := m.Device(context.Background(), infra.ID, "web-01.example.com")
		require.NoError(t, err)
		require.NotNil(t, remote)
		assert.Equal(t, first.ID, remote.ID)
		assert.Contains(t, warn, "using lowest id")
	}
}

func TestGroupMatchScoped(t *testing.T) {
	m, srv := newMatcher(t)
	infra := srv.AddGroup(0, "infra")
	web := srv.AddGroup(infra.ID, "web")
	// A sibling subtree with the same leaf name must not match.
	staging := srv.AddGroup(0, "staging")
	srv.AddGroup(staging.ID, "web")

	remote, warn, err := m.Group(context.Background(), infra.ID, "web")
	require.NoError(t, err)
	require.NotNil(t, remote)
	assert.Equal(t, web.ID, remote.ID)
	assert.Empty(t, warn)
}

func TestGroupMatchAbsent(t *testing.T) {
	m, _ := newMatcher(t)

	remote, warn, err := m.Group(context.Background(), lmapi.RootGroupID, "infra")
	require.NoError(t, err)
	assert.Nil(t, remote)
	assert.Empty(t, warn)
}
