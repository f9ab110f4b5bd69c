package converge_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmops/lmstate/pkg/converge"
	"github.com/lmops/lmstate/pkg/lmapi"
	"github.com/lmops/lmstate/pkg/lmapi/apitest"
	"github.com/lmops/lmstate/pkg/types"
)

func newController(t *testing.T) (*converge.Controller, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	return converge.New(lmapi.New(srv.Account())), srv
}

func desiredDevice() *types.DesiredResource {
	return &types.DesiredResource{
		Kind:           types.KindDevice,
		Name:           "web-01.example.com",
		DisplayName:    "web-01",
		Description:    "front end",
		GroupPath:      []string{"infra", "web"},
		CollectorGroup: "primary",
		Properties: []types.Property{
			{Name: "env", Value: "prod"},
		},
	}
}

func desiredGroup() *types.DesiredResource {
	return &types.DesiredResource{
		Kind:           types.KindDeviceGroup,
		Name:           "web",
		Description:    "web servers",
		GroupPath:      []string{"infra"},
		CollectorGroup: "primary",
	}
}

func TestDevicePresentCreatesPathAndDevice(t *testing.T) {
	ctrl, srv := newController(t)
	srv.AddCollectorGroup("primary")

	result := ctrl.Converge(context.Background(), desiredDevice(), types.StatePresent)
	require.False(t, result.Failed(), "unexpected error: %v", result.Err)
	assert.True(t, result.Changed)
	assert.NotEmpty(t, result.RunID)

	web := srv.GroupByPath("infra", "web")
	require.NotNil(t, web)

	dev := srv.Device(result.ResourceID)
	require.NotNil(t, dev)
	assert.Equal(t, "web-01.example.com", dev.Name)
	assert.Equal(t, "web-01", dev.DisplayName)
	assert.True(t, dev.InGroup(web.ID))
}

// Running the same declaration twice must converge on the first run and
// report an unchanged no-op with the same resource id on the second.
func TestDevicePresentIdempotent(t *testing.T) {
	ctrl, srv := newController(t)
	srv.AddCollectorGroup("primary")

	first := ctrl.Converge(context.Background(), desiredDevice(), types.StatePresent)
	require.False(t, first.Failed())
	require.True(t, first.Changed)

	mutationsAfterFirst := len(srv.Mutations())

	second := ctrl.Converge(context.Background(), desiredDevice(), types.StatePresent)
	require.False(t, second.Failed())
	assert.False(t, second.Changed)
	assert.Equal(t, first.ResourceID, second.ResourceID)

	// The second run must not have issued any write.
	assert.Len(t, srv.Mutations(), mutationsAfterFirst)
}

// Membership drift is reconciled on its own: a device that gained an
// extra host group out of band gets converged back to the declared
// group even when every declared field still matches.
func TestDevicePresentReconcilesExtraGroupMembership(t *testing.T) {
	ctrl, srv := newController(t)
	srv.AddCollectorGroup("primary")

	first := ctrl.Converge(context.Background(), desiredDevice(), types.StatePresent)
	require.False(t, first.Failed())

	legacy := srv.AddGroup(0, "legacy")
	dev := srv.Device(first.ResourceID)
	require.NotNil(t, dev)
	dev.HostGroupIds += "," + strconv.Itoa(legacy.ID)

	second := ctrl.Converge(context.Background(), desiredDevice(), types.StatePresent)
	require.False(t, second.Failed(), "unexpected error: %v", second.Err)
	assert.True(t, second.Changed)
	assert.Equal(t, first.ResourceID, second.ResourceID)

	web := srv.GroupByPath("infra", "web")
	require.NotNil(t, web)
	assert.Equal(t, strconv.Itoa(web.ID), srv.Device(first.ResourceID).HostGroupIds)

	third := ctrl.Converge(context.Background(), desiredDevice(), types.StatePresent)
	require.False(t, third.Failed())
	assert.False(t, third.Changed)
}

func TestDevicePresentUpdatesDriftedFields(t *testing.T) {
	ctrl, srv := newController(t)
	srv.AddCollectorGroup("primary")

	first := ctrl.Converge(context.Background(), desiredDevice(), types.StatePresent)
	require.False(t, first.Failed())

	drifted := desiredDevice()
	drifted.Description = "front end, renamed"
	drifted.AlertDisabled = true

	second := ctrl.Converge(context.Background(), drifted, types.StatePresent)
	require.False(t, second.Failed())
	assert.True(t, second.Changed)
	assert.Equal(t, first.ResourceID, second.ResourceID)

	dev := srv.Device(second.ResourceID)
	require.NotNil(t, dev)
	assert.Equal(t, "front end, renamed", dev.Description)
	assert.True(t, dev.DisableAlerting)
}

// Property application is full-replace: a stale remote property absent
// from the declaration must be dropped by the update.
func TestDevicePresentReplacesProperties(t *testing.T) {
	ctrl, srv := newController(t)
	srv.AddCollectorGroup("primary")

	first := desiredDevice()
	first.Properties = []types.Property{
		{Name: "env", Value: "prod"},
		{Name: "team", Value: "platform"},
	}
	r1 := ctrl.Converge(context.Background(), first, types.StatePresent)
	require.False(t, r1.Failed())

	second := desiredDevice()
	second.Properties = []types.Property{{Name: "env", Value: "staging"}}
	r2 := ctrl.Converge(context.Background(), second, types.StatePresent)
	require.False(t, r2.Failed())
	assert.True(t, r2.Changed)

	dev := srv.Device(r2.ResourceID)
	require.NotNil(t, dev)
	require.Len(t, dev.CustomProperties, 1)
	assert.Equal(t, lmapi.NameValue{Name: "env", Value: "staging"}, dev.CustomProperties[0])
}

// An unknown collector group must fail the run before any group or
// device is created.
func TestDevicePresentBadCollectorGroupHasNoSideEffects(t *testing.T) {
	ctrl, srv := newController(t)
	srv.AddCollectorGroup("primary")

	desired := desiredDevice()
	desired.CollectorGroup = "does-not-exist"

	result := ctrl.Converge(context.Background(), desired, types.StatePresent)
	require.True(t, result.Failed())
	assert.True(t, lmapi.IsNotFound(result.Err))

	assert.Empty(t, srv.Mutations())
	assert.Equal(t, 0, srv.GroupCount())
	assert.Equal(t, 0, srv.DeviceCount())
}

func TestDevicePresentNetflow(t *testing.T) {
	ctrl, srv := newController(t)
	srv.AddCollectorGroup("primary")
	nf := srv.AddCollector("nf-collector-1")

	desired := desiredDevice()
	desired.NetflowCollector = "nf-collector-1"

	result := ctrl.Converge(context.Background(), desired, types.StatePresent)
	require.False(t, result.Failed(), "unexpected error: %v", result.Err)

	dev := srv.Device(result.ResourceID)
	require.NotNil(t, dev)
	assert.True(t, dev.EnableNetflow)
	assert.Equal(t, nf.ID, dev.NetflowCollectorID)
}

func TestDeviceValidationFailsBeforeAnyCall(t *testing.T) {
	ctrl, srv := newController(t)

	desired := desiredDevice()
	desired.GroupPath = nil

	result := ctrl.Converge(context.Background(), desired, types.StatePresent)
	require.True(t, result.Failed())
	assert.Equal(t, lmapi.KindValidation, lmapi.KindOf(result.Err))
	assert.Empty(t, srv.Mutations())
}

func TestDeviceAbsentRemoves(t *testing.T) {
	ctrl, srv := newController(t)
	srv.AddCollectorGroup("primary")

	created := ctrl.Converge(context.Background(), desiredDevice(), types.StatePresent)
	require.False(t, created.Failed())

	removed := ctrl.Converge(context.Background(), desiredDevice(), types.StateAbsent)
	require.False(t, removed.Failed())
	assert.True(t, removed.Changed)
	assert.Equal(t, created.ResourceID, removed.ResourceID)
	assert.Equal(t, 0, srv.DeviceCount())

	// The host group chain stays in place.
	assert.NotNil(t, srv.GroupByPath("infra", "web"))
}

// Absent on a device that never existed is a successful no-op, even
// when the whole host group path is missing.
func TestDeviceAbsentMissingIsNoOp(t *testing.T) {
	ctrl, srv := newController(t)

	result := ctrl.Converge(context.Background(), desiredDevice(), types.StateAbsent)
	require.False(t, result.Failed(), "unexpected error: %v", result.Err)
	assert.False(t, result.Changed)
	assert.Empty(t, srv.Mutations())
	assert.Equal(t, 0, srv.GroupCount())
}

func TestGroupPresentCreate(t *testing.T) {
	ctrl, srv := newController(t)
	cg := srv.AddCollectorGroup("primary")

	result := ctrl.Converge(context.Background(), desiredGroup(), types.StatePresent)
	require.False(t, result.Failed(), "unexpected error: %v", result.Err)
	assert.True(t, result.Changed)

	web := srv.GroupByPath("infra", "web")
	require.NotNil(t, web)
	assert.Equal(t, result.ResourceID, web.ID)
	assert.Equal(t, "web servers", web.Description)
	assert.Equal(t, cg.ID, web.DefaultCollectorGroupID)

	// The auto-created parent carries minimal defaults only.
	infra := srv.GroupByPath("infra")
	require.NotNil(t, infra)
	assert.Zero(t, infra.DefaultCollectorGroupID)
}

func TestGroupPresentIdempotent(t *testing.T) {
	ctrl, srv := newController(t)
	srv.AddCollectorGroup("primary")

	first := ctrl.Converge(context.Background(), desiredGroup(), types.StatePresent)
	require.False(t, first.Failed())
	require.True(t, first.Changed)

	mutations := len(srv.Mutations())

	second := ctrl.Converge(context.Background(), desiredGroup(), types.StatePresent)
	require.False(t, second.Failed())
	assert.False(t, second.Changed)
	assert.Equal(t, first.ResourceID, second.ResourceID)
	assert.Len(t, srv.Mutations(), mutations)
}

func TestGroupAbsentRemovesSubtree(t *testing.T) {
	ctrl, srv := newController(t)
	infra := srv.AddGroup(0, "infra")
	web := srv.AddGroup(infra.ID, "web")
	srv.AddGroup(web.ID, "canary")
	srv.AddDevice(web.ID, "web-01.example.com")

	desired := &types.DesiredResource{
		Kind:      types.KindDeviceGroup,
		Name:      "web",
		GroupPath: []string{"infra"},
	}
	result := ctrl.Converge(context.Background(), desired, types.StateAbsent)
	require.False(t, result.Failed(), "unexpected error: %v", result.Err)
	assert.True(t, result.Changed)
	assert.Equal(t, web.ID, result.ResourceID)

	assert.Nil(t, srv.GroupByPath("infra", "web"))
	assert.NotNil(t, srv.GroupByPath("infra"))
	assert.Equal(t, 1, srv.GroupCount())
}

func TestGroupAbsentMissingIsNoOp(t *testing.T) {
	ctrl, srv := newController(t)

	desired := &types.DesiredResource{
		Kind:      types.KindDeviceGroup,
		Name:      "web",
		GroupPath: []string{"infra"},
	}
	result := ctrl.Converge(context.Background(), desired, types.StateAbsent)
	require.False(t, result.Failed())
	assert.False(t, result.Changed)
	assert.Empty(t, srv.Mutations())
}

// Duplicate identities inside the scope surface as warnings while the
// run still converges deterministically on the lowest id.
func TestDeviceAmbiguityWarning(t *testing.T) {
	ctrl, srv := newController(t)
	srv.AddCollectorGroup("primary")
	infra := srv.AddGroup(0, "infra")
	web := srv.AddGroup(infra.ID, "web")
	first := srv.AddDevice(web.ID, "web-01.example.com")
	srv.AddDevice(web.ID, "web-01.example.com")

	result := ctrl.Converge(context.Background(), desiredDevice(), types.StateAbsent)
	require.False(t, result.Failed())
	assert.True(t, result.Changed)
	assert.Equal(t, first.ID, result.ResourceID)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "using lowest id")
}
