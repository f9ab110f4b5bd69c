package match

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/lmops/lmstate/pkg/lmapi"
	"github.com/lmops/lmstate/pkg/log"
	"github.com/lmops/lmstate/pkg/types"
)

// Matcher locates the existing portal resource carrying a declared
// identity, if any. Identity is the resource name within its parent
// scope; duplicates resolve to the lowest id so repeated runs always
// act on the same resource.
type Matcher struct {
	client *lmapi.Client
	logger zerolog.Logger
}

// New creates a matcher backed by the given client.
func New(client *lmapi.Client) *Matcher {
	return &Matcher{
		client: client,
		logger: log.WithComponent("match"),
	}
}

// Device finds the device named name that is a member of host group
// scopeID. Returns nil when no such device exists. The portal filters
// by name server-side; scope membership is checked client-side because
// a device can belong to several host groups.
func (m *Matcher) Device(ctx context.Context, scopeID int, name string) (*types.RemoteResource, string, error) {
	devices, err := m.client.FindDevicesByName(ctx, name)
	if err != nil {
		return nil, "", fmt.Errorf("find device %q: %w", name, err)
	}

	var inScope []lmapi.Device
	for _, d := range devices {
		if d.InGroup(scopeID) {
			inScope = append(inScope, d)
		}
	}
	if len(inScope) == 0 {
		return nil, "", nil
	}

	sort.Slice(inScope, func(i, j int) bool { return inScope[i].ID < inScope[j].ID })
	var warn string
	if len(inScope) > 1 {
		warn = fmt.Sprintf("%d devices named %q in group %d; using lowest id %d", len(inScope), name, scopeID, inScope[0].ID)
		m.logger.Warn().Str("name", name).Int("scope_id", scopeID).Int("chosen_id", inScope[0].ID).Msg("Ambiguous device identity, applying lowest-id tie-break")
	}

	remote := inScope[0].Remote(scopeID)
	return &remote, warn, nil
}

// Group finds the device group named name directly under scopeID.
// Returns nil when no such group exists.
func (m *Matcher) Group(ctx context.Context, scopeID int, name string) (*types.RemoteResource, string, error) {
	groups, err := m.client.FindGroups(ctx, scopeID, name)
	if err != nil {
		return nil, "", fmt.Errorf("find group %q under %d: %w", name, scopeID, err)
	}
	if len(groups) == 0 {
		return nil, "", nil
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	var warn string
	if len(groups) > 1 {
		warn = fmt.Sprintf("%d groups named %q under group %d; using lowest id %d", len(groups), name, scopeID, groups[0].ID)
		m.logger.Warn().Str("name", name).Int("scope_id", scopeID).Int("chosen_id", groups[0].ID).Msg("Ambiguous group identity, applying lowest-id tie-break")
	}

	remote := groups[0].Remote()
	return &remote, warn, nil
}
