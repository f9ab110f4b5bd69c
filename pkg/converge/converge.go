package converge

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lmops/lmstate/pkg/diff"
	"github.com/lmops/lmstate/pkg/lmapi"
	"github.com/lmops/lmstate/pkg/log"
	"github.com/lmops/lmstate/pkg/match"
	"github.com/lmops/lmstate/pkg/metrics"
	"github.com/lmops/lmstate/pkg/resolve"
	"github.com/lmops/lmstate/pkg/types"
)

// Controller drives one resource through the convergence state machine:
// resolve scope, match identity, diff, apply. Exactly one create, update
// or delete call is issued per invocation, after all reads; a run that
// needs no write issues none.
type Controller struct {
	client   *lmapi.Client
	resolver *resolve.Resolver
	matcher  *match.Matcher
}

// New creates a controller backed by the given client.
func New(client *lmapi.Client) *Controller {
	return &Controller{
		client:   client,
		resolver: resolve.New(client),
		matcher:  match.New(client),
	}
}

// Converge makes the portal match the declaration and reports what
// happened. It never panics across the API boundary and never returns
// changed=true unless the corresponding write was confirmed successful.
func (c *Controller) Converge(ctx context.Context, desired *types.DesiredResource, state types.State) types.ConvergenceResult {
	result := types.ConvergenceResult{RunID: uuid.NewString()}
	logger := log.WithResource(string(desired.Kind), desired.Name).With().
		Str("run_id", result.RunID).
		Str("state", string(state)).
		Logger()

	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDurationVec(metrics.ConvergenceDuration, string(desired.Kind))
		metrics.ConvergencesTotal.WithLabelValues(string(desired.Kind), outcome(result)).Inc()
	}()

	if err := desired.Validate(state); err != nil {
		result.Err = &lmapi.Error{Kind: lmapi.KindValidation, Op: "validate", Message: err.Error()}
		logger.Error().Err(result.Err).Msg("Desired state rejected")
		return result
	}

	var err error
	switch {
	case state == types.StatePresent && desired.Kind == types.KindDevice:
		err = c.presentDevice(ctx, logger, desired, &result)
	case state == types.StatePresent && desired.Kind == types.KindDeviceGroup:
		err = c.presentGroup(ctx, logger, desired, &result)
	case state == types.StateAbsent && desired.Kind == types.KindDevice:
		err = c.absentDevice(ctx, logger, desired, &result)
	default:
		err = c.absentGroup(ctx, logger, desired, &result)
	}

	if err != nil {
		result.Err = fmt.Errorf("converge %s %q: %w", desired.Kind, desired.Name, err)
		logger.Error().Err(err).Msg("Convergence failed")
	}
	return result
}

func outcome(result types.ConvergenceResult) string {
	switch {
	case result.Err != nil:
		return metrics.OutcomeFailed
	case result.Changed:
		return metrics.OutcomeChanged
	default:
		return metrics.OutcomeUnchanged
	}
}

// presentDevice converges a device toward its declaration. Foreign keys
// (collector group, netflow collector) resolve before any group is
// created, so a bad collector name fails with zero side effects.
func (c *Controller) presentDevice(ctx context.Context, logger zerolog.Logger, desired *types.DesiredResource, result *types.ConvergenceResult) error {
	resolved := diff.Resolved{}

	var err error
	resolved.CollectorGroupID, err = c.resolver.CollectorGroupID(ctx, desired.CollectorGroup)
	if err != nil {
		return err
	}
	if desired.NetflowCollector != "" {
		resolved.NetflowCollectorID, err = c.resolver.NetflowCollectorID(ctx, desired.NetflowCollector)
		if err != nil {
			return err
		}
		resolved.NetflowEnabled = true
	}

	path, err := c.resolver.ResolvePath(ctx, desired.GroupPath, resolve.PathOptions{
		CreateMissing:        true,
		LeafCollectorGroupID: resolved.CollectorGroupID,
	})
	if path != nil {
		result.Warnings = append(result.Warnings, path.Warnings...)
	}
	if err != nil {
		return err
	}
	resolved.ScopeID = path.LeafID

	current, warn, err := c.matcher.Device(ctx, path.LeafID, desired.Name)
	if err != nil {
		return err
	}
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}

	cs := diff.Compute(desired, current, resolved)
	input := deviceInput(desired, resolved)

	switch {
	case cs.Create:
		dev, err := c.client.CreateDevice(ctx, input)
		if err != nil {
			return err
		}
		result.Changed = true
		result.ResourceID = dev.ID
		logger.Info().Int("id", dev.ID).Int("scope_id", resolved.ScopeID).Msg("Device created")
	case !cs.Empty():
		dev, err := c.client.UpdateDevice(ctx, current.ID, input)
		if err != nil {
			return err
		}
		result.Changed = true
		result.ResourceID = dev.ID
		logger.Info().Int("id", dev.ID).Str("changes", cs.Summary()).Msg("Device updated")
	default:
		result.ResourceID = current.ID
		logger.Info().Int("id", current.ID).Msg("Device already converged")
	}
	return nil
}

// presentGroup converges a device group. The parent chain is created on
// demand with minimal defaults; the group itself carries the full
// declared body.
func (c *Controller) presentGroup(ctx context.Context, logger zerolog.Logger, desired *types.DesiredResource, result *types.ConvergenceResult) error {
	resolved := diff.Resolved{}

	var err error
	resolved.CollectorGroupID, err = c.resolver.CollectorGroupID(ctx, desired.CollectorGroup)
	if err != nil {
		return err
	}

	parents, err := c.resolver.ResolvePath(ctx, desired.GroupPath, resolve.PathOptions{CreateMissing: true})
	if parents != nil {
		result.Warnings = append(result.Warnings, parents.Warnings...)
	}
	if err != nil {
		return err
	}
	resolved.ScopeID = parents.LeafID

	current, warn, err := c.matcher.Group(ctx, parents.LeafID, desired.Name)
	if err != nil {
		return err
	}
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}

	cs := diff.Compute(desired, current, resolved)
	input := groupInput(desired, resolved)

	switch {
	case cs.Create:
		group, err := c.client.CreateGroup(ctx, input)
		if err != nil {
			return err
		}
		result.Changed = true
		result.ResourceID = group.ID
		logger.Info().Int("id", group.ID).Int("parent_id", resolved.ScopeID).Msg("Group created")
	case !cs.Empty():
		group, err := c.client.UpdateGroup(ctx, current.ID, input)
		if err != nil {
			return err
		}
		result.Changed = true
		result.ResourceID = group.ID
		logger.Info().Int("id", group.ID).Str("changes", cs.Summary()).Msg("Group updated")
	default:
		result.ResourceID = current.ID
		logger.Info().Int("id", current.ID).Msg("Group already converged")
	}
	return nil
}

// absentDevice removes a device if it exists. A missing scope path or a
// missing device both mean there is nothing to do.
func (c *Controller) absentDevice(ctx context.Context, logger zerolog.Logger, desired *types.DesiredResource, result *types.ConvergenceResult) error {
	path, err := c.resolver.ResolvePath(ctx, desired.GroupPath, resolve.PathOptions{})
	if path != nil {
		result.Warnings = append(result.Warnings, path.Warnings...)
	}
	if err != nil {
		if errors.Is(err, resolve.ErrPathMissing) {
			logger.Info().Msg("Host group path does not exist, nothing to remove")
			return nil
		}
		return err
	}

	current, warn, err := c.matcher.Device(ctx, path.LeafID, desired.Name)
	if err != nil {
		return err
	}
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}
	if current == nil {
		logger.Info().Msg("Device does not exist, nothing to remove")
		return nil
	}

	if err := c.client.DeleteDevice(ctx, current.ID); err != nil {
		return err
	}
	result.Changed = true
	result.ResourceID = current.ID
	logger.Info().Int("id", current.ID).Msg("Device removed")
	return nil
}

// absentGroup removes a group and its entire subtree in one call.
func (c *Controller) absentGroup(ctx context.Context, logger zerolog.Logger, desired *types.DesiredResource, result *types.ConvergenceResult) error {
	parents, err := c.resolver.ResolvePath(ctx, desired.GroupPath, resolve.PathOptions{})
	if parents != nil {
		result.Warnings = append(result.Warnings, parents.Warnings...)
	}
	if err != nil {
		if errors.Is(err, resolve.ErrPathMissing) {
			logger.Info().Msg("Parent group path does not exist, nothing to remove")
			return nil
		}
		return err
	}

	current, warn, err := c.matcher.Group(ctx, parents.LeafID, desired.Name)
	if err != nil {
		return err
	}
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}
	if current == nil {
		logger.Info().Msg("Group does not exist, nothing to remove")
		return nil
	}

	if err := c.client.DeleteGroup(ctx, current.ID, true); err != nil {
		return err
	}
	result.Changed = true
	result.ResourceID = current.ID
	logger.Info().Int("id", current.ID).Msg("Group subtree removed")
	return nil
}

func deviceInput(desired *types.DesiredResource, resolved diff.Resolved) lmapi.DeviceInput {
	return lmapi.DeviceInput{
		Name:                         desired.Name,
		DisplayName:                  desired.EffectiveDisplayName(),
		HostGroupIds:                 strconv.Itoa(resolved.ScopeID),
		DisableAlerting:              desired.AlertDisabled,
		Description:                  desired.Description,
		CustomProperties:             properties(desired),
		PreferredCollectorID:         0,
		AutoBalancedCollectorGroupID: resolved.CollectorGroupID,
		EnableNetflow:                resolved.NetflowEnabled,
		NetflowCollectorID:           resolved.NetflowCollectorID,
	}
}

func groupInput(desired *types.DesiredResource, resolved diff.Resolved) lmapi.GroupInput {
	return lmapi.GroupInput{
		Name:                                desired.Name,
		ParentID:                            resolved.ScopeID,
		DisableAlerting:                     desired.AlertDisabled,
		Description:                         desired.Description,
		CustomProperties:                    properties(desired),
		DefaultCollectorGroupID:             resolved.CollectorGroupID,
		DefaultCollectorID:                  0,
		DefaultAutoBalancedCollectorGroupID: resolved.CollectorGroupID,
	}
}

func properties(desired *types.DesiredResource) []lmapi.NameValue {
	props := make([]lmapi.NameValue, 0, len(desired.Properties))
	for _, p := range desired.Properties {
		props = append(props, lmapi.NameValue{Name: p.Name, Value: p.Value})
	}
	return props
}
