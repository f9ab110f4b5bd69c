package resolve

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lmops/lmstate/pkg/lmapi"
	"github.com/lmops/lmstate/pkg/log"
	"github.com/lmops/lmstate/pkg/metrics"
)

// ErrPathMissing is returned when a path segment does not exist and the
// caller did not ask for it to be created. For absent-state convergence
// this means there is nothing to delete.
var ErrPathMissing = errors.New("group path segment not found")

// Resolver translates human-readable names into portal identifiers:
// group paths into group id chains, collector group names and netflow
// collector names into their ids.
type Resolver struct {
	client *lmapi.Client
	logger zerolog.Logger
}

// New creates a resolver backed by the given client.
func New(client *lmapi.Client) *Resolver {
	return &Resolver{
		client: client,
		logger: log.WithComponent("resolve"),
	}
}

// PathOptions controls how ResolvePath treats missing segments.
type PathOptions struct {
	// CreateMissing creates absent segments as the walk encounters them.
	// When false a missing segment aborts with ErrPathMissing.
	CreateMissing bool

	// LeafCollectorGroupID is assigned to the final segment if the walk
	// has to create it. Intermediate segments are always created with
	// minimal defaults.
	LeafCollectorGroupID int
}

// PathResult is the outcome of a path walk.
type PathResult struct {
	// IDs is the resolved id chain, one per segment.
	IDs []int
	// LeafID is the last segment's id; the root group id for an empty
	// path.
	LeafID int
	// Created lists the root-relative paths of groups the walk created,
	// in creation order.
	Created []string
	// Warnings carries ambiguity notices (duplicate names at one level).
	Warnings []string
}

// ResolvePath walks the group tree from the root, one segment at a
// time, accumulating ids. The walk is an explicit loop so that a
// partially created path is observable: every created group is listed
// in the result even if a later segment fails.
func (r *Resolver) ResolvePath(ctx context.Context, segments []string, opts PathOptions) (*PathResult, error) {
	result := &PathResult{LeafID: lmapi.RootGroupID}

	for i, seg := range segments {
		parent := result.LeafID
		group, warn, err := r.findChild(ctx, parent, seg)
		if err != nil {
			return result, err
		}
		if warn != "" {
			result.Warnings = append(result.Warnings, warn)
		}

		if group == nil {
			if !opts.CreateMissing {
				return result, fmt.Errorf("%w: %q (parent id %d)", ErrPathMissing, strings.Join(segments[:i+1], "/"), parent)
			}
			group, err = r.createChild(ctx, parent, seg, i == len(segments)-1, opts.LeafCollectorGroupID)
			if err != nil {
				return result, err
			}
			result.Created = append(result.Created, strings.Join(segments[:i+1], "/"))
		}

		result.IDs = append(result.IDs, group.ID)
		result.LeafID = group.ID
	}

	return result, nil
}

// findChild locates the named child of parent. Duplicate names resolve
// to the lowest id so that repeated runs always pick the same group.
func (r *Resolver) findChild(ctx context.Context, parentID int, name string) (*lmapi.DeviceGroup, string, error) {
	groups, err := r.client.FindGroups(ctx, parentID, name)
	if err != nil {
		return nil, "", fmt.Errorf("list children of group %d: %w", parentID, err)
	}
	if len(groups) == 0 {
		return nil, "", nil
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	var warn string
	if len(groups) > 1 {
		warn = fmt.Sprintf("%d groups named %q under group %d; using lowest id %d", len(groups), name, parentID, groups[0].ID)
		r.logger.Warn().Str("name", name).Int("parent_id", parentID).Int("chosen_id", groups[0].ID).Msg("Ambiguous group name, applying lowest-id tie-break")
	}
	return &groups[0], warn, nil
}

// createChild creates a missing segment. A conflict means another
// caller created the same group between our list and create; the group
// is re-fetched and the walk continues on it.
func (r *Resolver) createChild(ctx context.Context, parentID int, name string, leaf bool, leafCollectorGroupID int) (*lmapi.DeviceGroup, error) {
	input := lmapi.GroupInput{
		Name:     name,
		ParentID: parentID,
	}
	if leaf && leafCollectorGroupID > 0 {
		input.DefaultCollectorGroupID = leafCollectorGroupID
		input.DefaultAutoBalancedCollectorGroupID = leafCollectorGroupID
	}

	group, err := r.client.CreateGroup(ctx, input)
	if err != nil {
		if lmapi.IsConflict(err) {
			existing, _, findErr := r.findChild(ctx, parentID, name)
			if findErr == nil && existing != nil {
				r.logger.Debug().Str("name", name).Int("parent_id", parentID).Msg("Lost create race, adopting existing group")
				return existing, nil
			}
		}
		return nil, fmt.Errorf("create group %q under %d: %w", name, parentID, err)
	}

	metrics.GroupsCreatedTotal.Inc()
	r.logger.Info().Str("name", name).Int("parent_id", parentID).Int("id", group.ID).Msg("Created group")
	return group, nil
}
