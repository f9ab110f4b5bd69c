package resolve

import (
	"context"
	"fmt"
	"sort"

	"github.com/lmops/lmstate/pkg/lmapi"
)

// CollectorGroupID maps a collector group name to its id. The match is
// exact and case-sensitive; absence is a NotFound-classified error
// because nothing can be created without a valid collector group.
func (r *Resolver) CollectorGroupID(ctx context.Context, name string) (int, error) {
	groups, err := r.client.ListCollectorGroups(ctx)
	if err != nil {
		return 0, fmt.Errorf("list collector groups: %w", err)
	}

	var matches []lmapi.CollectorGroup
	for _, g := range groups {
		if g.Name == name {
			matches = append(matches, g)
		}
	}
	if len(matches) == 0 {
		return 0, &lmapi.Error{
			Kind:    lmapi.KindNotFound,
			Op:      "resolve collector group",
			Message: fmt.Sprintf("no collector group named %q", name),
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	if len(matches) > 1 {
		r.logger.Warn().Str("name", name).Int("chosen_id", matches[0].ID).Msg("Ambiguous collector group name, applying lowest-id tie-break")
	}
	return matches[0].ID, nil
}

// NetflowCollectorID maps a netflow collector's description to its id.
func (r *Resolver) NetflowCollectorID(ctx context.Context, description string) (int, error) {
	collectors, err := r.client.FindCollectorsByDescription(ctx, description)
	if err != nil {
		return 0, fmt.Errorf("list collectors: %w", err)
	}
	if len(collectors) == 0 {
		return 0, &lmapi.Error{
			Kind:    lmapi.KindNotFound,
			Op:      "resolve netflow collector",
			Message: fmt.Sprintf("no collector with description %q", description),
		}
	}

	sort.Slice(collectors, func(i, j int) bool { return collectors[i].ID < collectors[j].ID })
	if len(collectors) > 1 {
		r.logger.Warn().Str("description", description).Int("chosen_id", collectors[0].ID).Msg("Ambiguous collector description, applying lowest-id tie-break")
	}
	return collectors[0].ID, nil
}
