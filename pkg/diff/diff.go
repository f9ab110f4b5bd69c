package diff

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lmops/lmstate/pkg/types"
)

// FieldDelta is one scalar attribute change.
type FieldDelta struct {
	Field string
	Old   string
	New   string
}

// PropertyDiff is the sub-diff of the custom property set, keyed by
// property name. Names are sorted for deterministic output.
type PropertyDiff struct {
	Added   []string
	Changed []string
	Removed []string
}

// Empty reports whether no property differs.
func (p PropertyDiff) Empty() bool {
	return len(p.Added) == 0 && len(p.Changed) == 0 && len(p.Removed) == 0
}

// ChangeSet is the minimal ordered set of deltas needed to make the
// remote resource match the declaration. An empty ChangeSet means the
// resource is already converged.
type ChangeSet struct {
	// Create is set when no remote resource matched: every desired
	// attribute applies and there is nothing to diff against.
	Create bool

	Fields []FieldDelta
	Props  PropertyDiff
}

// Empty reports whether nothing needs to change.
func (c *ChangeSet) Empty() bool {
	return !c.Create && len(c.Fields) == 0 && c.Props.Empty()
}

// Summary renders a compact one-line description for logs and results.
func (c *ChangeSet) Summary() string {
	if c.Create {
		return "create"
	}
	if c.Empty() {
		return "no-op"
	}
	parts := make([]string, 0, len(c.Fields)+1)
	for _, f := range c.Fields {
		parts = append(parts, f.Field)
	}
	if !c.Props.Empty() {
		parts = append(parts, fmt.Sprintf("properties(+%d~%d-%d)",
			len(c.Props.Added), len(c.Props.Changed), len(c.Props.Removed)))
	}
	return strings.Join(parts, ", ")
}

// Resolved carries the foreign-key ids the resolver derived for the
// desired resource; the diff compares these, never the names.
type Resolved struct {
	ScopeID            int
	CollectorGroupID   int
	NetflowCollectorID int
	NetflowEnabled     bool
}

// Compute diffs the desired declaration against the matched remote
// resource. A nil current produces a full-create ChangeSet. Scalar
// fields compare by value; properties compare as a set keyed by name
// with full-replace semantics: a property present remotely but absent
// from the declaration is removed, not kept.
func Compute(desired *types.DesiredResource, current *types.RemoteResource, resolved Resolved) *ChangeSet {
	if current == nil {
		return &ChangeSet{Create: true}
	}

	cs := &ChangeSet{}
	if desired.Kind == types.KindDevice {
		cs.compareString("display_name", current.DisplayName, desired.EffectiveDisplayName())
		cs.compareMembership(current.GroupIDs, resolved.ScopeID)
	}
	cs.compareString("description", current.Description, desired.Description)
	cs.compareInt("collector_group_id", current.CollectorGroupID, resolved.CollectorGroupID)
	if desired.Kind == types.KindDevice {
		cs.compareBool("netflow_enabled", current.NetflowEnabled, resolved.NetflowEnabled)
		cs.compareInt("netflow_collector_id", current.NetflowCollector, resolved.NetflowCollectorID)
	}
	cs.compareBool("alert_disabled", current.AlertDisabled, desired.AlertDisabled)

	cs.Props = diffProperties(desired.PropertyMap(), current.Properties)
	return cs
}

func (c *ChangeSet) compareString(field, current, desired string) {
	if current != desired {
		c.Fields = append(c.Fields, FieldDelta{Field: field, Old: current, New: desired})
	}
}

func (c *ChangeSet) compareInt(field string, current, desired int) {
	if current != desired {
		c.Fields = append(c.Fields, FieldDelta{Field: field, Old: strconv.Itoa(current), New: strconv.Itoa(desired)})
	}
}

// compareMembership diffs the device's host group membership against
// the declared scope. The declaration claims exactly one host group, so
// any extra membership is drift and gets reconciled away explicitly
// rather than dropped as a side effect of an unrelated update.
func (c *ChangeSet) compareMembership(current []int, scopeID int) {
	if len(current) == 1 && current[0] == scopeID {
		return
	}
	ids := make([]string, 0, len(current))
	for _, id := range current {
		ids = append(ids, strconv.Itoa(id))
	}
	c.Fields = append(c.Fields, FieldDelta{
		Field: "host_group_ids",
		Old:   strings.Join(ids, ","),
		New:   strconv.Itoa(scopeID),
	})
}

func (c *ChangeSet) compareBool(field string, current, desired bool) {
	if current != desired {
		c.Fields = append(c.Fields, FieldDelta{Field: field, Old: strconv.FormatBool(current), New: strconv.FormatBool(desired)})
	}
}

// diffProperties compares two property sets by name. Values compare as
// exact strings: case-sensitive, no trimming, no numeric coercion.
func diffProperties(desired, current map[string]string) PropertyDiff {
	var d PropertyDiff
	for name, want := range desired {
		have, ok := current[name]
		switch {
		case !ok:
			d.Added = append(d.Added, name)
		case have != want:
			d.Changed = append(d.Changed, name)
		}
	}
	for name := range current {
		if _, ok := desired[name]; !ok {
			d.Removed = append(d.Removed, name)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Changed)
	sort.Strings(d.Removed)
	return d
}
