package types

import (
	"fmt"
	"strings"
)

// Kind identifies the class of resource being converged.
type Kind string

const (
	KindDevice      Kind = "device"
	KindDeviceGroup Kind = "devicegroup"
)

// State is the declared target state for a resource.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// Property is a single custom property on a device or device group.
// Values are kept as strings and compared as strings; the portal coerces
// numeric values on its side and comparing anything other than the
// normalized string form produces false diffs.
type Property struct {
	Name  string `yaml:"name" json:"name"`
	Value string `yaml:"value" json:"value"`
}

// DesiredResource is the caller-declared target configuration for one
// device or device group. It is owned by the caller for the duration of
// a single convergence call; the engine never retains it.
type DesiredResource struct {
	Kind        Kind
	Name        string
	DisplayName string // devices only; defaults to Name when empty
	Description string

	// GroupPath is the root-relative chain of group names the resource
	// lives under: the device's host group for devices, the parent group
	// for device groups. Empty for a device group directly under root.
	GroupPath []string

	CollectorGroup   string
	NetflowCollector string // devices only, optional

	AlertDisabled bool
	Properties    []Property
}

// RemoteResource is the engine's normalized view of an existing portal
// resource, produced by the identity matcher from the raw API objects.
type RemoteResource struct {
	ID          int
	Name        string
	DisplayName string
	Description string

	// ParentScopeID is the resolved scope the resource was matched in.
	// GroupIDs is the device's full host group membership, which can be
	// wider than the matched scope; empty for device groups.
	ParentScopeID int
	GroupIDs      []int

	CollectorGroupID int
	NetflowCollector int
	NetflowEnabled   bool
	AlertDisabled    bool
	Properties       map[string]string
}

// ConvergenceResult is the terminal output of one convergence call.
type ConvergenceResult struct {
	RunID      string
	Changed    bool
	ResourceID int
	Warnings   []string
	Err        error
}

// Failed reports whether the convergence ended in the failure state.
func (r ConvergenceResult) Failed() bool {
	return r.Err != nil
}

// Validate checks the invariants that can be established without any
// remote call. Violations are definitive and fail before the state
// machine starts.
func (d *DesiredResource) Validate(state State) error {
	if d.Kind != KindDevice && d.Kind != KindDeviceGroup {
		return fmt.Errorf("unknown resource kind %q", d.Kind)
	}
	if d.Name == "" {
		return fmt.Errorf("%s: name is required", d.Kind)
	}
	for i, seg := range d.GroupPath {
		if strings.TrimSpace(seg) == "" {
			return fmt.Errorf("%s %q: group path segment %d is empty", d.Kind, d.Name, i)
		}
	}
	seen := make(map[string]struct{}, len(d.Properties))
	for _, p := range d.Properties {
		if p.Name == "" {
			return fmt.Errorf("%s %q: property with empty name", d.Kind, d.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%s %q: duplicate property %q", d.Kind, d.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	if state == StatePresent {
		if d.CollectorGroup == "" {
			return fmt.Errorf("%s %q: collector group is required for present state", d.Kind, d.Name)
		}
		if d.Kind == KindDevice && len(d.GroupPath) == 0 {
			return fmt.Errorf("device %q: host group path is required", d.Name)
		}
	}
	if d.Kind == KindDeviceGroup && d.NetflowCollector != "" {
		return fmt.Errorf("devicegroup %q: netflow collector applies to devices only", d.Name)
	}
	return nil
}

// EffectiveDisplayName returns the display name, falling back to Name.
func (d *DesiredResource) EffectiveDisplayName() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// PropertyMap returns the desired properties keyed by name.
func (d *DesiredResource) PropertyMap() map[string]string {
	m := make(map[string]string, len(d.Properties))
	for _, p := range d.Properties {
		m[p.Name] = p.Value
	}
	return m
}

// ParseState parses a present/absent string, case-insensitively.
func ParseState(s string) (State, error) {
	switch strings.ToLower(s) {
	case string(StatePresent):
		return StatePresent, nil
	case string(StateAbsent):
		return StateAbsent, nil
	default:
		return "", fmt.Errorf("invalid state %q (want present or absent)", s)
	}
}

// ParseKind parses a resource kind, accepting the aliases used by the
// YAML front-end.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "device":
		return KindDevice, nil
	case "devicegroup", "device_group", "group":
		return KindDeviceGroup, nil
	default:
		return "", fmt.Errorf("invalid kind %q (want Device or DeviceGroup)", s)
	}
}

// SplitGroupPath splits a slash-joined group path into segments, dropping
// leading and trailing slashes. "infra/web" -> ["infra", "web"].
func SplitGroupPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
