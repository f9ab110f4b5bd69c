/*
Package types defines the core data structures used throughout lmstate.

This package contains the fundamental types for the convergence engine:
the desired-state declaration, the normalized view of remote portal
resources, and the result record returned by every convergence call.
Every other package consumes these types; none of them import anything
above this package.

# Architecture

The types package is the foundation of lmstate's data model. It defines:

  - DesiredResource: the caller-declared target for one device or group
  - RemoteResource: the normalized current state fetched from the portal
  - ConvergenceResult: the terminal output of one convergence run
  - Kind/State enums with parsing helpers

All types are designed to be:
  - Plain data (no behavior beyond validation and accessors)
  - Serializable where the front-end needs it (YAML tags on Property)
  - Validated before any remote call is made

# Desired vs Remote

DesiredResource is addressed entirely by human-readable names: a resource
name, a slash-separated group path, a collector group name. RemoteResource
is addressed by the portal's opaque numeric identifiers. The resolver and
matcher packages translate between the two; the diff engine compares only
like-for-like normalized values.

# Validation

Validate enforces the locally checkable invariants from the desired-state
contract:

  - name is required (it is the identity key)
  - property names are unique within the set
  - group path segments are non-empty
  - present state requires a collector group
  - devices require a host group path for present state

Validation failures are definitive and abort the run before the engine
issues a single API request.

# Usage

	desired := &types.DesiredResource{
		Kind:           types.KindDevice,
		Name:           "web-01.example.com",
		GroupPath:      types.SplitGroupPath("infra/web"),
		CollectorGroup: "prod-collectors",
		Properties: []types.Property{
			{Name: "snmp.community", Value: "public"},
		},
	}
	if err := desired.Validate(types.StatePresent); err != nil {
		// reject before touching the portal
	}

# Integration Points

This package is imported by:

  - pkg/lmapi: converts remote DTOs into RemoteResource
  - pkg/resolve, pkg/match: operate on names and scope identifiers
  - pkg/diff: compares DesiredResource against RemoteResource
  - pkg/converge: produces ConvergenceResult
  - cmd/lmstate: decodes YAML documents into DesiredResource
*/
package types
