/*
Package resolve translates human-readable names into portal ids.

The portal addresses everything by opaque numeric ids, but desired-state
declarations address everything by name: a slash-separated device group
path, a collector group name, a netflow collector description. This
package owns that translation.

# Path Resolution

ResolvePath walks a root-relative group path one segment at a time,
listing the children of the current node and matching the next segment
by exact, case-sensitive name. The walk is an explicit loop with an id
accumulator rather than recursion: stack depth stays constant and tests
can observe the partially resolved chain after a mid-walk failure.

With CreateMissing set, absent segments are created as the walk reaches
them: intermediate groups with minimal defaults, the final segment with
the caller's collector group. Without it, the first missing segment
aborts with ErrPathMissing; for absent-state convergence a missing
path simply means there is nothing to delete.

Creation races are absorbed: a Conflict on create means another caller
made the same group between list and create, so the group is re-fetched
and the walk continues. Combined with the fact that every run re-derives
the whole chain from the portal, the walk is idempotent by construction.

# Tie-Breaks

The portal does not guarantee name uniqueness within one parent when
external tooling has misbehaved. Wherever a lookup finds more than one
match, the lowest id wins and a warning is recorded, so the same resource
is chosen on every run, which is what keeps repeated convergence
deterministic. This tie-break is a documented engine policy, not an
observed portal behavior.

# Collector Lookups

CollectorGroupID lists all collector groups and matches the name
client-side (the endpoint has no name filter). NetflowCollectorID
matches individual collectors by their description field. Both return
NotFound-classified errors on absence, which present-state convergence
treats as fatal before any resource mutation happens.
*/
package resolve
