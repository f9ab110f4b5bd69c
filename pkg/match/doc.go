/*
Package match locates the existing portal resource carrying a declared
identity.

Identity is a resource's name within its parent scope: a device group's
name under its parent group, a device's name within its host group. The
matcher returns at most one resource. When external state violates the
uniqueness invariant (two same-named resources in one scope), the lowest
id wins deterministically and the ambiguity is surfaced as a warning
rather than a failure, because convergence must act on the same resource every
run, or repeated applies would flap between duplicates.

A nil result with a nil error means genuine absence, which the
controller turns into a create (present) or a no-op (absent). Matching
always happens against freshly fetched state; there is no caching of
any kind between or within runs.
*/
package match
