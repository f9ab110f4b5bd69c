/*
Package diff computes the minimal change set between a desired
declaration and the matched remote resource.

Scalar attributes (display name, host group membership, description,
collector group id, netflow assignment, alert flag) compare by value;
a device's membership diffs against the single declared host group, so
extra memberships gained out of band surface as drift. Custom properties
compare as a set keyed by name, never positionally, so reordering a
property list produces no diff. Property semantics are full-replace:
the declared set is authoritative, and a property that exists remotely
but is absent from the declaration is removed rather than merged.

Property values compare as exact strings: case-sensitive, with
no numeric coercion. The portal stores every value as a string, and
comparing anything else reintroduces the false diffs that type coercion
causes.

An empty ChangeSet is the no-op signal: the controller issues no write
at all and reports changed=false. A nil matched resource produces a
full-create ChangeSet instead of a field list, since there is nothing
to compare against.
*/
package diff
