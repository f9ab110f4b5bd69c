/*
Package converge orchestrates one resource's convergence toward its
declared state.

The controller is the only component that mutates device or group
resources. Each Converge call runs a single pass of a linear state
machine:

	resolve foreign keys ─▶ resolve scope path ─▶ match identity
	        ─▶ diff ─▶ apply (create | update | delete | nothing)

and every failure short-circuits to a terminal failed result carrying
the classified error. There is no retry loop at this level. Transient
failures are retried inside the API client; everything that reaches the
controller is definitive.

# Ordering Guarantees

Foreign-key lookups (collector group, netflow collector) run before any
group creation, so an invalid collector name fails with zero side
effects. Scope resolution runs before matching, so identity is always
evaluated against the scope the declaration names, never a stale one.
At most one create-or-update-or-delete call is issued per invocation;
a run that finds nothing to change issues no write at all, which is
what makes repeated applies report changed=false.

# Present vs Absent

present: a missing resource is created with the full declared body; an
existing one is updated only when the diff is non-empty, with a full
attribute replacement (the portal has no field-level patch for the
attributes the engine manages).

absent: a missing scope path or a missing resource both mean already
converged, reported as changed=false with no error. A matched group is
deleted with its entire subtree in one cascading call.

# Partial State

The engine is idempotent by construction, not by transaction. A run
killed after creating intermediate path groups but before the final
apply leaves those groups behind; the next run re-derives everything
from the portal and continues from wherever reality actually is.

# Results

Every run gets a fresh UUID, returned in the ConvergenceResult and
stamped on every log line. changed=true is reported only after the
portal confirmed the corresponding write. Ambiguity tie-breaks from the
resolver and matcher surface as warnings on the result, never as
failures.
*/
package converge
