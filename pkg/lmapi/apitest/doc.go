/*
Package apitest provides an in-memory fake LogicMonitor portal for
tests.

The fake implements the endpoint surface pkg/lmapi uses (device groups,
devices, collector groups, collectors), enforces the same identity
rules the real portal does (duplicate names rejected with errorCode
1409, cascading group deletes behind deleteChildren=true) and verifies
the LMv1 signature of every request against the test credentials.

Tests seed state with the Add* helpers, point a real lmapi.Client at
the fake with Account(), and assert on stored state or on the mutation
log:

	srv := apitest.NewServer()
	defer srv.Close()
	srv.AddCollectorGroup("prod-collectors")

	client := lmapi.New(srv.Account())
	// ... exercise the engine ...

	assert.Empty(t, srv.Mutations()) // no side effects

FailNext injects transport-level failures for retry tests; V2Envelope
switches list responses to the legacy {"status","data"} wrapper to
exercise the client's envelope decoder.
*/
package apitest
