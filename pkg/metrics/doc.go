/*
Package metrics provides Prometheus metrics for lmstate.

All collectors are package-level variables registered at init time with
the default registry, following the standard client_golang pattern. The
API client and the convergence controller increment them directly; no
component takes a metrics handle as a dependency.

# Metrics

API client:

  - lmstate_api_requests_total{method,status}: every portal request,
    labelled by HTTP method and final status code ("error" for requests
    that never produced a response)
  - lmstate_api_retries_total: requests re-issued after a transient
    failure
  - lmstate_api_request_duration_seconds{method}: request latency

Convergence engine:

  - lmstate_convergences_total{kind,outcome}: one increment per
    convergence run; outcome is changed, unchanged or failed
  - lmstate_convergence_duration_seconds{kind}: end-to-end run latency
  - lmstate_groups_created_total: intermediate groups created by the
    path resolver

# Exposure

The CLI serves the default registry when started with --metrics-addr:

	lmstate apply -f fleet.yaml --metrics-addr :9464

Handler returns the promhttp handler for that endpoint. Short runs that
never pass the flag still record metrics; they are simply not scraped.

# Timer Helper

Timer wraps the measure-then-observe pattern:

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.ConvergenceDuration, string(kind))
*/
package metrics
