/*
Package lmapi provides the authenticated HTTP transport to the
LogicMonitor REST API.

The package wraps the portal's santaba/rest endpoint surface with a thin,
typed client. It owns three concerns and nothing else: request signing,
failure classification, and retry of transient failures. All convergence
logic lives above it.

# Architecture

	┌──────────────── pkg/converge, pkg/resolve, pkg/match ───────────────┐
	│                                                                      │
	│  typed calls: FindGroups, CreateDevice, ListCollectorGroups, ...     │
	│                                                                      │
	└──────────────────────────────┬──────────────────────────────────────┘
	                               │
	┌──────────────────────────────▼──── pkg/lmapi ───────────────────────┐
	│                                                                      │
	│  ┌──────────────────────────────────────────────┐                   │
	│  │  Typed endpoints (devices.go, groups.go,      │                   │
	│  │  collectors.go): DTOs, filters, normalization │                   │
	│  └──────────────────┬───────────────────────────┘                   │
	│  ┌──────────────────▼───────────────────────────┐                   │
	│  │  Do(): LMv1 signing, X-Version 3, envelope    │                   │
	│  │  unwrapping, error classification, bounded    │                   │
	│  │  exponential backoff                          │                   │
	│  └──────────────────┬───────────────────────────┘                   │
	└─────────────────────┼───────────────────────────────────────────────┘
	                      │ HTTPS
	                      ▼
	      https://<company>.logicmonitor.com/santaba/rest

# Authentication

Every request carries an LMv1 Authorization header:

	LMv1 <accessID>:<signature>:<epochMillis>

where the signature is the base64 encoding of the hex HMAC-SHA256 digest
of verb + epochMillis + requestBody + resourcePath, keyed by the access
key. The signed resource path excludes the query string. A fresh
timestamp and signature are computed for every attempt, including
retries, so a long backoff cannot push the timestamp outside the
portal's acceptance window.

# Error Classification

Failures surface as *Error with a Kind:

	network     transport failure or HTTP 5xx; transient, retried
	rate_limit  HTTP 429; transient, retried
	auth        HTTP 401/403; fatal, never retried
	not_found   HTTP 404 or errorCode 1404
	conflict    HTTP 409 or errorCode 1400/1409 (duplicate name)
	validation  HTTP 400/422, or a request rejected before sending
	unknown     anything else

Conflict and validation rejections are definitive: re-issuing the same
request cannot change the outcome, so they are returned on the first
attempt. KindOf, IsNotFound, IsConflict and IsAuth inspect wrapped
errors with errors.As.

# Retry

Do retries transient failures up to the configured attempt budget
(default 3 total attempts) with doubling backoff from the configured
base (default 500ms). The backoff sleep honors context cancellation; a
cancelled context returns the last classified error.

# Response Envelopes

Current portal responses are bare v3 objects, but some endpoints still
answer with the legacy v2 envelope {"status": N, "data": {...}} under an
HTTP 200. The decoder unwraps the envelope when present and treats an
embedded non-200 status as the request's real outcome. List responses
decode as {"total": N, "items": [...]}.

# Typed Endpoints

	FindDevicesByName   GET  /device/devices?filter=name:<n>
	CreateDevice        POST /device/devices
	UpdateDevice        PUT  /device/devices/<id>
	DeleteDevice        DELETE /device/devices/<id>
	FindGroups          GET  /device/groups?filter=parentId:<p>,name:<n>
	ListChildGroups     GET  /device/groups?filter=parentId:<p>
	CreateGroup         POST /device/groups
	UpdateGroup         PUT  /device/groups/<id>
	DeleteGroup         DELETE /device/groups/<id>[?deleteChildren=true]
	ListCollectorGroups GET  /setting/collector/groups
	FindCollectorsByDescription GET /setting/collectors?filter=description:<d>

List calls request size=1000; the portal's default page size of 50 is
too small for realistic accounts and the engine's lookups are all
exact-match, so a single page is sufficient in practice.

# Usage

	client := lmapi.New(account)
	groups, err := client.FindGroups(ctx, lmapi.RootGroupID, "infra")
	if err != nil {
		if lmapi.IsNotFound(err) {
			// genuine absence
		}
	}

# Testing

Package apitest provides an in-memory fake portal that implements this
endpoint surface, verifies LMv1 signatures and supports failure
injection. All packages above lmapi test against it instead of mocking
the Client.
*/
package lmapi
