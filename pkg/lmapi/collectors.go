package lmapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// CollectorGroup is a portal collector group (auto-balanced collectors).
type CollectorGroup struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Collector is an individual collector, addressed by its description
// field in lookups (the portal has no name field for collectors).
type Collector struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// ListCollectorGroups returns every collector group in the account. The
// endpoint has no name filter, so matching happens client-side.
func (c *Client) ListCollectorGroups(ctx context.Context) ([]CollectorGroup, error) {
	query := url.Values{}
	query.Set("size", "1000")
	data, err := c.Do(ctx, "GET", "/setting/collector/groups", query, nil)
	if err != nil {
		return nil, err
	}
	var list listResult[CollectorGroup]
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode collector group list: %w", err)
	}
	return list.Items, nil
}

// FindCollectorsByDescription returns collectors whose description
// exactly matches. Used for netflow collector assignment.
func (c *Client) FindCollectorsByDescription(ctx context.Context, desc string) ([]Collector, error) {
	query := url.Values{}
	query.Set("filter", "description:"+desc)
	query.Set("size", "1000")
	data, err := c.Do(ctx, "GET", "/setting/collectors", query, nil)
	if err != nil {
		return nil, err
	}
	var list listResult[Collector]
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode collector list: %w", err)
	}
	return list.Items, nil
}
