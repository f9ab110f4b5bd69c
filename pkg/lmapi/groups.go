package lmapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/lmops/lmstate/pkg/types"
)

// RootGroupID is the portal's root device group. Every group chain is
// anchored there; it cannot be created or deleted.
const RootGroupID = 1

// DeviceGroup is the portal's device group object.
type DeviceGroup struct {
	ID                                  int         `json:"id"`
	Name                                string      `json:"name"`
	Description                         string      `json:"description"`
	ParentID                            int         `json:"parentId"`
	FullPath                            string      `json:"fullPath"`
	DisableAlerting                     bool        `json:"disableAlerting"`
	DefaultCollectorGroupID             int         `json:"defaultCollectorGroupId"`
	DefaultAutoBalancedCollectorGroupID int         `json:"defaultAutoBalancedCollectorGroupId"`
	CustomProperties                    []NameValue `json:"customProperties"`
}

// GroupInput is the request body for group create and update calls.
type GroupInput struct {
	Name                                string      `json:"name"`
	ParentID                            int         `json:"parentId"`
	DisableAlerting                     bool        `json:"disableAlerting"`
	Description                         string      `json:"description"`
	CustomProperties                    []NameValue `json:"customProperties"`
	DefaultCollectorGroupID             int         `json:"defaultCollectorGroupId"`
	DefaultCollectorID                  int         `json:"defaultCollectorId"`
	DefaultAutoBalancedCollectorGroupID int         `json:"defaultAutoBalancedCollectorGroupId"`
}

// Remote converts the portal object into the engine's normalized view.
func (g *DeviceGroup) Remote() types.RemoteResource {
	props := make(map[string]string, len(g.CustomProperties))
	for _, p := range g.CustomProperties {
		props[p.Name] = p.Value
	}
	return types.RemoteResource{
		ID:               g.ID,
		Name:             g.Name,
		DisplayName:      g.Name,
		Description:      g.Description,
		ParentScopeID:    g.ParentID,
		CollectorGroupID: g.DefaultCollectorGroupID,
		AlertDisabled:    g.DisableAlerting,
		Properties:       props,
	}
}

// FindGroups returns all groups under the given parent with the exact
// name. Matching is case-sensitive; the portal filter grammar is
// "parentId:<id>,name:<name>".
func (c *Client) FindGroups(ctx context.Context, parentID int, name string) ([]DeviceGroup, error) {
	query := url.Values{}
	query.Set("filter", fmt.Sprintf("parentId:%d,name:%s", parentID, name))
	query.Set("size", "1000")
	return c.listGroups(ctx, query)
}

// ListChildGroups returns all direct children of the given parent.
func (c *Client) ListChildGroups(ctx context.Context, parentID int) ([]DeviceGroup, error) {
	query := url.Values{}
	query.Set("filter", fmt.Sprintf("parentId:%d", parentID))
	query.Set("size", "1000")
	return c.listGroups(ctx, query)
}

func (c *Client) listGroups(ctx context.Context, query url.Values) ([]DeviceGroup, error) {
	data, err := c.Do(ctx, "GET", "/device/groups", query, nil)
	if err != nil {
		return nil, err
	}
	var list listResult[DeviceGroup]
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode group list: %w", err)
	}
	return list.Items, nil
}

// CreateGroup creates a device group and returns the portal's object.
func (c *Client) CreateGroup(ctx context.Context, input GroupInput) (*DeviceGroup, error) {
	data, err := c.Do(ctx, "POST", "/device/groups", nil, input)
	if err != nil {
		return nil, err
	}
	var group DeviceGroup
	if err := json.Unmarshal(data, &group); err != nil {
		return nil, fmt.Errorf("decode created group: %w", err)
	}
	return &group, nil
}

// UpdateGroup replaces the group's attributes.
func (c *Client) UpdateGroup(ctx context.Context, id int, input GroupInput) (*DeviceGroup, error) {
	data, err := c.Do(ctx, "PUT", fmt.Sprintf("/device/groups/%d", id), nil, input)
	if err != nil {
		return nil, err
	}
	var group DeviceGroup
	if err := json.Unmarshal(data, &group); err != nil {
		return nil, fmt.Errorf("decode updated group: %w", err)
	}
	return &group, nil
}

// DeleteGroup removes the group. With cascade set the portal deletes the
// entire subtree in the same call.
func (c *Client) DeleteGroup(ctx context.Context, id int, cascade bool) error {
	var query url.Values
	if cascade {
		query = url.Values{}
		query.Set("deleteChildren", "true")
	}
	_, err := c.Do(ctx, "DELETE", fmt.Sprintf("/device/groups/%d", id), query, nil)
	return err
}
