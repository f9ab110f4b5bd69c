package lmapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/lmops/lmstate/pkg/types"
)

// NameValue is the wire form of a custom property.
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Device is the portal's device object, limited to the fields the engine
// reads. HostGroupIds is a comma-separated id list on the wire.
type Device struct {
	ID                           int         `json:"id"`
	Name                         string      `json:"name"`
	DisplayName                  string      `json:"displayName"`
	Description                  string      `json:"description"`
	HostGroupIds                 string      `json:"hostGroupIds"`
	DisableAlerting              bool        `json:"disableAlerting"`
	PreferredCollectorGroupID    int         `json:"preferredCollectorGroupId"`
	AutoBalancedCollectorGroupID int         `json:"autoBalancedCollectorGroupId"`
	EnableNetflow                bool        `json:"enableNetflow"`
	NetflowCollectorID           int         `json:"netflowCollectorId"`
	CustomProperties             []NameValue `json:"customProperties"`
}

// DeviceInput is the request body for device create and update calls.
type DeviceInput struct {
	Name                         string      `json:"name"`
	DisplayName                  string      `json:"displayName"`
	HostGroupIds                 string      `json:"hostGroupIds"`
	DisableAlerting              bool        `json:"disableAlerting"`
	Description                  string      `json:"description"`
	CustomProperties             []NameValue `json:"customProperties"`
	PreferredCollectorID         int         `json:"preferredCollectorId"`
	AutoBalancedCollectorGroupID int         `json:"autoBalancedCollectorGroupId"`
	EnableNetflow                bool        `json:"enableNetflow"`
	NetflowCollectorID           int         `json:"netflowCollectorId"`
}

// GroupIDs returns the device's host group membership as sorted ids.
func (d *Device) GroupIDs() []int {
	if d.HostGroupIds == "" {
		return nil
	}
	parts := strings.Split(d.HostGroupIds, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		if id, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// InGroup reports whether the device is a member of the given host
// group.
func (d *Device) InGroup(groupID int) bool {
	for _, id := range d.GroupIDs() {
		if id == groupID {
			return true
		}
	}
	return false
}

// Remote converts the portal object into the engine's normalized view.
func (d *Device) Remote(scopeID int) types.RemoteResource {
	props := make(map[string]string, len(d.CustomProperties))
	for _, p := range d.CustomProperties {
		props[p.Name] = p.Value
	}
	return types.RemoteResource{
		ID:               d.ID,
		Name:             d.Name,
		DisplayName:      d.DisplayName,
		Description:      d.Description,
		ParentScopeID:    scopeID,
		GroupIDs:         d.GroupIDs(),
		CollectorGroupID: d.PreferredCollectorGroupID,
		NetflowCollector: d.NetflowCollectorID,
		NetflowEnabled:   d.EnableNetflow,
		AlertDisabled:    d.DisableAlerting,
		Properties:       props,
	}
}

// FindDevicesByName returns all devices whose name exactly matches.
func (c *Client) FindDevicesByName(ctx context.Context, name string) ([]Device, error) {
	query := url.Values{}
	query.Set("filter", "name:"+name)
	query.Set("size", "1000")
	data, err := c.Do(ctx, "GET", "/device/devices", query, nil)
	if err != nil {
		return nil, err
	}
	var list listResult[Device]
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode device list: %w", err)
	}
	return list.Items, nil
}

// CreateDevice creates a device and returns the portal's object.
func (c *Client) CreateDevice(ctx context.Context, input DeviceInput) (*Device, error) {
	data, err := c.Do(ctx, "POST", "/device/devices", nil, input)
	if err != nil {
		return nil, err
	}
	var dev Device
	if err := json.Unmarshal(data, &dev); err != nil {
		return nil, fmt.Errorf("decode created device: %w", err)
	}
	return &dev, nil
}

// UpdateDevice replaces the device's attributes.
func (c *Client) UpdateDevice(ctx context.Context, id int, input DeviceInput) (*Device, error) {
	data, err := c.Do(ctx, "PUT", fmt.Sprintf("/device/devices/%d", id), nil, input)
	if err != nil {
		return nil, err
	}
	var dev Device
	if err := json.Unmarshal(data, &dev); err != nil {
		return nil, fmt.Errorf("decode updated device: %w", err)
	}
	return &dev, nil
}

// DeleteDevice removes the device.
func (c *Client) DeleteDevice(ctx context.Context, id int) error {
	_, err := c.Do(ctx, "DELETE", fmt.Sprintf("/device/devices/%d", id), nil, nil)
	return err
}
