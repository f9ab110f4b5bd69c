package lmapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviceGroupIDs(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []int
	}{
		{"single", "4", []int{4}},
		{"multiple sorted", "9,4,12", []int{4, 9, 12}},
		{"spaces tolerated", "4, 5", []int{4, 5}},
		{"empty", "", nil},
		{"garbage skipped", "4,x,5", []int{4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Device{HostGroupIds: tt.raw}
			assert.Equal(t, tt.expected, d.GroupIDs())
		})
	}
}

func TestDeviceInGroup(t *testing.T) {
	d := &Device{HostGroupIds: "4,17"}
	assert.True(t, d.InGroup(4))
	assert.True(t, d.InGroup(17))
	assert.False(t, d.InGroup(5))
}

func TestDeviceRemoteCarriesMembership(t *testing.T) {
	d := &Device{ID: 42, Name: "web-01", HostGroupIds: "5,4"}
	remote := d.Remote(4)
	assert.Equal(t, 4, remote.ParentScopeID)
	assert.Equal(t, []int{4, 5}, remote.GroupIDs)
}
