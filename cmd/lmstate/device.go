package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lmops/lmstate/pkg/types"
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Manage a single device",
}

var deviceEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Ensure a device exists and matches its declaration",
	Long: `Ensure a device exists with the given attributes.

Examples:
  lmstate device ensure --name web-01.example.com \
    --host-group infra/web --collector-group prod-collectors \
    --property snmp.community=public`,
	RunE: func(cmd *cobra.Command, args []string) error {
		desired, err := deviceFromFlags(cmd)
		if err != nil {
			return err
		}
		return runConverge(cmd, desired, types.StatePresent)
	},
}

var deviceRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a device",
	RunE: func(cmd *cobra.Command, args []string) error {
		desired, err := deviceFromFlags(cmd)
		if err != nil {
			return err
		}
		return runConverge(cmd, desired, types.StateAbsent)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{deviceEnsureCmd, deviceRemoveCmd} {
		cmd.Flags().String("name", "", "Device name (required)")
		cmd.Flags().String("host-group", "", "Host group path, e.g. infra/web (required)")
		_ = cmd.MarkFlagRequired("name")
		_ = cmd.MarkFlagRequired("host-group")
	}
	deviceEnsureCmd.Flags().String("display-name", "", "Display name (defaults to name)")
	deviceEnsureCmd.Flags().String("description", "", "Device description")
	deviceEnsureCmd.Flags().String("collector-group", "", "Collector group name (required)")
	deviceEnsureCmd.Flags().String("netflow-collector", "", "Netflow collector description (optional)")
	deviceEnsureCmd.Flags().Bool("alert-disabled", false, "Disable alerting for the device")
	deviceEnsureCmd.Flags().StringArray("property", nil, "Custom property as name=value (repeatable)")
	_ = deviceEnsureCmd.MarkFlagRequired("collector-group")

	deviceCmd.AddCommand(deviceEnsureCmd)
	deviceCmd.AddCommand(deviceRemoveCmd)
}

func deviceFromFlags(cmd *cobra.Command) (*types.DesiredResource, error) {
	name, _ := cmd.Flags().GetString("name")
	hostGroup, _ := cmd.Flags().GetString("host-group")
	displayName, _ := cmd.Flags().GetString("display-name")
	description, _ := cmd.Flags().GetString("description")
	collectorGroup, _ := cmd.Flags().GetString("collector-group")
	netflowCollector, _ := cmd.Flags().GetString("netflow-collector")
	alertDisabled, _ := cmd.Flags().GetBool("alert-disabled")
	propertyFlags, _ := cmd.Flags().GetStringArray("property")

	properties, err := parseProperties(propertyFlags)
	if err != nil {
		return nil, err
	}

	return &types.DesiredResource{
		Kind:             types.KindDevice,
		Name:             name,
		DisplayName:      displayName,
		Description:      description,
		GroupPath:        types.SplitGroupPath(hostGroup),
		CollectorGroup:   collectorGroup,
		NetflowCollector: netflowCollector,
		AlertDisabled:    alertDisabled,
		Properties:       properties,
	}, nil
}

func parseProperties(flags []string) ([]types.Property, error) {
	properties := make([]types.Property, 0, len(flags))
	for _, raw := range flags {
		name, value, ok := strings.Cut(raw, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid property %q (want name=value)", raw)
		}
		properties = append(properties, types.Property{Name: name, Value: value})
	}
	return properties, nil
}
