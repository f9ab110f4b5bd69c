package main

import (
	"github.com/spf13/cobra"

	"github.com/lmops/lmstate/pkg/types"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage a single device group",
}

var groupEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Ensure a device group exists and matches its declaration",
	Long: `Ensure a device group exists with the given attributes.

Parent groups named in --parent-group are created on demand with
minimal defaults.

Examples:
  lmstate group ensure --name web --parent-group infra \
    --collector-group prod-collectors --property team=platform`,
	RunE: func(cmd *cobra.Command, args []string) error {
		desired, err := groupFromFlags(cmd)
		if err != nil {
			return err
		}
		return runConverge(cmd, desired, types.StatePresent)
	},
}

var groupRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a device group and its entire subtree",
	RunE: func(cmd *cobra.Command, args []string) error {
		desired, err := groupFromFlags(cmd)
		if err != nil {
			return err
		}
		return runConverge(cmd, desired, types.StateAbsent)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{groupEnsureCmd, groupRemoveCmd} {
		cmd.Flags().String("name", "", "Group name (required)")
		cmd.Flags().String("parent-group", "", "Parent group path (empty for root)")
		_ = cmd.MarkFlagRequired("name")
	}
	groupEnsureCmd.Flags().String("description", "", "Group description")
	groupEnsureCmd.Flags().String("collector-group", "", "Collector group name (required)")
	groupEnsureCmd.Flags().Bool("alert-disabled", false, "Disable alerting for the group")
	groupEnsureCmd.Flags().StringArray("property", nil, "Custom property as name=value (repeatable)")
	_ = groupEnsureCmd.MarkFlagRequired("collector-group")

	groupCmd.AddCommand(groupEnsureCmd)
	groupCmd.AddCommand(groupRemoveCmd)
}

func groupFromFlags(cmd *cobra.Command) (*types.DesiredResource, error) {
	name, _ := cmd.Flags().GetString("name")
	parentGroup, _ := cmd.Flags().GetString("parent-group")
	description, _ := cmd.Flags().GetString("description")
	collectorGroup, _ := cmd.Flags().GetString("collector-group")
	alertDisabled, _ := cmd.Flags().GetBool("alert-disabled")
	propertyFlags, _ := cmd.Flags().GetStringArray("property")

	properties, err := parseProperties(propertyFlags)
	if err != nil {
		return nil, err
	}

	return &types.DesiredResource{
		Kind:           types.KindDeviceGroup,
		Name:           name,
		Description:    description,
		GroupPath:      types.SplitGroupPath(parentGroup),
		CollectorGroup: collectorGroup,
		AlertDisabled:  alertDisabled,
		Properties:     properties,
	}, nil
}
