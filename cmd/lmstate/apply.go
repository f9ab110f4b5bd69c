package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lmops/lmstate/pkg/converge"
	"github.com/lmops/lmstate/pkg/lmapi"
	"github.com/lmops/lmstate/pkg/types"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a desired-state file",
	Long: `Apply one or more resource declarations from a YAML file.

Each document declares a device or device group; documents are converged
independently, in file order. Pass "-" to read from stdin.

Examples:
  # Converge a fleet declaration
  lmstate apply -f fleet.yaml

  # Pipe a single resource
  cat device.yaml | lmstate apply -f -`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML file to apply (required)")
	_ = applyCmd.MarkFlagRequired("file")
}

// resourceDocument is one YAML document in an apply file.
type resourceDocument struct {
	Kind             string           `yaml:"kind"`
	State            string           `yaml:"state"`
	Name             string           `yaml:"name"`
	DisplayName      string           `yaml:"displayName"`
	Description      string           `yaml:"description"`
	HostGroupPath    string           `yaml:"hostGroupPath"`
	ParentGroupPath  string           `yaml:"parentGroupPath"`
	CollectorGroup   string           `yaml:"collectorGroup"`
	NetflowCollector string           `yaml:"netflowCollector"`
	AlertDisabled    bool             `yaml:"alertDisabled"`
	Properties       []types.Property `yaml:"properties"`
}

// desired converts the document into the engine's input. The state
// defaults to present when omitted.
func (doc *resourceDocument) desired() (*types.DesiredResource, types.State, error) {
	kind, err := types.ParseKind(doc.Kind)
	if err != nil {
		return nil, "", err
	}

	state := types.StatePresent
	if doc.State != "" {
		state, err = types.ParseState(doc.State)
		if err != nil {
			return nil, "", err
		}
	}

	path := doc.HostGroupPath
	if kind == types.KindDeviceGroup {
		if doc.HostGroupPath != "" {
			return nil, "", fmt.Errorf("devicegroup %q: use parentGroupPath, not hostGroupPath", doc.Name)
		}
		path = doc.ParentGroupPath
	} else if doc.ParentGroupPath != "" {
		return nil, "", fmt.Errorf("device %q: use hostGroupPath, not parentGroupPath", doc.Name)
	}

	return &types.DesiredResource{
		Kind:             kind,
		Name:             doc.Name,
		DisplayName:      doc.DisplayName,
		Description:      doc.Description,
		GroupPath:        types.SplitGroupPath(path),
		CollectorGroup:   doc.CollectorGroup,
		NetflowCollector: doc.NetflowCollector,
		AlertDisabled:    doc.AlertDisabled,
		Properties:       doc.Properties,
	}, state, nil
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	var reader io.Reader
	if filename == "-" {
		reader = os.Stdin
	} else {
		f, err := os.Open(filename)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	acct, err := loadAccount(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := converge.New(lmapi.New(acct))
	decoder := yaml.NewDecoder(reader)

	var applied, failed int
	for docIndex := 1; ; docIndex++ {
		var doc resourceDocument
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("document %d: failed to parse YAML: %w", docIndex, err)
		}

		desired, state, err := doc.desired()
		if err != nil {
			return fmt.Errorf("document %d: %w", docIndex, err)
		}

		result := controller.Converge(ctx, desired, state)
		printResult(desired, result)
		applied++
		if result.Failed() {
			failed++
		}
	}

	if applied == 0 {
		return fmt.Errorf("no resource documents found in %s", filename)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d resources failed to converge", failed, applied)
	}
	return nil
}
