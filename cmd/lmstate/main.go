package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lmops/lmstate/pkg/config"
	"github.com/lmops/lmstate/pkg/converge"
	"github.com/lmops/lmstate/pkg/lmapi"
	"github.com/lmops/lmstate/pkg/log"
	"github.com/lmops/lmstate/pkg/metrics"
	"github.com/lmops/lmstate/pkg/types"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lmstate",
	Short: "lmstate - declarative convergence for LogicMonitor devices and device groups",
	Long: `lmstate makes a LogicMonitor account match a declared desired state.

Declare devices and device groups by name and group path, and lmstate
resolves, diffs and applies the minimal set of API calls to converge the
portal: create what is missing, update what drifted, remove what should
be absent, and touch nothing that already matches.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"lmstate version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to account config file (YAML)")
	pf.String("company", "", "LogicMonitor company name")
	pf.String("access-id", "", "API access id")
	pf.String("access-key", "", "API access key")
	pf.String("base-url", "", "Portal REST base URL (overrides company)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.Bool("log-json", false, "Emit JSON logs instead of console output")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address during the run")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(deviceCmd)
	rootCmd.AddCommand(groupCmd)
}

// setup initializes logging and the optional metrics listener before
// any command runs.
func setup(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	jsonOut, _ := cmd.Flags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOut})

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Logger.Warn().Err(err).Str("addr", addr).Msg("Metrics listener stopped")
			}
		}()
	}
	return nil
}

// loadAccount builds the account from config file, environment and flag
// overrides, in that precedence order.
func loadAccount(cmd *cobra.Command) (*config.Account, error) {
	path, _ := cmd.Flags().GetString("config")
	acct, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("company"); v != "" {
		acct.Company = v
	}
	if v, _ := cmd.Flags().GetString("access-id"); v != "" {
		acct.AccessID = v
	}
	if v, _ := cmd.Flags().GetString("access-key"); v != "" {
		acct.AccessKey = v
	}
	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		acct.BaseURL = v
	}

	if err := acct.Validate(); err != nil {
		return nil, err
	}
	return acct, nil
}

// runConverge executes a single convergence and reports the result on
// stdout. Used by the imperative device/group commands.
func runConverge(cmd *cobra.Command, desired *types.DesiredResource, state types.State) error {
	acct, err := loadAccount(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := converge.New(lmapi.New(acct))
	result := controller.Converge(ctx, desired, state)
	printResult(desired, result)
	return result.Err
}

func printResult(desired *types.DesiredResource, result types.ConvergenceResult) {
	for _, warn := range result.Warnings {
		fmt.Printf("warning: %s\n", warn)
	}
	switch {
	case result.Failed():
		fmt.Printf("failed   %s %s: %v\n", desired.Kind, desired.Name, result.Err)
	case result.Changed:
		fmt.Printf("changed  %s %s (id %d)\n", desired.Kind, desired.Name, result.ResourceID)
	case result.ResourceID != 0:
		fmt.Printf("ok       %s %s (id %d)\n", desired.Kind, desired.Name, result.ResourceID)
	default:
		fmt.Printf("ok       %s %s\n", desired.Kind, desired.Name)
	}
}
