package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/DevExpGBB/aml-lab-setup/internal/azure"
	"github.com/DevExpGBB/aml-lab-setup/internal/output"
	"github.com/DevExpGBB/aml-lab-setup/internal/prompt"
	"github.com/DevExpGBB/aml-lab-setup/internal/provision"
	"github.com/DevExpGBB/aml-lab-setup/internal/setting"
)

var (
	setupLocation        string
	setupSubscription    string
	setupSuffix          string
	setupVMSize          string
	setupClusterMinNodes int32
	setupClusterMaxNodes int32
	setupClusterRetries  uint64
	setupClusterBackoff  time.Duration
	setupDataName        string
	setupDataPath        string
	setupSkipData        bool
	setupStrict          bool
)

func newSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Provision the workspace, computes, and data asset",
		Long: `Provisions an Azure Machine Learning lab environment:
  1. Registers the Microsoft.MachineLearningServices resource provider
  2. Creates a resource group and workspace (aml_rg_<suffix>, aml_ws_<suffix>)
  3. Creates a compute instance (ci-<suffix>)
  4. Creates a compute cluster (aml-cluster)
  5. Registers a data asset with the az CLI

Failures in steps 3-5 are reported but do not stop the run. Use --strict to
exit non-zero when any of them failed.

Example:
  aml-lab-setup setup
  aml-lab-setup setup --location westeurope --suffix lab01`,
		RunE: runSetup,
	}

	cmd.Flags().StringVar(&setupLocation, "location", "", "Azure region (prompted if omitted)")
	cmd.Flags().StringVar(&setupSubscription, "subscription", "", "Subscription ID (defaults to the first available)")
	cmd.Flags().StringVar(&setupSuffix, "suffix", "", "Resource name suffix (random if omitted)")
	cmd.Flags().StringVar(&setupVMSize, "vm-size", azure.DefaultVMSize, "VM size for the compute instance and cluster nodes")
	cmd.Flags().Int32Var(&setupClusterMinNodes, "cluster-min-nodes", 0, "Minimum compute cluster nodes")
	cmd.Flags().Int32Var(&setupClusterMaxNodes, "cluster-max-nodes", 2, "Maximum compute cluster nodes")
	cmd.Flags().Uint64Var(&setupClusterRetries, "cluster-retries", 1, "Retries for a failed compute cluster creation")
	cmd.Flags().DurationVar(&setupClusterBackoff, "cluster-backoff", 15*time.Second, "Initial delay between compute cluster attempts")
	cmd.Flags().StringVar(&setupDataName, "data-name", "diabetes-data", "Data asset name")
	cmd.Flags().StringVar(&setupDataPath, "data-path", "./data/diabetes.csv", "Local file registered as the data asset")
	cmd.Flags().BoolVar(&setupSkipData, "skip-data-asset", false, "Do not register the data asset")
	cmd.Flags().BoolVar(&setupStrict, "strict", false, "Exit non-zero if any best-effort step failed")

	return cmd
}

func init() {
	setupCmd := newSetupCmd()
	setupCmd.GroupID = "provision"
	rootCmd.AddCommand(setupCmd)
}

func validateSetupFlags() error {
	if setupClusterMaxNodes < 1 {
		return fmt.Errorf("--cluster-max-nodes must be at least 1")
	}
	if setupClusterMinNodes < 0 || setupClusterMinNodes > setupClusterMaxNodes {
		return fmt.Errorf("--cluster-min-nodes must be between 0 and --cluster-max-nodes")
	}
	if setupClusterBackoff <= 0 {
		return fmt.Errorf("--cluster-backoff must be positive")
	}
	if setupSuffix != "" && !azure.ValidSuffix(setupSuffix) {
		return fmt.Errorf("--suffix must be 1-12 lowercase letters or digits")
	}
	return nil
}

func runSetup(cmd *cobra.Command, args []string) error {
	if err := validateSetupFlags(); err != nil {
		return err
	}

	fmt.Println("\n========================================")
	fmt.Println("  Azure Machine Learning Lab Setup")
	fmt.Println("========================================")

	ctx := cmd.Context()
	clients, sub, err := connect(ctx, setupSubscription)
	if err != nil {
		return err
	}

	runner := &provision.Runner{
		Cloud:       clients.WithProgress(cmd.OutOrStdout()),
		CLI:         azure.NewCLI(),
		Out:         cmd.OutOrStdout(),
		AskLocation: askLocation,
	}

	result, err := runner.Run(ctx, provision.Options{
		SubscriptionID:  sub.ID,
		Location:        setting.Location(setupLocation, cfgEnvFile).Value,
		Suffix:          setting.Suffix(setupSuffix, cfgEnvFile).Value,
		VMSize:          setupVMSize,
		ClusterMinNodes: setupClusterMinNodes,
		ClusterMaxNodes: setupClusterMaxNodes,
		ClusterRetries:  setupClusterRetries,
		ClusterBackoff:  setupClusterBackoff,
		DataAssetName:   setupDataName,
		DataAssetPath:   setupDataPath,
		SkipDataAsset:   setupSkipData,
	})
	if err != nil {
		return err
	}

	printSummary(cmd, result)

	if failures := result.Err(); failures != nil && setupStrict {
		return fmt.Errorf("setup finished with failures: %w", failures)
	}
	return nil
}

func askLocation() (string, error) {
	label := "Choose from the following list of regions: " + strings.Join(provision.Regions, ", ")
	var location string
	if prompt.IsInteractive() {
		location = prompt.SelectWithOther("Choose a region", provision.Regions, true)
	} else {
		location = prompt.ReadLine(label)
	}
	if location == "" {
		return "", fmt.Errorf("--location is required")
	}
	return location, nil
}

func printSummary(cmd *cobra.Command, result *provision.Result) {
	w := cmd.OutOrStdout()
	names := result.Names

	fmt.Fprintln(w, "\n========================================")
	if len(result.Failures) == 0 {
		fmt.Fprintln(w, output.WithSuccessFormat("  ✅ Setup Complete!"))
	} else {
		fmt.Fprintln(w, output.WithWarningFormat("  ⚠️  Setup Completed With Failures"))
	}
	fmt.Fprintln(w, "========================================")

	fmt.Fprintf(w, "\nResources:\n")
	fmt.Fprintf(w, "  Region:           %s\n", result.Location)
	fmt.Fprintf(w, "  Resource Group:   %s\n", names.ResourceGroup)
	fmt.Fprintf(w, "  Workspace:        %s\n", names.Workspace)
	fmt.Fprintf(w, "  Compute Instance: %s%s\n", names.ComputeInstance, failedMark(result, provision.StepComputeInstance))
	fmt.Fprintf(w, "  Compute Cluster:  %s%s\n", names.ComputeCluster, failedMark(result, provision.StepComputeCluster))

	if len(result.Failures) > 0 {
		fmt.Fprintf(w, "\nFailed steps:\n")
		for _, f := range result.Failures {
			fmt.Fprintf(w, "  %s: %v\n", f.Step, f.Err)
		}
	}

	fmt.Fprintf(w, "\nCheck status: aml-lab-setup status --suffix %s\n", names.Suffix)
	fmt.Fprintf(w, "To cleanup:   aml-lab-setup cleanup --suffix %s\n", names.Suffix)
}

func failedMark(result *provision.Result, step string) string {
	if result.Failed(step) {
		return output.WithErrorFormat(" (failed)")
	}
	return ""
}
