package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DevExpGBB/aml-lab-setup/internal/prompt"
	"github.com/DevExpGBB/aml-lab-setup/internal/provision"
)

var (
	cleanupForce         bool
	cleanupWait          bool
	cleanupSuffix        string
	cleanupResourceGroup string
	cleanupSubscription  string
)

func newCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete the lab resource group",
		Long: `Deletes the resource group created by setup, and everything in it.

Example:
  aml-lab-setup cleanup --suffix abc123
  aml-lab-setup cleanup --resource-group aml_rg_abc123 --force --wait`,
		RunE: runCleanup,
	}

	cmd.Flags().BoolVar(&cleanupForce, "force", false, "Skip confirmation prompt")
	cmd.Flags().BoolVar(&cleanupWait, "wait", false, "Wait for the deletion to finish")
	cmd.Flags().StringVar(&cleanupSuffix, "suffix", "", "Suffix used by setup (derives the resource group)")
	cmd.Flags().StringVar(&cleanupResourceGroup, "resource-group", "", "Resource group name")
	cmd.Flags().StringVar(&cleanupSubscription, "subscription", "", "Subscription ID (defaults to the first available)")

	return cmd
}

func init() {
	cleanupCmd := newCleanupCmd()
	cleanupCmd.GroupID = "operate"
	rootCmd.AddCommand(cleanupCmd)
}

func cleanupTarget() (string, error) {
	if cleanupResourceGroup != "" {
		return cleanupResourceGroup, nil
	}
	if cleanupSuffix != "" {
		return provision.NamesFor(cleanupSuffix).ResourceGroup, nil
	}
	return "", fmt.Errorf("--suffix or --resource-group is required")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	rg, err := cleanupTarget()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("════════════════════════════════════════")
	fmt.Println("  Azure ML Lab Cleanup")
	fmt.Println("════════════════════════════════════════")
	fmt.Printf("\nResource group to delete: %s\n", rg)

	if !cleanupForce {
		if !prompt.Confirm("\nAre you sure you want to delete this resource group and ALL its resources?") {
			fmt.Println("Cleanup cancelled.")
			return nil
		}
	}

	ctx := cmd.Context()
	clients, _, err := connect(ctx, cleanupSubscription)
	if err != nil {
		return err
	}

	fmt.Printf("\n🗑️  Deleting resource group %q...\n", rg)
	clients.WithProgress(cmd.OutOrStdout())
	if err := clients.DeleteResourceGroup(ctx, rg, cleanupWait); err != nil {
		return fmt.Errorf("failed to delete resource group: %w", err)
	}

	fmt.Println("\n════════════════════════════════════════")
	fmt.Println("  ✅ Cleanup Complete!")
	fmt.Println("════════════════════════════════════════")
	if !cleanupWait {
		fmt.Println("\nNote: Resource group deletion runs in background.")
		fmt.Printf("Check status: az group show --name %s\n", rg)
	}
	return nil
}
