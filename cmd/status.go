package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DevExpGBB/aml-lab-setup/internal/output"
	"github.com/DevExpGBB/aml-lab-setup/internal/provision"
)

var (
	statusSuffix        string
	statusResourceGroup string
	statusWorkspace     string
	statusSubscription  string
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a provisioned workspace and its computes",
		Long: `Displays the workspace and the compute targets created by setup.

Example:
  aml-lab-setup status --suffix abc123
  aml-lab-setup status --resource-group my-rg --workspace my-ws`,
		RunE: runStatus,
	}

	cmd.Flags().StringVar(&statusSuffix, "suffix", "", "Suffix used by setup (derives resource group and workspace)")
	cmd.Flags().StringVar(&statusResourceGroup, "resource-group", "", "Resource group name")
	cmd.Flags().StringVar(&statusWorkspace, "workspace", "", "Workspace name")
	cmd.Flags().StringVar(&statusSubscription, "subscription", "", "Subscription ID (defaults to the first available)")

	return cmd
}

func init() {
	statusCmd := newStatusCmd()
	statusCmd.GroupID = "operate"
	rootCmd.AddCommand(statusCmd)
}

// workspaceTarget picks the resource group and workspace from explicit names
// or from a suffix.
func workspaceTarget(suffix, resourceGroup, workspace string) (string, string, error) {
	if suffix != "" {
		names := provision.NamesFor(suffix)
		if resourceGroup == "" {
			resourceGroup = names.ResourceGroup
		}
		if workspace == "" {
			workspace = names.Workspace
		}
	}
	if resourceGroup == "" || workspace == "" {
		return "", "", fmt.Errorf("--suffix or both --resource-group and --workspace are required")
	}
	return resourceGroup, workspace, nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	rg, ws, err := workspaceTarget(statusSuffix, statusResourceGroup, statusWorkspace)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	clients, _, err := connect(ctx, statusSubscription)
	if err != nil {
		return err
	}

	fmt.Println()
	sep := "  " + strings.Repeat("─", 42)
	fmt.Println("════════════════════════════════════════")
	fmt.Println("  Azure ML Lab Status")
	fmt.Println("════════════════════════════════════════")

	info, err := clients.GetWorkspace(ctx, rg, ws)
	if err != nil {
		fmt.Printf("\n  ❌ Workspace %s not reachable: %v\n", ws, err)
		return err
	}

	fmt.Printf("\n  Workspace\n")
	fmt.Println(sep)
	fmt.Printf("  Name:      %s\n", output.WithHighLightFormat(info.Name))
	fmt.Printf("  Group:     %s\n", info.ResourceGroup)
	fmt.Printf("  Location:  %s\n", info.Location)
	fmt.Printf("  State:     %s\n", stateIcon(info.State))

	computes, err := clients.ListComputes(ctx, rg, ws)
	if err != nil {
		return err
	}

	fmt.Printf("\n  Computes\n")
	fmt.Println(sep)
	if len(computes) == 0 {
		fmt.Println("  (none)")
	}
	for _, c := range computes {
		fmt.Printf("  %-20s %-16s %s\n", c.Name, c.Type, stateIcon(c.State))
	}
	fmt.Println()
	return nil
}

func stateIcon(state string) string {
	switch strings.ToLower(state) {
	case "succeeded":
		return "✅ " + state
	case "failed", "canceled":
		return "❌ " + state
	case "":
		return "unknown"
	default:
		return "⏳ " + state
	}
}
