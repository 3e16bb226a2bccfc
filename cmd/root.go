// Package cmd contains the cobra command tree for aml-lab-setup.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	azcorelog "github.com/Azure/azure-sdk-for-go/sdk/azcore/log"
	"github.com/spf13/cobra"

	"github.com/DevExpGBB/aml-lab-setup/internal/envfile"
)

var (
	cfgDebug   bool   // --debug flag (global)
	cfgEnvFile string // --env-file flag (global)
)

var rootCmd = &cobra.Command{
	Use:   "aml-lab-setup",
	Short: "Provision an Azure Machine Learning lab environment",
	Long: `aml-lab-setup: provision an Azure Machine Learning lab environment.

Registers the Machine Learning resource provider, creates a resource group and
workspace, a compute instance, a compute cluster, and registers a data asset.`,
	SilenceUsage:      true,
	PersistentPreRunE: configureLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfgDebug, "debug", false, "Enable diagnostic logging, including Azure SDK requests")
	rootCmd.PersistentFlags().StringVar(&cfgEnvFile, "env-file", envfile.DefaultPath, "Path to env file with AZURE_SUBSCRIPTION_ID, AZURE_LOCATION, AML_SUFFIX")

	rootCmd.AddGroup(
		&cobra.Group{ID: "provision", Title: "Provisioning Commands:"},
		&cobra.Group{ID: "operate", Title: "Operations Commands:"},
	)
}

func configureLogging(cmd *cobra.Command, args []string) error {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !cfgDebug {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(os.Stderr)
	azcorelog.SetListener(func(event azcorelog.Event, msg string) {
		log.Printf("%s: %s\n", event, msg)
	})
	return nil
}

// Execute runs the root command. Ctrl-C cancels in-flight Azure operations.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
