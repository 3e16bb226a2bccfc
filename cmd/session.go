package cmd

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/DevExpGBB/aml-lab-setup/internal/azure"
	"github.com/DevExpGBB/aml-lab-setup/internal/setting"
)

const applicationID = "aml-lab-setup"

func armClientOptions() *arm.ClientOptions {
	return &arm.ClientOptions{
		ClientOptions: policy.ClientOptions{
			Telemetry: policy.TelemetryOptions{ApplicationID: applicationID},
		},
	}
}

// connect acquires ambient credentials and resolves the subscription to use.
func connect(ctx context.Context, subscriptionFlag string) (*azure.Clients, *azure.Subscription, error) {
	fmt.Println("\n🔑 Acquiring Azure credentials...")
	cred, err := azure.NewCredential()
	if err != nil {
		return nil, nil, err
	}

	options := armClientOptions()
	subID := setting.Subscription(subscriptionFlag, cfgEnvFile)
	sub, err := azure.ResolveSubscription(ctx, cred, options, subID.Value)
	if err != nil {
		return nil, nil, err
	}
	if subID.Source != "" {
		fmt.Printf("   Subscription: %s (%s, from %s)\n", sub.DisplayName, sub.ID, subID.Source)
	} else {
		fmt.Printf("   Subscription: %s (%s)\n", sub.DisplayName, sub.ID)
	}

	return azure.NewClients(cred, sub, options), sub, nil
}
