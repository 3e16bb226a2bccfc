package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
)

// MachineLearningProvider is the resource provider namespace backing Azure ML.
const MachineLearningProvider = "Microsoft.MachineLearningServices"

// ProviderRegistration is the outcome of a provider registration call.
type ProviderRegistration struct {
	Namespace string
	State     string
}

// RegisterProvider registers a resource provider with the subscription.
// Registering an already registered provider is a no-op on the Azure side.
func (c *Clients) RegisterProvider(ctx context.Context, namespace string) (*ProviderRegistration, error) {
	client, err := armresources.NewProvidersClient(c.subscription.ID, c.credential, c.options)
	if err != nil {
		return nil, fmt.Errorf("creating providers client: %w", err)
	}

	resp, err := client.Register(ctx, namespace, nil)
	if err != nil {
		return nil, fmt.Errorf("registering resource provider %s: %w", namespace, err)
	}

	return &ProviderRegistration{
		Namespace: deref(resp.Provider.Namespace),
		State:     deref(resp.Provider.RegistrationState),
	}, nil
}

// CreateResourceGroup creates or updates a resource group.
func (c *Clients) CreateResourceGroup(ctx context.Context, name, location string) (string, error) {
	client, err := armresources.NewResourceGroupsClient(c.subscription.ID, c.credential, c.options)
	if err != nil {
		return "", fmt.Errorf("creating resource groups client: %w", err)
	}

	resp, err := client.CreateOrUpdate(ctx, name, armresources.ResourceGroup{
		Location: to.Ptr(location),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("creating resource group %s: %w", name, err)
	}
	return deref(resp.ResourceGroup.ID), nil
}

// DeleteResourceGroup deletes a resource group and everything in it.
// When wait is false the deletion is started but not awaited.
func (c *Clients) DeleteResourceGroup(ctx context.Context, name string, wait bool) error {
	client, err := armresources.NewResourceGroupsClient(c.subscription.ID, c.credential, c.options)
	if err != nil {
		return fmt.Errorf("creating resource groups client: %w", err)
	}

	poller, err := client.BeginDelete(ctx, name, nil)
	if err != nil {
		return fmt.Errorf("deleting resource group %s: %w", name, err)
	}
	if !wait {
		return nil
	}
	if _, err := waitFor(ctx, c.progress, fmt.Sprintf("Deleting resource group %s", name), poller); err != nil {
		return fmt.Errorf("deleting resource group %s: %w", name, err)
	}
	return nil
}
