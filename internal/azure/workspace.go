package azure

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/machinelearning/armmachinelearning/v3"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
)

// WorkspaceSpec describes a workspace and the resources it depends on.
type WorkspaceSpec struct {
	Name           string
	ResourceGroup  string
	Location       string
	StorageAccount string
	KeyVault       string
}

// WorkspaceInfo is the provisioned workspace.
type WorkspaceInfo struct {
	ID            string
	Name          string
	ResourceGroup string
	Location      string
	State         string
}

// CreateWorkspace creates the resource group, the workspace's storage account
// and key vault, then the workspace itself. Every step is create-or-update,
// so re-running against existing resources succeeds.
func (c *Clients) CreateWorkspace(ctx context.Context, spec WorkspaceSpec) (*WorkspaceInfo, error) {
	if _, err := c.CreateResourceGroup(ctx, spec.ResourceGroup, spec.Location); err != nil {
		return nil, err
	}

	storageID, err := c.createStorageAccount(ctx, spec.ResourceGroup, spec.StorageAccount, spec.Location)
	if err != nil {
		return nil, err
	}

	vaultID, err := c.createKeyVault(ctx, spec.ResourceGroup, spec.KeyVault, spec.Location)
	if err != nil {
		return nil, err
	}

	client, err := armmachinelearning.NewWorkspacesClient(c.subscription.ID, c.credential, c.options)
	if err != nil {
		return nil, fmt.Errorf("creating workspaces client: %w", err)
	}

	poller, err := client.BeginCreateOrUpdate(ctx, spec.ResourceGroup, spec.Name, armmachinelearning.Workspace{
		Location: to.Ptr(spec.Location),
		Identity: &armmachinelearning.ManagedServiceIdentity{
			Type: to.Ptr(armmachinelearning.ManagedServiceIdentityTypeSystemAssigned),
		},
		SKU: &armmachinelearning.SKU{
			Name: to.Ptr("Basic"),
			Tier: to.Ptr(armmachinelearning.SKUTierBasic),
		},
		Properties: &armmachinelearning.WorkspaceProperties{
			FriendlyName:   to.Ptr(spec.Name),
			StorageAccount: to.Ptr(storageID),
			KeyVault:       to.Ptr(vaultID),
		},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("creating workspace %s: %w", spec.Name, err)
	}

	resp, err := waitFor(ctx, c.progress, fmt.Sprintf("Creating workspace %s", spec.Name), poller)
	if err != nil {
		return nil, fmt.Errorf("creating workspace %s: %w", spec.Name, err)
	}

	info := &WorkspaceInfo{
		ID:            deref(resp.Workspace.ID),
		Name:          spec.Name,
		ResourceGroup: spec.ResourceGroup,
		Location:      spec.Location,
	}
	if resp.Workspace.Properties != nil && resp.Workspace.Properties.ProvisioningState != nil {
		info.State = string(*resp.Workspace.Properties.ProvisioningState)
	}
	return info, nil
}

// GetWorkspace looks up an existing workspace.
func (c *Clients) GetWorkspace(ctx context.Context, resourceGroup, name string) (*WorkspaceInfo, error) {
	client, err := armmachinelearning.NewWorkspacesClient(c.subscription.ID, c.credential, c.options)
	if err != nil {
		return nil, fmt.Errorf("creating workspaces client: %w", err)
	}

	resp, err := client.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return nil, fmt.Errorf("getting workspace %s: %w", name, err)
	}

	info := &WorkspaceInfo{
		ID:            deref(resp.Workspace.ID),
		Name:          deref(resp.Workspace.Name),
		ResourceGroup: resourceGroup,
		Location:      deref(resp.Workspace.Location),
	}
	if resp.Workspace.Properties != nil && resp.Workspace.Properties.ProvisioningState != nil {
		info.State = string(*resp.Workspace.Properties.ProvisioningState)
	}
	return info, nil
}

func (c *Clients) createStorageAccount(ctx context.Context, resourceGroup, name, location string) (string, error) {
	client, err := armstorage.NewAccountsClient(c.subscription.ID, c.credential, c.options)
	if err != nil {
		return "", fmt.Errorf("creating storage accounts client: %w", err)
	}

	poller, err := client.BeginCreate(ctx, resourceGroup, name, armstorage.AccountCreateParameters{
		Kind:     to.Ptr(armstorage.KindStorageV2),
		Location: to.Ptr(location),
		SKU: &armstorage.SKU{
			Name: to.Ptr(armstorage.SKUNameStandardLRS),
		},
		Properties: &armstorage.AccountPropertiesCreateParameters{
			AllowBlobPublicAccess: to.Ptr(false),
			MinimumTLSVersion:     to.Ptr(armstorage.MinimumTLSVersionTLS12),
		},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("creating storage account %s: %w", name, err)
	}

	resp, err := waitFor(ctx, c.progress, fmt.Sprintf("Creating storage account %s", name), poller)
	if err != nil {
		return "", fmt.Errorf("creating storage account %s: %w", name, err)
	}
	return deref(resp.Account.ID), nil
}

func (c *Clients) createKeyVault(ctx context.Context, resourceGroup, name, location string) (string, error) {
	if c.subscription.TenantID == "" {
		return "", fmt.Errorf("creating key vault %s: tenant id unknown for subscription %s", name, c.subscription.ID)
	}

	client, err := armkeyvault.NewVaultsClient(c.subscription.ID, c.credential, c.options)
	if err != nil {
		return "", fmt.Errorf("creating key vaults client: %w", err)
	}

	// Deleting the resource group soft-deletes the vault; its name stays
	// reserved until it is recovered or purged.
	createMode := armkeyvault.CreateModeDefault
	deleted, err := isVaultSoftDeleted(ctx, client, name, location)
	if err != nil {
		return "", err
	}
	if deleted {
		log.Printf("key vault %s is soft-deleted in %s, recovering it", name, location)
		createMode = armkeyvault.CreateModeRecover
	}

	poller, err := client.BeginCreateOrUpdate(ctx, resourceGroup, name, armkeyvault.VaultCreateOrUpdateParameters{
		Location: to.Ptr(location),
		Properties: &armkeyvault.VaultProperties{
			CreateMode: to.Ptr(createMode),
			TenantID:   to.Ptr(c.subscription.TenantID),
			SKU: &armkeyvault.SKU{
				Family: to.Ptr(armkeyvault.SKUFamilyA),
				Name:   to.Ptr(armkeyvault.SKUNameStandard),
			},
			EnableRbacAuthorization: to.Ptr(true),
			AccessPolicies:          []*armkeyvault.AccessPolicyEntry{},
		},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("creating key vault %s: %w", name, err)
	}

	resp, err := waitFor(ctx, c.progress, fmt.Sprintf("Creating key vault %s", name), poller)
	if err != nil {
		return "", fmt.Errorf("creating key vault %s: %w", name, err)
	}
	return deref(resp.Vault.ID), nil
}

func isVaultSoftDeleted(ctx context.Context, client *armkeyvault.VaultsClient, name, location string) (bool, error) {
	_, err := client.GetDeleted(ctx, name, location, nil)
	if err == nil {
		return true, nil
	}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, fmt.Errorf("checking for deleted key vault %s: %w", name, err)
}
