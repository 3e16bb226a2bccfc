package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/machinelearning/armmachinelearning/v3"
)

// DefaultVMSize is the VM size used for both the compute instance and cluster nodes.
const DefaultVMSize = "STANDARD_DS11_V2"

// ComputeSpec describes a compute target inside a workspace.
type ComputeSpec struct {
	Name          string
	Workspace     string
	ResourceGroup string
	Location      string
	VMSize        string
	// MinNodes and MaxNodes apply to clusters only.
	MinNodes int32
	MaxNodes int32
}

// ComputeInfo summarizes a compute target for display.
type ComputeInfo struct {
	Name  string
	Type  string
	State string
}

// CreateComputeInstance creates a single-node compute instance and waits
// until it is provisioned.
func (c *Clients) CreateComputeInstance(ctx context.Context, spec ComputeSpec) error {
	return c.createCompute(ctx, spec, "compute instance", &armmachinelearning.ComputeInstance{
		ComputeType: to.Ptr(armmachinelearning.ComputeTypeComputeInstance),
		Properties: &armmachinelearning.ComputeInstanceProperties{
			VMSize: to.Ptr(vmSize(spec)),
		},
	})
}

// CreateComputeCluster creates an autoscaling compute cluster and waits
// until it is provisioned.
func (c *Clients) CreateComputeCluster(ctx context.Context, spec ComputeSpec) error {
	if spec.MaxNodes < 1 {
		return fmt.Errorf("compute cluster %s: max nodes must be at least 1, got %d", spec.Name, spec.MaxNodes)
	}
	if spec.MinNodes < 0 || spec.MinNodes > spec.MaxNodes {
		return fmt.Errorf("compute cluster %s: min nodes %d out of range [0, %d]", spec.Name, spec.MinNodes, spec.MaxNodes)
	}
	return c.createCompute(ctx, spec, "compute cluster", &armmachinelearning.AmlCompute{
		ComputeType: to.Ptr(armmachinelearning.ComputeTypeAmlCompute),
		Properties: &armmachinelearning.AmlComputeProperties{
			VMSize: to.Ptr(vmSize(spec)),
			ScaleSettings: &armmachinelearning.ScaleSettings{
				MinNodeCount: to.Ptr(spec.MinNodes),
				MaxNodeCount: to.Ptr(spec.MaxNodes),
			},
		},
	})
}

func (c *Clients) createCompute(
	ctx context.Context,
	spec ComputeSpec,
	kind string,
	properties armmachinelearning.ComputeClassification,
) error {
	client, err := armmachinelearning.NewComputeClient(c.subscription.ID, c.credential, c.options)
	if err != nil {
		return fmt.Errorf("creating compute client: %w", err)
	}

	poller, err := client.BeginCreateOrUpdate(ctx, spec.ResourceGroup, spec.Workspace, spec.Name,
		armmachinelearning.ComputeResource{
			Location:   to.Ptr(spec.Location),
			Properties: properties,
		}, nil)
	if err != nil {
		return fmt.Errorf("creating %s %s: %w", kind, spec.Name, err)
	}

	// A compute that ends up in the Failed state fails the poller.
	if _, err := waitFor(ctx, c.progress, fmt.Sprintf("Creating %s %s", kind, spec.Name), poller); err != nil {
		return fmt.Errorf("creating %s %s: %w", kind, spec.Name, err)
	}
	return nil
}

// ListComputes returns the compute targets in a workspace.
func (c *Clients) ListComputes(ctx context.Context, resourceGroup, workspace string) ([]ComputeInfo, error) {
	client, err := armmachinelearning.NewComputeClient(c.subscription.ID, c.credential, c.options)
	if err != nil {
		return nil, fmt.Errorf("creating compute client: %w", err)
	}

	var computes []ComputeInfo
	pager := client.NewListPager(resourceGroup, workspace, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed getting next page of computes: %w", err)
		}
		for _, res := range page.Value {
			if res == nil {
				continue
			}
			info := ComputeInfo{Name: deref(res.Name)}
			if res.Properties != nil {
				if compute := res.Properties.GetCompute(); compute != nil {
					info.Type = string(deref(compute.ComputeType))
					info.State = string(deref(compute.ProvisioningState))
				}
			}
			computes = append(computes, info)
		}
	}
	return computes, nil
}

func vmSize(spec ComputeSpec) string {
	if spec.VMSize == "" {
		return DefaultVMSize
	}
	return spec.VMSize
}
