package provision

import "github.com/DevExpGBB/aml-lab-setup/internal/azure"

// DefaultClusterName is the fixed name of the training cluster.
const DefaultClusterName = "aml-cluster"

// Names holds every resource name derived from a suffix.
type Names struct {
	Suffix          string
	ResourceGroup   string
	Workspace       string
	StorageAccount  string
	KeyVault        string
	ComputeInstance string
	ComputeCluster  string
}

// NamesFor derives resource names from suffix.
func NamesFor(suffix string) Names {
	return Names{
		Suffix:          suffix,
		ResourceGroup:   "aml_rg_" + suffix,
		Workspace:       "aml_ws_" + suffix,
		StorageAccount:  "amlst" + suffix,
		KeyVault:        "aml-kv-" + suffix,
		ComputeInstance: "ci-" + suffix,
		ComputeCluster:  DefaultClusterName,
	}
}

// Regions suggested at the region prompt. Any other region is accepted.
var Regions = []string{"eastus", "westus", "centralus", "northeurope", "westeurope"}

// NewSuffix generates a random suffix of the default length.
func NewSuffix() (string, error) {
	return azure.RandomSuffix(azure.DefaultSuffixLength)
}
