// Package provision runs the lab setup: register the Azure ML resource
// provider, create a workspace, a compute instance, a compute cluster and a
// data asset, in that order.
//
// Provider registration and workspace creation are fatal. Everything after the
// workspace is best effort: failures are recorded in the Result and the run
// continues, so the caller decides whether a partial setup is acceptable.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/DevExpGBB/aml-lab-setup/internal/azure"
	"github.com/DevExpGBB/aml-lab-setup/internal/output"
)

// ErrWorkspace marks a failed workspace creation.
var ErrWorkspace = errors.New("failed to create workspace")

// Step names used in Result.Failures.
const (
	StepComputeInstance = "compute instance"
	StepComputeCluster  = "compute cluster"
	StepDataAsset       = "data asset"
)

// Cloud is the control-plane surface the setup needs, implemented by *azure.Clients.
type Cloud interface {
	RegisterProvider(ctx context.Context, namespace string) (*azure.ProviderRegistration, error)
	CreateWorkspace(ctx context.Context, spec azure.WorkspaceSpec) (*azure.WorkspaceInfo, error)
	CreateComputeInstance(ctx context.Context, spec azure.ComputeSpec) error
	CreateComputeCluster(ctx context.Context, spec azure.ComputeSpec) error
}

// CLI registers data assets, implemented by *azure.CLI.
type CLI interface {
	IsAvailable() bool
	CheckLogin(ctx context.Context) (*azure.Account, error)
	CreateDataAsset(ctx context.Context, asset azure.DataAsset) (string, error)
}

var (
	_ Cloud = (*azure.Clients)(nil)
	_ CLI   = (*azure.CLI)(nil)
)

// Options controls a setup run. Zero values fall back to defaults.
type Options struct {
	SubscriptionID string
	// Location is used as-is when set; otherwise Runner.AskLocation is called.
	Location string
	// Suffix is generated when empty.
	Suffix string

	VMSize          string
	ClusterMinNodes int32
	ClusterMaxNodes int32
	// ClusterRetries is how many times a failed cluster creation is retried.
	ClusterRetries uint64
	ClusterBackoff time.Duration

	DataAssetName string
	DataAssetPath string
	SkipDataAsset bool
}

func (o Options) withDefaults() Options {
	if o.VMSize == "" {
		o.VMSize = azure.DefaultVMSize
	}
	if o.ClusterMaxNodes == 0 {
		o.ClusterMaxNodes = 2
	}
	if o.ClusterBackoff <= 0 {
		o.ClusterBackoff = 15 * time.Second
	}
	if o.DataAssetName == "" {
		o.DataAssetName = "diabetes-data"
	}
	if o.DataAssetPath == "" {
		o.DataAssetPath = "./data/diabetes.csv"
	}
	return o
}

// StepFailure is a best-effort step that did not complete.
type StepFailure struct {
	Step string
	Err  error
}

// Result describes what a run provisioned.
type Result struct {
	Names     Names
	Location  string
	Provider  *azure.ProviderRegistration
	Workspace *azure.WorkspaceInfo
	Failures  []StepFailure
}

// Err combines all recorded step failures, or nil when every step succeeded.
func (r *Result) Err() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, fmt.Errorf("%s: %w", f.Step, f.Err))
	}
	return err
}

// Failed reports whether step recorded a failure.
func (r *Result) Failed(step string) bool {
	for _, f := range r.Failures {
		if f.Step == step {
			return true
		}
	}
	return false
}

func (r *Result) record(step string, err error) {
	r.Failures = append(r.Failures, StepFailure{Step: step, Err: err})
}

// Runner executes a setup run.
type Runner struct {
	Cloud Cloud
	CLI   CLI
	// Out receives status lines. Defaults to io.Discard.
	Out io.Writer
	// AskLocation is called when Options.Location is empty.
	AskLocation func() (string, error)
}

// Run provisions the lab environment. A non-nil error means a fatal step
// failed; best-effort failures are only reported through Result.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	out := r.Out
	if out == nil {
		out = io.Discard
	}

	// ── Register resource provider ──
	fmt.Fprintf(out, "\n📝 Registering resource provider %s...\n", azure.MachineLearningProvider)
	reg, err := r.Cloud.RegisterProvider(ctx, azure.MachineLearningProvider)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "   Registered resource provider: %s\n", reg.Namespace)

	// ── Names ──
	suffix := opts.Suffix
	if suffix == "" {
		suffix, err = NewSuffix()
		if err != nil {
			return nil, err
		}
	} else if !azure.ValidSuffix(suffix) {
		return nil, fmt.Errorf("invalid suffix %q: use 1-12 lowercase letters or digits", suffix)
	}
	result := &Result{Names: NamesFor(suffix), Provider: reg}
	names := result.Names

	// ── Region ──
	location := strings.TrimSpace(opts.Location)
	if location == "" {
		if r.AskLocation == nil {
			return nil, fmt.Errorf("a location is required")
		}
		location, err = r.AskLocation()
		if err != nil {
			return nil, err
		}
		location = strings.TrimSpace(location)
		if location == "" {
			return nil, fmt.Errorf("a location is required")
		}
	}
	result.Location = location
	fmt.Fprintf(out, "   You have chosen the region: %s\n", output.WithHighLightFormat(location))

	// ── Workspace ──
	fmt.Fprintf(out, "\n📦 Creating resource group '%s' and workspace '%s' in %s\n",
		names.ResourceGroup, names.Workspace, location)
	ws, err := r.Cloud.CreateWorkspace(ctx, azure.WorkspaceSpec{
		Name:           names.Workspace,
		ResourceGroup:  names.ResourceGroup,
		Location:       location,
		StorageAccount: names.StorageAccount,
		KeyVault:       names.KeyVault,
	})
	if err != nil {
		return result, fmt.Errorf("%w %s: %w", ErrWorkspace, names.Workspace, err)
	}
	result.Workspace = ws
	fmt.Fprintln(out, output.WithSuccessFormat("   ✅ Workspace created successfully."))

	// ── Compute instance ──
	fmt.Fprintf(out, "\n💻 Creating compute instance '%s'...\n", names.ComputeInstance)
	err = r.Cloud.CreateComputeInstance(ctx, azure.ComputeSpec{
		Name:          names.ComputeInstance,
		Workspace:     names.Workspace,
		ResourceGroup: names.ResourceGroup,
		Location:      location,
		VMSize:        opts.VMSize,
	})
	if err != nil {
		result.record(StepComputeInstance, err)
		fmt.Fprintln(out, output.WithWarningFormat("   ⚠️  Failed to create compute instance: %v", err))
	} else {
		fmt.Fprintln(out, output.WithSuccessFormat("   ✅ Compute instance '%s' created successfully.", names.ComputeInstance))
	}

	// ── Compute cluster ──
	fmt.Fprintf(out, "\n🖥️  Creating compute cluster '%s'...\n", names.ComputeCluster)
	if err := r.createCluster(ctx, out, opts, names, location); err != nil {
		result.record(StepComputeCluster, err)
		fmt.Fprintln(out, output.WithWarningFormat("   ⚠️  Failed to create compute cluster: %v", err))
	} else {
		fmt.Fprintln(out, output.WithSuccessFormat("   ✅ Compute cluster '%s' created successfully.", names.ComputeCluster))
	}

	// ── Data asset ──
	if opts.SkipDataAsset {
		fmt.Fprintln(out, "\n📊 Skipping data asset registration.")
		return result, nil
	}
	fmt.Fprintf(out, "\n📊 Registering data asset '%s' from %s...\n", opts.DataAssetName, opts.DataAssetPath)
	stdout, err := r.createDataAsset(ctx, opts, names)
	if err != nil {
		result.record(StepDataAsset, err)
		fmt.Fprintln(out, output.WithWarningFormat("   ⚠️  CLI command failed: %v", err))
	} else {
		if stdout = strings.TrimSpace(stdout); stdout != "" {
			fmt.Fprintln(out, indent(stdout, "   "))
		}
		fmt.Fprintln(out, output.WithSuccessFormat("   ✅ Data asset '%s' registered.", opts.DataAssetName))
	}

	return result, nil
}

// createCluster attempts cluster creation, retrying up to opts.ClusterRetries
// times with exponential backoff.
func (r *Runner) createCluster(ctx context.Context, out io.Writer, opts Options, names Names, location string) error {
	spec := azure.ComputeSpec{
		Name:          names.ComputeCluster,
		Workspace:     names.Workspace,
		ResourceGroup: names.ResourceGroup,
		Location:      location,
		VMSize:        opts.VMSize,
		MinNodes:      opts.ClusterMinNodes,
		MaxNodes:      opts.ClusterMaxNodes,
	}

	attempts := 0
	backoff := retry.WithMaxRetries(opts.ClusterRetries, retry.NewExponential(opts.ClusterBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		err := r.Cloud.CreateComputeCluster(ctx, spec)
		if err == nil {
			return nil
		}
		log.Printf("compute cluster attempt %d failed: %v", attempts, err)
		if uint64(attempts) <= opts.ClusterRetries {
			fmt.Fprintf(out, "   Attempt %d/%d failed, retrying...\n", attempts, opts.ClusterRetries+1)
		}
		return retry.RetryableError(err)
	})
}

// createDataAsset registers the data asset and returns what az printed.
func (r *Runner) createDataAsset(ctx context.Context, opts Options, names Names) (string, error) {
	if r.CLI == nil || !r.CLI.IsAvailable() {
		return "", fmt.Errorf("az CLI not found on PATH")
	}
	acct, err := r.CLI.CheckLogin(ctx)
	if err != nil {
		return "", err
	}
	log.Printf("az CLI logged in as %s", acct.User.Name)
	return r.CLI.CreateDataAsset(ctx, azure.DataAsset{
		Name:           opts.DataAssetName,
		Type:           "uri_file",
		Path:           opts.DataAssetPath,
		Workspace:      names.Workspace,
		ResourceGroup:  names.ResourceGroup,
		SubscriptionID: opts.SubscriptionID,
	})
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
