package cmd

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevExpGBB/aml-lab-setup/internal/provision"
)

func TestCommandsRegistered(t *testing.T) {
	want := map[string]string{"setup": "provision", "status": "operate", "cleanup": "operate"}
	for _, sub := range rootCmd.Commands() {
		if group, ok := want[sub.Name()]; ok {
			assert.Equalf(t, group, sub.GroupID, "group of %s", sub.Name())
			delete(want, sub.Name())
		}
	}
	assert.Empty(t, want, "commands not registered on rootCmd")
}

func TestSetupFlagDefaults(t *testing.T) {
	cmd := newSetupCmd()
	tests := map[string]string{
		"vm-size":           "STANDARD_DS11_V2",
		"cluster-max-nodes": "2",
		"cluster-retries":   "1",
		"data-name":         "diabetes-data",
		"data-path":         "./data/diabetes.csv",
		"location":          "",
	}
	for name, want := range tests {
		f := cmd.Flags().Lookup(name)
		require.NotNilf(t, f, "flag --%s", name)
		assert.Equalf(t, want, f.DefValue, "default of --%s", name)
	}
}

func setSetupFlags(t *testing.T, maxNodes, minNodes int32, suffix string) {
	t.Helper()
	origMax, origMin, origSuffix, origBackoff := setupClusterMaxNodes, setupClusterMinNodes, setupSuffix, setupClusterBackoff
	t.Cleanup(func() {
		setupClusterMaxNodes, setupClusterMinNodes, setupSuffix, setupClusterBackoff = origMax, origMin, origSuffix, origBackoff
	})
	setupClusterMaxNodes = maxNodes
	setupClusterMinNodes = minNodes
	setupSuffix = suffix
	setupClusterBackoff = time.Second
}

func TestValidateSetupFlags(t *testing.T) {
	setSetupFlags(t, 2, 0, "")
	assert.NoError(t, validateSetupFlags())

	setSetupFlags(t, 0, 0, "")
	assert.ErrorContains(t, validateSetupFlags(), "--cluster-max-nodes")

	setSetupFlags(t, 2, 3, "")
	assert.ErrorContains(t, validateSetupFlags(), "--cluster-min-nodes")

	setSetupFlags(t, 2, 0, "Not_Valid")
	assert.ErrorContains(t, validateSetupFlags(), "--suffix")
}

func TestRunSetup_InvalidFlagsFailBeforeConnecting(t *testing.T) {
	setSetupFlags(t, 0, 0, "")
	cmd := &cobra.Command{RunE: runSetup}
	err := runSetup(cmd, nil)
	assert.ErrorContains(t, err, "--cluster-max-nodes")
}

func TestWorkspaceTarget(t *testing.T) {
	rg, ws, err := workspaceTarget("abc123", "", "")
	require.NoError(t, err)
	assert.Equal(t, "aml_rg_abc123", rg)
	assert.Equal(t, "aml_ws_abc123", ws)

	rg, ws, err = workspaceTarget("abc123", "custom-rg", "")
	require.NoError(t, err)
	assert.Equal(t, "custom-rg", rg)
	assert.Equal(t, "aml_ws_abc123", ws)

	_, _, err = workspaceTarget("", "only-rg", "")
	assert.Error(t, err)
}

func TestCleanupTarget(t *testing.T) {
	origRG, origSuffix := cleanupResourceGroup, cleanupSuffix
	t.Cleanup(func() {
		cleanupResourceGroup, cleanupSuffix = origRG, origSuffix
	})

	cleanupResourceGroup, cleanupSuffix = "", ""
	_, err := cleanupTarget()
	assert.Error(t, err)

	cleanupSuffix = "xyz789"
	rg, err := cleanupTarget()
	require.NoError(t, err)
	assert.Equal(t, "aml_rg_xyz789", rg)

	cleanupResourceGroup = "explicit"
	rg, err = cleanupTarget()
	require.NoError(t, err)
	assert.Equal(t, "explicit", rg)
}

func TestRunCleanup_RequiresTarget(t *testing.T) {
	origRG, origSuffix := cleanupResourceGroup, cleanupSuffix
	t.Cleanup(func() {
		cleanupResourceGroup, cleanupSuffix = origRG, origSuffix
	})
	cleanupResourceGroup, cleanupSuffix = "", ""

	err := runCleanup(&cobra.Command{}, nil)
	assert.ErrorContains(t, err, "--suffix or --resource-group is required")
}

func TestPrintSummary_WithFailures(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	result := &provision.Result{
		Names:    provision.NamesFor("abc123"),
		Location: "eastus",
		Failures: []provision.StepFailure{
			{Step: provision.StepComputeCluster, Err: errors.New("quota")},
		},
	}
	printSummary(cmd, result)

	out := buf.String()
	assert.Contains(t, out, "Setup Completed With Failures")
	assert.Contains(t, out, "compute cluster: quota")
	assert.Contains(t, out, "aml_ws_abc123")
	assert.Contains(t, out, "cleanup --suffix abc123")
}

func TestPrintSummary_Success(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	printSummary(cmd, &provision.Result{Names: provision.NamesFor("abc123"), Location: "westus"})

	out := buf.String()
	assert.Contains(t, out, "Setup Complete!")
	assert.NotContains(t, out, "Failed steps")
	assert.NotContains(t, out, "(failed)")
}

func TestStateIcon(t *testing.T) {
	assert.Equal(t, "✅ Succeeded", stateIcon("Succeeded"))
	assert.Equal(t, "❌ Failed", stateIcon("Failed"))
	assert.Equal(t, "⏳ Creating", stateIcon("Creating"))
	assert.Equal(t, "unknown", stateIcon(""))
}
