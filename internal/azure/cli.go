package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// Account represents the current Azure CLI account.
type Account struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	User     struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"user"`
}

// CommandError is returned when an az invocation exits non-zero.
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Stdout)
	}
	return fmt.Sprintf("az %s failed (exit %d): %s", commandName(e.Args), e.ExitCode, msg)
}

func commandName(args []string) string {
	n := 3
	if len(args) < n {
		n = len(args)
	}
	return strings.Join(args[:n], " ")
}

// CLI runs the Azure CLI. Arguments are always passed as a vector,
// never through a shell.
type CLI struct {
	// Path is the executable to run. Defaults to "az".
	Path string
}

// NewCLI returns a CLI bound to the az binary on PATH.
func NewCLI() *CLI {
	return &CLI{Path: "az"}
}

func (c *CLI) path() string {
	if c.Path == "" {
		return "az"
	}
	return c.Path
}

// IsAvailable checks whether the CLI executable can be found.
func (c *CLI) IsAvailable() bool {
	_, err := exec.LookPath(c.path())
	return err == nil
}

// Run executes the CLI with args and returns its stdout. A non-zero exit
// yields a *CommandError carrying the captured output.
func (c *CLI) Run(ctx context.Context, args ...string) (string, error) {
	log.Printf("running %s %s", c.path(), strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, c.path(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), &CommandError{
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}
		}
		return stdout.String(), fmt.Errorf("running %s: %w", c.path(), err)
	}
	return stdout.String(), nil
}

// CheckLogin checks if the CLI is logged in and returns the account info.
func (c *CLI) CheckLogin(ctx context.Context) (*Account, error) {
	out, err := c.Run(ctx, "account", "show", "-o", "json")
	if err != nil {
		return nil, fmt.Errorf("not logged in to Azure CLI: %w", err)
	}
	var acct Account
	if err := json.Unmarshal([]byte(out), &acct); err != nil {
		return nil, fmt.Errorf("parsing az account show output: %w", err)
	}
	return &acct, nil
}

// DataAsset describes an Azure ML data asset registered from a local file.
type DataAsset struct {
	Name           string
	Type           string
	Path           string
	Workspace      string
	ResourceGroup  string
	SubscriptionID string
}

// Args returns the az argument vector that registers the asset.
func (d DataAsset) Args() []string {
	assetType := d.Type
	if assetType == "" {
		assetType = "uri_file"
	}
	args := []string{"ml", "data", "create",
		"--type", assetType,
		"--name", d.Name,
		"--path", d.Path,
		"--workspace-name", d.Workspace,
		"--resource-group", d.ResourceGroup,
	}
	if d.SubscriptionID != "" {
		args = append(args, "--subscription", d.SubscriptionID)
	}
	return args
}

// CreateDataAsset registers a data asset with `az ml data create`.
func (c *CLI) CreateDataAsset(ctx context.Context, asset DataAsset) (string, error) {
	if asset.Name == "" || asset.Path == "" {
		return "", fmt.Errorf("data asset name and path are required")
	}
	return c.Run(ctx, asset.Args()...)
}
