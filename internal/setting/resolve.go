// Package setting resolves a configuration value from multiple sources.
//
// Priority order:
//  1. Explicit flag value
//  2. .aml-setup.env file
//  3. Environment variables
package setting

import (
	"os"

	"github.com/DevExpGBB/aml-lab-setup/internal/envfile"
)

// Sources reported in ResolveResult.Source.
const (
	SourceFlag        = "flag"
	SourceEnvFile     = "envfile"
	SourceEnvironment = "environment"
)

// ResolveOpts describes where to look for a value.
type ResolveOpts struct {
	FlagValue   string
	EnvFilePath string
	EnvFileKeys []string
	EnvVarNames []string
}

// ResolveResult contains the resolved value and where it came from.
// Source is empty when nothing was found.
type ResolveResult struct {
	Value  string
	Source string
}

// Resolve walks the priority chain and returns the first non-empty value.
// An unreadable env file is skipped.
func Resolve(opts ResolveOpts) ResolveResult {
	if opts.FlagValue != "" {
		return ResolveResult{Value: opts.FlagValue, Source: SourceFlag}
	}

	envFilePath := opts.EnvFilePath
	if envFilePath == "" {
		envFilePath = envfile.DefaultPath
	}
	if vals, err := envfile.Load(envFilePath); err == nil {
		for _, key := range opts.EnvFileKeys {
			if v, ok := vals[key]; ok && v != "" {
				return ResolveResult{Value: v, Source: SourceEnvFile}
			}
		}
	}

	for _, key := range opts.EnvVarNames {
		if v := os.Getenv(key); v != "" {
			return ResolveResult{Value: v, Source: SourceEnvironment}
		}
	}

	return ResolveResult{}
}

// Subscription resolves the subscription id.
func Subscription(flagValue, envFilePath string) ResolveResult {
	return Resolve(ResolveOpts{
		FlagValue:   flagValue,
		EnvFilePath: envFilePath,
		EnvFileKeys: []string{"AZURE_SUBSCRIPTION_ID"},
		EnvVarNames: []string{"AZURE_SUBSCRIPTION_ID"},
	})
}

// Location resolves the Azure region.
func Location(flagValue, envFilePath string) ResolveResult {
	return Resolve(ResolveOpts{
		FlagValue:   flagValue,
		EnvFilePath: envFilePath,
		EnvFileKeys: []string{"AZURE_LOCATION", "AML_LOCATION"},
		EnvVarNames: []string{"AZURE_LOCATION", "AML_LOCATION"},
	})
}

// Suffix resolves a fixed resource name suffix.
func Suffix(flagValue, envFilePath string) ResolveResult {
	return Resolve(ResolveOpts{
		FlagValue:   flagValue,
		EnvFilePath: envFilePath,
		EnvFileKeys: []string{"AML_SUFFIX"},
		EnvVarNames: []string{"AML_SUFFIX"},
	})
}
