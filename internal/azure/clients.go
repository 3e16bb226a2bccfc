// Package azure wraps the Azure Resource Manager SDK and the Azure CLI (az)
// for provisioning an Azure Machine Learning lab environment.
package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
)

// ErrNoSubscription is returned when the credential cannot see any subscription.
var ErrNoSubscription = errors.New("no Azure subscription available for the current credential")

// Subscription identifies the subscription all resources are created in.
type Subscription struct {
	ID          string
	TenantID    string
	DisplayName string
}

// NewCredential acquires credentials from the ambient environment
// (environment variables, managed identity, Azure CLI, ...).
func NewCredential() (azcore.TokenCredential, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("getting azure credentials: %w", err)
	}
	return cred, nil
}

// ResolveSubscription returns the subscription with the given id, or the
// first subscription listed for the credential when id is empty.
func ResolveSubscription(
	ctx context.Context,
	cred azcore.TokenCredential,
	options *arm.ClientOptions,
	id string,
) (*Subscription, error) {
	client, err := armsubscriptions.NewClient(cred, options)
	if err != nil {
		return nil, fmt.Errorf("creating subscriptions client: %w", err)
	}

	if id != "" {
		resp, err := client.Get(ctx, id, nil)
		if err != nil {
			return nil, fmt.Errorf("failed getting subscription for '%s': %w", id, err)
		}
		return toSubscription(&resp.Subscription), nil
	}

	pager := client.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed getting next page of subscriptions: %w", err)
		}
		for _, sub := range page.Value {
			if sub != nil && sub.SubscriptionID != nil {
				return toSubscription(sub), nil
			}
		}
	}
	return nil, ErrNoSubscription
}

func toSubscription(sub *armsubscriptions.Subscription) *Subscription {
	return &Subscription{
		ID:          deref(sub.SubscriptionID),
		TenantID:    deref(sub.TenantID),
		DisplayName: deref(sub.DisplayName),
	}
}

// Clients bundles the ARM clients used during provisioning. All calls block
// until the underlying long-running operation completes.
type Clients struct {
	subscription *Subscription
	credential   azcore.TokenCredential
	options      *arm.ClientOptions
	progress     io.Writer
}

// NewClients creates Clients scoped to sub. Progress for long-running
// operations is written to stdout.
func NewClients(cred azcore.TokenCredential, sub *Subscription, options *arm.ClientOptions) *Clients {
	return &Clients{
		subscription: sub,
		credential:   cred,
		options:      options,
		progress:     os.Stdout,
	}
}

// WithProgress redirects spinner output.
func (c *Clients) WithProgress(w io.Writer) *Clients {
	c.progress = w
	return c
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
