package azure

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"

	"github.com/DevExpGBB/aml-lab-setup/internal/output"
)

const pollFrequency = 10 * time.Second

// waitFor blocks on poller until the operation finishes, showing a spinner
// labelled message meanwhile.
func waitFor[T any](ctx context.Context, w io.Writer, message string, poller *runtime.Poller[T]) (T, error) {
	spinner := output.NewSpinner(w, message)
	spinner.Start()

	start := time.Now()
	resp, err := poller.PollUntilDone(ctx, &runtime.PollUntilDoneOptions{Frequency: pollFrequency})
	log.Printf("%s finished after %s (err=%v)", message, time.Since(start).Round(time.Second), err)
	if err != nil {
		spinner.Fail()
		return resp, err
	}
	spinner.Stop()
	return resp, nil
}
