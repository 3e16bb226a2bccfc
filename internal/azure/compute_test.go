package azure

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testComputesPath = "/workspaces/aml_ws_abc123/computes"

func testComputeSpec(name string) ComputeSpec {
	return ComputeSpec{
		Name:          name,
		Workspace:     "aml_ws_abc123",
		ResourceGroup: "aml_rg_abc123",
		Location:      "eastus",
		MinNodes:      0,
		MaxNodes:      2,
	}
}

func newComputeClients(transport *fakeTransport) *Clients {
	return NewClients(fakeCredential{}, &Subscription{ID: "sub-1"}, testOptions(transport)).
		WithProgress(&bytes.Buffer{})
}

func TestCreateComputeInstance(t *testing.T) {
	transport := &fakeTransport{}
	transport.when(http.MethodPut, testComputesPath+"/ci-abc123", http.StatusOK,
		`{"name": "ci-abc123", "properties": {"computeType": "ComputeInstance", "provisioningState": "Succeeded"}}`)

	err := newComputeClients(transport).CreateComputeInstance(context.Background(), testComputeSpec("ci-abc123"))
	require.NoError(t, err)

	body, ok := transport.bodyFor(http.MethodPut, testComputesPath+"/ci-abc123")
	require.True(t, ok)
	assert.Contains(t, body, `"computeType":"ComputeInstance"`)
	assert.Contains(t, body, `"vmSize":"STANDARD_DS11_V2"`)
	assert.Contains(t, body, `"location":"eastus"`)
}

func TestCreateComputeCluster(t *testing.T) {
	transport := &fakeTransport{}
	transport.when(http.MethodPut, testComputesPath+"/aml-cluster", http.StatusOK,
		`{"name": "aml-cluster", "properties": {"computeType": "AmlCompute", "provisioningState": "Succeeded"}}`)

	spec := testComputeSpec("aml-cluster")
	spec.VMSize = "STANDARD_DS3_V2"
	err := newComputeClients(transport).CreateComputeCluster(context.Background(), spec)
	require.NoError(t, err)

	body, ok := transport.bodyFor(http.MethodPut, testComputesPath+"/aml-cluster")
	require.True(t, ok)
	assert.Contains(t, body, `"computeType":"AmlCompute"`)
	assert.Contains(t, body, `"vmSize":"STANDARD_DS3_V2"`)
	assert.Contains(t, body, `"maxNodeCount":2`)
	assert.Contains(t, body, `"minNodeCount":0`)
}

func TestCreateComputeCluster_FailedProvisioningState(t *testing.T) {
	transport := &fakeTransport{}
	transport.when(http.MethodPut, testComputesPath+"/aml-cluster", http.StatusOK,
		`{"name": "aml-cluster", "properties": {"computeType": "AmlCompute", "provisioningState": "Failed"}}`)

	err := newComputeClients(transport).CreateComputeCluster(context.Background(), testComputeSpec("aml-cluster"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "creating compute cluster aml-cluster")
}

func TestCreateComputeInstance_RejectedRequest(t *testing.T) {
	transport := &fakeTransport{}
	transport.when(http.MethodPut, testComputesPath+"/ci-abc123", http.StatusBadRequest,
		`{"error": {"code": "BadArgument", "message": "vm size not supported"}}`)

	err := newComputeClients(transport).CreateComputeInstance(context.Background(), testComputeSpec("ci-abc123"))
	assert.ErrorContains(t, err, "creating compute instance ci-abc123")
}

func TestListComputes_FollowsNextLink(t *testing.T) {
	transport := &fakeTransport{}
	next := "https://management.azure.com/subscriptions/sub-1/resourceGroups/aml_rg_abc123" +
		"/providers/Microsoft.MachineLearningServices" + testComputesPath + "?api-version=2024-04-01&$skip=page2"
	transport.responses = append(transport.responses, fakeResponse{
		match: func(req *http.Request) bool {
			return req.Method == http.MethodGet && strings.Contains(req.URL.RawQuery, "skip=page2")
		},
		status: http.StatusOK,
		body:   `{"value": [{"name": "aml-cluster", "properties": {"computeType": "AmlCompute", "provisioningState": "Creating"}}]}`,
	})
	transport.when(http.MethodGet, testComputesPath, http.StatusOK,
		`{"value": [{"name": "ci-abc123", "properties": {"computeType": "ComputeInstance", "provisioningState": "Succeeded"}}], "nextLink": "`+next+`"}`)

	computes, err := newComputeClients(transport).ListComputes(context.Background(), "aml_rg_abc123", "aml_ws_abc123")
	require.NoError(t, err)
	assert.Equal(t, []ComputeInfo{
		{Name: "ci-abc123", Type: "ComputeInstance", State: "Succeeded"},
		{Name: "aml-cluster", Type: "AmlCompute", State: "Creating"},
	}, computes)
	assert.Len(t, transport.requests, 2)
}
