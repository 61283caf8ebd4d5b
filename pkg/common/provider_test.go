package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		provider Provider
		region   string
		want     string
	}{
		{AWS, "us-east-1", "https://s3.us-east-1.amazonaws.com"},
		{Linode, "us-southeast-1", "https://us-southeast-1.linodeobjects.com"},
		{Backblaze, "us-west-004", "https://s3.us-west-004.backblazeb2.com"},
		{GCP, "europe-west1", "https://storage.googleapis.com/"},
		{GCP, "", "https://storage.googleapis.com/"},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider)+"/"+tt.region, func(t *testing.T) {
			got, err := ResolveEndpoint(tt.provider, tt.region)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveEndpointUnknownProvider(t *testing.T) {
	endpoint, err := ResolveEndpoint(Provider("azure"), "eastus")
	require.Error(t, err)
	assert.Empty(t, endpoint)

	var unsupported *UnsupportedProviderError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "azure", unsupported.Name)
}

func TestResolveEndpointForIsCaseInsensitive(t *testing.T) {
	got, err := ResolveEndpointFor(" AWS ", "eu-central-1")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.eu-central-1.amazonaws.com", got)

	_, err = ResolveEndpointFor("wasabi", "us-east-1")
	var unsupported *UnsupportedProviderError
	assert.ErrorAs(t, err, &unsupported)
}

func TestSupportedProviders(t *testing.T) {
	assert.Equal(t, []string{"aws", "backblaze", "gcp", "linode"}, SupportedProviders())
}

func TestRequiresRegion(t *testing.T) {
	assert.True(t, AWS.RequiresRegion())
	assert.True(t, Linode.RequiresRegion())
	assert.True(t, Backblaze.RequiresRegion())
	assert.False(t, GCP.RequiresRegion())
	assert.False(t, Provider("azure").RequiresRegion())
}
