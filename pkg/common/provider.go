// File: pkg/common/provider.go
package common

import (
	"sort"
	"strings"
)

type Provider string

const (
	AWS       Provider = "aws"
	Linode    Provider = "linode"
	Backblaze Provider = "backblaze"
	GCP       Provider = "gcp"
)

// endpointTemplate builds the S3-compatible endpoint for a provider from its region
type endpointTemplate struct {
	build         func(region string) string
	regionIgnored bool
}

// Every supported provider has exactly one entry here. Adding a provider is a table edit
var endpointTable = map[Provider]endpointTemplate{
	AWS: {
		build: func(region string) string { return "https://s3." + region + ".amazonaws.com" },
	},
	Linode: {
		build: func(region string) string { return "https://" + region + ".linodeobjects.com" },
	},
	Backblaze: {
		build: func(region string) string { return "https://s3." + region + ".backblazeb2.com" },
	},
	GCP: {
		build:         func(string) string { return "https://storage.googleapis.com/" },
		regionIgnored: true,
	},
}

// Parses a provider name case-insensitively, rejecting anything outside the endpoint table
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := endpointTable[p]; !ok {
		return "", &UnsupportedProviderError{Name: name}
	}
	return p, nil
}

// Returns the endpoint URL for the provider. The region is not validated here, see ProviderConfig.Validate
func ResolveEndpoint(p Provider, region string) (string, error) {
	tmpl, ok := endpointTable[p]
	if !ok {
		return "", &UnsupportedProviderError{Name: string(p)}
	}
	return tmpl.build(region), nil
}

// Same as ResolveEndpoint but accepts a raw provider name
func ResolveEndpointFor(name, region string) (string, error) {
	p, err := ParseProvider(name)
	if err != nil {
		return "", err
	}
	return ResolveEndpoint(p, region)
}

func (p Provider) RequiresRegion() bool {
	tmpl, ok := endpointTable[p]
	return ok && !tmpl.regionIgnored
}

func (p Provider) String() string {
	return string(p)
}

// Returns the sorted list of provider names known to the endpoint table
func SupportedProviders() []string {
	names := make([]string, 0, len(endpointTable))
	for p := range endpointTable {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}
