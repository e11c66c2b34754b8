package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultENSGateway is the default ENS resolution gateway endpoint.
const DefaultENSGateway = "https://api.ensideas.com/ens/resolve"

// ENSClient is a NameService backed by an ENS resolution gateway. The
// resolver protocol itself lives behind the gateway; this client only
// consumes it.
type ENSClient struct {
	endpoint   string
	httpClient *http.Client
}

var _ NameService = (*ENSClient)(nil)

// NewENSClient creates an ENS gateway client. An empty endpoint selects the
// default gateway.
func NewENSClient(endpoint string) *ENSClient {
	if endpoint == "" {
		endpoint = DefaultENSGateway
	}
	return &ENSClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// ensResponse is the gateway's resolution payload.
type ensResponse struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// ResolveName queries the gateway for a name's address. Missing records and
// transport failures both surface as errors; the resolver degrades them to
// Unresolved.
func (c *ENSClient) ResolveName(ctx context.Context, name string) (string, error) {
	reqURL := fmt.Sprintf("%s/%s", c.endpoint, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build resolution request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to resolve name: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %v", err)
	}

	var parsed ensResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode resolution response: %v", err)
	}
	if parsed.Address == "" {
		return "", fmt.Errorf("no record for name %s", name)
	}
	return parsed.Address, nil
}
