package payments

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/payflow-hq/payflow-engine/pkg/logger"
	"github.com/payflow-hq/payflow-engine/pkg/models"
)

// HTTPParser is a Parser backed by an HTTP parsing service.
type HTTPParser struct {
	endpoint   string
	httpClient *http.Client
	logger     logger.Logger
}

var _ Parser = (*HTTPParser)(nil)

// NewHTTPParser creates a parsing service client.
func NewHTTPParser(endpoint string, log logger.Logger) *HTTPParser {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &HTTPParser{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: log,
	}
}

// ParseText extracts a payment intent from free text. The intent's missing
// fields are recomputed locally; the parser's own view is not trusted.
func (p *HTTPParser) ParseText(ctx context.Context, text string) (*models.PaymentIntent, error) {
	payload := map[string]string{"text": text}

	var parsed models.PaymentIntent
	if err := p.post(ctx, "/parse/text", payload, &parsed); err != nil {
		return nil, err
	}
	parsed.OriginalInput = text
	parsed.MissingFields = parsed.ComputeMissingFields()
	return &parsed, nil
}

// ParseInvoice extracts a structured invoice from an uploaded document.
func (p *HTTPParser) ParseInvoice(ctx context.Context, fileName, fileType string, data []byte) (*models.ParsedInvoice, error) {
	payload := map[string]string{
		"file_name": fileName,
		"file_type": fileType,
		"data":      base64.StdEncoding.EncodeToString(data),
	}

	var parsed models.ParsedInvoice
	if err := p.post(ctx, "/parse/invoice", payload, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (p *HTTPParser) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode parse request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build parse request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call parsing service: %v", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			p.logger.Error("Failed to close response body: %v", err)
		}
	}(resp.Body)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode parse response: %v", err)
	}
	return nil
}
