package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var errSubjectNotFound = errors.New("schema subject not found")

// SchemaRegistryClient talks to Confluent Schema Registry just enough to
// resolve the schema IDs embedded in the Confluent wire framing. Subjects
// follow the <topic>-value convention.
type SchemaRegistryClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewSchemaRegistryClient constructs a client against baseURL.
func NewSchemaRegistryClient(baseURL string) *SchemaRegistryClient {
	return &SchemaRegistryClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// EnsureSchema returns the ID of the subject's latest schema, registering the
// given JSON schema first when the subject does not exist yet.
func (c *SchemaRegistryClient) EnsureSchema(ctx context.Context, subject string, schema string) (int, error) {
	id, err := c.latestID(ctx, subject)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, errSubjectNotFound) {
		return 0, fmt.Errorf("subject %s: %w", subject, err)
	}

	id, err = c.register(ctx, subject, schema)
	if err != nil {
		return 0, fmt.Errorf("register subject %s: %w", subject, err)
	}
	return id, nil
}

func (c *SchemaRegistryClient) latestID(ctx context.Context, subject string) (int, error) {
	url := fmt.Sprintf("%s/subjects/%s/versions/latest", c.baseURL, subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, errSubjectNotFound
	case resp.StatusCode >= 300:
		return 0, registryError(resp)
	}

	return decodeSchemaID(resp.Body)
}

func (c *SchemaRegistryClient) register(ctx context.Context, subject string, schema string) (int, error) {
	body, err := json.Marshal(map[string]any{
		"schemaType": "JSON",
		"schema":     schema,
	})
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/subjects/%s/versions", c.baseURL, subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/vnd.schemaregistry.v1+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return 0, registryError(resp)
	}

	return decodeSchemaID(resp.Body)
}

func decodeSchemaID(body io.Reader) (int, error) {
	var payload struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return 0, err
	}
	return payload.ID, nil
}

func registryError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("schema registry status %d: %s", resp.StatusCode, data)
}
