// Package daemon implements the typed HTTP client for the sync
// daemon's control API. Every response body is validated against the
// resource's JSON schema before it is decoded, so malformed daemon
// state can never propagate as a valid domain object.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/syncmend/syncmend/internal/config"
	"github.com/syncmend/syncmend/internal/failure"
)

// requestTimeout bounds every control API call. A stalled request
// surfaces as a transport Failure when it expires.
const requestTimeout = 15 * time.Second

const (
	pathPing    = "/rest/system/ping"
	pathConfig  = "/rest/config"
	pathDevices = "/rest/config/devices"
	pathFolders = "/rest/config/folders"
	pathStatus  = "/rest/system/status"
)

// Client talks to the daemon's control API.
type Client struct {
	httpClient *http.Client
	settings   *config.ConnectionSettings
}

// NewClient creates a control API client for the given settings.
// If httpClient is nil, a client with the default request timeout is
// used.
func NewClient(settings *config.ConnectionSettings, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	return &Client{
		httpClient: httpClient,
		settings:   settings,
	}
}

// get issues an authenticated GET against the control API and returns
// the raw body after checking the status code. Transport-level
// problems (network error, non-2xx status) become transport Failures
// carrying the error text or response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := c.settings.BaseURL() + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, failure.Wrap(failure.Transport, err, "creating request for %s", path)
	}

	req.Header.Set("X-API-Key", c.settings.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, failure.Wrap(failure.Transport, err, "requesting %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, failure.Wrap(failure.Transport, err, "reading response from %s", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, failure.New(failure.Transport, "GET %s returned status %d: %s", path, resp.StatusCode, string(body))
	}

	return body, nil
}

// fetch GETs path, validates the body against schema, and decodes it
// into result.
func (c *Client) fetch(ctx context.Context, path, schema string, result any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}

	if err := validateSchema(path, schema, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		// Schema passed but decoding failed; still a validation problem.
		return failure.Wrap(failure.Validation, err, "decoding response from %s", path)
	}

	return nil
}

// Ping checks daemon liveness. Depending on version the daemon answers
// either the bare string "pong" or {"ping": "pong"}; both are accepted.
func (c *Client) Ping(ctx context.Context) error {
	body, err := c.get(ctx, pathPing)
	if err != nil {
		return err
	}

	value := gjson.ParseBytes(body)
	if value.Type == gjson.String && value.Str == "pong" {
		return nil
	}

	if value.Get("ping").Str == "pong" {
		return nil
	}

	return failure.New(failure.Validation, "%s: expected pong, got %q", pathPing, string(body))
}

// Configuration fetches the daemon's full declared configuration.
func (c *Client) Configuration(ctx context.Context) (*Configuration, error) {
	var cfg Configuration
	if err := c.fetch(ctx, pathConfig, configurationSchema, &cfg); err != nil {
		return nil, fmt.Errorf("fetching configuration: %w", err)
	}

	return &cfg, nil
}

// Devices fetches the daemon's device list.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := c.fetch(ctx, pathDevices, devicesSchema, &devices); err != nil {
		return nil, fmt.Errorf("fetching devices: %w", err)
	}

	return devices, nil
}

// Folders fetches the daemon's folder list.
func (c *Client) Folders(ctx context.Context) ([]Folder, error) {
	var folders []Folder
	if err := c.fetch(ctx, pathFolders, foldersSchema, &folders); err != nil {
		return nil, fmt.Errorf("fetching folders: %w", err)
	}

	return folders, nil
}

// FoldersForDevice returns the folders shared with the given device.
// The daemon has no dedicated endpoint for this; it is derived from
// the full folder list client-side.
func (c *Client) FoldersForDevice(ctx context.Context, deviceID string) ([]Folder, error) {
	folders, err := c.Folders(ctx)
	if err != nil {
		return nil, err
	}

	shared := make([]Folder, 0, len(folders))

	for _, folder := range folders {
		if folder.SharesDevice(deviceID) {
			shared = append(shared, folder)
		}
	}

	return shared, nil
}

// SystemStatus fetches the daemon's system status, including its own
// device ID.
func (c *Client) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	var status SystemStatus
	if err := c.fetch(ctx, pathStatus, systemStatusSchema, &status); err != nil {
		return nil, fmt.Errorf("fetching system status: %w", err)
	}

	return &status, nil
}
