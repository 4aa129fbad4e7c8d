package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NotCoffee418/ignyte_sensor/pkg/types"
)

// FirebaseLoader fetches a device's readings from the Realtime Database
// REST API. Failures are returned as-is; retrying is up to the caller.
type FirebaseLoader struct {
	BaseURL string
	Device  string
	// Raw query string appended to the request, e.g. "auth=<secret>"
	Auth   string
	Client *http.Client
}

func NewFirebaseLoader(baseURL, device, auth string) *FirebaseLoader {
	return &FirebaseLoader{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Device:  device,
		Auth:    auth,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *FirebaseLoader) URL() string {
	u := fmt.Sprintf("%s/devices/%s/readings.json", f.BaseURL, f.Device)
	if f.Auth != "" {
		u += "?" + f.Auth
	}
	return u
}

func (f *FirebaseLoader) Load(ctx context.Context) (types.RawSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch readings: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch readings: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnexpectedBody, resp.StatusCode)
	}

	// The endpoint returns the readings map itself, or null when empty
	return ParseExport(body, f.Device)
}
