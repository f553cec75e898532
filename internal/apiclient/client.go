package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/GeoFix/GeoFix-Backend/internal/mapview"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrKind buckets a failed request for logging: timed out, the server
// answered with an error, or we never reached it at all.
type ErrKind int

const (
	ErrKindNetwork ErrKind = iota
	ErrKindTimeout
	ErrKindServer
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindTimeout:
		return "timeout"
	case ErrKindServer:
		return "server"
	default:
		return "network"
	}
}

// RequestError wraps a failed Feature API call with its classification.
type RequestError struct {
	Kind    ErrKind
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Kind == ErrKindServer {
		return fmt.Sprintf("feature API returned HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("feature API request failed (%s): %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Classify reports the error kind for any error coming out of this client.
func Classify(err error) ErrKind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	if isTimeout(err) {
		return ErrKindTimeout
	}
	return ErrKindNetwork
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Client talks to the Feature API over HTTP with a fixed request timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client from the API_BASE_URL env var, falling back to
// the local dev server.
func NewClient() *Client {
	base := os.Getenv("API_BASE_URL")
	if base == "" {
		base = "http://localhost:5050"
	}
	return NewClientWithBase(base)
}

func NewClientWithBase(base string) *Client {
	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type storeResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// StoreFeatures bulk-uploads raw feature records and returns the stored count.
func (c *Client) StoreFeatures(ctx context.Context, records []map[string]any) (int, error) {
	body, err := json.Marshal(records)
	if err != nil {
		return 0, fmt.Errorf("encoding features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/mapview/store", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, c.wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return 0, serverError(resp)
	}

	var out storeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}
	return out.Count, nil
}

// FeaturesInBounds fetches stored features inside the given rectangle.
func (c *Client) FeaturesInBounds(ctx context.Context, north, south, east, west float64) ([]mapview.Feature, error) {
	query := url.Values{}
	query.Set("north", fmt.Sprintf("%f", north))
	query.Set("south", fmt.Sprintf("%f", south))
	query.Set("east", fmt.Sprintf("%f", east))
	query.Set("west", fmt.Sprintf("%f", west))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/mapview/features/bounds?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, serverError(resp)
	}

	var features []mapview.Feature
	if err := json.NewDecoder(resp.Body).Decode(&features); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return features, nil
}

// StoreBatch implements render.Forwarder: each render batch goes to the
// store endpoint as raw records, with display coordinates lifted from point
// geometries so the bounds query can find them later.
func (c *Client) StoreBatch(ctx context.Context, batch []*geojson.Feature) error {
	records := make([]map[string]any, 0, len(batch))
	for _, feature := range batch {
		record := make(map[string]any, len(feature.Properties)+1)
		for k, v := range feature.Properties {
			record[k] = v
		}
		if pt, ok := feature.Geometry.(orb.Point); ok {
			record["display"] = map[string]any{
				"latitude":  pt.Lat(),
				"longitude": pt.Lon(),
			}
		}
		if len(record) == 0 {
			continue
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil
	}

	_, err := c.StoreFeatures(ctx, records)
	return err
}

func (c *Client) wrapTransportError(err error) error {
	kind := ErrKindNetwork
	if isTimeout(err) {
		kind = ErrKindTimeout
	}
	return &RequestError{Kind: kind, Err: err}
}

func serverError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return &RequestError{Kind: ErrKindServer, Status: resp.StatusCode, Message: body.Message}
}
