// Package fooddata looks up food facts from USDA FoodData Central through a
// read-through cache kept in the document store.
package fooddata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	apperrors "github.com/vladimiradmaev/nutrition-diary/internal/errors"
)

// ErrMissingAPIKey is returned by the client when no FDC key is configured
var ErrMissingAPIKey = errors.New("fdc api key is not configured")

const fdcAPIName = "fdc"

// DefaultDataTypes are the FDC datasets searched by default
var DefaultDataTypes = []string{"Foundation", "SR Legacy", "Branded"}

// FoodSummary is one search candidate
type FoodSummary struct {
	FdcID       string `json:"fdcId"`
	Description string `json:"description"`
	DataType    string `json:"dataType"`
	BrandOwner  string `json:"brandOwner,omitempty"`
}

// Food is a detail record; Raw keeps the full upstream payload
type Food struct {
	FdcID           string          `json:"fdcId"`
	Description     string          `json:"description"`
	DataType        string          `json:"dataType"`
	ServingSize     float64         `json:"servingSize,omitempty"`
	ServingSizeUnit string          `json:"servingSizeUnit,omitempty"`
	Raw             json.RawMessage `json:"raw"`
}

// API is the subset of the FDC HTTP API the lookup uses
type API interface {
	SearchFoods(ctx context.Context, query string, pageSize int) ([]FoodSummary, error)
	GetFood(ctx context.Context, fdcID string) (*Food, error)
}

// Client talks to the FDC REST API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an FDC client; timeout <= 0 means 10s
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	Query    string   `json:"query"`
	PageSize int      `json:"pageSize"`
	DataType []string `json:"dataType"`
}

// SearchFoods calls POST /foods/search
func (c *Client) SearchFoods(ctx context.Context, query string, pageSize int) ([]FoodSummary, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body, err := json.Marshal(searchRequest{Query: query, PageSize: pageSize, DataType: DefaultDataTypes})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/foods/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return parseSearch(data), nil
}

// GetFood calls GET /food/{id}
func (c *Client) GetFood(ctx context.Context, fdcID string) (*Food, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	data, err := c.do(ctx, http.MethodGet, "/food/"+url.PathEscape(fdcID), nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid food payload for %s", fdcID)
	}
	return ParseFood(data), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	endpoint := c.baseURL + path + "?api_key=" + url.QueryEscape(c.apiKey)

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, apperrors.NewTimeoutError("fdc request").WithContext("path", path)
		}
		return nil, apperrors.NewExternalAPIError(err, fdcAPIName).WithContext("path", path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, fdcAPIName).WithContext("path", path)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalAPIError(fmt.Errorf("fdc returned status %d", resp.StatusCode), fdcAPIName).
			WithContext("path", path).
			WithContext("status", resp.StatusCode)
	}
	return data, nil
}

func parseSearch(data []byte) []FoodSummary {
	var foods []FoodSummary
	gjson.GetBytes(data, "foods").ForEach(func(_, item gjson.Result) bool {
		foods = append(foods, FoodSummary{
			FdcID:       item.Get("fdcId").String(),
			Description: item.Get("description").String(),
			DataType:    item.Get("dataType").String(),
			BrandOwner:  item.Get("brandOwner").String(),
		})
		return true
	})
	return foods
}

// ParseFood builds a Food from a raw FDC detail payload
func ParseFood(data []byte) *Food {
	return &Food{
		FdcID:           gjson.GetBytes(data, "fdcId").String(),
		Description:     gjson.GetBytes(data, "description").String(),
		DataType:        gjson.GetBytes(data, "dataType").String(),
		ServingSize:     gjson.GetBytes(data, "servingSize").Float(),
		ServingSizeUnit: gjson.GetBytes(data, "servingSizeUnit").String(),
		Raw:             json.RawMessage(data),
	}
}
