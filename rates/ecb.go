package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the ECB data API series for daily GBP/EUR
// reference rates.
const DefaultBaseURL = "https://data-api.ecb.europa.eu/service/data/EXR/D.GBP.EUR.SP00.A"

// Client fetches daily exchange rates from the ECB SDMX data API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// sdmxData is the subset of the SDMX jsondata response the client
// needs: observation values per series, and the TIME_PERIOD dimension
// that maps observation indexes back to dates.
type sdmxData struct {
	DataSets []struct {
		Series map[string]struct {
			Observations map[string][]*float64 `json:"observations"`
		} `json:"series"`
	} `json:"dataSets"`
	Structure struct {
		Dimensions struct {
			Observation []struct {
				ID     string `json:"id"`
				Values []struct {
					ID string `json:"id"`
				} `json:"values"`
			} `json:"observation"`
		} `json:"dimensions"`
	} `json:"structure"`
}

// Fetch requests all observations in [startDate, endDate] (YYYY-MM-DD)
// and returns one Observation per published trading day.
func (c *Client) Fetch(ctx context.Context, startDate, endDate string) ([]Observation, error) {
	endpoint, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ECB base URL: %w", err)
	}

	query := url.Values{}
	query.Set("startPeriod", startDate)
	query.Set("endPeriod", endDate)
	query.Set("format", "jsondata")
	query.Set("detail", "dataonly")
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("ECB API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ECB API request failed with status %d", resp.StatusCode)
	}

	var data sdmxData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding ECB response: %w", err)
	}

	return parseObservations(data)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// parseObservations walks the SDMX structure: the TIME_PERIOD
// dimension lists the dates in order, and each series keys its
// observation values by the index into that list.
func parseObservations(data sdmxData) ([]Observation, error) {
	if len(data.DataSets) == 0 || len(data.DataSets[0].Series) == 0 {
		return nil, fmt.Errorf("unexpected ECB response format: no data sets")
	}

	var periods []string
	for _, dim := range data.Structure.Dimensions.Observation {
		if dim.ID == "TIME_PERIOD" {
			for _, value := range dim.Values {
				periods = append(periods, value.ID)
			}
			break
		}
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("unexpected ECB response format: no TIME_PERIOD dimension")
	}

	observations := make([]Observation, 0, len(periods))
	for _, series := range data.DataSets[0].Series {
		for key, values := range series.Observations {
			index, err := strconv.Atoi(key)
			if err != nil || index < 0 || index >= len(periods) {
				continue
			}
			if len(values) == 0 || values[0] == nil {
				continue
			}
			observations = append(observations, Observation{
				Date: periods[index],
				Rate: decimal.NewFromFloat(*values[0]),
			})
		}
	}

	return observations, nil
}
