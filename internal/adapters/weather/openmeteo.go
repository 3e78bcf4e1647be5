package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/httpx"
	"trip-planner-service/internal/platform/obs"
)

const defaultOpenMeteoURL = "https://api.open-meteo.com"

// OpenMeteoClient fetches daily forecasts from Open-Meteo. No API key is needed.
type OpenMeteoClient struct {
	client  *httpx.Client
	baseURL string
}

func NewOpenMeteoClient(baseURL string) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = defaultOpenMeteoURL
	}
	return &OpenMeteoClient{
		client:  httpx.NewClient("open_meteo", 5),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type forecastResponse struct {
	Daily struct {
		Time             []string  `json:"time"`
		TemperatureMax   []float64 `json:"temperature_2m_max"`
		TemperatureMin   []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

func (c *OpenMeteoClient) Forecast(ctx context.Context, lat, lon float64) (_ domain.Forecast, err error) {
	defer obs.Time(ctx, "openmeteo.Forecast")(&err)

	endpoint := c.baseURL + "/v1/forecast"

	resp, err := c.client.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
		q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
		q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum")
		q.Set("timezone", "auto")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("open-meteo request: %w", err)
	}
	defer resp.Body.Close()

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return domain.Forecast{}, fmt.Errorf("decode open-meteo response: %w", err)
	}

	d := fr.Daily
	days := make([]domain.ForecastDay, 0, len(d.Time))
	for i, date := range d.Time {
		days = append(days, domain.ForecastDay{
			Date:     date,
			TempMaxC: at(d.TemperatureMax, i),
			TempMinC: at(d.TemperatureMin, i),
			RainMM:   at(d.PrecipitationSum, i),
		})
	}

	return domain.Forecast{Days: days}, nil
}

func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}
