// Package openmeteo fetches hourly forecasts from the Open-Meteo API.
package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/sony/gobreaker/v2"
)

// SourceName identifies Open-Meteo in errors and logs.
const SourceName = "open-meteo"

// HourlyVariables are the series requested from the API.
const HourlyVariables = "temperature_2m,precipitation,relative_humidity_2m,windspeed_10m"

const maxErrorBody = 512

// Options configures a Client.
type Options struct {
	BaseURL            string
	Latitude           float64
	Longitude          float64
	Timezone           string
	Location           *time.Location
	Timeout            time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// Client loads a domain.WeatherSeries for one location.
type Client struct {
	opts       Options
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an Open-Meteo client. Requests go through a circuit
// breaker that opens after BreakerMaxFailures consecutive failures.
func NewClient(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Client {
	c := &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        SourceName,
		MaxRequests: 1,
		Timeout:     opts.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerMaxFailures
		},
		OnStateChange: c.onStateChange,
	})
	return c
}

// CacheKey returns the cache key for this client's location.
func (c *Client) CacheKey() string {
	return fmt.Sprintf("weather:%.4f,%.4f", c.opts.Latitude, c.opts.Longitude)
}

// Load fetches and parses the hourly forecast.
func (c *Client) Load(ctx context.Context) (domain.WeatherSeries, error) {
	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx)
	})
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		var ne *domain.NetworkError
		if errors.As(err, &ne) {
			return domain.WeatherSeries{}, err
		}
		// Open circuit or too many half-open requests.
		return domain.WeatherSeries{}, &domain.NetworkError{Source: SourceName, Err: err}
	}

	series, err := domain.ParseWeatherSeries(SourceName, body, c.opts.Location)
	if err != nil {
		return domain.WeatherSeries{}, err
	}
	c.logger.Debug("weather fetched", "samples", series.Len())
	return series, nil
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(), nil)
	if err != nil {
		return nil, &domain.NetworkError{Source: SourceName, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Source: SourceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.NetworkError{
			Source:     SourceName,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Source: SourceName, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

func (c *Client) requestURL() string {
	params := url.Values{
		"latitude":  {strconv.FormatFloat(c.opts.Latitude, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(c.opts.Longitude, 'f', -1, 64)},
		"hourly":    {HourlyVariables},
		"timezone":  {c.opts.Timezone},
	}
	return c.opts.BaseURL + "?" + params.Encode()
}

func (c *Client) onStateChange(name string, from, to gobreaker.State) {
	c.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	switch to {
	case gobreaker.StateClosed:
		c.metrics.WeatherBreakerState.Set(0)
	case gobreaker.StateHalfOpen:
		c.metrics.WeatherBreakerState.Set(1)
	case gobreaker.StateOpen:
		c.metrics.WeatherBreakerState.Set(2)
	}
}
