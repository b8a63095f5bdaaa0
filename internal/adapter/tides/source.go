// Package tides loads the tide document from a local file or an HTTP endpoint.
package tides

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

const maxErrorBody = 512

// Source loads a domain.TideSnapshot from Location, which is either a file
// path or an http(s) URL.
type Source struct {
	location   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSource creates a tide source. timeout bounds HTTP requests.
func NewSource(location string, timeout time.Duration, logger *slog.Logger) *Source {
	return &Source{
		location:   location,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Load reads and parses the tide document.
func (s *Source) Load(ctx context.Context) (domain.TideSnapshot, error) {
	var (
		data []byte
		err  error
	)
	if isURL(s.location) {
		data, err = s.get(ctx)
	} else {
		data, err = s.read(ctx)
	}
	if err != nil {
		return domain.TideSnapshot{}, err
	}

	snap, err := domain.ParseTideSnapshot(s.location, data)
	if err != nil {
		return domain.TideSnapshot{}, err
	}
	s.logger.Debug("tide fetched", "source", s.location, "samples", len(snap.Samples))
	return snap, nil
}

func (s *Source) read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.NetworkError{Source: s.location, Err: err}
	}
	data, err := os.ReadFile(s.location)
	if err != nil {
		return nil, &domain.NetworkError{Source: s.location, Err: err}
	}
	return data, nil
}

func (s *Source) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, &domain.NetworkError{Source: s.location, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Source: s.location, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.NetworkError{
			Source:     s.location,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", body),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Source: s.location, Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
