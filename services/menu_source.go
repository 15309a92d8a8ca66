package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RemoteMenuItem is one record of the remote menu document. Fields are not
// validated; missing ones stay zero.
type RemoteMenuItem struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       RemotePrice `json:"price"`
	Image       string      `json:"image"`
	Category    string      `json:"category"`
}

// RemotePrice accepts 12.99 as well as "12.99". Anything else, including
// negative and non-finite values, is 0.
type RemotePrice float64

func (p *RemotePrice) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		*p = 0
		return nil
	}
	*p = RemotePrice(f)
	return nil
}

type remoteMenuDoc struct {
	Menu []RemoteMenuItem `json:"menu"`
}

// MenuSource yields the canonical menu used to populate the local store.
type MenuSource interface {
	FetchMenu(ctx context.Context) ([]RemoteMenuItem, error)
}

// HTTPMenuSource reads the static JSON menu document.
type HTTPMenuSource struct {
	client *http.Client
	url    string
}

func NewHTTPMenuSource(url string, timeout time.Duration) *HTTPMenuSource {
	return &HTTPMenuSource{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

func (s *HTTPMenuSource) FetchMenu(ctx context.Context) ([]RemoteMenuItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build menu request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch menu: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch menu: unexpected status %s", resp.Status)
	}
	var doc remoteMenuDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	if doc.Menu == nil {
		return nil, errors.New("decode menu: document has no menu array")
	}
	return doc.Menu, nil
}
