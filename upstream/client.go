// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/transit-dashboard/models"
)

// Upstream API paths
const (
	AgenciesPath = "/api/ntdagencies/agencies"
	AgencyPath   = "/api/ntdagencies/agency"
	FeedsPath    = "/api/gtfsfeeds/feeds"
	CountsPath   = "/api/votes/counts"
	VotePath     = "/api/votes/vote"
	ConnectPath  = "/api/mapper/connectFeedsAndAgencies"
)

var ErrNotFound = errors.New("not found")

// Client talks to the transit-data API. It satisfies engine.AgencySource,
// engine.VoteSource and engine.VoteSink.
type Client struct {
	client    *http.Client
	baseURL   string
	namespace string
}

func NewClient(client *http.Client, baseURL, namespace string) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		namespace: namespace,
	}
}

// Agencies fetches the agency list.
func (c *Client) Agencies(ctx context.Context) ([]models.Agency, error) {
	var agencies []models.Agency
	if err := c.getJSON(ctx, AgenciesPath, nil, &agencies); err != nil {
		return nil, fmt.Errorf("fetching agencies: %w", err)
	}
	return agencies, nil
}

// VoteCounts fetches vote counts for the configured namespace. Keys that are
// not agency ids are skipped.
func (c *Client) VoteCounts(ctx context.Context) (models.VoteCounts, error) {
	var raw map[string]int
	query := url.Values{"namespace": {c.namespace}}
	if err := c.getJSON(ctx, CountsPath, query, &raw); err != nil {
		return nil, fmt.Errorf("fetching vote counts: %w", err)
	}

	counts := make(models.VoteCounts, len(raw))
	for key, n := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			slog.Warn("skipping vote count with invalid id", "key", key)
			continue
		}
		counts[id] = n
	}
	return counts, nil
}

// Agency fetches one agency with its feeds.
func (c *Client) Agency(ctx context.Context, id int64) (models.Agency, error) {
	var agency models.Agency
	query := url.Values{"id": {strconv.FormatInt(id, 10)}}
	if err := c.getJSON(ctx, AgencyPath, query, &agency); err != nil {
		return models.Agency{}, fmt.Errorf("fetching agency %d: %w", id, err)
	}
	return agency, nil
}

// Feeds fetches every current (non-superseded) feed.
func (c *Client) Feeds(ctx context.Context) ([]models.Feed, error) {
	var feeds []models.Feed
	if err := c.getJSON(ctx, FeedsPath, nil, &feeds); err != nil {
		return nil, fmt.Errorf("fetching feeds: %w", err)
	}
	return feeds, nil
}

// CastVote records one vote for an agency. The response body is ignored.
func (c *Client) CastVote(ctx context.Context, agencyID int64) error {
	form := url.Values{
		"namespace": {c.namespace},
		"id":        {strconv.FormatInt(agencyID, 10)},
	}
	if err := c.postForm(ctx, VotePath, form); err != nil {
		return fmt.Errorf("casting vote for agency %d: %w", agencyID, err)
	}
	return nil
}

// ConnectFeedsAndAgencies links every listed feed to every listed agency.
func (c *Client) ConnectFeedsAndAgencies(ctx context.Context, feedIDs, agencyIDs []int64) error {
	form := url.Values{}
	for _, id := range feedIDs {
		form.Add("feed", strconv.FormatInt(id, 10))
	}
	for _, id := range agencyIDs {
		form.Add("agency", strconv.FormatInt(id, 10))
	}
	if err := c.postForm(ctx, ConnectPath, form); err != nil {
		return fmt.Errorf("connecting feeds and agencies: %w", err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return checkStatus(resp)
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
