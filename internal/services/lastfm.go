// Last.fm API implementation of [SimilarityService]
//
// Uses the track.getsimilar method: https://www.last.fm/api/show/track.getSimilar
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/listify/internal/shared"
)

const lastfmBaseURL = "https://ws.audioscrobbler.com/2.0/"

type lastfmArtist struct {
	Name string `json:"name"`
}

type lastfmTrack struct {
	Name   string       `json:"name"`
	Match  float64      `json:"match"`
	Artist lastfmArtist `json:"artist"`
}

type similarTracksResponse struct {
	SimilarTracks struct {
		Track []lastfmTrack `json:"track"`
	} `json:"similartracks"`
}

// LastFMService implements [SimilarityService] against the Last.fm web API.
// Authentication is a per-request API key rather than a user session.
type LastFMService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ SimilarityService = (*LastFMService)(nil)

// NewLastFMService creates a Last.fm client. baseURL and client default to
// the public API endpoint and [http.DefaultClient].
func NewLastFMService(apiKey, baseURL string, client *http.Client) *LastFMService {
	if baseURL == "" {
		baseURL = lastfmBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &LastFMService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (l *LastFMService) Name() string {
	return "Last.fm"
}

// SimilarTracks fetches tracks similar to (title, artist), ranked by the
// source's match score descending.
//
// Last.fm omits fields inconsistently, so a malformed or unexpected payload
// is treated as zero candidates rather than a hard failure. Zero candidates
// is the caller's signal that the song is unknown to the source.
func (l *LastFMService) SimilarTracks(ctx context.Context, title, artist string, limit int) ([]SimilarTrack, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("%w: Last.fm api_key not configured", shared.ErrMissingCredentials)
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	params := url.Values{}
	params.Set("method", "track.getsimilar")
	params.Set("track", title)
	params.Set("artist", artist)
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("api_key", l.apiKey)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSimilarityUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrSimilarityUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSimilarityUnavailable, err)
	}

	var response similarTracksResponse
	if err := json.Unmarshal(body, &response); err != nil {
		// Error payloads and single-track responses don't match the schema;
		// both mean "nothing usable", not a transport failure.
		return []SimilarTrack{}, nil
	}

	candidates := make([]SimilarTrack, 0, len(response.SimilarTracks.Track))
	for _, t := range response.SimilarTracks.Track {
		if t.Name == "" || t.Artist.Name == "" {
			continue
		}
		candidates = append(candidates, SimilarTrack{
			Title:  t.Name,
			Artist: t.Artist.Name,
			Match:  t.Match,
		})
	}

	return candidates, nil
}
