package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/listify/internal/shared"
)

func TestLastFMService(t *testing.T) {
	t.Run("requires api key", func(t *testing.T) {
		srv := NewLastFMService("", "", nil)

		_, err := srv.SimilarTracks(context.Background(), "Yesterday", "The Beatles", 10)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("sends track.getsimilar request", func(t *testing.T) {
		var gotQuery map[string]string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = map[string]string{
				"method":  r.URL.Query().Get("method"),
				"track":   r.URL.Query().Get("track"),
				"artist":  r.URL.Query().Get("artist"),
				"limit":   r.URL.Query().Get("limit"),
				"api_key": r.URL.Query().Get("api_key"),
				"format":  r.URL.Query().Get("format"),
			}
			w.Write([]byte(`{"similartracks":{"track":[
				{"name":"Let It Be","match":0.92,"artist":{"name":"The Beatles"}},
				{"name":"Hey Jude","match":0.85,"artist":{"name":"The Beatles"}}
			]}}`))
		}))
		defer server.Close()

		srv := NewLastFMService("test_key", server.URL, server.Client())

		candidates, err := srv.SimilarTracks(context.Background(), "Yesterday", "The Beatles", 50)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := map[string]string{
			"method":  "track.getsimilar",
			"track":   "Yesterday",
			"artist":  "The Beatles",
			"limit":   "50",
			"api_key": "test_key",
			"format":  "json",
		}
		for key, value := range want {
			if gotQuery[key] != value {
				t.Errorf("query param %s = %q, want %q", key, gotQuery[key], value)
			}
		}

		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(candidates))
		}
		if candidates[0].Title != "Let It Be" || candidates[0].Match != 0.92 {
			t.Errorf("unexpected first candidate %+v", candidates[0])
		}
	})

	t.Run("clamps limit to 100", func(t *testing.T) {
		var gotLimit string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotLimit = r.URL.Query().Get("limit")
			w.Write([]byte(`{"similartracks":{"track":[]}}`))
		}))
		defer server.Close()

		srv := NewLastFMService("test_key", server.URL, server.Client())

		if _, err := srv.SimilarTracks(context.Background(), "Yesterday", "The Beatles", 500); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotLimit != "100" {
			t.Errorf("expected limit clamped to 100, got %s", gotLimit)
		}
	})

	t.Run("malformed payload yields zero candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":6,"message":"Track not found"`))
		}))
		defer server.Close()

		srv := NewLastFMService("test_key", server.URL, server.Client())

		candidates, err := srv.SimilarTracks(context.Background(), "Nonexistent", "Nobody", 10)
		if err != nil {
			t.Fatalf("expected no error for malformed payload, got %v", err)
		}
		if len(candidates) != 0 {
			t.Errorf("expected zero candidates, got %d", len(candidates))
		}
	})

	t.Run("skips entries missing name or artist", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"similartracks":{"track":[
				{"name":"Good Track","match":0.9,"artist":{"name":"Good Artist"}},
				{"name":"","match":0.8,"artist":{"name":"Orphan Artist"}},
				{"name":"Orphan Track","match":0.7,"artist":{"name":""}}
			]}}`))
		}))
		defer server.Close()

		srv := NewLastFMService("test_key", server.URL, server.Client())

		candidates, err := srv.SimilarTracks(context.Background(), "Yesterday", "The Beatles", 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(candidates) != 1 {
			t.Fatalf("expected 1 usable candidate, got %d", len(candidates))
		}
		if candidates[0].Title != "Good Track" {
			t.Errorf("unexpected candidate %+v", candidates[0])
		}
	})

	t.Run("non-2xx is a transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		srv := NewLastFMService("test_key", server.URL, server.Client())

		_, err := srv.SimilarTracks(context.Background(), "Yesterday", "The Beatles", 10)
		if !errors.Is(err, shared.ErrSimilarityUnavailable) {
			t.Errorf("expected ErrSimilarityUnavailable, got %v", err)
		}
	})
}
