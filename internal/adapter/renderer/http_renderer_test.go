package renderer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iho/facturier/internal/domain"
	"github.com/iho/facturier/internal/usecase"
)

func sampleRequest() usecase.RenderRequest {
	return usecase.RenderRequest{
		ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Content: usecase.RenderContent{
			Reference: "FAC-000001",
		},
		Stylesheet: "classic",
		Metadata: usecase.RenderMetadata{
			Series:   domain.SeriesInvoice,
			Number:   1,
			Kind:     "document",
			Filename: "FAC-000001.pdf",
			Title:    "FAC-000001",
		},
	}
}

func TestHTTPRendererRendersDocument(t *testing.T) {
	var gotRequest usecase.RenderRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/render", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		json.NewEncoder(w).Encode(usecase.RenderResult{
			FilePath:    "/var/renders/FAC-000001.pdf",
			DisplayName: "FAC-000001.pdf",
		})
	}))
	defer srv.Close()

	r := NewHTTPRenderer(srv.URL, 5*time.Second)
	result, err := r.Render(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.Equal(t, "/var/renders/FAC-000001.pdf", result.FilePath)
	require.Equal(t, "FAC-000001.pdf", result.DisplayName)
	require.Equal(t, "FAC-000001", gotRequest.Content.Reference)
	require.Equal(t, "document", gotRequest.Metadata.Kind)
}

func TestHTTPRendererRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(usecase.RenderResult{FilePath: "/var/renders/out.pdf", DisplayName: "out.pdf"})
	}))
	defer srv.Close()

	r := NewHTTPRenderer(srv.URL, 5*time.Second)
	r.initialInterval = 1 * time.Millisecond

	result, err := r.Render(context.Background(), sampleRequest())
	require.NoError(t, err)
	require.Equal(t, "/var/renders/out.pdf", result.FilePath)
	require.Equal(t, int32(3), calls.Load())
}

func TestHTTPRendererDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad stylesheet", http.StatusBadRequest)
	}))
	defer srv.Close()

	r := NewHTTPRenderer(srv.URL, 5*time.Second)
	r.initialInterval = 1 * time.Millisecond

	_, err := r.Render(context.Background(), sampleRequest())
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrRenderFailure))
	require.Equal(t, int32(1), calls.Load())
}

func TestHTTPRendererGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewHTTPRenderer(srv.URL, 5*time.Second)
	r.initialInterval = 1 * time.Millisecond
	r.maxRetries = 2

	_, err := r.Render(context.Background(), sampleRequest())
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrRenderFailure))
	require.Equal(t, int32(3), calls.Load())
}

func TestHTTPRendererRejectsEmptyFilePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(usecase.RenderResult{})
	}))
	defer srv.Close()

	r := NewHTTPRenderer(srv.URL, 5*time.Second)
	_, err := r.Render(context.Background(), sampleRequest())
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrRenderFailure))
}
