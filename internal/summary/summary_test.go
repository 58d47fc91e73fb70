package summary

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeSendsPromptAndTrims(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","response":"\n  Ada Lovelace is a 30-year-old student.  \n","done":true}`))
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL + "/api/generate", Model: "llama3"})
	text, err := c.Summarize(context.Background(), "Ada Lovelace", 30, "ada@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace is a 30-year-old student.", text)
	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Contains(t, got.Prompt, "third-person")
	assert.Contains(t, got.Prompt, "Name: Ada Lovelace")
	assert.Contains(t, got.Prompt, "Age: 30")
	assert.Contains(t, got.Prompt, "Email: ada@example.com")
}

func TestSummarizeStreamFlagIsSerialized(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	_, err := New(Config{URL: srv.URL}).Summarize(context.Background(), "A", 1, "a@example.com")
	require.NoError(t, err)

	stream, present := raw["stream"]
	assert.True(t, present)
	assert.Equal(t, false, stream)
	assert.Equal(t, DefaultModel, raw["model"])
}

func TestSummarizeMissingResponseFieldIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"done":true}`))
	}))
	defer srv.Close()

	text, err := New(Config{URL: srv.URL}).Summarize(context.Background(), "A", 1, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestSummarizeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `model "llama3" not found`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New(Config{URL: srv.URL}).Summarize(context.Background(), "A", 1, "a@example.com")
	require.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "not found")
}

func TestSummarizeErrorBodyIsTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 4*maxErrorBody)))
	}))
	defer srv.Close()

	_, err := New(Config{URL: srv.URL}).Summarize(context.Background(), "A", 1, "a@example.com")
	require.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.Less(t, len(err.Error()), 2*maxErrorBody)
}

func TestSummarizeMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	}))
	defer srv.Close()

	_, err := New(Config{URL: srv.URL}).Summarize(context.Background(), "A", 1, "a@example.com")
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
}

func TestSummarizeUnreachable(t *testing.T) {
	// Grab a free port, then close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = New(Config{URL: "http://" + addr + "/api/generate"}).
		Summarize(context.Background(), "A", 1, "a@example.com")
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
}

func TestSummarizeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(Config{URL: srv.URL, Timeout: 50 * time.Millisecond}).
		Summarize(context.Background(), "A", 1, "a@example.com")
	assert.ErrorIs(t, err, ErrGenerationUnavailable)
}

func TestNewAppliesDefaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, DefaultURL, c.config.URL)
	assert.Equal(t, DefaultModel, c.config.Model)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestPromptLayout(t *testing.T) {
	p := Prompt("Ada Lovelace", 30, "ada@example.com")
	assert.True(t, strings.HasSuffix(p, "\n\nName: Ada Lovelace\nAge: 30\nEmail: ada@example.com"))
	assert.Contains(t, p, "no flattery")
}
