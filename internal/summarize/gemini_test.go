package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestGeminiEndpointSuccess(t *testing.T) {
	var gotKey, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		body, _ := io.ReadAll(r.Body)
		var req geminiRequest
		json.Unmarshal(body, &req)
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotText = req.Contents[0].Parts[0].Text
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"a summary"}]}}]}`))
	}))
	defer srv.Close()

	g := NewGeminiEndpoint(srv.URL, "k123", 5*time.Second)
	out, err := g.Generate(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "a summary" {
		t.Errorf("out = %q", out)
	}
	if gotKey != "k123" || gotText != "prompt text" {
		t.Errorf("key = %q, text = %q", gotKey, gotText)
	}
}

func TestGeminiEndpointErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"Resource exhausted"}}`))
	}))
	defer srv.Close()

	_, err := NewGeminiEndpoint(srv.URL, "k", time.Second).Generate(context.Background(), "p")
	var ef *EndpointFault
	if !errors.As(err, &ef) {
		t.Fatalf("err = %v, want EndpointFault", err)
	}
	if Placeholder(err) != "API response unavailable: error 429. Resource exhausted" {
		t.Errorf("placeholder = %q", Placeholder(err))
	}
}

func TestGeminiEndpointNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewGeminiEndpoint(srv.URL, "k", time.Second).Generate(context.Background(), "p")
	var ef *EndpointFault
	if !errors.As(err, &ef) || ef.Status != 502 || ef.Detail != "bad gateway" {
		t.Fatalf("err = %#v", err)
	}
}

func TestGeminiEndpointUnexpectedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	_, err := NewGeminiEndpoint(srv.URL, "k", time.Second).Generate(context.Background(), "p")
	var ff *FormatFault
	if !errors.As(err, &ff) {
		t.Fatalf("err = %v, want FormatFault", err)
	}
}

func TestClipKeepsRunesWhole(t *testing.T) {
	// "é" is two bytes, so maxFaultBody falls inside a rune.
	s := "x" + strings.Repeat("é", maxFaultBody)
	out := clip(s)
	if !utf8.ValidString(out) {
		t.Fatal("clipped body is not valid UTF-8")
	}
	if len(out) > maxFaultBody || len(out) < maxFaultBody-1 {
		t.Errorf("len = %d", len(out))
	}
	if clip("short") != "short" {
		t.Error("short body changed")
	}
}
