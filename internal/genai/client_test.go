package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(rt http.RoundTripper) *Client {
	return NewClient("test-key", WithHTTPClient(&http.Client{Transport: rt}))
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func TestGenerateReturnsFirstCandidateText(t *testing.T) {
	var gotURL string
	var gotBody generateRequest

	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`), nil
	}))

	text, err := client.Generate(context.Background(), "a prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "hello" {
		t.Fatalf("expected hello, got %q", text)
	}
	if got := gotBody.Contents[0].Parts[0].Text; got != "a prompt" {
		t.Fatalf("expected prompt in body, got %q", got)
	}
	if want := "/models/gemini-1.5-flash:generateContent"; !bytes.Contains([]byte(gotURL), []byte(want)) {
		t.Fatalf("unexpected url %q", gotURL)
	}
	if !bytes.Contains([]byte(gotURL), []byte("key=test-key")) {
		t.Fatalf("api key missing from url %q", gotURL)
	}
}

func TestGenerateErrorsOnNonOKStatus(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `{}`), nil
	}))

	if _, err := client.Generate(context.Background(), "p"); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestGenerateErrorsOnEmptyCandidates(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"candidates":[]}`), nil
	}))

	if _, err := client.Generate(context.Background(), "p"); err == nil {
		t.Fatalf("expected error for empty candidates")
	}
}

func TestGenerateErrorsOnBadJSON(t *testing.T) {
	client := newTestClient(roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, "not-json"), nil
	}))

	if _, err := client.Generate(context.Background(), "p"); err == nil {
		t.Fatalf("expected JSON decode error")
	}
}

func TestGenerateUsesConfiguredModel(t *testing.T) {
	var gotURL string
	client := NewClient("k",
		WithModel("gemini-2.0-pro"),
		WithHTTPClient(&http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			gotURL = r.URL.String()
			return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"x"}]}}]}`), nil
		})}),
	)

	if _, err := client.Generate(context.Background(), "p"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !bytes.Contains([]byte(gotURL), []byte("gemini-2.0-pro")) {
		t.Fatalf("expected configured model in url %q", gotURL)
	}
}
