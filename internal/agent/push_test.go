package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"poker-platform/internal/game"
)

type fakeHTTPClient struct {
	responses []fakeResponse
	calls     int
}

type fakeResponse struct {
	status int
	body   string
	err    error
}

func (f *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	idx := f.calls
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	f.calls++
	r := f.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(bytes.NewBufferString(r.body)),
	}, nil
}

func TestPusherSucceedsOnFirstAttempt(t *testing.T) {
	client := &fakeHTTPClient{responses: []fakeResponse{
		{status: 200, body: `{"action":"RAISE","amount":150,"reasoning":"value bet"}`},
	}}
	p := newPusher(client, 1000, 2)

	reg := &Registration{ID: "a1"}
	d, err := p.push(context.Background(), "http://example.invalid/callback", reg, "table-1", 1, game.PlayerView{})
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if d.Action != game.ActionRaise || d.Amount != 150 {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if client.calls != 1 {
		t.Fatalf("expected exactly one HTTP call, got %d", client.calls)
	}
}

func TestPusherRetriesOnNon2xxThenSucceeds(t *testing.T) {
	client := &fakeHTTPClient{responses: []fakeResponse{
		{status: 500, body: ""},
		{status: 200, body: `{"action":"FOLD","amount":0}`},
	}}
	p := newPusher(client, 1000, 2)
	p.retryBackoff = 0

	d, err := p.push(context.Background(), "http://example.invalid/callback", &Registration{ID: "a1"}, "table-1", 1, game.PlayerView{})
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if d.Action != game.ActionFold {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if client.calls != 2 {
		t.Fatalf("expected 2 HTTP calls, got %d", client.calls)
	}
}

func TestPusherExhaustsRetriesAndErrors(t *testing.T) {
	client := &fakeHTTPClient{responses: []fakeResponse{
		{status: 500, body: ""},
		{status: 500, body: ""},
		{status: 500, body: ""},
	}}
	p := newPusher(client, 1000, 2)
	p.retryBackoff = 0

	_, err := p.push(context.Background(), "http://example.invalid/callback", &Registration{ID: "a1"}, "table-1", 1, game.PlayerView{})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if client.calls != 3 {
		t.Fatalf("expected 1 initial attempt + 2 retries = 3 calls, got %d", client.calls)
	}
}

func TestPusherMarshalsExpectedRequestShape(t *testing.T) {
	var captured map[string]any
	client := &capturingHTTPClient{onRequest: func(body []byte) {
		_ = json.Unmarshal(body, &captured)
	}, status: 200, respBody: `{"action":"CHECK","amount":0}`}

	p := newPusher(client, 1000, 0)
	_, err := p.push(context.Background(), "http://example.invalid/callback", &Registration{ID: "agent-xyz"}, "table-9", 7, game.PlayerView{})
	if err != nil {
		t.Fatalf("push: %v", err)
	}

	if captured["type"] != "action_request" {
		t.Fatalf("expected type=action_request, got %v", captured["type"])
	}
	if captured["agentId"] != "agent-xyz" {
		t.Fatalf("expected agentId=agent-xyz, got %v", captured["agentId"])
	}
	if captured["tableId"] != "table-9" {
		t.Fatalf("expected tableId=table-9, got %v", captured["tableId"])
	}
}

type capturingHTTPClient struct {
	onRequest func(body []byte)
	status    int
	respBody  string
}

func (c *capturingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	body, _ := io.ReadAll(req.Body)
	c.onRequest(body)
	return &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(bytes.NewBufferString(c.respBody)),
	}, nil
}
