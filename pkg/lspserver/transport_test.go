package lspserver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestReadMessage(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`
	input := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)

	msg, err := readMessage(bufio.NewReader(strings.NewReader(input)))
	if err != nil {
		t.Fatalf("readMessage: %v", err)
	}
	if msg.Method != "initialize" {
		t.Errorf("expected initialize, got %q", msg.Method)
	}
}

func TestWriteMessage(t *testing.T) {
	var buf bytes.Buffer
	resp := rpcResponse{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Result:  map[string]string{"name": "semls"},
	}
	if err := writeMessage(&buf, resp); err != nil {
		t.Fatalf("writeMessage: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "Content-Length:") {
		t.Error("missing Content-Length header")
	}
	if !strings.Contains(got, `"name":"semls"`) {
		t.Error("missing response body")
	}
}

func TestServeOnce_DispatchesRegisteredHandler(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":1,"method":"shutdown"}`
	input := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)

	var out bytes.Buffer
	s := NewServer(strings.NewReader(input), &out)
	s.Handle("shutdown", func(params json.RawMessage) (any, error) {
		return nil, nil
	})

	if err := s.ServeOnce(); err != nil {
		t.Fatalf("ServeOnce: %v", err)
	}
	if !strings.Contains(out.String(), `"result":null`) {
		t.Errorf("expected null result, got: %s", out.String())
	}
}

func TestServeOnce_UnknownMethodReturnsError(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":1,"method":"bogus"}`
	input := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)

	var out bytes.Buffer
	s := NewServer(strings.NewReader(input), &out)

	if err := s.ServeOnce(); err != nil {
		t.Fatalf("ServeOnce: %v", err)
	}
	if !strings.Contains(out.String(), `"error"`) {
		t.Errorf("expected error response, got: %s", out.String())
	}
}

func TestServeOnce_NotificationSkipsResponse(t *testing.T) {
	body := `{"jsonrpc":"2.0","method":"initialized"}`
	input := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)

	var out bytes.Buffer
	s := NewServer(strings.NewReader(input), &out)

	called := false
	s.OnNotify("initialized", func(params json.RawMessage) { called = true })

	if err := s.ServeOnce(); err != nil {
		t.Fatalf("ServeOnce: %v", err)
	}
	if !called {
		t.Error("expected notification handler to run")
	}
	if out.Len() != 0 {
		t.Errorf("expected no response written for a notification, got: %s", out.String())
	}
}
