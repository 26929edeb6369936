package main

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestAnnounceReadyWritesOneJSONLine(t *testing.T) {
	var buf bytes.Buffer
	announceReady(&buf)("127.0.0.1:7878", "tok")

	var got readyLine
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if got.Event != "ready" || got.Addr != "127.0.0.1:7878" || got.Token != "tok" {
		t.Fatalf("unexpected ready line %+v", got)
	}
	if bytes.Count(buf.Bytes(), []byte("\n")) != 1 {
		t.Fatalf("expected a single line, got %q", buf.String())
	}
}
