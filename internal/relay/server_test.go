package relay

import (
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"ifttt-relay/internal/config"
)

func TestServerServesUntilCancelled(t *testing.T) {
	cfg := &config.Config{ListenAddr: "127.0.0.1:0"}
	svc := NewService(nil, time.UTC, discardLogger())
	h := NewHandler(svc, discardLogger(), Options{})
	srv := NewServer(cfg, h, svc, discardLogger())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/", "application/json", strings.NewReader(`{"level":"info"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
