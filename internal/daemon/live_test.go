package daemon_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"switchlog/internal/daemon"
	"switchlog/internal/deviceio"
	"switchlog/internal/testsupport"
)

func TestLiveFeedBroadcastsCuts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newDaemon(t, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	script := `
+20ms tick 01:00:00:00 playing
+40ms cut 1 CAM1
`
	rate, err := cfg.Rate()
	if err != nil {
		t.Fatalf("cfg.Rate: %v", err)
	}
	parsed, err := deviceio.ParseScript(strings.NewReader(script), rate)
	if err != nil {
		t.Fatalf("ParseScript: %v", err)
	}
	feed := deviceio.NewReplayFeed(parsed)
	d.AttachFeeds(feed, feed)

	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon Start returned error: %v", err)
	}
	srv := daemon.NewAPIServer(cfg, d, nil)
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("api Start returned error: %v", err)
	}
	t.Cleanup(srv.Stop)

	conn, _, err := websocket.Dial(ctx, "ws://"+srv.Addr()+"/api/live", nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if _, err := d.StartSession(ctx); err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	feed.Start(ctx)

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read websocket: %v", err)
	}
	var msg struct {
		Type    string `json:"type"`
		Records []struct {
			SourceLabel string `json:"source_label"`
			Open        bool   `json:"open"`
		} `json:"records"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal live message: %v", err)
	}
	if msg.Type != "records" {
		t.Fatalf("expected records message, got %q", msg.Type)
	}
	if len(msg.Records) != 1 || msg.Records[0].SourceLabel != "CAM1" || !msg.Records[0].Open {
		t.Fatalf("unexpected records payload: %+v", msg.Records)
	}

	if _, err := d.StopSession(ctx); err != nil {
		t.Fatalf("StopSession returned error: %v", err)
	}
}
