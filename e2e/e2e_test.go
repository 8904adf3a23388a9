package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/ayusman/nayana/internal/action"
	"github.com/ayusman/nayana/internal/app"
	"github.com/ayusman/nayana/internal/capture"
	"github.com/ayusman/nayana/internal/config"
	"github.com/ayusman/nayana/internal/display"
	"github.com/ayusman/nayana/internal/export"
	"github.com/ayusman/nayana/internal/landmark"
	"github.com/ayusman/nayana/internal/session"
	"github.com/ayusman/nayana/internal/stats"
	"github.com/ayusman/nayana/internal/store"
)

// scriptedDetector plays a fixed sequence of snapshots. Before the frame at
// index holdAt it signals reached and waits for release.
type scriptedDetector struct {
	mu      sync.Mutex
	script  []*landmark.Snapshot
	calls   int
	holdAt  int
	reached chan struct{}
	release chan struct{}
}

func (d *scriptedDetector) Detect(frame *gocv.Mat) (*landmark.Snapshot, error) {
	d.mu.Lock()
	i := d.calls
	d.calls++
	d.mu.Unlock()

	if i == d.holdAt {
		close(d.reached)
		<-d.release
	}
	if i >= len(d.script) {
		return d.script[len(d.script)-1], nil
	}
	return d.script[i], nil
}

func (d *scriptedDetector) Close() error { return nil }

func stepClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

func TestE2E_CompleteSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Display.Headless = true
	cfg.Server.Enabled = true
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Resolve()

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer frame.Close()

	neutral := landmark.NeutralFace()
	det := &scriptedDetector{
		script: []*landmark.Snapshot{
			neutral,
			neutral,
			landmark.NewFace().LeftEyeGap(0.004).Build(),
			neutral,
			landmark.NewFace().Tilt(-0.08).Build(),
			neutral,
			neutral,
			landmark.NewFace().MouthGap(0.09).Build(),
		},
		holdAt:  6,
		reached: make(chan struct{}),
		release: make(chan struct{}),
	}
	auto := action.NewRecorder(1920, 1080)
	var report bytes.Buffer

	application, err := app.New(cfg, app.Deps{
		Camera:    capture.NewMockCamera([]*gocv.Mat{&frame}, true),
		Detector:  det,
		Automator: auto,
		Display:   display.NewHeadless(),
		Report:    &report,
		Clock:     stepClock(time.Second),
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}

	ts := httptest.NewServer(application.Handler())
	defer ts.Close()

	type result struct {
		reason session.Reason
		err    error
	}
	done := make(chan result, 1)
	go func() {
		reason, err := application.Run(context.Background())
		done <- result{reason, err}
	}()

	select {
	case <-det.reached:
	case <-time.After(5 * time.Second):
		t.Fatal("session never reached the hold frame")
	}

	t.Run("LiveStats", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/stats")
		if err != nil {
			t.Fatalf("GET /api/stats: %v", err)
		}
		defer resp.Body.Close()

		var body struct {
			SessionID string `json:"session_id"`
			Stats     []struct {
				Kind      stats.Kind `json:"kind"`
				Attempts  int        `json:"attempts"`
				Successes int        `json:"successes"`
			} `json:"stats"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.SessionID != application.ID() {
			t.Errorf("session_id = %q, want %q", body.SessionID, application.ID())
		}
		if s := body.Stats[stats.LeftClick]; s.Attempts != 1 || s.Successes != 1 {
			t.Errorf("LeftClick = %+v", s)
		}
		if s := body.Stats[stats.ScrollUp]; s.Attempts != 1 {
			t.Errorf("ScrollUp = %+v", s)
		}
	})

	t.Run("RunningSessionListed", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/sessions/" + application.ID())
		if err != nil {
			t.Fatalf("GET session: %v", err)
		}
		defer resp.Body.Close()

		var body struct {
			Running bool `json:"running"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		if resp.StatusCode != http.StatusOK || !body.Running {
			t.Errorf("status %d, running %v", resp.StatusCode, body.Running)
		}
	})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial events: %v", err)
	}
	defer conn.Close()

	// Let the hub register the client before the session resumes
	time.Sleep(50 * time.Millisecond)
	close(det.release)

	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not terminate")
	}
	if res.err != nil || res.reason != session.MouthOpenGesture {
		t.Fatalf("Run() = %v, %v; want MouthOpenGesture", res.reason, res.err)
	}

	t.Run("EventStream", func(t *testing.T) {
		var kinds []stats.Kind
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var msg export.GestureMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("invalid event %s: %v", data, err)
			}
			kinds = append(kinds, msg.Kind)
		}
		if len(kinds) == 0 || kinds[len(kinds)-1] != stats.Quit {
			t.Errorf("events = %v, want a stream ending with Quit", kinds)
		}
	})

	t.Run("Automation", func(t *testing.T) {
		if n := auto.Count("click"); n != 1 {
			t.Errorf("clicks = %d, want 1", n)
		}
		calls := auto.Calls()
		var scrolls []int
		for _, c := range calls {
			if c.Op == "scroll" {
				scrolls = append(scrolls, c.Delta)
			}
		}
		if len(scrolls) != 1 || scrolls[0] != 300 {
			t.Errorf("scrolls = %v, want [300]", scrolls)
		}
	})

	t.Run("Console", func(t *testing.T) {
		out := report.String()
		for _, want := range []string{
			session.BannerActive,
			session.BannerExitHint,
			session.MsgMouthOpen,
			session.FinalReportTitle,
			"Left_Click    Acc: 100.0% (1/1)",
			"Quit          Acc: 100.0% (1/1)",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("console output missing %q\n%s", want, out)
			}
		}
		if n := strings.Count(out, session.FinalReportTitle); n != 1 {
			t.Errorf("final report written %d times", n)
		}
	})

	t.Run("PersistedSession", func(t *testing.T) {
		st, err := store.New(cfg.Store.Path)
		if err != nil {
			t.Fatalf("reopen store: %v", err)
		}
		defer st.Close()

		sess, err := st.Sessions().Get(application.ID())
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if sess.Running() || sess.Reason != "MouthOpenGesture" {
			t.Errorf("session = %+v", sess)
		}

		snapshot, err := st.Sessions().Stats(sess.ID)
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if c := snapshot[stats.Cursor]; c.Attempts != 7 || c.Successes != 7 {
			t.Errorf("Cursor = %+v, want 7/7", c.Counters)
		}
	})
}
