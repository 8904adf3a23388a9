package stats

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Cursor, "Cursor"},
		{LeftClick, "Left_Click"},
		{RightClick, "Right_Click"},
		{ScrollUp, "Scroll_Up"},
		{ScrollDown, "Scroll_Down"},
		{Quit, "Quit"},
		{Kind(42), "Kind(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q) error = %v", k, err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k, got, k)
		}
	}

	if _, err := ParseKind("Wave"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestRecorder_SuccessesNeverExceedAttempts(t *testing.T) {
	r := NewRecorder()
	now := time.Now()

	outcomes := []bool{true, false, true, true, false, false, true}
	for i, ok := range outcomes {
		for _, k := range Kinds() {
			r.Record(Event{Kind: k, Timestamp: now, Succeeded: ok, Latency: time.Millisecond})

			c := r.Get(k)
			if c.Successes > c.Attempts {
				t.Fatalf("after event %d: %v successes %d > attempts %d", i, k, c.Successes, c.Attempts)
			}
		}
	}

	c := r.Get(LeftClick)
	if c.Attempts != 7 || c.Successes != 4 {
		t.Errorf("counters = %+v, want 7 attempts and 4 successes", c)
	}
}

func TestRecorder_LatencyOnlyOnSuccess(t *testing.T) {
	r := NewRecorder()

	r.Record(Event{Kind: RightClick, Succeeded: false, Latency: 50 * time.Millisecond, Err: errors.New("injection failed")})
	r.Record(Event{Kind: RightClick, Succeeded: true, Latency: 2 * time.Millisecond})

	c := r.Get(RightClick)
	if math.Abs(c.CumulativeResponseMs-2.0) > 1e-9 {
		t.Errorf("CumulativeResponseMs = %f, want 2.0", c.CumulativeResponseMs)
	}
	if c.Accuracy() != 50 {
		t.Errorf("Accuracy() = %f, want 50", c.Accuracy())
	}
}

func TestRecorder_IgnoresInvalidKind(t *testing.T) {
	r := NewRecorder()
	r.Record(Event{Kind: Kind(-1), Succeeded: true})
	r.Record(Event{Kind: numKinds, Succeeded: true})

	for _, ks := range r.Snapshot() {
		if ks.Attempts != 0 {
			t.Errorf("%v attempts = %d, want 0", ks.Kind, ks.Attempts)
		}
	}
}

func TestRecorder_Report_CursorScenario(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < 100; i++ {
		r.Record(Event{Kind: Cursor, Succeeded: true, Latency: 5 * time.Millisecond})
	}

	var buf bytes.Buffer
	if err := r.Report(&buf, "Gesture Accuracy Report:"); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	out := buf.String()

	wantLine := "  Cursor        Acc: 100.0% (100/100)   Avg resp: 5.00 ms"
	if !strings.Contains(out, wantLine) {
		t.Errorf("report missing %q\n%s", wantLine, out)
	}
	if !strings.Contains(out, "  Left_Click    No attempts yet") {
		t.Errorf("report should list kinds without attempts\n%s", out)
	}
	if !strings.HasSuffix(out, ReportSeparator+"\n") {
		t.Errorf("report should end with separator\n%s", out)
	}
	if !strings.HasPrefix(out, "\nGesture Accuracy Report:\n") {
		t.Errorf("report should start with title\n%s", out)
	}
}

func TestRecorder_ReportIsReadOnly(t *testing.T) {
	r := NewRecorder()
	r.Record(Event{Kind: ScrollDown, Succeeded: true, Latency: 3 * time.Millisecond})
	before := r.Snapshot()

	var buf bytes.Buffer
	for i := 0; i < 3; i++ {
		buf.Reset()
		r.Report(&buf, "")
	}

	after := r.Snapshot()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("%v changed after report: %+v -> %+v", before[i].Kind, before[i], after[i])
		}
	}
}

func TestRecorder_AvgResponseWithoutSuccess(t *testing.T) {
	r := NewRecorder()
	r.Record(Event{Kind: ScrollUp, Succeeded: false})

	var buf bytes.Buffer
	r.Report(&buf, "")

	want := "  Scroll_Up     Acc:   0.0% (0/1)   Avg resp: 0.00 ms"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("report missing %q\n%s", want, buf.String())
	}
}

func TestRecorder_Subscribe(t *testing.T) {
	r := NewRecorder()

	var seen []Kind
	r.Subscribe(func(ev Event) { seen = append(seen, ev.Kind) })
	r.Subscribe(nil)

	r.Record(Event{Kind: LeftClick, Succeeded: true})
	r.Record(Event{Kind: Quit, Succeeded: true})

	if len(seen) != 2 || seen[0] != LeftClick || seen[1] != Quit {
		t.Errorf("observer saw %v, want [Left_Click Quit]", seen)
	}
}

func TestRecorder_Restore(t *testing.T) {
	r := NewRecorder()
	r.Restore([]KindStats{
		{Kind: Cursor, Counters: Counters{Attempts: 10, Successes: 9, CumulativeResponseMs: 18}},
		{Kind: Kind(99), Counters: Counters{Attempts: 1}},
	})

	c := r.Get(Cursor)
	if c.Attempts != 10 || c.Successes != 9 || c.AvgResponseMs() != 2 {
		t.Errorf("restored counters = %+v", c)
	}
}

func TestEvent_JSON(t *testing.T) {
	ev := Event{Kind: ScrollUp, Succeeded: true, Latency: 1500 * time.Microsecond}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"kind":"Scroll_Up"`) {
		t.Errorf("json = %s, want kind label", data)
	}
	if ev.LatencyMs() != 1.5 {
		t.Errorf("LatencyMs() = %f, want 1.5", ev.LatencyMs())
	}
}
