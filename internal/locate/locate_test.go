package locate

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const (
	sentenceGGA      = "$GPGGA,123519,3403.132,N,11814.622,W,1,08,0.9,545.4,M,46.9,M,,*58"
	sentenceRMC      = "$GNRMC,201530.00,A,3403.132,N,11814.622,W,0.02,,181026,,,A*48"
	sentenceGGANoFix = "$GPGGA,123519,,,,,0,00,,,M,,M,,*6B"
	sentenceRMCVoid  = "$GPRMC,201530.00,V,,,,,,,181026,,,N*74"
)

func TestParseGGA(t *testing.T) {
	fix, err := NewNMEAParser().Parse(sentenceGGA)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if fix == nil {
		t.Fatal("Expected a fix")
	}

	if math.Abs(fix.Position.Lat-34.0522) > 1e-6 || math.Abs(fix.Position.Lon+118.2437) > 1e-6 {
		t.Errorf("Expected 34.0522,-118.2437, got %v", fix.Position)
	}
	if math.Abs(fix.Accuracy-4.5) > 1e-9 {
		t.Errorf("Expected accuracy 4.5m from HDOP 0.9, got %v", fix.Accuracy)
	}
}

func TestParseRMC(t *testing.T) {
	fix, err := NewNMEAParser().Parse(sentenceRMC)
	if err != nil || fix == nil {
		t.Fatalf("Expected a fix, got %v, %v", fix, err)
	}

	want := time.Date(2026, 10, 18, 20, 15, 30, 0, time.UTC)
	if !fix.Time.Equal(want) {
		t.Errorf("Expected %v, got %v", want, fix.Time)
	}
	if fix.Accuracy != defaultAccuracy {
		t.Errorf("Expected default accuracy, got %v", fix.Accuracy)
	}
}

func TestParseIgnoresNoFixAndOtherSentences(t *testing.T) {
	p := NewNMEAParser()
	for _, line := range []string{
		sentenceGGANoFix,
		sentenceRMCVoid,
		"$GPGSV,3,1,11,03,03,111,00,04,15,270,00,06,01,010,00,13,06,292,00*74",
		"",
	} {
		fix, err := p.Parse(line)
		if err != nil || fix != nil {
			t.Errorf("Parse(%q): expected nil, nil, got %v, %v", line, fix, err)
		}
	}
}

func TestParseRejectsBadChecksum(t *testing.T) {
	bad := strings.Replace(sentenceGGA, "*58", "*59", 1)
	if _, err := NewNMEAParser().Parse(bad); err == nil {
		t.Error("Expected checksum error")
	}
	if _, err := NewNMEAParser().Parse("GPGGA,no,dollar"); err == nil {
		t.Error("Expected error for missing $")
	}
}

// pipeSource hands out a pipe the test writes sentences into
type pipeSource struct {
	r   *io.PipeReader
	w   *io.PipeWriter
	err error
}

func newPipeSource() *pipeSource {
	r, w := io.Pipe()
	return &pipeSource{r: r, w: w}
}

func (s *pipeSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.r, nil
}

func (s *pipeSource) String() string { return "pipe" }

func nextEvent(t *testing.T, tr *Tracker) Event {
	t.Helper()
	select {
	case ev := <-tr.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for event")
		return Event{}
	}
}

func TestTrackerFixAndStop(t *testing.T) {
	src := newPipeSource()
	tr := NewTracker(src, time.Second)

	session := tr.Start()
	if !tr.Watching() {
		t.Error("Expected watching after Start")
	}

	go io.WriteString(src.w, sentenceGGA+"\n")

	ev := nextEvent(t, tr)
	if ev.Failed() || ev.Session != session {
		t.Fatalf("Expected fix for session %d, got %+v", session, ev)
	}

	tr.Stop()
	tr.Stop()
	if tr.Watching() {
		t.Error("Expected idle after Stop")
	}

	select {
	case ev := <-tr.Events():
		t.Errorf("Expected no event after Stop, got %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTrackerOpenFailure(t *testing.T) {
	src := &pipeSource{err: errors.New("connection refused")}
	tr := NewTracker(src, time.Second)

	session := tr.Start()
	ev := nextEvent(t, tr)
	if !ev.Failed() || ev.Session != session {
		t.Fatalf("Expected failure for session %d, got %+v", session, ev)
	}

	// The goroutine clears watching before emitting
	if tr.Watching() {
		t.Error("Expected idle after failure")
	}
	tr.Stop()
}

func TestTrackerAcquisitionTimeout(t *testing.T) {
	src := newPipeSource()
	tr := NewTracker(src, 50*time.Millisecond)
	tr.Start()

	go io.WriteString(src.w, sentenceGGANoFix+"\n")

	ev := nextEvent(t, tr)
	if !errors.Is(ev.Err, ErrNoFix) {
		t.Errorf("Expected ErrNoFix, got %v", ev.Err)
	}
	tr.Stop()
}

func TestTrackerStreamClosed(t *testing.T) {
	src := newPipeSource()
	tr := NewTracker(src, time.Second)
	tr.Start()

	go func() {
		io.WriteString(src.w, sentenceRMC+"\n")
		src.w.Close()
	}()

	if ev := nextEvent(t, tr); ev.Failed() {
		t.Fatalf("Expected fix first, got %v", ev.Err)
	}
	if ev := nextEvent(t, tr); !errors.Is(ev.Err, ErrStreamClosed) {
		t.Errorf("Expected ErrStreamClosed, got %v", ev.Err)
	}
	tr.Stop()
}

func TestTrackerNewSessionAfterStop(t *testing.T) {
	src := newPipeSource()
	tr := NewTracker(src, time.Second)

	first := tr.Start()
	if again := tr.Start(); again != first {
		t.Errorf("Expected Start while watching to keep session %d, got %d", first, again)
	}
	tr.Stop()

	src2 := newPipeSource()
	tr.source = src2
	if second := tr.Start(); second == first {
		t.Error("Expected a new session number")
	}
	tr.Stop()
}

func TestReplaySource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.nmea")
	if err := os.WriteFile(path, []byte(sentenceGGA+"\n"+sentenceRMC+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tr := NewTracker(&ReplaySource{Path: path, Interval: 5 * time.Millisecond}, time.Second)
	tr.Start()
	defer tr.Stop()

	for i := 0; i < 2; i++ {
		if ev := nextEvent(t, tr); ev.Failed() {
			t.Fatalf("Expected fix %d, got %v", i, ev.Err)
		}
	}
	if ev := nextEvent(t, tr); !errors.Is(ev.Err, ErrStreamClosed) {
		t.Errorf("Expected end of replay, got %+v", ev)
	}
}

func TestTrackerWithoutSource(t *testing.T) {
	tr := NewTracker(nil, time.Second)
	tr.Start()

	if ev := nextEvent(t, tr); !errors.Is(ev.Err, ErrNoSource) {
		t.Errorf("Expected ErrNoSource, got %v", ev.Err)
	}
	tr.Stop()
}

func TestCommandSource(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	path := filepath.Join(t.TempDir(), "track.nmea")
	if err := os.WriteFile(path, []byte(sentenceGGA+"\n"+sentenceRMC+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := ParseCommand("cat " + path)
	if err != nil {
		t.Fatal(err)
	}
	if src.String() != "exec:cat "+path {
		t.Errorf("Unexpected source name %q", src.String())
	}

	tr := NewTracker(src, time.Second)
	tr.Start()
	defer tr.Stop()

	for i := 0; i < 2; i++ {
		if ev := nextEvent(t, tr); ev.Failed() {
			t.Fatalf("Expected fix %d, got %v", i, ev.Err)
		}
	}
	if ev := nextEvent(t, tr); !errors.Is(ev.Err, ErrStreamClosed) {
		t.Errorf("Expected end of output, got %+v", ev)
	}
}

func TestParseCommandEmpty(t *testing.T) {
	if _, err := ParseCommand("   "); err == nil {
		t.Error("Expected error for empty command")
	}
}

func TestCommandSourceStopWhileRunning(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	src := &CommandSource{
		Name: "sh",
		Args: []string{"-c", "while true; do echo '" + sentenceGGA + "'; sleep 0.01; done"},
	}
	tr := NewTracker(src, time.Second)

	for i := 0; i < 5; i++ {
		session := tr.Start()
		if ev := nextEvent(t, tr); ev.Failed() || ev.Session != session {
			t.Fatalf("Iteration %d: expected fix for session %d, got %+v", i, session, ev)
		}

		stopped := make(chan struct{})
		go func() {
			tr.Stop()
			close(stopped)
		}()

		select {
		case <-stopped:
		case <-time.After(3 * time.Second):
			t.Fatalf("Iteration %d: Stop did not return", i)
		}
		if tr.Watching() {
			t.Errorf("Iteration %d: expected idle after Stop", i)
		}

		// Drop fixes queued before the stop
		for len(tr.Events()) > 0 {
			<-tr.Events()
		}
	}
}

func TestCommandReaderConcurrentClose(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	rc, err := (&CommandSource{Name: "sleep", Args: []string{"30"}}).Open(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		go func() {
			rc.Close()
			done <- struct{}{}
		}()
	}

	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatal("Close did not return")
		}
	}
}
