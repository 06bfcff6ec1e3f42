package music

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"superintendent/internal/lavalink"
)

// fakeNode stands in for a Lavalink node: websocket ready handshake and a
// REST surface that records player updates.
type fakeNode struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	requests []string
	bodies   []string
}

func newFakeNode(t *testing.T) *fakeNode {
	n := &fakeNode{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v4/websocket", func(w http.ResponseWriter, r *http.Request) {
		conn, err := n.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{"op":"ready","sessionId":"s1"}`))
	})
	mux.HandleFunc("/v4/loadtracks", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"loadType":"track","data":{"encoded":"enc1","info":{"title":"Song","length":1000}}}`))
	})
	mux.HandleFunc("/v4/sessions/", func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, 4096)
		k, _ := r.Body.Read(body)
		n.mu.Lock()
		n.requests = append(n.requests, r.Method+" "+r.URL.Path)
		n.bodies = append(n.bodies, string(body[:k]))
		n.mu.Unlock()
		w.Write([]byte(`{}`))
	})
	n.srv = httptest.NewServer(mux)
	return n
}

func (n *fakeNode) recorded() ([]string, []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.requests...), append([]string(nil), n.bodies...)
}

func newTestManager(t *testing.T) (*Manager, *fakeNode, context.CancelFunc) {
	n := newFakeNode(t)

	host, portStr, err := net.SplitHostPort(n.srv.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(portStr)

	m := NewManager(zerolog.Nop())
	lava := lavalink.NewClient(lavalink.Config{
		Host: host, Port: port, Password: "x", UserID: "bot",
	}, m, zerolog.Nop())
	m.Bind(lava, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go lava.Run(ctx)

	deadline := time.Now().Add(3 * time.Second)
	for !lava.Ready() {
		if time.Now().After(deadline) {
			cancel()
			n.srv.Close()
			t.Fatal("node session never became ready")
		}
		time.Sleep(5 * time.Millisecond)
	}

	return m, n, func() {
		cancel()
		n.srv.Close()
	}
}

func track(encoded, title string) lavalink.Track {
	return lavalink.Track{
		Encoded: encoded,
		Info:    lavalink.TrackInfo{Title: title, Length: 60000},
	}
}

func TestEnqueueStartsPlayback(t *testing.T) {
	m, n, stop := newTestManager(t)
	defer stop()

	if err := m.Enqueue("g1", []lavalink.Track{track("enc1", "First")}, "user1"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	current, upcoming := m.Queue("g1")
	if current == nil || current.Info.Title != "First" {
		t.Fatalf("current = %+v, want First", current)
	}
	if len(upcoming) != 0 {
		t.Errorf("upcoming = %d tracks, want 0", len(upcoming))
	}
	if current.Requester != "user1" {
		t.Errorf("requester = %q, want user1", current.Requester)
	}

	reqs, bodies := n.recorded()
	if len(reqs) != 1 || !strings.HasPrefix(reqs[0], "PATCH /v4/sessions/s1/players/g1") {
		t.Fatalf("requests = %v", reqs)
	}
	if !strings.Contains(bodies[0], `"encoded":"enc1"`) {
		t.Errorf("player update body = %s", bodies[0])
	}
}

func TestEnqueueWhilePlayingQueues(t *testing.T) {
	m, _, stop := newTestManager(t)
	defer stop()

	m.Enqueue("g1", []lavalink.Track{track("enc1", "First")}, "u")
	m.Enqueue("g1", []lavalink.Track{track("enc2", "Second"), track("enc3", "Third")}, "u")

	current, upcoming := m.Queue("g1")
	if current == nil || current.Info.Title != "First" {
		t.Fatalf("current = %+v", current)
	}
	if len(upcoming) != 2 || upcoming[0].Info.Title != "Second" || upcoming[1].Info.Title != "Third" {
		t.Errorf("upcoming = %+v", upcoming)
	}
}

func TestSkipAdvances(t *testing.T) {
	m, _, stop := newTestManager(t)
	defer stop()

	m.Enqueue("g1", []lavalink.Track{track("enc1", "First"), track("enc2", "Second")}, "u")
	if err := m.Skip("g1"); err != nil {
		t.Fatalf("Skip: %v", err)
	}

	current, upcoming := m.Queue("g1")
	if current == nil || current.Info.Title != "Second" {
		t.Errorf("current after skip = %+v, want Second", current)
	}
	if len(upcoming) != 0 {
		t.Errorf("upcoming = %+v", upcoming)
	}
}

func TestSkipWithoutPlayback(t *testing.T) {
	m, _, stop := newTestManager(t)
	defer stop()

	if err := m.Skip("g1"); err == nil {
		t.Fatal("expected error skipping with nothing playing")
	}
}

func TestTrackEndAdvancesQueue(t *testing.T) {
	m, _, stop := newTestManager(t)
	defer stop()

	m.Enqueue("g1", []lavalink.Track{track("enc1", "First"), track("enc2", "Second")}, "u")
	m.OnTrackEnd("g1", nil, lavalink.TrackEndFinished)

	current, _ := m.Queue("g1")
	if current == nil || current.Info.Title != "Second" {
		t.Errorf("current after natural end = %+v, want Second", current)
	}
}

func TestTrackEndReplacedDoesNotAdvance(t *testing.T) {
	m, _, stop := newTestManager(t)
	defer stop()

	m.Enqueue("g1", []lavalink.Track{track("enc1", "First"), track("enc2", "Second")}, "u")
	m.OnTrackEnd("g1", nil, lavalink.TrackEndReplaced)

	current, upcoming := m.Queue("g1")
	if current == nil || current.Info.Title != "First" {
		t.Errorf("current = %+v, want First untouched", current)
	}
	if len(upcoming) != 1 {
		t.Errorf("upcoming = %+v, want 1 track", upcoming)
	}
}

func TestTrackExceptionThenLoadFailedAdvancesOnce(t *testing.T) {
	m, _, stop := newTestManager(t)
	defer stop()

	m.Enqueue("g1", []lavalink.Track{
		track("enc1", "First"), track("enc2", "Second"), track("enc3", "Third"),
	}, "u")

	// The node reports a playback error as an exception event followed by a
	// track end with reason loadFailed.
	first, _ := m.Queue("g1")
	m.OnTrackException("g1", first, &lavalink.Exception{Message: "boom", Severity: "common"})
	m.OnTrackEnd("g1", first, lavalink.TrackEndLoadFailed)

	current, upcoming := m.Queue("g1")
	if current == nil || current.Info.Title != "Second" {
		t.Errorf("current = %+v, want Second", current)
	}
	if len(upcoming) != 1 || upcoming[0].Info.Title != "Third" {
		t.Errorf("upcoming = %+v, want just Third", upcoming)
	}
}

func TestSkipWhilePausedUnpauses(t *testing.T) {
	m, n, stop := newTestManager(t)
	defer stop()

	m.Enqueue("g1", []lavalink.Track{track("enc1", "First"), track("enc2", "Second")}, "u")
	if err := m.Pause("g1", true); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := m.Skip("g1"); err != nil {
		t.Fatalf("Skip: %v", err)
	}

	_, bodies := n.recorded()
	last := bodies[len(bodies)-1]
	if !strings.Contains(last, `"encoded":"enc2"`) || !strings.Contains(last, `"paused":false`) {
		t.Errorf("player update after skip = %s, want new track with paused:false", last)
	}

	// The new track plays unpaused, so pausing again must be accepted.
	if err := m.Pause("g1", true); err != nil {
		t.Errorf("pause after skip: %v", err)
	}
}

func TestEnqueueStartsPlaybackExactlyOnce(t *testing.T) {
	m, n, stop := newTestManager(t)
	defer stop()

	m.Enqueue("g1", []lavalink.Track{track("enc1", "First")}, "u")
	m.Enqueue("g1", []lavalink.Track{track("enc2", "Second")}, "u")

	// A start request racing a playing session must not replace the track.
	if err := m.advance("g1", true); err != nil {
		t.Fatalf("advance: %v", err)
	}

	reqs, bodies := n.recorded()
	if len(reqs) != 1 {
		t.Fatalf("requests = %v, want a single player update", reqs)
	}
	if !strings.Contains(bodies[0], `"encoded":"enc1"`) {
		t.Errorf("player update body = %s", bodies[0])
	}

	current, upcoming := m.Queue("g1")
	if current == nil || current.Info.Title != "First" {
		t.Errorf("current = %+v, want First", current)
	}
	if len(upcoming) != 1 || upcoming[0].Info.Title != "Second" {
		t.Errorf("upcoming = %+v", upcoming)
	}
}

func TestPauseValidation(t *testing.T) {
	m, _, stop := newTestManager(t)
	defer stop()

	if err := m.Pause("g1", true); err == nil {
		t.Error("expected error pausing with nothing playing")
	}

	m.Enqueue("g1", []lavalink.Track{track("enc1", "First")}, "u")
	if err := m.Pause("g1", true); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := m.Pause("g1", true); err == nil {
		t.Error("expected error pausing twice")
	}
	if err := m.Pause("g1", false); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := m.Pause("g1", false); err == nil {
		t.Error("expected error resuming while not paused")
	}
}

func TestStopClearsSession(t *testing.T) {
	m, n, stop := newTestManager(t)
	defer stop()

	m.Enqueue("g1", []lavalink.Track{track("enc1", "First"), track("enc2", "Second")}, "u")
	if err := m.Stop("g1"); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	current, upcoming := m.Queue("g1")
	if current != nil || len(upcoming) != 0 {
		t.Errorf("session not cleared: current=%+v upcoming=%+v", current, upcoming)
	}

	reqs, _ := n.recorded()
	last := reqs[len(reqs)-1]
	if last != "DELETE /v4/sessions/s1/players/g1" {
		t.Errorf("last request = %q, want player destroy", last)
	}

	if err := m.Stop("g1"); err == nil {
		t.Error("expected error stopping with no session")
	}
}

func TestLoadTracksNormalizesQuery(t *testing.T) {
	m, _, stop := newTestManager(t)
	defer stop()

	if _, err := m.LoadTracks(context.Background(), "   "); err == nil {
		t.Error("expected error for empty query")
	}

	result, err := m.LoadTracks(context.Background(), "never gonna give you up")
	if err != nil {
		t.Fatalf("LoadTracks: %v", err)
	}
	if len(result.Tracks) != 1 {
		t.Errorf("tracks = %+v", result.Tracks)
	}
}
