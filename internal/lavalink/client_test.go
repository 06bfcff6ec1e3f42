package lavalink

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// fakeNode plays the Lavalink server side: it upgrades the websocket, sends
// a ready op and records REST calls.
type fakeNode struct {
	t        *testing.T
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conn     *websocket.Conn
	requests []string
	loadBody string
}

func newFakeNode(t *testing.T) *fakeNode {
	n := &fakeNode{t: t, loadBody: `{"loadType":"empty","data":null}`}

	mux := http.NewServeMux()
	mux.HandleFunc("/v4/websocket", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "hunter2" {
			t.Errorf("ws Authorization = %q", got)
		}
		if got := r.Header.Get("User-Id"); got != "bot-1" {
			t.Errorf("ws User-Id = %q", got)
		}
		conn, err := n.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		n.mu.Lock()
		n.conn = conn
		n.mu.Unlock()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"op":"ready","resumed":false,"sessionId":"sess-1"}`))
	})
	mux.HandleFunc("/v4/loadtracks", func(w http.ResponseWriter, r *http.Request) {
		n.record("GET loadtracks " + r.URL.Query().Get("identifier"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(n.loadBody))
	})
	mux.HandleFunc("/v4/sessions/", func(w http.ResponseWriter, r *http.Request) {
		n.record(r.Method + " " + r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	n.srv = httptest.NewServer(mux)
	return n
}

func (n *fakeNode) record(s string) {
	n.mu.Lock()
	n.requests = append(n.requests, s)
	n.mu.Unlock()
}

func (n *fakeNode) recorded() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.requests...)
}

func (n *fakeNode) push(t *testing.T, payload string) {
	n.mu.Lock()
	conn := n.conn
	n.mu.Unlock()
	if conn == nil {
		t.Fatal("no websocket connection to push on")
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
		t.Fatalf("push: %v", err)
	}
}

func (n *fakeNode) hostPort(t *testing.T) (string, int) {
	host, portStr, err := net.SplitHostPort(n.srv.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

type recordingHandler struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHandler) add(s string) {
	h.mu.Lock()
	h.events = append(h.events, s)
	h.mu.Unlock()
}

func (h *recordingHandler) recorded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}

func (h *recordingHandler) OnTrackStart(guildID string, track Track) {
	h.add("start:" + guildID + ":" + track.Info.Title)
}
func (h *recordingHandler) OnTrackEnd(guildID string, track *Track, reason string) {
	h.add("end:" + guildID + ":" + reason)
}
func (h *recordingHandler) OnTrackException(guildID string, track *Track, exception *Exception) {
	h.add("exception:" + guildID)
}
func (h *recordingHandler) OnWebSocketClosed(guildID string, code int, reason string, byRemote bool) {
	h.add("closed:" + guildID)
}

func startClient(t *testing.T, n *fakeNode, handler EventHandler) (*Client, context.CancelFunc) {
	host, port := n.hostPort(t)
	c := NewClient(Config{
		Host:     host,
		Port:     port,
		Password: "hunter2",
		UserID:   "bot-1",
	}, handler, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)

	deadline := time.Now().Add(3 * time.Second)
	for !c.Ready() {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("client never became ready")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return c, cancel
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestClientReadyAndStats(t *testing.T) {
	n := newFakeNode(t)
	defer n.srv.Close()

	c, cancel := startClient(t, n, nil)
	defer cancel()

	if got := c.SessionID(); got != "sess-1" {
		t.Errorf("SessionID = %q, want sess-1", got)
	}

	n.push(t, `{"op":"stats","players":2,"playingPlayers":1,"uptime":61000,
		"memory":{"free":1,"used":2,"allocated":3},
		"cpu":{"cores":4,"systemLoad":0.5,"lavalinkLoad":0.1}}`)

	waitFor(t, func() bool { return c.LatestStats() != nil }, "stats never arrived")
	stats := c.LatestStats()
	if stats.Players != 2 || stats.PlayingPlayers != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.CPU.Cores != 4 {
		t.Errorf("cpu cores = %d, want 4", stats.CPU.Cores)
	}
}

func TestClientDispatchesEvents(t *testing.T) {
	n := newFakeNode(t)
	defer n.srv.Close()

	h := &recordingHandler{}
	_, cancel := startClient(t, n, h)
	defer cancel()

	n.push(t, `{"op":"event","type":"TrackStartEvent","guildId":"g1",
		"track":{"encoded":"abc","info":{"title":"Song"}}}`)
	n.push(t, `{"op":"event","type":"TrackEndEvent","guildId":"g1",
		"track":{"encoded":"abc","info":{"title":"Song"}},"reason":"finished"}`)

	waitFor(t, func() bool { return len(h.recorded()) >= 2 }, "events never dispatched")
	got := h.recorded()
	if got[0] != "start:g1:Song" {
		t.Errorf("first event = %q", got[0])
	}
	if got[1] != "end:g1:finished" {
		t.Errorf("second event = %q", got[1])
	}
}

func TestUpdatePlayerRequiresSession(t *testing.T) {
	c := NewClient(Config{Host: "localhost", Port: 2333, Password: "x", UserID: "y"}, nil, zerolog.Nop())
	err := c.UpdatePlayer(context.Background(), "g1", PlayerUpdate{})
	if !IsNotReady(err) {
		t.Errorf("err = %v, want ErrNotReady", err)
	}
}

func TestLoadTracksAndPlayerCalls(t *testing.T) {
	n := newFakeNode(t)
	defer n.srv.Close()
	n.loadBody = `{"loadType":"track","data":{"encoded":"abc","info":{"title":"Song","length":1000,"uri":"https://youtu.be/x"}}}`

	c, cancel := startClient(t, n, nil)
	defer cancel()

	result, err := c.LoadTracks(context.Background(), "ytsearch:test")
	if err != nil {
		t.Fatalf("LoadTracks: %v", err)
	}
	if result.LoadType != LoadTypeTrack || len(result.Tracks) != 1 || result.Tracks[0].Info.Title != "Song" {
		t.Errorf("result = %+v", result)
	}

	encoded := "abc"
	if err := c.UpdatePlayer(context.Background(), "g1", PlayerUpdate{
		Track: &TrackUpdate{Encoded: &encoded},
	}); err != nil {
		t.Fatalf("UpdatePlayer: %v", err)
	}
	if err := c.DestroyPlayer(context.Background(), "g1"); err != nil {
		t.Fatalf("DestroyPlayer: %v", err)
	}

	reqs := n.recorded()
	want := []string{
		"GET loadtracks ytsearch:test",
		"PATCH /v4/sessions/sess-1/players/g1",
		"DELETE /v4/sessions/sess-1/players/g1",
	}
	if len(reqs) != len(want) {
		t.Fatalf("requests = %v, want %v", reqs, want)
	}
	for i := range want {
		if reqs[i] != want[i] {
			t.Errorf("request[%d] = %q, want %q", i, reqs[i], want[i])
		}
	}
}

func TestDecodeLoadResult(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		loadType  string
		tracks    int
		playlist  string
		exception bool
	}{
		{
			name:     "single track",
			body:     `{"loadType":"track","data":{"encoded":"a","info":{"title":"T"}}}`,
			loadType: LoadTypeTrack, tracks: 1,
		},
		{
			name:     "search results",
			body:     `{"loadType":"search","data":[{"encoded":"a","info":{}},{"encoded":"b","info":{}}]}`,
			loadType: LoadTypeSearch, tracks: 2,
		},
		{
			name:     "playlist",
			body:     `{"loadType":"playlist","data":{"info":{"name":"Mix"},"tracks":[{"encoded":"a","info":{}}]}}`,
			loadType: LoadTypePlaylist, tracks: 1, playlist: "Mix",
		},
		{
			name:     "empty",
			body:     `{"loadType":"empty","data":null}`,
			loadType: LoadTypeEmpty,
		},
		{
			name:      "error",
			body:      `{"loadType":"error","data":{"message":"boom","severity":"common"}}`,
			loadType:  LoadTypeError,
			exception: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeLoadResult([]byte(tc.body))
			if err != nil {
				t.Fatalf("decodeLoadResult: %v", err)
			}
			if got.LoadType != tc.loadType {
				t.Errorf("LoadType = %q, want %q", got.LoadType, tc.loadType)
			}
			if len(got.Tracks) != tc.tracks {
				t.Errorf("len(Tracks) = %d, want %d", len(got.Tracks), tc.tracks)
			}
			if got.PlaylistName != tc.playlist {
				t.Errorf("PlaylistName = %q, want %q", got.PlaylistName, tc.playlist)
			}
			if (got.Exception != nil) != tc.exception {
				t.Errorf("Exception = %+v, want present=%v", got.Exception, tc.exception)
			}
		})
	}
}

func TestPlayerUpdateMarshalStopsWithNullTrack(t *testing.T) {
	raw, err := json.Marshal(PlayerUpdate{Track: &TrackUpdate{Encoded: nil}})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"track":{"encoded":null}}` {
		t.Errorf("marshal = %s", raw)
	}
}
