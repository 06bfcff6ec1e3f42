package mcstatus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const onlineBody = `{
	"online": true,
	"players": {"online": 3, "max": 20, "list": [{"name": "steve"}, {"name": "alex"}]},
	"motd": {"clean": ["Welcome to Hyperborea"]},
	"version": "1.21"
}`

func TestFetchOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hyperborea.mcserver.us" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "DiscordBot/1.0") {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(onlineBody))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	status, err := c.Fetch(context.Background(), "hyperborea.mcserver.us")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if !status.Online {
		t.Error("status.Online = false, want true")
	}
	if status.Players.Online != 3 || status.Players.Max != 20 {
		t.Errorf("players = %d/%d, want 3/20", status.Players.Online, status.Players.Max)
	}

	reply := FormatReply("hyperborea.mcserver.us", status)
	for _, want := range []string{"is ONLINE", "Welcome to Hyperborea", "3/20", "- steve", "- alex"} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply missing %q:\n%s", want, reply)
		}
	}
}

func TestFetchOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"online": false}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	status, err := c.Fetch(context.Background(), "gone.example.com")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	reply := FormatReply("gone.example.com", status)
	if !strings.Contains(reply, "is OFFLINE") {
		t.Errorf("reply = %q, want OFFLINE notice", reply)
	}
	if strings.Contains(reply, "Players") {
		t.Errorf("offline reply should not list players: %q", reply)
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL)
	_, err := c.Fetch(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error on HTTP 500")
	}

	msg := FormatError(err)
	if !strings.Contains(msg, "HTTP 500") {
		t.Errorf("FormatError = %q, want HTTP 500 mention", msg)
	}
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(nil))
	srv.Close() // closed on purpose

	c := NewClientWithBaseURL(srv.URL)
	_, err := c.Fetch(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error against closed server")
	}

	msg := FormatError(err)
	if !strings.Contains(msg, "Error checking server status") {
		t.Errorf("FormatError = %q, want generic error message", msg)
	}
}

func TestFormatReplyNoMOTD(t *testing.T) {
	status := &Status{Online: true}
	reply := FormatReply("srv", status)
	if !strings.Contains(reply, "No MOTD available") {
		t.Errorf("reply = %q, want MOTD fallback", reply)
	}
}
