package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vovakirdan/securecomm-server/internal/auth"
	"github.com/vovakirdan/securecomm-server/internal/callengine"
	"github.com/vovakirdan/securecomm-server/internal/config"
	"github.com/vovakirdan/securecomm-server/internal/proto"
	"github.com/vovakirdan/securecomm-server/internal/store"
	"github.com/vovakirdan/securecomm-server/internal/store/sqlite"
)

func getJSON(t *testing.T, ts *httptest.Server, path string, v any) int {
	t.Helper()

	resp, err := ts.Client().Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestHealthAndStatus(t *testing.T) {
	ts, _ := startTestServer(t, Deps{}, nil)

	var health map[string]string
	if code := getJSON(t, ts, "/health", &health); code != http.StatusOK {
		t.Fatalf("unexpected health status: %d", code)
	}
	if health["status"] != "healthy" {
		t.Fatalf("unexpected health body: %v", health)
	}

	c := dialWS(t, ts)
	c.join("R1", "Alice", 0)

	var status StatusResponse
	if code := getJSON(t, ts, "/", &status); code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", code)
	}
	if status.Status != "online" || status.Rooms != 1 || status.Connections != 1 {
		t.Fatalf("unexpected status body: %+v", status)
	}
	if _, err := time.Parse(time.RFC3339, status.Timestamp); err != nil {
		t.Fatalf("timestamp is not RFC3339: %q", status.Timestamp)
	}
}

func TestCORS(t *testing.T) {
	ts, _ := startTestServer(t, Deps{}, nil)

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantAllowed string
	}{
		{name: "allowed origin", method: http.MethodGet, origin: "http://localhost:5173", wantStatus: http.StatusOK, wantAllowed: "http://localhost:5173"},
		{name: "unknown origin", method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusForbidden, wantAllowed: ""},
		{name: "no origin", method: http.MethodGet, origin: "", wantStatus: http.StatusOK, wantAllowed: ""},
		{name: "preflight", method: http.MethodOptions, origin: "https://panger-chat.netlify.app", wantStatus: http.StatusNoContent, wantAllowed: "https://panger-chat.netlify.app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, ts.URL+"/api/rooms", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			resp, err := ts.Client().Do(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != tt.wantAllowed {
				t.Errorf("expected allow-origin %q, got %q", tt.wantAllowed, got)
			}
		})
	}
}

func TestCORSWildcardDropsCredentials(t *testing.T) {
	ts, _ := startTestServer(t, Deps{}, func(cfg *config.Config) {
		cfg.CORS.AllowedOrigins = []string{"*"}
	})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("credentials must not be allowed for a wildcard, got %q", got)
	}
}

func TestRoomEndpoints(t *testing.T) {
	ts, _ := startTestServer(t, Deps{}, nil)

	var rooms []RoomResponse
	getJSON(t, ts, "/api/rooms", &rooms)
	if len(rooms) != 0 {
		t.Fatalf("expected no rooms, got %+v", rooms)
	}

	alice := dialWS(t, ts)
	alice.join("LOBBY", "Alice", 0)
	bob := dialWS(t, ts)
	bob.join("LOBBY", "Bob", 1)

	getJSON(t, ts, "/api/rooms", &rooms)
	if len(rooms) != 1 || rooms[0].ID != "LOBBY" || rooms[0].ParticipantCount != 2 || rooms[0].MessageCount != 2 {
		t.Fatalf("unexpected rooms: %+v", rooms)
	}

	var detail RoomDetailResponse
	if code := getJSON(t, ts, "/api/rooms/lobby", &detail); code != http.StatusOK {
		t.Fatalf("unexpected status: %d", code)
	}
	if len(detail.Participants) != 2 || detail.Participants[0].Name != "Alice" || detail.Participants[1].Name != "Bob" {
		t.Fatalf("unexpected participants: %+v", detail.Participants)
	}

	var errResp ErrorResponse
	if code := getJSON(t, ts, "/api/rooms/NOPE", &errResp); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if errResp.Error != "room_not_found" {
		t.Fatalf("unexpected error: %+v", errResp)
	}
}

type fakeEngine struct {
	fail bool
}

func (fakeEngine) RoomName(roomID string) string { return "media-" + roomID }

func (f fakeEngine) GenerateJoinInfo(_ context.Context, roomID, identity, name string) (*callengine.JoinInfo, error) {
	if f.fail {
		return nil, errors.New("backend down")
	}
	return &callengine.JoinInfo{
		URL:      "ws://media",
		Token:    name + "@" + identity,
		RoomName: "media-" + roomID,
		Identity: identity,
	}, nil
}

func TestCallToken(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		ts, _ := startTestServer(t, Deps{}, nil)

		var errResp ErrorResponse
		if code := getJSON(t, ts, "/api/rooms/R/call-token?participant=x", &errResp); code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", code)
		}
		if errResp.Error != "calls_disabled" {
			t.Fatalf("unexpected error: %+v", errResp)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		ts, _ := startTestServer(t, Deps{Calls: fakeEngine{}}, nil)

		alice := dialWS(t, ts)
		aliceID := alice.join("MEDIA", "Alice", 0)

		var info callengine.JoinInfo
		if code := getJSON(t, ts, "/api/rooms/media/call-token?participant="+aliceID, &info); code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		if info.RoomName != "media-MEDIA" || info.Identity != aliceID || info.Token != "Alice@"+aliceID {
			t.Fatalf("unexpected join info: %+v", info)
		}

		tests := []struct {
			path string
			code int
		}{
			{path: "/api/rooms/MEDIA/call-token", code: http.StatusBadRequest},
			{path: "/api/rooms/MEDIA/call-token?participant=stranger", code: http.StatusForbidden},
			{path: "/api/rooms/OTHER/call-token?participant=" + aliceID, code: http.StatusNotFound},
		}
		for _, tt := range tests {
			if code := getJSON(t, ts, tt.path, nil); code != tt.code {
				t.Errorf("%s: expected %d, got %d", tt.path, tt.code, code)
			}
		}
	})
}

func TestCallTokenRequiresSessionWhenEnabled(t *testing.T) {
	sessions, err := auth.NewSessions(&auth.JWTConfig{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour})
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	ts, _ := startTestServer(t, Deps{Calls: fakeEngine{}, Sessions: sessions}, nil)

	alice := dialWS(t, ts)
	aliceID := alice.join("MEDIA", "Alice", 0)
	bob := dialWS(t, ts)
	bob.join("MEDIA", "Bob", 1)

	aliceToken, _ := sessions.Issue("MEDIA", "Alice")
	bobToken, _ := sessions.Issue("MEDIA", "Bob")

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{name: "missing token", header: "", code: http.StatusUnauthorized},
		{name: "another member's token", header: "Bearer " + bobToken, code: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Token " + aliceToken, code: http.StatusUnauthorized},
		{name: "own token", header: "Bearer " + aliceToken, code: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/rooms/MEDIA/call-token?participant="+aliceID, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := ts.Client().Do(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, resp.StatusCode)
			}
		})
	}
}

func TestJournalEndpoint(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		ts, _ := startTestServer(t, Deps{}, nil)
		if code := getJSON(t, ts, "/api/journal", nil); code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", code)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		journal, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
		if err != nil {
			t.Fatalf("journal: %v", err)
		}
		t.Cleanup(func() { _ = journal.Close() })

		opened := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		for _, room := range []string{"A", "B"} {
			s := &store.RoomSession{RoomID: room, OpenedAt: opened, ClosedAt: opened.Add(90 * time.Second), PeakParticipants: 3, MessageCount: 4}
			if err := journal.RecordSession(context.Background(), s); err != nil {
				t.Fatalf("record: %v", err)
			}
		}

		ts, _ := startTestServer(t, Deps{Journal: journal}, nil)

		var resp JournalResponse
		if code := getJSON(t, ts, "/api/journal?limit=1", &resp); code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		if len(resp.Sessions) != 1 || resp.Sessions[0].RoomID != "B" || resp.Sessions[0].DurationSeconds != 90 {
			t.Fatalf("unexpected sessions: %+v", resp.Sessions)
		}
		if resp.Totals.Sessions != 2 || resp.Totals.Messages != 8 {
			t.Fatalf("unexpected totals: %+v", resp.Totals)
		}

		if code := getJSON(t, ts, "/api/journal?limit=abc", nil); code != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad limit, got %d", code)
		}
	})
}

func TestOutboundWireFormat(t *testing.T) {
	out := outboundFromEvent(callRejected())
	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"type":"event","event":"call-rejected"}` {
		t.Fatalf("unexpected wire form: %s", raw)
	}

	out = errorOutbound(&proto.Error{Code: "bad_request", Msg: "roomId is required"})
	raw, _ = json.Marshal(out)
	if string(raw) != `{"type":"error","error":{"code":"bad_request","msg":"roomId is required"}}` {
		t.Fatalf("unexpected error wire form: %s", raw)
	}
}
