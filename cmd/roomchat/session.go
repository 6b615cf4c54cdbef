package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/securecomm-server/internal/cipher"
	"github.com/vovakirdan/securecomm-server/internal/proto"
)

// frame is an outbound server message with its payload left raw.
type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

// roomSession is a joined WebSocket connection plus the room codec.
type roomSession struct {
	addr  string
	codec cipher.Codec
	room  string
	user  string

	mu    sync.Mutex
	conn  *websocket.Conn
	token string
}

func newCodec(passphrase, room string) (cipher.Codec, string, error) {
	if passphrase == "" {
		return cipher.Plain{}, "", nil
	}
	sealed, err := cipher.NewSealed(passphrase, room)
	if err != nil {
		return nil, "", err
	}
	return sealed, sealed.Fingerprint(), nil
}

func dial(ctx context.Context, addr, room, user, passphrase string) (*roomSession, string, error) {
	room = strings.ToUpper(strings.TrimSpace(room))
	user = strings.TrimSpace(user)
	codec, fingerprint, err := newCodec(passphrase, room)
	if err != nil {
		return nil, "", fmt.Errorf("init codec: %w", err)
	}

	s := &roomSession{addr: addr, codec: codec, room: room, user: user}
	if err := s.redial(ctx); err != nil {
		return nil, "", err
	}
	return s, fingerprint, nil
}

// joinData is the join-room payload, carrying the session token once the
// server has issued one so a reconnect can reclaim the same slot.
func (s *roomSession) joinData() proto.JoinRoomData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return proto.JoinRoomData{RoomID: s.room, UserName: s.user, Token: s.token}
}

// redial opens a fresh connection and joins the room on it.
func (s *roomSession) redial(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, s.addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	s.mu.Lock()
	old := s.conn
	s.conn = conn
	s.mu.Unlock()
	if old != nil {
		old.CloseNow()
	}

	if err := s.send(ctx, proto.InboundTypeJoinRoom, s.joinData()); err != nil {
		conn.Close(websocket.StatusInternalError, "join failed")
		return err
	}
	return nil
}

func (s *roomSession) currentConn() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *roomSession) send(ctx context.Context, typ string, data any) error {
	var raw json.RawMessage
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		raw = payload
	}
	if err := wsjson.Write(ctx, s.currentConn(), proto.Inbound{Type: typ, Data: raw}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

func (s *roomSession) sendText(ctx context.Context, text string) error {
	content, err := s.codec.Encode(text)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return s.send(ctx, proto.InboundTypeSendMessage, proto.SendMessageData{
		Content:   content,
		Type:      "text",
		Encrypted: s.codec.Encrypted(),
	})
}

func (s *roomSession) read(ctx context.Context) (frame, error) {
	return readFrame(ctx, s.currentConn())
}

func readFrame(ctx context.Context, conn *websocket.Conn) (frame, error) {
	var f frame
	err := wsjson.Read(ctx, conn, &f)
	return f, err
}

// render turns a frame into a printable line. Empty means nothing to show.
func (s *roomSession) render(f frame) string {
	if f.Type == proto.OutboundTypeError && f.Error != nil {
		return fmt.Sprintf("! %s: %s", f.Error.Code, f.Error.Msg)
	}

	switch f.Event {
	case proto.EventRoomMessages:
		var messages []proto.Message
		if err := json.Unmarshal(f.Data, &messages); err != nil {
			return fmt.Sprintf("! bad history: %v", err)
		}
		lines := make([]string, 0, len(messages)+1)
		lines = append(lines, fmt.Sprintf("-- %d earlier messages in %s --", len(messages), s.room))
		for _, m := range messages {
			lines = append(lines, s.renderMessage(m))
		}
		return strings.Join(lines, "\n")
	case proto.EventNewMessage:
		var m proto.Message
		if err := json.Unmarshal(f.Data, &m); err != nil {
			return fmt.Sprintf("! bad message: %v", err)
		}
		return s.renderMessage(m)
	case proto.EventParticipantsUpdated:
		var participants []proto.Participant
		if err := json.Unmarshal(f.Data, &participants); err != nil {
			return fmt.Sprintf("! bad participants: %v", err)
		}
		names := make([]string, 0, len(participants))
		for _, p := range participants {
			names = append(names, p.Name)
		}
		return fmt.Sprintf("* online (%d): %s", len(names), strings.Join(names, ", "))
	case proto.EventUserTyping:
		var t proto.UserTyping
		if err := json.Unmarshal(f.Data, &t); err != nil || !t.IsTyping {
			return ""
		}
		return fmt.Sprintf("* %s is typing...", t.UserName)
	case proto.EventIncomingCall:
		var c proto.IncomingCall
		if err := json.Unmarshal(f.Data, &c); err != nil {
			return ""
		}
		kind := "voice"
		if c.IsVideo {
			kind = "video"
		}
		return fmt.Sprintf("* incoming %s call from %s (/accept %s)", kind, c.From, c.CallerID)
	case proto.EventCallAccepted:
		return "* call accepted"
	case proto.EventCallRejected:
		return "* call rejected"
	case proto.EventCallEnded:
		return "* call ended"
	case proto.EventSession:
		var sess proto.Session
		if err := json.Unmarshal(f.Data, &sess); err != nil || sess.Token == "" {
			return ""
		}
		s.mu.Lock()
		s.token = sess.Token
		s.mu.Unlock()
		return "* session token received"
	default:
		return fmt.Sprintf("? %s %s", f.Event, string(f.Data))
	}
}

func (s *roomSession) renderMessage(m proto.Message) string {
	if m.Type == "system" {
		return "* " + m.Content
	}
	content := m.Content
	if m.Encrypted {
		plain, err := s.codec.Decode(m.Content)
		if err != nil {
			content = "[encrypted message you cannot read]"
		} else {
			content = plain
		}
	}
	if m.FileName != "" {
		content = fmt.Sprintf("[%s %s, %d bytes] %s", m.Type, m.FileName, m.FileSize, content)
	}
	return fmt.Sprintf("%s: %s", m.Sender, content)
}

func (s *roomSession) close() {
	_ = s.currentConn().Close(websocket.StatusNormalClosure, "bye")
}
