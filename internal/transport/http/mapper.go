package http

import (
	"encoding/json"
	"strings"

	"github.com/vovakirdan/securecomm-server/internal/core"
	"github.com/vovakirdan/securecomm-server/internal/proto"
)

// inboundToCommand validates a client frame and maps it to a core command.
// A non-nil proto.Error is reported back to the client; the connection stays open.
func inboundToCommand(inbound proto.Inbound) (core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := decodeData(inbound.Data, &join, true); err != nil {
			return nil, err
		}
		roomID := normalizeRoomID(join.RoomID)
		name := strings.TrimSpace(join.UserName)
		if roomID == "" {
			return nil, badRequest("roomId is required")
		}
		if name == "" {
			return nil, badRequest("userName is required")
		}
		return core.JoinRoom{RoomID: roomID, UserName: name, Token: join.Token}, nil
	case proto.InboundTypeSendMessage:
		var msg proto.SendMessageData
		if err := decodeData(inbound.Data, &msg, true); err != nil {
			return nil, err
		}
		typ, ok := core.ParseClientMessageType(msg.Type)
		if !ok {
			return nil, badRequest("unsupported message type")
		}
		if msg.FileSize < 0 {
			return nil, badRequest("fileSize must not be negative")
		}
		return core.SendMessage{Draft: core.Draft{
			Content:   msg.Content,
			Type:      typ,
			FileName:  msg.FileName,
			FileSize:  msg.FileSize,
			Encrypted: msg.Encrypted,
		}}, nil
	case proto.InboundTypeTypingStart:
		return core.Typing{IsTyping: true}, nil
	case proto.InboundTypeTypingStop:
		return core.Typing{IsTyping: false}, nil
	case proto.InboundTypeStartCall:
		var call proto.StartCallData
		if err := decodeData(inbound.Data, &call, false); err != nil {
			return nil, err
		}
		return core.StartCall{IsVideo: call.IsVideo}, nil
	case proto.InboundTypeAcceptCall, proto.InboundTypeRejectCall:
		var target proto.CallTargetData
		if err := decodeData(inbound.Data, &target, true); err != nil {
			return nil, err
		}
		if target.CallerID == "" {
			return nil, badRequest("callerId is required")
		}
		if inbound.Type == proto.InboundTypeAcceptCall {
			return core.AcceptCall{CallerID: target.CallerID}, nil
		}
		return core.RejectCall{CallerID: target.CallerID}, nil
	case proto.InboundTypeEndCall:
		return core.EndCall{}, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "unknown message type"}
	}
}

func decodeData(raw json.RawMessage, v any, required bool) *proto.Error {
	if len(raw) == 0 || string(raw) == "null" {
		if required {
			return badRequest("data is required")
		}
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return badRequest("malformed data")
	}
	return nil
}

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

// normalizeRoomID makes room codes case-insensitive.
func normalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func outboundFromEvent(event core.Event) proto.Outbound {
	switch ev := event.(type) {
	case core.RoomMessages:
		messages := make([]proto.Message, 0, len(ev.Messages))
		for _, m := range ev.Messages {
			messages = append(messages, toProtoMessage(m))
		}
		return eventOutbound(proto.EventRoomMessages, messages)
	case core.NewMessage:
		return eventOutbound(proto.EventNewMessage, toProtoMessage(ev.Message))
	case core.ParticipantsUpdated:
		return eventOutbound(proto.EventParticipantsUpdated, toProtoParticipants(ev.Participants))
	case core.UserTyping:
		return eventOutbound(proto.EventUserTyping, proto.UserTyping{
			UserID:   ev.UserID,
			UserName: ev.UserName,
			IsTyping: ev.IsTyping,
		})
	case core.IncomingCall:
		return eventOutbound(proto.EventIncomingCall, proto.IncomingCall{
			From:     ev.From,
			IsVideo:  ev.IsVideo,
			CallerID: ev.CallerID,
		})
	case core.CallAccepted:
		return eventOutbound(proto.EventCallAccepted, proto.CallAccepted{AccepterID: ev.AccepterID})
	case core.CallRejected:
		return eventOutbound(proto.EventCallRejected, nil)
	case core.CallEnded:
		return eventOutbound(proto.EventCallEnded, nil)
	case core.Session:
		return eventOutbound(proto.EventSession, proto.Session{
			RoomID:   ev.RoomID,
			UserName: ev.UserName,
			Token:    ev.Token,
		})
	case core.ErrorEvent:
		if ev.Err == nil {
			return errorOutbound(&proto.Error{Code: "unknown", Msg: "unknown error"})
		}
		return errorOutbound(&proto.Error{Code: ev.Err.Code, Msg: ev.Err.Message})
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func eventOutbound(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func errorOutbound(err *proto.Error) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeError, Error: err}
}

func toProtoMessage(m core.Message) proto.Message {
	return proto.Message{
		ID:        m.ID,
		Content:   m.Content,
		Timestamp: m.Timestamp.UnixMilli(),
		Sender:    m.Sender,
		Type:      string(m.Type),
		FileName:  m.FileName,
		FileSize:  m.FileSize,
		Encrypted: m.Encrypted,
	}
}

func toProtoParticipants(participants []core.Participant) []proto.Participant {
	out := make([]proto.Participant, 0, len(participants))
	for _, p := range participants {
		out = append(out, proto.Participant{
			ID:       p.ID,
			Name:     p.Name,
			IsOnline: p.IsOnline,
			JoinedAt: p.JoinedAt.UnixMilli(),
		})
	}
	return out
}
