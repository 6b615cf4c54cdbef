package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"net/url"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/securecomm-server/internal/config"
	"github.com/vovakirdan/securecomm-server/internal/core"
	"github.com/vovakirdan/securecomm-server/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub    *core.Hub
	accept *websocket.AcceptOptions
	ws     config.WSConfig
	log    *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:    hub,
		accept: acceptOptions(cfg.CORS.AllowedOrigins),
		ws:     cfg.WS,
		log:    logger,
	}
}

// acceptOptions turns configured origins into host patterns. Requests without
// an Origin header (non-browser clients) are always accepted.
func acceptOptions(origins []string) *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{}
	for _, origin := range origins {
		if origin == "*" {
			opts.InsecureSkipVerify = true
			return opts
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			opts.OriginPatterns = append(opts.OriginPatterns, origin)
			continue
		}
		opts.OriginPatterns = append(opts.OriginPatterns, u.Host)
	}
	return opts
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, h.accept)
	if err != nil {
		h.log.Warn().Err(err).Str("origin", r.Header.Get("Origin")).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.ws.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.ws.MaxMessageBytes)
	}

	client := core.NewClient("", h.ws.ClientBuffer)
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)
	h.log.Info().Str("conn_id", client.ID).Str("remote", r.RemoteAddr).Msg("client connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("ws connection closed with error")
		}
	}

	h.log.Info().Str("conn_id", client.ID).Msg("client disconnected")
	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	limiter := newRateLimiter(h.ws.RateLimitPerMinute)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		if !limiter.allow() {
			if err := h.writeError(ctx, conn, &proto.Error{Code: core.ErrCodeRateLimited, Msg: "too many messages"}); err != nil {
				return err
			}
			continue
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			h.log.Debug().Err(err).Str("conn_id", client.ID).Msg("malformed inbound frame")
			if err := h.writeError(ctx, conn, &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: "malformed JSON"}); err != nil {
				return err
			}
			continue
		}

		cmd, protoErr := inboundToCommand(inbound)
		if protoErr != nil {
			h.log.Debug().Str("conn_id", client.ID).Str("type", inbound.Type).Str("code", protoErr.Code).Msg("inbound rejected")
			if err := h.writeError(ctx, conn, protoErr); err != nil {
				return err
			}
			continue
		}
		h.hub.Submit(client, cmd)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("conn_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeError(ctx context.Context, conn *websocket.Conn, protoErr *proto.Error) error {
	return wsjson.Write(ctx, conn, errorOutbound(protoErr))
}
