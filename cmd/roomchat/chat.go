package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/securecomm-server/internal/proto"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Join a room and chat interactively",
	Long: `Join a room and chat from the terminal.

Commands:
  /call, /video        start a voice or video call
  /accept <callerId>   accept an incoming call
  /reject <callerId>   reject an incoming call
  /hangup              end the current call
  /rejoin              reconnect and reclaim your seat
  /quit                leave the room`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChat(cmd.Context())
	},
}

func runChat(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s, fingerprint, err := dial(ctx, flagAddr, flagRoom, flagUser, flagPassphrase)
	if err != nil {
		return err
	}
	defer s.close()

	fmt.Printf("Connected to %s as %s in room %s\n", flagAddr, s.user, s.room)
	if fingerprint != "" {
		fmt.Printf("End-to-end encryption on, key fingerprint %s\n", fingerprint)
	}
	fmt.Println("Type messages and press Enter to send. /quit or Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, s)
	}()

	return writeLoop(ctx, s)
}

func readLoop(ctx context.Context, s *roomSession) {
	for {
		conn := s.currentConn()
		f, err := readFrame(ctx, conn)
		if err != nil {
			// Replaced by /rejoin.
			if s.currentConn() != conn {
				continue
			}
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			// One reconnect attempt; the session token lets us take our slot back.
			if rerr := s.redial(ctx); rerr != nil {
				fmt.Fprintf(os.Stderr, "reconnect failed: %v\n", rerr)
				return
			}
			fmt.Println("* reconnected")
			continue
		}
		if line := s.render(f); line != "" {
			fmt.Println(line)
		}
	}
}

func writeLoop(ctx context.Context, s *roomSession) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			quit, err := handleLine(ctx, s, text)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func handleLine(ctx context.Context, s *roomSession, text string) (bool, error) {
	if !strings.HasPrefix(text, "/") {
		return false, s.sendText(ctx, text)
	}

	fields := strings.Fields(text)
	switch fields[0] {
	case "/quit":
		return true, nil
	case "/call", "/video":
		return false, s.send(ctx, proto.InboundTypeStartCall, proto.StartCallData{IsVideo: fields[0] == "/video"})
	case "/accept", "/reject":
		if len(fields) < 2 {
			fmt.Println("usage: " + fields[0] + " <callerId>")
			return false, nil
		}
		typ := proto.InboundTypeAcceptCall
		if fields[0] == "/reject" {
			typ = proto.InboundTypeRejectCall
		}
		return false, s.send(ctx, typ, proto.CallTargetData{CallerID: fields[1]})
	case "/hangup":
		return false, s.send(ctx, proto.InboundTypeEndCall, nil)
	case "/rejoin":
		return false, s.redial(ctx)
	default:
		fmt.Printf("unknown command %s\n", fields[0])
		return false, nil
	}
}
