package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/securecomm-server/internal/proto"
)

var (
	flagText    string
	flagTimeout time.Duration
)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Join, send one message and wait for it to come back",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), flagTimeout)
		defer cancel()
		return runSmoke(ctx)
	},
}

func init() {
	smokeCmd.Flags().StringVar(&flagText, "text", "hello from smoke test", "message text to send")
	smokeCmd.Flags().DurationVar(&flagTimeout, "timeout", 5*time.Second, "total timeout for the run")
}

func runSmoke(ctx context.Context) error {
	s, _, err := dial(ctx, flagAddr, flagRoom, flagUser, flagPassphrase)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.sendText(ctx, flagText); err != nil {
		return err
	}

	for {
		f, err := s.read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s", f.Type)
		if f.Event != "" {
			fmt.Printf(" event=%s", f.Event)
		}
		fmt.Println()
		if line := s.render(f); line != "" {
			fmt.Println(line)
		}

		if f.Type == proto.OutboundTypeError && f.Error != nil {
			return fmt.Errorf("server error: %s: %s", f.Error.Code, f.Error.Msg)
		}
		if f.Event != proto.EventNewMessage {
			continue
		}
		var m proto.Message
		if err := json.Unmarshal(f.Data, &m); err != nil {
			return fmt.Errorf("unmarshal message: %w", err)
		}
		if m.Sender == s.user && m.Type != "system" {
			return nil
		}
	}
}
