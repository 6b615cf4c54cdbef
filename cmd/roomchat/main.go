package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	flagAddr       string
	flagRoom       string
	flagUser       string
	flagPassphrase string
)

// rootCmd is the room chat client.
var rootCmd = &cobra.Command{
	Use:   "roomchat",
	Short: "Command-line client for securecomm rooms",
	Long: `roomchat joins a securecomm room over WebSocket. With --passphrase, message
content is sealed with a key derived from the passphrase and the room code, so
the server only relays ciphertext.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", "ws://localhost:3001/ws", "WebSocket address")
	rootCmd.PersistentFlags().StringVarP(&flagRoom, "room", "r", "LOBBY", "room code to join")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "cli-user", "display name")
	rootCmd.PersistentFlags().StringVarP(&flagPassphrase, "passphrase", "p", "", "shared passphrase for end-to-end encryption")

	rootCmd.AddCommand(chatCmd, smokeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "roomchat: %v\n", err)
		stop()
		os.Exit(1)
	}
}
