package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cooldogedev/prism"
	"github.com/cooldogedev/prism/conn"
	"github.com/cooldogedev/prism/login"
	"github.com/cooldogedev/prism/packet"
	"github.com/spf13/cobra"
)

func dialCmd(logger func() *slog.Logger) *cobra.Command {
	var (
		name      string
		transport string
		protocol  int32
		timeout   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "dial <addr>",
		Short: "Log in to a server and chat from standard input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			t, err := prism.NewTransport(transport, log)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			d := prism.Dialer{
				Transport: t,
				Config: login.ClientConfig{
					ProtocolVersion: protocol,
					IdentityData:    conn.IdentityData{DisplayName: name},
				},
				Logger: log,
			}
			c, err := d.Dial(ctx, args[0])
			if err != nil {
				return err
			}
			defer c.Close()
			fmt.Printf("Logged in to %s as %s\n", args[0], name)
			return chat(c)
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "Steve", "Display name to log in with")
	cmd.Flags().StringVarP(&transport, "transport", "t", "raknet", "Transport to dial with")
	cmd.Flags().Int32Var(&protocol, "protocol", login.ProtocolVersion, "Protocol version to report")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Time to complete login in")
	return cmd
}

// chat sends every line read from standard input as a chat message and prints the messages received.
func chat(c *conn.Conn) error {
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			text := &packet.Text{TextType: packet.TextTypeChat, SourceName: c.IdentityData().DisplayName, Message: scanner.Text()}
			if err := c.WritePackets(text); err != nil {
				return
			}
		}
		_ = c.Close()
	}()
	for {
		pk, err := c.ReadPacket()
		if err != nil {
			select {
			case <-c.Closed():
				return nil
			default:
				return err
			}
		}
		switch pk := pk.(type) {
		case *packet.Text:
			fmt.Printf("<%s> %s\n", pk.SourceName, pk.Message)
		case *packet.Disconnect:
			fmt.Printf("Disconnected: %s\n", pk.Message)
			return nil
		}
	}
}
