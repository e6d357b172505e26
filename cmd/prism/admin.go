package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cooldogedev/prism/api"
	"github.com/spf13/cobra"
)

// apiFlags are the flags shared by commands talking to the administration API.
type apiFlags struct {
	addr  string
	token string
}

func (f *apiFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.addr, "api", "a", "127.0.0.1:19134", "Address of the administration API")
	cmd.Flags().StringVar(&f.token, "token", "", "Token to authenticate with")
}

func (f *apiFlags) dial(ctx context.Context) (*api.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return api.Dial(ctx, f.addr, f.token)
}

func listCmd() *cobra.Command {
	var flags apiFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the players connected",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			players, err := c.List()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tIDENTITY\tXUID\tADDRESS")
			for _, p := range players {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Username, p.Identity, p.XUID, p.Addr)
			}
			return w.Flush()
		},
	}
	flags.register(cmd)
	return cmd
}

func kickCmd() *cobra.Command {
	var (
		flags  apiFlags
		reason string
	)
	cmd := &cobra.Command{
		Use:   "kick <name>",
		Short: "Disconnect a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			return c.Kick(args[0], reason)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&reason, "reason", "r", "kicked", "Message shown to the player")
	return cmd
}

func transferCmd() *cobra.Command {
	var flags apiFlags
	var port uint16
	cmd := &cobra.Command{
		Use:   "transfer <name> <addr>",
		Short: "Send a player to another server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := flags.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			return c.Transfer(args[0], args[1], port)
		},
	}
	flags.register(cmd)
	cmd.Flags().Uint16VarP(&port, "port", "p", 19132, "Port of the server")
	return cmd
}
