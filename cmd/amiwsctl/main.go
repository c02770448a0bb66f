// Command amiwsctl is a small operational CLI for an AMI-over-WebSocket
// bridge: ping, presence, database, queue and originate actions, plus
// an event tail.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxbridge/go-amiws/pkg/ami"
	"github.com/voxbridge/go-amiws/pkg/client"
)

var (
	flagURL         string
	flagConfig      string
	flagTimeout     time.Duration
	flagNoReconnect bool
	flagVerbose     bool
)

func main() {
	root := &cobra.Command{
		Use:           "amiwsctl",
		Short:         "Control an Asterisk Manager Interface bridge over WebSocket",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagURL, "url", "", "bridge WebSocket URL (ws://host:port/path)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	root.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "per-action timeout (default 10s)")
	root.PersistentFlags().BoolVar(&flagNoReconnect, "no-reconnect", false, "disable automatic reconnection")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		pingCmd(),
		presenceCmd(),
		dbCmd(),
		queueCmd(),
		originateCmd(),
		hangupCmd(),
		listenCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				src := a.Value.Any().(*slog.Source)
				a.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
			}
			return a
		},
	})
	return slog.New(handler)
}

// dialClient merges config file and flags, then connects.
func dialClient(ctx context.Context) (*client.Client, error) {
	url := flagURL
	opts := []client.Option{client.WithLogger(newLogger())}

	if flagConfig != "" {
		cfg, err := loadConfigFile(flagConfig)
		if err != nil {
			return nil, err
		}
		if url == "" {
			url = cfg.URL
		}
		if d, err := parseDuration(cfg.ActionTimeout, "action_timeout"); err != nil {
			return nil, err
		} else if d > 0 {
			opts = append(opts, client.WithActionTimeout(d))
		}
		if d, err := parseDuration(cfg.ReconnectDelay, "reconnect_delay"); err != nil {
			return nil, err
		} else if d > 0 {
			opts = append(opts, client.WithReconnectDelay(d))
		}
		if cfg.MaxReconnectAttempts > 0 {
			opts = append(opts, client.WithMaxReconnectAttempts(cfg.MaxReconnectAttempts))
		}
		if cfg.AutoReconnect != nil {
			opts = append(opts, client.WithAutoReconnect(*cfg.AutoReconnect))
		}
	}
	if url == "" {
		return nil, fmt.Errorf("no bridge URL: pass --url or set url in the config file")
	}
	if flagTimeout > 0 {
		opts = append(opts, client.WithActionTimeout(flagTimeout))
	}
	if flagNoReconnect {
		opts = append(opts, client.WithAutoReconnect(false))
	}
	return client.Dial(ctx, url, opts...)
}

// run dials, invokes fn, and disconnects.
func run(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := dialClient(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Round-trip a Ping action through the bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) error {
				start := time.Now()
				if err := c.Ping(ctx); err != nil {
					return err
				}
				fmt.Printf("pong in %v\n", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
}

func presenceCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "presence", Short: "Query or change extension presence"}

	get := &cobra.Command{
		Use:   "get <extension>",
		Short: "Show the presence state of an extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) error {
				state, err := c.GetPresenceState(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Println(state)
				return nil
			})
		},
	}

	var message string
	set := &cobra.Command{
		Use:   "set <extension> <state>",
		Short: "Change the presence state of an extension",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := ami.ParsePresenceState(args[1])
			if err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, c *client.Client) error {
				return c.SetPresenceState(ctx, args[0], state, client.SetPresenceOptions{Message: message})
			})
		},
	}
	set.Flags().StringVarP(&message, "message", "m", "", "status message")

	cmd.AddCommand(get, set)
	return cmd
}

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "db", Short: "Read and write the backend database"}

	get := &cobra.Command{
		Use:   "get <family> <key>",
		Short: "Read one database value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) error {
				val, found, err := c.DBGet(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("%s/%s not found", args[0], args[1])
				}
				fmt.Println(val)
				return nil
			})
		},
	}
	put := &cobra.Command{
		Use:   "put <family> <key> <value>",
		Short: "Write one database value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) error {
				return c.DBPut(ctx, args[0], args[1], args[2])
			})
		},
	}
	del := &cobra.Command{
		Use:   "del <family> <key>",
		Short: "Delete one database key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) error {
				return c.DBDel(ctx, args[0], args[1])
			})
		},
	}

	cmd.AddCommand(get, put, del)
	return cmd
}

func queueCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "queue", Short: "Manage queue members"}

	var memberName string
	var penalty int
	var paused bool
	add := &cobra.Command{
		Use:   "add <queue> <interface>",
		Short: "Add a member to a queue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) error {
				return c.QueueAdd(ctx, args[0], args[1], client.QueueAddOptions{
					MemberName: memberName,
					Penalty:    penalty,
					Paused:     paused,
				})
			})
		},
	}
	add.Flags().StringVar(&memberName, "member-name", "", "display name for the member")
	add.Flags().IntVar(&penalty, "penalty", 0, "member penalty")
	add.Flags().BoolVar(&paused, "paused", false, "add the member paused")

	remove := &cobra.Command{
		Use:   "remove <queue> <interface>",
		Short: "Remove a member from a queue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) error {
				return c.QueueRemove(ctx, args[0], args[1])
			})
		},
	}

	var reason string
	pause := &cobra.Command{
		Use:   "pause <queue> <interface> <true|false>",
		Short: "Pause or unpause a queue member",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := strconv.ParseBool(args[2])
			if err != nil {
				return fmt.Errorf("third argument must be true or false: %w", err)
			}
			return run(cmd, func(ctx context.Context, c *client.Client) error {
				return c.QueuePause(ctx, args[0], args[1], p, reason)
			})
		},
	}
	pause.Flags().StringVar(&reason, "reason", "", "pause reason")

	cmd.AddCommand(add, remove, pause)
	return cmd
}

func originateCmd() *cobra.Command {
	var req client.OriginateRequest
	cmd := &cobra.Command{
		Use:   "originate <channel>",
		Short: "Start an outbound call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Channel = args[0]
			return run(cmd, func(ctx context.Context, c *client.Client) error {
				res, err := c.Originate(ctx, req)
				if err != nil {
					return err
				}
				fmt.Printf("channel=%s uniqueid=%s\n", res.Channel, res.UniqueID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.Exten, "exten", "", "destination extension")
	cmd.Flags().StringVar(&req.Context, "context", "", "dialplan context")
	cmd.Flags().IntVar(&req.Priority, "priority", 1, "dialplan priority")
	cmd.Flags().StringVar(&req.CallerID, "caller-id", "", "caller id")
	cmd.Flags().DurationVar(&req.Timeout, "ring-timeout", 30*time.Second, "ring timeout")
	return cmd
}

func hangupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hangup <channel>",
		Short: "Hang up a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) error {
				return c.HangupChannel(ctx, args[0])
			})
		},
	}
}

func listenCmd() *cobra.Command {
	var presenceOnly bool
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Tail events from the bridge until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *client.Client) error {
				print := func(m *ami.Message) {
					fmt.Printf("%s %v\n", m.Event(), m.Data)
				}
				var unsub func()
				if presenceOnly {
					unsub = c.OnPresenceChange(print)
				} else {
					unsub = c.OnEvent(print)
				}
				defer unsub()

				sig := make(chan os.Signal, 1)
				signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
				select {
				case <-sig:
				case <-ctx.Done():
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&presenceOnly, "presence", false, "only presence change events")
	return cmd
}
