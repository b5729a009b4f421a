package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/danmuck/msgtlv/internal/protocol/frame"
	"github.com/danmuck/msgtlv/internal/protocol/message"
	"github.com/danmuck/msgtlv/internal/protocol/schema"
	"github.com/spf13/cobra"
)

func encodeCommand(opts *options) *cobra.Command {
	var (
		output string
		framed bool
	)
	cmd := &cobra.Command{
		Use:   "encode name=value...",
		Short: "Build a message from named schema fields",
		Long: `Build a message from named schema fields, appended in schema order.

Integers accept 0x/0o/0b prefixes, bytes fields take hex.

Example:
  tlvctl encode --schema node.toml --hex id=node-a port=9400`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]string, len(args))
			for _, arg := range args {
				name, value, ok := strings.Cut(arg, "=")
				if !ok || strings.TrimSpace(name) == "" {
					return fmt.Errorf("argument %q: want name=value", arg)
				}
				values[strings.TrimSpace(name)] = value
			}
			msg := message.New()
			if err := schema.Encode(msg, opts.cfg.Schema, values); err != nil {
				return err
			}
			out := msg.Bytes()
			if framed {
				var b bytes.Buffer
				if err := frame.WriteFrame(&b, out, frame.DefaultLimits()); err != nil {
					return err
				}
				out = b.Bytes()
			}
			if output == "" {
				return opts.writeMessage(cmd.OutOrStdout(), out)
			}
			f, err := os.OpenFile(output, fileFlags(framed), 0o644)
			if err != nil {
				return err
			}
			if err := opts.writeMessage(f, out); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().BoolVar(&framed, "framed", false, "prefix the message with a frame header (appends with --output)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

// fileFlags appends framed output so repeated runs build a stream.
func fileFlags(framed bool) int {
	if framed {
		return os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	return os.O_CREATE | os.O_WRONLY | os.O_TRUNC
}
