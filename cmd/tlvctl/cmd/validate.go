package cmd

import (
	"fmt"

	"github.com/danmuck/msgtlv/internal/protocol/schema"
	"github.com/spf13/cobra"
)

func validateCommand(opts *options) *cobra.Command {
	var offset int
	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Check a message against the schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := opts.readMessage(cmd, args[0], offset)
			if err != nil {
				return err
			}
			if err := schema.Validate(msg, opts.cfg.Schema); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d bytes, schema %s)\n", args[0], msg.Len(), opts.cfg.Schema.Name)
			return err
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "byte offset to start scanning from")
	return cmd
}
