package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/danmuck/msgtlv/internal/protocol/frame"
	"github.com/danmuck/msgtlv/internal/protocol/schema"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func dumpCommand(opts *options) *cobra.Command {
	var (
		asJSON bool
		framed bool
		offset int
	)
	cmd := &cobra.Command{
		Use:   "dump <file|->",
		Short: "List every record in a message",
		Long: `List every record in a message, decoded with the schema.

Example:
  tlvctl dump --schema node.toml message.bin
  echo 05 04 01 02 03 04 07 00 | tlvctl dump --hex -
  tlvctl dump --framed capture.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if framed {
				return dumpFrames(cmd, opts, args[0], asJSON)
			}
			msg, err := opts.readMessage(cmd, args[0], offset)
			if err != nil {
				return err
			}
			desc, err := schema.Describe(msg, opts.cfg.Schema)
			if err != nil {
				return fmt.Errorf("dump %s: %w", args[0], err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), desc)
			}
			renderDescription(cmd.OutOrStdout(), desc)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().BoolVar(&framed, "framed", false, "input is a stream of framed messages")
	cmd.Flags().IntVar(&offset, "offset", 0, "byte offset to start scanning from")
	return cmd
}

func dumpFrames(cmd *cobra.Command, opts *options, path string, asJSON bool) error {
	data, err := opts.readInput(cmd, path)
	if err != nil {
		return err
	}
	msgs, err := frame.ReadAll(bytes.NewReader(data), frame.DefaultLimits())
	if err != nil {
		return fmt.Errorf("dump %s: %w", path, err)
	}
	descs := make([]schema.Description, 0, len(msgs))
	for i, msg := range msgs {
		desc, err := schema.Describe(msg, opts.cfg.Schema)
		if err != nil {
			return fmt.Errorf("dump %s: frame %d: %w", path, i, err)
		}
		descs = append(descs, desc)
	}
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), descs)
	}
	for i, desc := range descs {
		fmt.Fprintf(cmd.OutOrStdout(), "frame %d (%d bytes)\n", i, msgs[i].Len())
		renderDescription(cmd.OutOrStdout(), desc)
	}
	return nil
}

func renderDescription(w io.Writer, desc schema.Description) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Offset", "Type", "Name", "Kind", "Size", "Value"})
	for _, f := range desc.Fields {
		value := f.Value
		if f.Error != "" {
			value = fmt.Sprintf("%s (%s)", f.Value, f.Error)
		}
		size := fmt.Sprint(f.Size)
		if f.Extended {
			size += " ext"
		}
		t.AppendRow(table.Row{f.Offset, f.Type, f.Name, f.Kind, size, value})
	}
	if desc.Trailing > 0 {
		t.AppendFooter(table.Row{desc.Extent, "", "", "trailing", desc.Trailing, ""})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	t.SetOutputMirror(w)
	t.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
