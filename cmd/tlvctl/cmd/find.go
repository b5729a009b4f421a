package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/danmuck/msgtlv/internal/protocol/tlv"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type foundRecord struct {
	Type     uint8  `json:"type"`
	Name     string `json:"name,omitempty"`
	Offset   int    `json:"offset"`
	Size     int    `json:"size"`
	Extended bool   `json:"extended,omitempty"`
	Value    string `json:"value"`
}

func findCommand(opts *options) *cobra.Command {
	var (
		asJSON bool
		offset int
	)
	cmd := &cobra.Command{
		Use:   "find <file|-> <type>",
		Short: "Show the first record of a type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := strconv.ParseUint(args[1], 0, 8)
			if err != nil {
				return fmt.Errorf("type %q: must be 0..255", args[1])
			}
			msg, err := opts.readMessage(cmd, args[0], offset)
			if err != nil {
				return err
			}
			rec, err := tlv.Find(msg, uint8(typ))
			if err != nil {
				return err
			}
			value := make([]byte, rec.ValueLength())
			if err := tlv.ReadValue(msg, rec.Offset, value); err != nil {
				return err
			}
			found := foundRecord{
				Type:     rec.Type(),
				Offset:   rec.Offset,
				Size:     rec.Size(),
				Extended: rec.Header.IsExtended(),
				Value:    hex.EncodeToString(value),
			}
			if spec, ok := opts.cfg.Schema.Lookup(rec.Type()); ok {
				found.Name = spec.Name
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), found)
			}
			t := table.NewWriter()
			t.AppendHeader(table.Row{"Offset", "Type", "Name", "Size", "Value"})
			t.AppendRow(table.Row{found.Offset, found.Type, found.Name, found.Size, found.Value})
			t.SetOutputMirror(cmd.OutOrStdout())
			t.Render()
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().IntVar(&offset, "offset", 0, "byte offset to start scanning from")
	return cmd
}
