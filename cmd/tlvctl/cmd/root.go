package cmd

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/msgtlv/internal/config"
	"github.com/danmuck/msgtlv/internal/logging"
	"github.com/danmuck/msgtlv/internal/protocol/message"
	"github.com/danmuck/msgtlv/internal/protocol/schema"
	"github.com/spf13/cobra"
)

// maxInput bounds stdin reads; framed streams may hold many messages.
const maxInput = 64 << 20

// options carries the persistent flags and the configuration they resolve to.
type options struct {
	configPath string
	schemaPath string
	hex        bool

	cfg config.Config
}

// Execute runs tlvctl with os.Args and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "tlvctl",
		Short: "Inspect and build TLV messages",
		Long: `tlvctl reads and writes messages made of type-length-value records.

Type codes are described by a TOML schema, either referenced from the config
file or given with --schema. Without a schema every record is shown as bytes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (TOML)")
	root.PersistentFlags().StringVar(&opts.schemaPath, "schema", "", "schema file (TOML), overrides the config")
	root.PersistentFlags().BoolVar(&opts.hex, "hex", false, "read and write messages as hex text")

	root.AddCommand(
		dumpCommand(opts),
		findCommand(opts),
		encodeCommand(opts),
		validateCommand(opts),
		serveCommand(opts),
		initCommand(),
	)
	return root
}

func (o *options) load() error {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if o.schemaPath != "" {
		s, err := schema.Load(o.schemaPath)
		if err != nil {
			return err
		}
		cfg.Schema = s
	}
	logging.ConfigureWith(cfg.Log)
	o.cfg = cfg
	return nil
}

// readInput loads path ("-" for stdin), decoding hex text with --hex.
func (o *options) readInput(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(io.LimitReader(cmd.InOrStdin(), maxInput))
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if o.hex {
		data, err = hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
		if err != nil {
			return nil, fmt.Errorf("decode hex %s: %w", path, err)
		}
	}
	return data, nil
}

// readMessage loads path as one message starting at offset.
func (o *options) readMessage(cmd *cobra.Command, path string, offset int) (*message.Message, error) {
	data, err := o.readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	msg, err := message.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := msg.SetReadOffset(offset); err != nil {
		return nil, err
	}
	return msg, nil
}

// writeMessage writes b raw, or as one line of hex with --hex.
func (o *options) writeMessage(w io.Writer, b []byte) error {
	if o.hex {
		_, err := fmt.Fprintln(w, hex.EncodeToString(b))
		return err
	}
	_, err := io.Copy(w, bytes.NewReader(b))
	return err
}
