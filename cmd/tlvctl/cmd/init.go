package cmd

import (
	"fmt"

	"github.com/danmuck/msgtlv/internal/config"
	"github.com/spf13/cobra"
)

func initCommand() *cobra.Command {
	var (
		kind   string
		output string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config or schema template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := output
			if target == "" {
				switch kind {
				case "config":
					target = "tlvctl.toml"
				case "schema":
					target = "schema.toml"
				default:
					return fmt.Errorf("unknown kind: %s", kind)
				}
			}
			if err := config.WriteTemplate(target, kind, force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s template to %s\n", kind, target)
			return err
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "config", "template kind: config|schema")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
