package cli

import (
	"fmt"
	"time"

	"contexta/internal/domain"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCursorCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Encode or decode notification pagination cursors",
	}
	cmd.AddCommand(newCursorEncodeCommand(v), newCursorDecodeCommand(v))
	return cmd
}

func newCursorEncodeCommand(v *viper.Viper) *cobra.Command {
	var createdAt, id string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build the cursor for a (created_at, id) position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := time.Parse(time.RFC3339Nano, createdAt)
			if err != nil {
				return fmt.Errorf("invalid --created-at: %w", err)
			}

			p, err := newPrinter(cmd, v)
			if err != nil {
				return err
			}
			return p.Value("cursor", domain.EncodeCursor(t, id))
		},
	}

	cmd.Flags().StringVar(&createdAt, "created-at", "", "creation time, RFC 3339")
	cmd.Flags().StringVar(&id, "id", "", "row id")
	_ = cmd.MarkFlagRequired("created-at")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newCursorDecodeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <cursor>",
		Short: "Split a cursor into its created_at and id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, ok := domain.DecodeCursor(args[0])
			if !ok {
				return errMalformedCursor
			}

			p, err := newPrinter(cmd, v)
			if err != nil {
				return err
			}
			return p.Record([]string{"created_at", "id"}, map[string]string{
				"created_at": c.CreatedAt.Format(time.RFC3339Nano),
				"id":         c.ID,
			})
		},
	}
}
