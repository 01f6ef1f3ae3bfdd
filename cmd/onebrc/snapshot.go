package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arloliu/onebrc/format"
	"github.com/arloliu/onebrc/snapshot"
	"github.com/arloliu/onebrc/stats"
)

func (a *app) newMergeCmd() *cobra.Command {
	var (
		out         string
		compression string
	)

	cmd := &cobra.Command{
		Use:   "merge <snapshot>...",
		Short: "Merge snapshots and print the combined result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			merged := stats.NewTable()
			for _, path := range args {
				t, h, err := snapshot.ReadFile(path)
				if err != nil {
					return err
				}
				a.logger.Debug("snapshot loaded", zap.String("path", path), zap.Uint32("entries", h.EntryCount))
				if err := merged.MergeChecked(t); err != nil {
					return fmt.Errorf("merge %s: %w", path, err)
				}
			}

			if err := stats.WriteResult(cmd.OutOrStdout(), merged); err != nil {
				return err
			}
			if out == "" {
				return nil
			}

			ct, err := format.ParseCompression(compression)
			if err != nil {
				return err
			}
			if ct == format.CompressionAuto {
				ct = format.CompressionNone
			}

			return snapshot.WriteFile(out, merged, snapshot.WithCompression(ct))
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the merged table to this snapshot file")
	cmd.Flags().StringVar(&compression, "compression", "none", "Payload compression of --out: none, zstd, s2, lz4")

	return cmd
}

func (a *app) newInspectCmd() *cobra.Command {
	var result bool

	cmd := &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "Print a snapshot header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !result {
				h, err := snapshot.ReadHeader(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), h)

				return nil
			}

			t, h, err := snapshot.ReadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)

			return stats.WriteResult(cmd.OutOrStdout(), t)
		},
	}

	cmd.Flags().BoolVar(&result, "result", false, "Decode the payload and print the result line")

	return cmd
}
