package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/repository"
	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear draft cache slots",
	}

	withCache := func(fn func(cmd *cobra.Command, cache repository.DraftCache, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			for _, slot := range args {
				if !models.IsKnownSlot(slot) {
					return fmt.Errorf("unknown slot %q (known: %s)", slot, strings.Join(models.Slots, ", "))
				}
			}
			cache, closeCache, err := repository.OpenCache(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closeCache()
			return fn(cmd, cache, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the slots that hold data",
			Args:  cobra.NoArgs,
			RunE: withCache(func(cmd *cobra.Command, cache repository.DraftCache, args []string) error {
				slots, err := cache.Slots(cmd.Context())
				if err != nil {
					return err
				}
				for _, s := range slots {
					fmt.Fprintln(cmd.OutOrStdout(), s)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "show SLOT",
			Short: "Print the JSON held in SLOT",
			Args:  cobra.ExactArgs(1),
			RunE: withCache(func(cmd *cobra.Command, cache repository.DraftCache, args []string) error {
				payload, err := cache.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if payload == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "[]")
					return nil
				}
				var out bytes.Buffer
				if err := json.Indent(&out, payload, "", "  "); err != nil {
					// show corrupt payloads as stored
					out.Reset()
					out.Write(payload)
				}
				fmt.Fprintln(cmd.OutOrStdout(), out.String())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear SLOT",
			Short: "Empty SLOT",
			Args:  cobra.ExactArgs(1),
			RunE: withCache(func(cmd *cobra.Command, cache repository.DraftCache, args []string) error {
				if err := cache.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				log.Info().Str("slot", args[0]).Msg("Cache slot cleared")
				return nil
			}),
		},
	)
	return cmd
}
