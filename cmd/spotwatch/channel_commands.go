package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"spotwatch/internal/store"
)

func newChannelCommand(ctx *commandContext) *cobra.Command {
	channelCmd := &cobra.Command{
		Use:   "channel",
		Short: "Inspect and name broadcast channels",
	}

	channelCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				channels, err := st.ListChannels(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, len(channels))
				for i, ch := range channels {
					rows[i] = []string{strconv.FormatInt(ch.ID, 10), ch.Code, ch.Name}
				}
				printTable(cmd.OutOrStdout(), "No channels",
					[]string{"ID", "Code", "Name"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft},
				)
				return nil
			})
		},
	})

	channelCmd.AddCommand(&cobra.Command{
		Use:   "rename CODE NAME",
		Short: "Set the display name of a channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				if err := st.RenameChannel(cmd.Context(), args[0], args[1]); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return fmt.Errorf("channel %q not found", args[0])
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Channel %s is now %q\n", args[0], args[1])
				return nil
			})
		},
	})

	return channelCmd
}
