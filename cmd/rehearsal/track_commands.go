package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTrackCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newAddTrackCommand(ctx),
		newRemoveTrackCommand(ctx),
		newMoveTrackCommand(ctx),
	}
}

func newAddTrackCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add-track <show> <file>...",
		Short: "Copy audio files into a show and append them as tracks",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := ctx.repo.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			lib := ctx.library(progressPrinter(cmd.OutOrStdout(), *ctx.verbose))
			added, addErr := lib.AddTracks(cmd.Context(), show, args[1:])
			if len(added) > 0 {
				if err := ctx.repo.Save(cmd.Context(), show); err != nil {
					return err
				}
			}
			return addErr
		},
	}
}

func newRemoveTrackCommand(ctx *commandContext) *cobra.Command {
	var deleteAsset bool

	cmd := &cobra.Command{
		Use:   "remove-track <show> <track>",
		Short: "Remove a track by position or filename",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := ctx.repo.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			index, _, err := resolveTrack(show, args[1])
			if err != nil {
				return err
			}

			lib := ctx.library(progressPrinter(cmd.OutOrStdout(), *ctx.verbose))
			track, deleted, err := lib.RemoveTrack(show, index, deleteAsset)
			if err != nil {
				return err
			}
			if err := ctx.repo.Save(cmd.Context(), show); err != nil {
				return err
			}

			msg := fmt.Sprintf("Removed %s from %q", track.Filename(), show.Name())
			if deleted {
				msg += " and deleted its audio file"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().BoolVar(&deleteAsset, "delete-asset", false, "Also delete the audio file when no other track uses it")
	return cmd
}

func newMoveTrackCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move-track <show> <track> <position>",
		Short: "Move a track to a new 1-based position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := ctx.repo.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			from, track, err := resolveTrack(show, args[1])
			if err != nil {
				return err
			}
			to, err := parsePosition(args[2], show.TrackCount())
			if err != nil {
				return err
			}
			if !show.ReorderTrack(from, to) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already at position %d\n", track.Filename(), to+1)
				return nil
			}
			if err := ctx.repo.Save(cmd.Context(), show); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to position %d\n", track.Filename(), to+1)
			return nil
		},
	}
}
