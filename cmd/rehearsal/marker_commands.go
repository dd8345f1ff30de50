package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handiism/rehearsal-markers/internal/apperr"
	"github.com/handiism/rehearsal-markers/internal/model"
)

func newMarkerCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newAddMarkerCommand(ctx),
		newRemoveMarkerCommand(ctx),
		newRenameMarkerCommand(ctx),
		newMoveMarkerCommand(ctx),
		newNudgeMarkerCommand(ctx),
	}
}

// editTrack loads a show, applies fn to one of its tracks, and saves the
// show when fn reports a change.
func editTrack(cmd *cobra.Command, ctx *commandContext, showName, trackArg string, fn func(*model.Track) (bool, error)) error {
	show, err := ctx.repo.Load(cmd.Context(), showName)
	if err != nil {
		return err
	}
	_, track, err := resolveTrack(show, trackArg)
	if err != nil {
		return err
	}
	changed, err := fn(track)
	if err != nil || !changed {
		return err
	}
	return ctx.repo.Save(cmd.Context(), show)
}

func newAddMarkerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add-marker <show> <track> <name> <time>",
		Short: "Add a named marker (time as 1:23.5, 83.5 or 83500ms)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := model.ParseTimestamp(args[3])
			if err != nil {
				return err
			}
			marker, err := model.NewMarker(args[2], at)
			if err != nil {
				return err
			}
			return editTrack(cmd, ctx, args[0], args[1], func(t *model.Track) (bool, error) {
				if t.HasMarkerFold(marker.Name()) {
					return false, apperr.Invalid("add marker",
						fmt.Errorf("marker %q already exists on %s", marker.Name(), t.Filename()))
				}
				if err := t.AddMarker(marker); err != nil {
					return false, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", marker, t.Filename())
				return true, nil
			})
		},
	}
}

func newRemoveMarkerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-marker <show> <track> <name>",
		Short: "Remove a marker by name",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editTrack(cmd, ctx, args[0], args[1], func(t *model.Track) (bool, error) {
				if !t.RemoveMarker(args[2]) {
					return false, apperr.NotFound("remove marker", args[2],
						fmt.Errorf("no marker %q on %s", args[2], t.Filename()))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from %s\n", args[2], t.Filename())
				return true, nil
			})
		},
	}
}

func newRenameMarkerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rename-marker <show> <track> <old> <new>",
		Short: "Rename a marker",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldName, newName := args[2], args[3]
			return editTrack(cmd, ctx, args[0], args[1], func(t *model.Track) (bool, error) {
				if !t.HasMarker(oldName) {
					return false, apperr.NotFound("rename marker", oldName,
						fmt.Errorf("no marker %q on %s", oldName, t.Filename()))
				}
				if !model.SameNameFold(oldName, newName) && t.HasMarkerFold(newName) {
					return false, apperr.Invalid("rename marker",
						fmt.Errorf("marker %q already exists on %s", newName, t.Filename()))
				}
				if _, err := t.RenameMarker(oldName, newName); err != nil {
					return false, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q\n", oldName, newName)
				return true, nil
			})
		},
	}
}

func newMoveMarkerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move-marker <show> <track> <name> <time>",
		Short: "Set a marker's time",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := model.ParseTimestamp(args[3])
			if err != nil {
				return err
			}
			return editTrack(cmd, ctx, args[0], args[1], func(t *model.Track) (bool, error) {
				moved, err := t.MoveMarker(args[2], at)
				if err != nil {
					return false, err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s\n", moved)
				return true, nil
			})
		},
	}
}

func newNudgeMarkerCommand(ctx *commandContext) *cobra.Command {
	var by int64
	var steps int

	cmd := &cobra.Command{
		Use:   "nudge-marker <show> <track> <name>",
		Short: "Move a marker earlier or later",
		Long: "Move a marker by --by milliseconds, or by --steps multiples of the show's\n" +
			"nudge increment. Negative values move it earlier; the result is never\n" +
			"before the start of the track.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := ctx.repo.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, track, err := resolveTrack(show, args[1])
			if err != nil {
				return err
			}

			delta := by
			if !cmd.Flags().Changed("by") {
				delta = int64(steps) * int64(show.Settings().MarkerNudgeIncrementMS())
			}
			moved, err := track.NudgeMarker(args[2], delta)
			if err != nil {
				return err
			}
			if err := ctx.repo.Save(cmd.Context(), show); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s\n", moved)
			return nil
		},
	}
	cmd.Flags().Int64Var(&by, "by", 0, "Offset in milliseconds")
	cmd.Flags().IntVar(&steps, "steps", 1, "Offset in nudge increments")
	return cmd
}
