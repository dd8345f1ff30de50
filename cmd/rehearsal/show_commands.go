package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/handiism/rehearsal-markers/internal/audio"
	"github.com/handiism/rehearsal-markers/internal/library"
	"github.com/handiism/rehearsal-markers/internal/model"
)

func newShowCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newListCommand(ctx),
		newCreateCommand(ctx),
		newShowCommand(ctx),
		newDeleteCommand(ctx),
		newSettingsCommand(ctx),
		newExportCommand(ctx),
		newImportCommand(ctx),
		newVerifyCommand(ctx),
		newPlaylistCommand(ctx),
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored shows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := ctx.repo.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No shows found")
				return nil
			}

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				show, err := ctx.repo.Load(cmd.Context(), name)
				if err != nil {
					rows = append(rows, []string{name, "?", "?", err.Error()})
					continue
				}
				rows = append(rows, []string{
					name,
					strconv.Itoa(show.TrackCount()),
					strconv.Itoa(show.MarkerCount()),
					"",
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Show", "Tracks", "Markers", "Problem"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var skip, nudge int

	cmd := &cobra.Command{
		Use:   "create <show>",
		Short: "Create an empty show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.settings.ShowSettings()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("skip") || cmd.Flags().Changed("nudge") {
				if !cmd.Flags().Changed("skip") {
					skip = settings.SkipIncrementSeconds()
				}
				if !cmd.Flags().Changed("nudge") {
					nudge = settings.MarkerNudgeIncrementMS()
				}
				if settings, err = model.NewSettings(skip, nudge); err != nil {
					return err
				}
			}

			lib := ctx.library(progressPrinter(cmd.OutOrStdout(), *ctx.verbose))
			_, err = lib.CreateShow(cmd.Context(), args[0], settings)
			return err
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "Skip increment in seconds")
	cmd.Flags().IntVar(&nudge, "nudge", 0, "Marker nudge increment in milliseconds")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var markers bool

	cmd := &cobra.Command{
		Use:   "show <show>",
		Short: "Display a show's tracks and markers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := ctx.repo.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			settings := show.Settings()
			fmt.Fprintf(out, "%s\n", show.Name())
			fmt.Fprintf(out, "Skip increment: %ds   Nudge increment: %dms\n\n",
				settings.SkipIncrementSeconds(), settings.MarkerNudgeIncrementMS())

			if show.TrackCount() == 0 {
				fmt.Fprintln(out, "No tracks")
				return nil
			}

			rows := make([][]string, 0, show.TrackCount())
			for i, t := range show.Tracks() {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					t.Filename(),
					durationText(t),
					strconv.Itoa(t.MarkerCount()),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Track", "Duration", "Markers"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
			))

			if !markers {
				return nil
			}
			for i, t := range show.Tracks() {
				if t.MarkerCount() == 0 {
					continue
				}
				fmt.Fprintf(out, "\n%d. %s\n", i+1, t.Filename())
				mrows := make([][]string, 0, t.MarkerCount())
				for _, m := range t.Markers() {
					mrows = append(mrows, []string{model.FormatTimestamp(m.TimestampMS()), m.Name()})
				}
				fmt.Fprintln(out, renderTable([]string{"Time", "Marker"}, mrows,
					[]columnAlignment{alignRight, alignLeft}))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&markers, "markers", "m", false, "Also list each track's markers")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <show>",
		Short: "Delete a show and its audio files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := ctx.repo.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Show %q does not exist\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", args[0])
			return nil
		},
	}
}

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	var skip, nudge int

	cmd := &cobra.Command{
		Use:   "settings <show>",
		Short: "Display or change a show's settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := ctx.repo.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			current := show.Settings()
			out := cmd.OutOrStdout()

			if !cmd.Flags().Changed("skip") && !cmd.Flags().Changed("nudge") {
				fmt.Fprintf(out, "skip_increment_seconds: %d\n", current.SkipIncrementSeconds())
				fmt.Fprintf(out, "marker_nudge_increment_ms: %d\n", current.MarkerNudgeIncrementMS())
				return nil
			}

			if !cmd.Flags().Changed("skip") {
				skip = current.SkipIncrementSeconds()
			}
			if !cmd.Flags().Changed("nudge") {
				nudge = current.MarkerNudgeIncrementMS()
			}
			updated, err := model.NewSettings(skip, nudge)
			if err != nil {
				return err
			}
			if err := show.SetSettings(updated); err != nil {
				return err
			}
			if err := ctx.repo.Save(cmd.Context(), show); err != nil {
				return err
			}
			fmt.Fprintf(out, "Updated settings for %q\n", show.Name())
			return nil
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "Skip increment in seconds")
	cmd.Flags().IntVar(&nudge, "nudge", 0, "Marker nudge increment in milliseconds")
	return cmd
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <show> <file>",
		Short: "Write a show document to a file (audio is not included)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := ctx.repo.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := ctx.repo.Export(cmd.Context(), show, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %q to %s\n", show.Name(), args[1])
			return nil
		},
	}
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var assetDir string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a show document and copy its audio into the library",
		Long: "Import a show document. Audio files are looked up in --assets, or in the\n" +
			"audio directory next to the document when --assets is not given.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			lib := ctx.library(progressPrinter(out, *ctx.verbose))
			show, report, err := lib.ImportShow(cmd.Context(), args[0], assetDir, overwrite)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Imported %q: %d track(s), %d copied, %d missing\n",
				show.Name(), show.TrackCount(), report.Relocated, len(report.Missing))
			return nil
		},
	}
	cmd.Flags().StringVar(&assetDir, "assets", "", "Directory holding the show's audio files")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing show with the same name")
	return cmd
}

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <show>",
		Short: "Check that every track's audio file is present and supported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := ctx.repo.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			lib := ctx.library(progressPrinter(cmd.OutOrStdout(), *ctx.verbose))
			results, err := lib.Verify(cmd.Context(), show)
			if err != nil {
				return err
			}

			problems := 0
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				status := "ok"
				if !r.OK() {
					status = r.Problem()
					problems++
				}
				rows = append(rows, []string{
					strconv.Itoa(r.Index + 1),
					r.Filename,
					fmt.Sprintf("%.2f MB", float64(r.Size)/1024/1024),
					status,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Track", "Size", "Status"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
			))
			if problems > 0 {
				return errors.New(plural(problems, "track has a problem", "tracks have problems"))
			}
			return nil
		},
	}
}

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "playlist <show>",
		Short: "Write a playlist of the show's tracks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			show, err := ctx.repo.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var opts []library.Option
			if format != "" {
				f, err := audio.ParsePlaylistFormat(format)
				if err != nil {
					return err
				}
				opts = append(opts, library.WithPlaylist(f, ctx.settings.M3UExtended))
			}
			lib := ctx.library(progressPrinter(cmd.OutOrStdout(), *ctx.verbose), opts...)
			_, err = lib.WritePlaylist(cmd.Context(), show, output)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Playlist path (default: inside the show directory)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Playlist format: m3u, pls, wpl, zpl (default from config)")
	return cmd
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
