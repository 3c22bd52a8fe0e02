package main

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/starry-habits/pkg/app"
	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/validation"
	"github.com/dd0wney/starry-habits/pkg/visualization"
)

func dateFlag(date string) error {
	if date == "" {
		return nil
	}
	return validation.ValidateDateKey(date)
}

func showCmd(c *cli) *cobra.Command {
	var date string
	var cols, rows int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Draw tonight's constellation in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dateFlag(date); err != nil {
				return err
			}
			return c.withApp(cmd, func(a *app.App) error {
				view, err := a.Service.View(cmd.Context(), date)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					raw, err := view.Constellation().ExportJSON()
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(out, string(raw))
					return err
				}

				fmt.Fprintf(out, "%s  ·  %d of %d stars lit  ·  seed %d\n\n",
					habits.FormatDate(view.Date), view.CompletedCount, view.Total, view.Seed)
				if view.Total == 0 {
					fmt.Fprintln(out, "The sky is empty. Add a habit with `starry add`.")
					return nil
				}
				if err := visualization.RenderASCII(out, view.Constellation(), cols, rows); err != nil {
					return err
				}
				if view.Note != "" {
					fmt.Fprintf(out, "\n“%s”\n", view.Note)
				}
				fmt.Fprintf(out, "\n%s\n", view.Ritual(rand.IntN))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Day to draw (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&cols, "cols", 60, "Grid width")
	cmd.Flags().IntVar(&rows, "rows", 20, "Grid height")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the constellation as JSON")
	return cmd
}

func svgCmd(c *cli) *cobra.Command {
	var date, output string
	cmd := &cobra.Command{
		Use:   "svg",
		Short: "Render the constellation as an SVG image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dateFlag(date); err != nil {
				return err
			}
			return c.withApp(cmd, func(a *app.App) error {
				view, err := a.Service.View(cmd.Context(), date)
				if err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := visualization.RenderSVG(&buf, view.Constellation()); err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err = cmd.OutOrStdout().Write(buf.Bytes())
					return err
				}
				if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Day to draw (YYYY-MM-DD, default today)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func weekCmd(c *cli) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the week's completions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dateFlag(date); err != nil {
				return err
			}
			return c.withApp(cmd, func(a *app.App) error {
				if date == "" {
					date = a.Service.Today()
				}
				ref, err := habits.ParseDateKey(date)
				if err != nil {
					return err
				}
				week, err := a.Service.Week(cmd.Context(), ref)
				if err != nil {
					return err
				}
				writeWeek(cmd, week)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Any day in the week (YYYY-MM-DD, default today)")
	return cmd
}

func writeWeek(cmd *cobra.Command, week habits.Week) {
	out := cmd.OutOrStdout()
	width := 12
	for _, row := range week.Rows {
		width = max(width, len([]rune(row.Habit.Name))+2)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s", width, "")
	for _, d := range week.Days {
		label := d.Label
		if d.Status == habits.DayToday {
			label = "[" + label + "]"
		}
		fmt.Fprintf(&b, "%-7s", label)
	}
	fmt.Fprintln(&b, " MOMENTUM")

	for _, row := range week.Rows {
		fmt.Fprintf(&b, "%-*s", width, row.Habit.Name)
		for i, done := range row.Done {
			mark := "·"
			switch {
			case done:
				mark = "★"
			case week.Days[i].Status == habits.DayFuture:
				mark = " "
			}
			fmt.Fprintf(&b, "%-7s", mark)
		}
		fmt.Fprintf(&b, " %d%%\n", row.Momentum)
	}
	fmt.Fprint(out, b.String())
}

func noteCmd(c *cli) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "note [text]",
		Short: "Write a reflection for a day (empty text clears it)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dateFlag(date); err != nil {
				return err
			}
			req := validation.NoteRequest{}
			if len(args) == 1 {
				req.Note = args[0]
			}
			if err := validation.ValidateNote(&req); err != nil {
				return err
			}
			return c.withApp(cmd, func(a *app.App) error {
				if date == "" {
					date = a.Service.Today()
				}
				if err := a.Service.SetNote(cmd.Context(), date, req.Note); err != nil {
					return err
				}
				if strings.TrimSpace(req.Note) == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "note cleared for %s\n", habits.FormatDate(date))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "note saved for %s\n", habits.FormatDate(date))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Day (YYYY-MM-DD, default today)")
	return cmd
}
