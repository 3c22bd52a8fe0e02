package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dd0wney/starry-habits/pkg/app"
	"github.com/dd0wney/starry-habits/pkg/constellation"
	"github.com/dd0wney/starry-habits/pkg/habits"
	"github.com/dd0wney/starry-habits/pkg/validation"
)

// resolveHabit finds a habit by exact id, unique id prefix or name.
func resolveHabit(ctx context.Context, svc *constellation.Service, ref string) (habits.Habit, error) {
	all, err := svc.Habits(ctx)
	if err != nil {
		return habits.Habit{}, err
	}

	var byPrefix, byName []habits.Habit
	for _, h := range all {
		switch {
		case h.ID == ref:
			return h, nil
		case strings.HasPrefix(h.ID, ref):
			byPrefix = append(byPrefix, h)
		case strings.EqualFold(h.Name, ref):
			byName = append(byName, h)
		}
	}
	for _, matches := range [][]habits.Habit{byPrefix, byName} {
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], nil
		default:
			return habits.Habit{}, fmt.Errorf("%q matches %d habits, use a longer id", ref, len(matches))
		}
	}
	return habits.Habit{}, fmt.Errorf("no habit matches %q", ref)
}

func addCmd(c *cli) *cobra.Command {
	req := validation.HabitRequest{}
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a habit to the sky",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			if err := validation.ValidateHabitRequest(&req); err != nil {
				return err
			}
			importance, err := habits.ParseImportance(req.Importance)
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(a *app.App) error {
				h, err := a.Service.AddHabit(cmd.Context(), habits.HabitInput{
					Name:       req.Name,
					Icon:       req.Icon,
					Importance: importance,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s added (%s)\n", h.Icon, h.Name, shortID(h.ID))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&req.Icon, "icon", "i", "", "Icon shown next to the star")
	cmd.Flags().StringVarP(&req.Importance, "importance", "p", "medium", "Importance (low, medium, high)")
	return cmd
}

func listCmd(c *cli) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List habits",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				list, err := a.Service.Habits(cmd.Context())
				if err != nil {
					return err
				}
				view, err := a.Service.View(cmd.Context(), "")
				if err != nil {
					return err
				}
				momentum := make(map[string]int, len(view.Stars))
				done := make(map[string]bool, len(view.Stars))
				for _, st := range view.Stars {
					momentum[st.Habit.ID] = st.Momentum
					done[st.Habit.ID] = st.Completed
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tHABIT\tIMPORTANCE\tTONIGHT\tMOMENTUM")
				for _, h := range list {
					if h.Archived && !all {
						continue
					}
					status := "·"
					switch {
					case h.Archived:
						status = "archived"
					case done[h.ID]:
						status = "★"
					}
					fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%d%%\n",
						shortID(h.ID), h.Icon, h.Name, h.Importance, status, momentum[h.ID])
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include archived habits")
	return cmd
}

func toggleCmd(c *cli) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "toggle [habit]",
		Short: "Mark a habit done (or undone) for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if date != "" {
				if err := validation.ValidateDateKey(date); err != nil {
					return err
				}
			}
			return c.withApp(cmd, func(a *app.App) error {
				h, err := resolveHabit(cmd.Context(), a.Service, args[0])
				if err != nil {
					return err
				}
				done, err := a.Service.Toggle(cmd.Context(), h.ID, date)
				if err != nil {
					return err
				}
				if date == "" {
					date = a.Service.Today()
				}
				verb := "dimmed"
				if done {
					verb = "lit"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s for %s\n", h.Icon, h.Name, verb, habits.FormatDate(date))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Day to toggle (YYYY-MM-DD, default today)")
	return cmd
}

func renameCmd(c *cli) *cobra.Command {
	var patch validation.HabitPatch
	var name, icon, importance string
	cmd := &cobra.Command{
		Use:   "edit [habit]",
		Short: "Change a habit's name, icon or importance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("icon") {
				patch.Icon = &icon
			}
			if cmd.Flags().Changed("importance") {
				patch.Importance = &importance
			}
			if err := validation.ValidateHabitPatch(&patch); err != nil {
				return err
			}
			upd := habits.HabitUpdate{Name: patch.Name, Icon: patch.Icon}
			if patch.Importance != nil {
				imp, err := habits.ParseImportance(*patch.Importance)
				if err != nil {
					return err
				}
				upd.Importance = &imp
			}
			return c.withApp(cmd, func(a *app.App) error {
				h, err := resolveHabit(cmd.Context(), a.Service, args[0])
				if err != nil {
					return err
				}
				updated, err := a.Service.UpdateHabit(cmd.Context(), h.ID, upd)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s updated\n", updated.Icon, updated.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&icon, "icon", "", "New icon")
	cmd.Flags().StringVar(&importance, "importance", "", "New importance (low, medium, high)")
	return cmd
}

func archiveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "archive [habit]",
		Short: "Retire a habit from the sky, keeping its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				h, err := resolveHabit(cmd.Context(), a.Service, args[0])
				if err != nil {
					return err
				}
				if err := a.Service.ArchiveHabit(cmd.Context(), h.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s archived\n", h.Icon, h.Name)
				return nil
			})
		},
	}
}

func deleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "delete [habit]",
		Aliases: []string{"rm"},
		Short:   "Delete a habit and its completions",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				h, err := resolveHabit(cmd.Context(), a.Service, args[0])
				if err != nil {
					return err
				}
				if err := a.Service.DeleteHabit(cmd.Context(), h.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s deleted\n", h.Icon, h.Name)
				return nil
			})
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
