package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/weekplan/internal/planner"
	"github.com/HendryAvila/weekplan/internal/routine"
	"github.com/HendryAvila/weekplan/internal/store"
	"github.com/HendryAvila/weekplan/internal/week"
)

var weekJSON bool

var weekCmd = &cobra.Command{
	Use:   "week [date]",
	Short: "Print a week's custody, mode and tasks",
	Long: `Print the week containing date (YYYY-MM-DD, default today): who is home,
which mode is active and the tasks of each day.

Examples:
  weekplan week               # This week
  weekplan week 2024-11-13    # The week of Monday 2024-11-11
  weekplan week --json        # Machine-readable output`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWeek,
}

func init() {
	weekCmd.Flags().BoolVar(&weekJSON, "json", false, "Output in JSON format")
}

func runWeek(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	p := planner.New(st, logger, loc)

	k := p.CurrentKey()
	if len(args) == 1 {
		if k, err = week.KeyForDate(args[0]); err != nil {
			return err
		}
	}

	info, err := p.WeekInfo(k)
	if err != nil {
		return err
	}
	r, err := p.Get(k)
	if err != nil && !errors.Is(err, routine.ErrNotFound) {
		return err
	}

	out := cmd.OutOrStdout()
	if weekJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"week": info, "routine": r})
	}
	printWeek(out, info, r)
	return nil
}

// printWeek renders a week as plain text.
func printWeek(w io.Writer, info routine.WeekInfo, r *routine.WeeklyRoutine) {
	fmt.Fprintf(w, "Week of %s\n", info.WeekStartDate)
	fmt.Fprintf(w, "%s %s\n", info.ModeDisplay.Emoji, info.ModeDisplay.Name)
	fmt.Fprintf(w, "%s\n", info.CustodyLabel)
	if info.ExceptionNote != "" {
		fmt.Fprintf(w, "Note: %s\n", info.ExceptionNote)
	}
	if r == nil {
		fmt.Fprintln(w, "\nNo routine yet. Start one from your assistant with week_start.")
		return
	}
	for _, d := range week.Weekdays {
		day, ok := r.DailyRoutines[d]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "\n%s %s\n", strings.ToUpper(string(d[:1]))+string(d[1:]), day.Date)
		for _, sec := range routine.Sections {
			for _, t := range day.Tasks[sec] {
				box := "[ ]"
				if t.Completed {
					box = "[x]"
				}
				fmt.Fprintf(w, "  %s %s\n", box, t.Text)
			}
		}
		if day.Notes != "" {
			fmt.Fprintf(w, "  > %s\n", day.Notes)
		}
	}
	if len(r.PrepTasks) > 0 {
		fmt.Fprintln(w, "\nPrep")
		for _, t := range r.PrepTasks {
			box := "[ ]"
			if t.Done {
				box = "[x]"
			}
			fmt.Fprintf(w, "  %s %s\n", box, t.Text)
		}
	}
}
