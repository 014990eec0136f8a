package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scadenze/internal/cli"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Show candidate recurring patterns and why they were accepted or rejected",
	Args:  cobra.NoArgs,
	RunE:  runGroups,
}

func init() {
	groupsCmd.Flags().StringVar(&flagToday, "today", "", "Reference date (YYYY-MM-DD), defaults to the current date")
	groupsCmd.Flags().IntVar(&flagLookback, "lookback", 0, "History window in months; overrides LOOKBACK_MONTHS")
	rootCmd.AddCommand(groupsCmd)
}

func runGroups(cmd *cobra.Command, _ []string) error {
	now, err := referenceTime()
	if err != nil {
		return err
	}
	env, err := setup(cmd, forecastOverrides)
	if err != nil {
		return err
	}
	svc, closeFeed, err := newService(env)
	if err != nil {
		return err
	}
	defer closeFeed()

	evals, err := svc.Evaluate(env.ctx, now)
	if err != nil {
		return err
	}

	fmt.Println(cli.RenderTitle(fmt.Sprintf("CANDIDATE PATTERNS  last %d months", env.cfg.LookbackMonths)))
	if len(evals) == 0 {
		fmt.Println(cli.RenderMuted("  No merchant repeats often enough to be a candidate."))
		return nil
	}

	rows := make([][]string, 0, len(evals))
	for _, ev := range evals {
		last := ev.Group.Last()
		row := []string{
			ev.Group.CanonicalKey,
			fmt.Sprintf("%d", len(ev.Group.Members)),
			last.OccurredOn.String(),
		}
		if ev.Err != nil {
			row = append(row, "-", "-", "-", ev.Err.Error())
		} else {
			p := ev.Profile
			row = append(row, string(p.Cadence), fmt.Sprintf("%d", p.DayOfMonth), p.Amount.String(), "accepted")
		}
		rows = append(rows, row)
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:    []string{"Key", "Seen", "Last", "Cadence", "Day", "Amount", "Outcome"},
		Rows:       rows,
		RightAlign: []int{1, 4, 5},
	}))
	return nil
}
