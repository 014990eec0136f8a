package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"scadenze/internal/cli"
	"scadenze/internal/config"
	"scadenze/internal/core"
	"scadenze/internal/services"
)

var (
	flagToday    string
	flagHorizon  int
	flagMax      int
	flagLookback int
	flagJSON     bool
)

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Forecast upcoming recurring obligations",
	Args:  cobra.NoArgs,
	RunE:  runUpcoming,
}

func init() {
	upcomingCmd.Flags().StringVar(&flagToday, "today", "", "Reference date (YYYY-MM-DD), defaults to the current date")
	upcomingCmd.Flags().IntVar(&flagHorizon, "horizon", 0, "Forecast horizon in months; overrides HORIZON_MONTHS")
	upcomingCmd.Flags().IntVar(&flagMax, "max", 0, "Maximum events per obligation; overrides MAX_OCCURRENCES")
	upcomingCmd.Flags().IntVar(&flagLookback, "lookback", 0, "History window in months; overrides LOOKBACK_MONTHS")
	upcomingCmd.Flags().BoolVar(&flagJSON, "json", false, "Print events as JSON")
	rootCmd.AddCommand(upcomingCmd)
}

// forecastOverrides applies the forecast flags shared by upcoming and groups.
func forecastOverrides(cfg *config.Config) {
	if flagHorizon > 0 {
		cfg.HorizonMonths = flagHorizon
	}
	if flagMax > 0 {
		cfg.MaxOccurrences = flagMax
	}
	if flagLookback > 0 {
		cfg.LookbackMonths = flagLookback
	}
}

// referenceTime resolves --today to a point in time.
func referenceTime() (time.Time, error) {
	if flagToday == "" {
		return time.Now(), nil
	}
	d, err := core.ParseDate(flagToday)
	if err != nil {
		return time.Time{}, fmt.Errorf("--today %q: expected YYYY-MM-DD", flagToday)
	}
	return d.Time, nil
}

// newService opens the feed and builds a forecast service that never publishes.
func newService(env *appEnv) (*services.ForecastService, func() error, error) {
	feed, err := cli.OpenFeed(env.ctx, env.logger, env.cfg)
	if err != nil {
		return nil, nil, err
	}
	fc, err := cli.ForecastConfig(env.cfg)
	if err != nil {
		feed.Close()
		return nil, nil, err
	}
	categorizer := cli.NewCategorizer(env.ctx, env.logger, env.cfg, feed.Hints)
	return services.NewForecastService(feed.Lister, categorizer, nil, fc), feed.Close, nil
}

type eventJSON struct {
	Date         string `json:"date"`
	Label        string `json:"label"`
	CanonicalKey string `json:"canonical_key"`
	Amount       string `json:"amount"`
	AmountCents  int64  `json:"amount_cents"`
	Cadence      string `json:"cadence"`
	Risk         string `json:"risk"`
}

func runUpcoming(cmd *cobra.Command, _ []string) error {
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

	res, err := svc.Run(env.ctx, now)
	if err != nil {
		return err
	}

	if flagJSON {
		out := make([]eventJSON, 0, len(res.Events))
		for _, ev := range res.Events {
			out = append(out, eventJSON{
				Date:         ev.Date.String(),
				Label:        ev.Label,
				CanonicalKey: ev.CanonicalKey,
				Amount:       ev.Amount.String(),
				AmountCents:  ev.Amount.Cents,
				Cadence:      string(ev.Cadence),
				Risk:         string(ev.Risk),
			})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println(cli.RenderTitle(fmt.Sprintf("UPCOMING OBLIGATIONS  from %s, next %d months", res.Today, env.cfg.HorizonMonths)))
	if len(res.Events) == 0 {
		fmt.Println(cli.RenderMuted(fmt.Sprintf("  No recurring obligations found in %d transactions.", res.Transactions)))
		return nil
	}

	rows := make([][]string, 0, len(res.Events))
	var total core.Money
	for _, ev := range res.Events {
		rows = append(rows, []string{
			ev.Date.String(),
			fmt.Sprintf("%d", res.Today.DaysUntil(ev.Date)),
			ev.Label,
			ev.Amount.String(),
			cli.RenderRisk(ev.Risk),
		})
		total.Cents += ev.Amount.Cents
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:    []string{"Date", "Days", "Obligation", "Amount", "Risk"},
		Rows:       rows,
		RightAlign: []int{1, 3},
	}))
	fmt.Println(cli.RenderMuted(fmt.Sprintf("  %d events, %s total", len(res.Events), total)))
	return nil
}
