package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/theirongolddev/finproj/internal/cli"
	"github.com/theirongolddev/finproj/internal/model"
	"github.com/theirongolddev/finproj/internal/projection"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagEvery int

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Run a projection and print the month table",
	RunE:  runProject,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, projectCmd} {
		c.Flags().IntVarP(&flagEvery, "every", "e", 0, "Print every Nth month (default from config)")
	}
	rootCmd.AddCommand(projectCmd)
}

func runProject(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	sc, err := resolveScenario(cmd, cfg)
	if err != nil {
		return err
	}
	input, err := projectionInput(sc)
	if err != nil {
		return err
	}

	res, err := projection.Project(input)
	if err != nil {
		return err
	}
	summary := projection.Summarize(res)

	log.Debug("projection complete",
		zap.Int("months", input.Months),
		zap.Int("tiers", len(input.Tiers)),
		zap.Float64("effective_arpu", res.EffectiveARPU),
		zap.Int64("final_users", summary.FinalUsers),
	)

	every := flagEvery
	if every <= 0 {
		every = cfg.General.TableEvery
	}
	renderProjection(cmd.OutOrStdout(), input, res, summary, every)
	return nil
}

func renderProjection(w io.Writer, input model.ProjectionConfig, res model.ProjectionResult, s model.ProjectionSummary, every int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderTitle(fmt.Sprintf("PROJECTION  %d months", input.Months)))
	fmt.Fprintln(w)

	peak := fmt.Sprintf("%s (month %d)", cli.FormatNumber(s.PeakUsers), s.PeakMonth)
	rows := [][]string{
		{"Starting users", cli.FormatNumber(input.StartingUsers)},
		{"Growth", input.Growth.String()},
		{"Churn", input.Churn.String()},
		{"Effective ARPU", cli.FormatARPU(res.EffectiveARPU)},
		{"---"},
		{"Final users", cli.FormatNumber(s.FinalUsers)},
		{"Net change", cli.FormatUserDelta(s.NetUserChange)},
		{"Peak users", peak},
		{"Final MRR", cli.FormatMoney(s.FinalMRR)},
		{"Cumulative revenue", cli.FormatMoney(s.CumulativeRevenue)},
	}
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title:   "Summary",
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if s.FirstNonPositiveMonth >= 0 {
		fmt.Fprintln(w, cli.RenderWarning(fmt.Sprintf("Users reach zero or below at month %d.", s.FirstNonPositiveMonth)))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Users    %s\n", cli.RenderUsersSparkline(res.Users()))
	fmt.Fprintf(w, "  Revenue  %s\n", cli.RenderRevenueSparkline(res.Revenue()))
	fmt.Fprintln(w)

	idx := cli.Downsample(len(res.Records), every)
	table := make([][]string, 0, len(idx))
	for _, i := range idx {
		r := res.Records[i]
		table = append(table, []string{
			strconv.Itoa(r.Month),
			cli.FormatNumber(r.Users),
			cli.FormatMoney(r.Revenue),
		})
	}
	title := "Months"
	if every > 1 {
		title = fmt.Sprintf("Every %d months", every)
	}
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Month", "Users", "Revenue"},
		Rows:    table,
	}))
	if len(idx) < len(res.Records) {
		fmt.Fprintln(w, "  "+cli.RenderMuted(fmt.Sprintf("%d of %d months shown; the last month is always included.", len(idx), len(res.Records))))
	}
	fmt.Fprintln(w)
}
