package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/finproj/internal/cli"
	"github.com/theirongolddev/finproj/internal/config"
	"github.com/theirongolddev/finproj/internal/model"
	"github.com/theirongolddev/finproj/internal/projection"

	"github.com/spf13/cobra"
)

var arpuCmd = &cobra.Command{
	Use:   "arpu",
	Short: "Show the blended monthly revenue per user and each tier's share",
	RunE:  runARPU,
}

func init() {
	rootCmd.AddCommand(arpuCmd)
}

func runARPU(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sc, err := resolveScenario(cmd, cfg)
	if err != nil {
		return err
	}
	input, _, err := sc.ProjectionConfig()
	if err != nil {
		return err
	}

	arpu, skipped := projection.BlendTiers(input.Tiers)
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderTitle("EFFECTIVE ARPU  "+cli.FormatARPU(arpu)+"/user/mo"))
	fmt.Fprintln(w)

	if len(input.Tiers) == 0 {
		fmt.Fprintln(w, cli.RenderWarning(errNoTiers.Error()))
		fmt.Fprintln(w)
		return nil
	}

	rows := make([][]string, 0, len(input.Tiers)+2)
	for i, t := range input.Tiers {
		uses := "-"
		if t.Cadence == model.SingleUse {
			uses = strconv.Itoa(t.Uses)
		}
		contrib, share, bar := "skipped", "", ""
		if t.Valid() {
			c := t.Contribution()
			contrib = cli.FormatARPU(c)
			if arpu > 0 {
				share = cli.FormatPercent(c / arpu)
				bar = cli.RenderHorizontalBar(c, arpu, 20)
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			config.FormatTierSpec(config.EntryFromTier(t)),
			cli.FormatARPU(t.Price),
			t.Cadence.String(),
			uses,
			cli.FormatPercent(t.AdoptionFraction),
			contrib,
			share,
			bar,
		})
	}
	rows = append(rows, []string{"---"}, []string{"Total", "", "", "", "", "", cli.FormatARPU(arpu), "", ""})

	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title:   "Tiers",
		Headers: []string{"#", "--tier", "Price", "Cadence", "Uses", "Adoption", "Per user/mo", "Share", ""},
		Rows:    rows,
	}))

	if skipped > 0 {
		fmt.Fprintln(w, cli.RenderWarning(fmt.Sprintf("%d tier(s) skipped: price and adoption must be positive, adoption at most 100%%, uses at least 1.", skipped)))
	}
	fmt.Fprintln(w)
	return nil
}
