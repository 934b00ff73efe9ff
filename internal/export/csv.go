package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/theirongolddev/finproj/internal/model"
)

var csvHeader = []string{"Month", "Users", "Revenue"}

// WriteCSV writes one row per month under a Month,Users,Revenue header.
func WriteCSV(w io.Writer, records []model.ProjectionRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Month),
			strconv.FormatInt(r.Users, 10),
			Cents(r.Revenue),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", r.Month, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
