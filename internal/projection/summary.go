package projection

import "github.com/theirongolddev/finproj/internal/model"

// Summarize computes headline totals for a result.
func Summarize(res model.ProjectionResult) model.ProjectionSummary {
	s := model.ProjectionSummary{FirstNonPositiveMonth: -1}
	if len(res.Records) == 0 {
		return s
	}

	first := res.Records[0]
	last := res.Final()

	s.StartUsers = first.Users
	s.FinalUsers = last.Users
	s.NetUserChange = last.Users - first.Users
	s.FinalMRR = last.Revenue
	s.PeakUsers = first.Users
	s.PeakMonth = first.Month

	for _, r := range res.Records {
		if r.Users > s.PeakUsers {
			s.PeakUsers = r.Users
			s.PeakMonth = r.Month
		}
		// Month 0 is the starting position, not earned revenue.
		if r.Month > 0 {
			s.CumulativeRevenue += r.Revenue
		}
		if s.FirstNonPositiveMonth < 0 && r.Users <= 0 {
			s.FirstNonPositiveMonth = r.Month
		}
	}

	return s
}
