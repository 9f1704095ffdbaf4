package aggregate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"loan-reporting/internal/domain"
)

// cmrGenerator builds the OTS Schedule CMR: per-investor-group loan
// counts, balances, average remaining term, and balance-weighted average
// rate, with combined average figures across paired 10- and 15-year
// investor groups.
type cmrGenerator struct{}

var twelve = decimal.NewFromInt(12)

func (cmrGenerator) Aggregate(_ domain.ReportPeriod, _ domain.CompileConfig, accounts []domain.AccountRecord) (domain.AggregateResult, error) {
	type groupAcc struct {
		name       string
		groupCode  string
		numLoans   int
		balances   int64
		termSum    int64
		weightRate decimal.Decimal // sum of balance*rate
	}

	groups := map[string]*groupAcc{}
	for _, a := range accounts {
		if a.InvestorGroup == "" {
			continue
		}
		key := fmt.Sprintf("%s-%s-%s", a.InvestorBank, a.InvestorCode, a.InvestorGroup)
		g, ok := groups[key]
		if !ok {
			g = &groupAcc{name: a.InvestorName, groupCode: a.InvestorGroup}
			groups[key] = g
		}
		g.numLoans++
		g.balances += a.PrincipalBalance
		g.termSum += int64(a.TermMonths)
		g.weightRate = g.weightRate.Add(decimal.NewFromInt(a.PrincipalBalance).Mul(a.InterestRate))
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	// Row order follows the investor group code, then the full key.
	sort.Slice(keys, func(i, j int) bool {
		gi, gj := groups[keys[i]].groupCode, groups[keys[j]].groupCode
		if gi != gj {
			return gi < gj
		}
		return keys[i] < keys[j]
	})

	sched := domain.CMRSchedule{Rows: make([]domain.CMRGroupRow, 0, len(keys))}
	rowIndex := map[string]int{}
	for _, k := range keys {
		g := groups[k]
		avgTerm := decimal.NewFromInt(g.termSum).DivRound(decimal.NewFromInt(int64(g.numLoans)), 3)
		avgRate := decimal.Zero
		if g.balances > 0 {
			avgRate = g.weightRate.DivRound(decimal.NewFromInt(g.balances), 3)
		}
		rowIndex[k] = len(sched.Rows)
		sched.Rows = append(sched.Rows, domain.CMRGroupRow{
			NumLoans:      g.numLoans,
			InvestorName:  g.name,
			GroupKey:      k,
			TotalBalances: g.balances,
			AvgRemTerm:    avgTerm,
			Years:         avgTerm.DivRound(twelve, 3),
			AvgIntRate:    avgRate,
		})
	}

	// Combined averages for the paired 10- and 15-year groups, attached
	// to the 200-series row.
	for _, grp := range []string{"10", "15"} {
		i100, ok100 := rowIndex["1-100-"+grp]
		i200, ok200 := rowIndex["1-200-"+grp]
		if !ok100 || !ok200 {
			continue
		}
		years := sched.Rows[i100].Years.Add(sched.Rows[i200].Years).DivRound(decimal.NewFromInt(2), 3)
		rate := sched.Rows[i100].AvgIntRate.Add(sched.Rows[i200].AvgIntRate).DivRound(decimal.NewFromInt(2), 3)
		sched.Rows[i200].CombinedAvgYears = &years
		sched.Rows[i200].CombinedAvgIntRate = &rate
	}

	return sched, nil
}
