package engine

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"quantanalyzer/types"

	"github.com/Rhymond/go-money"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

const tradingDaysPerYear = 252

type Report struct {
	// Meta / period info
	StartDate   time.Time
	EndDate     time.Time
	TotalPeriod time.Duration
	Steps       int
	TotalTrades int

	// Absolute performance
	StartValue  decimal.Decimal
	EndValue    decimal.Decimal
	NetProfit   decimal.Decimal
	TotalReturn decimal.Decimal
	CAGR        decimal.Decimal

	// Drawdown metrics
	MaxDrawdown         decimal.Decimal
	MaxDrawdownPercent  decimal.Decimal
	MaxDrawdownDuration time.Duration

	// Risk-adjusted metrics
	Volatility  decimal.Decimal
	SharpeRatio decimal.Decimal

	// Costs
	TotalFees decimal.Decimal
}

// GenerateReport summarizes a finished run from its valuation history and
// fills. annualRiskFree is used by the Sharpe ratio.
func GenerateReport(p *Portfolio, annualRiskFree decimal.Decimal) *Report {
	valuations := p.Valuations()
	fills := p.Fills()

	report := &Report{
		Steps:       len(valuations),
		TotalTrades: len(fills),
	}
	if len(valuations) == 0 {
		return report
	}
	first, last := valuations[0], valuations[len(valuations)-1]
	report.StartDate = first.Date
	report.EndDate = last.Date
	report.TotalPeriod = last.Date.Sub(first.Date)
	report.StartValue = first.Before
	report.EndValue = last.After
	report.NetProfit = last.After.Sub(first.Before)
	if first.Before.IsPositive() {
		report.TotalReturn = report.NetProfit.Div(first.Before)
	}

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		report.CAGR = calcCAGR(valuations, &wg)
	}()
	go func() {
		report.MaxDrawdown, report.MaxDrawdownPercent, report.MaxDrawdownDuration = calcDrawdownMetrics(valuations, &wg)
	}()
	go func() {
		report.Volatility = calcVolatility(valuations, &wg)
	}()
	go func() {
		report.SharpeRatio = calcSharpeRatio(valuations, annualRiskFree, &wg)
	}()
	go func() {
		report.TotalFees = calcTotalFees(fills, &wg)
	}()
	wg.Wait()

	return report
}

// Print writes the report with money amounts formatted in currency (an ISO
// code such as "USD" or "BRL").
func (r *Report) Print(w io.Writer, currency string) {
	fmt.Fprintln(w, "===== Backtest Report =====")
	fmt.Fprintf(w, "Start Date:            %s\n", r.StartDate.Format(time.DateOnly))
	fmt.Fprintf(w, "End Date:              %s\n", r.EndDate.Format(time.DateOnly))
	fmt.Fprintf(w, "Total Period:          %d days\n", r.TotalPeriod/(24*time.Hour))
	fmt.Fprintf(w, "Steps:                 %d\n", r.Steps)
	fmt.Fprintf(w, "Total Trades:          %d\n", r.TotalTrades)

	fmt.Fprintln(w, "\n-- Absolute Performance --")
	fmt.Fprintf(w, "Start Value:           %s\n", formatMoney(r.StartValue, currency))
	fmt.Fprintf(w, "End Value:             %s\n", formatMoney(r.EndValue, currency))
	fmt.Fprintf(w, "Net Profit:            %s\n", formatMoney(r.NetProfit, currency))
	fmt.Fprintf(w, "Total Return:          %s%%\n", r.TotalReturn.Mul(decimal.NewFromInt(100)).StringFixed(2))
	fmt.Fprintf(w, "CAGR:                  %s%%\n", r.CAGR.Mul(decimal.NewFromInt(100)).StringFixed(2))

	fmt.Fprintln(w, "\n-- Drawdown Metrics --")
	fmt.Fprintf(w, "Max Drawdown:          %s\n", formatMoney(r.MaxDrawdown, currency))
	fmt.Fprintf(w, "Max Drawdown %%:        %s%%\n", r.MaxDrawdownPercent.Mul(decimal.NewFromInt(100)).StringFixed(2))
	fmt.Fprintf(w, "Max Drawdown Days:     %d\n", r.MaxDrawdownDuration/(24*time.Hour))

	fmt.Fprintln(w, "\n-- Risk-Adjusted Metrics --")
	fmt.Fprintf(w, "Volatility:            %s%%\n", r.Volatility.Mul(decimal.NewFromInt(100)).StringFixed(2))
	fmt.Fprintf(w, "Sharpe Ratio:          %s\n", r.SharpeRatio.StringFixed(3))

	fmt.Fprintln(w, "\n-- Costs --")
	fmt.Fprintf(w, "Total Fees:            %s\n", formatMoney(r.TotalFees, currency))

	fmt.Fprintln(w, "===========================")
}

func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	return money.New(amount.Mul(factor).Round(0).IntPart(), cur.Code).Display()
}

func calcCAGR(valuations []types.Valuation, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()
	if len(valuations) < 2 {
		return decimal.Zero
	}

	first, last := valuations[0], valuations[len(valuations)-1]
	// If starting value is <= 0, CAGR is not well-defined
	if !first.Before.IsPositive() {
		return decimal.Zero
	}

	// time difference in years (using 365.25 days to account for leap years)
	duration := last.Date.Sub(first.Date)
	if duration <= 0 {
		return decimal.Zero
	}
	years := duration.Hours() / (24.0 * 365.25)

	ratio := last.After.Div(first.Before)
	if !ratio.IsPositive() {
		return decimal.Zero
	}

	return decimal.NewFromFloat(math.Pow(ratio.InexactFloat64(), 1.0/years) - 1.0)
}

func calcDrawdownMetrics(valuations []types.Valuation, wg *sync.WaitGroup) (decimal.Decimal, decimal.Decimal, time.Duration) {
	defer wg.Done()

	if len(valuations) == 0 {
		return decimal.Zero, decimal.Zero, 0
	}

	peak := decimal.Zero
	var peakTime time.Time

	maxDD := decimal.Zero
	maxDDPct := decimal.Zero
	var maxDDDuration time.Duration

	for i, v := range valuations {
		equity := v.After

		if i == 0 || equity.GreaterThan(peak) {
			peak = equity
			peakTime = v.Date
		}

		if peak.IsPositive() {
			dd := peak.Sub(equity)
			if dd.GreaterThan(maxDD) {
				maxDD = dd
				maxDDPct = dd.Div(peak)
				maxDDDuration = v.Date.Sub(peakTime)
			}
		}
	}

	return maxDD, maxDDPct, maxDDDuration
}

// calcVolatility annualizes the sample standard deviation of step returns,
// assuming one step per trading day.
func calcVolatility(valuations []types.Valuation, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	returns := stepReturns(valuations)
	if len(returns) < 2 {
		return decimal.Zero
	}
	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(stdev * math.Sqrt(tradingDaysPerYear))
}

func calcSharpeRatio(valuations []types.Valuation, annualRiskFree decimal.Decimal, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	monthlyReturns := getMonthlyReturns(valuations)
	if len(monthlyReturns) < 2 {
		// Need at least 2 months to compute stddev
		return decimal.Zero
	}

	// rf_monthly = (1 + rf_annual)^(1/12) - 1
	rfMonthly := math.Pow(1.0+annualRiskFree.InexactFloat64(), 1.0/12.0) - 1.0

	excess := make([]float64, 0, len(monthlyReturns))
	for _, r := range monthlyReturns {
		excess = append(excess, r-rfMonthly)
	}

	mean, err := stats.Mean(excess)
	if err != nil {
		return decimal.Zero
	}
	stdMonthly, err := stats.StandardDeviationSample(excess)
	if err != nil || stdMonthly == 0 {
		return decimal.Zero
	}

	// Monthly Sharpe, then annualize by sqrt(12)
	return decimal.NewFromFloat(mean / stdMonthly * math.Sqrt(12.0))
}

func calcTotalFees(fills []types.Fill, wg *sync.WaitGroup) decimal.Decimal {
	defer wg.Done()

	total := decimal.Zero
	for _, f := range fills {
		total = total.Add(f.CostAmount)
	}
	return total
}

func stepReturns(valuations []types.Valuation) []float64 {
	returns := make([]float64, 0, len(valuations))
	for i := 1; i < len(valuations); i++ {
		prev := valuations[i-1].After
		if !prev.IsPositive() {
			continue
		}
		returns = append(returns, valuations[i].After.Div(prev).Sub(decimal.NewFromInt(1)).InexactFloat64())
	}
	return returns
}

// getMonthlyReturns compares the last valuation of each calendar month with
// the last valuation of the month before.
func getMonthlyReturns(valuations []types.Valuation) []float64 {
	if len(valuations) == 0 {
		return nil
	}

	type monthKey struct {
		year  int
		month time.Month
	}

	last := make(map[monthKey]types.Valuation)
	for _, v := range valuations {
		y, m, _ := v.Date.Date()
		key := monthKey{year: y, month: m}
		if cur, ok := last[key]; !ok || v.Date.After(cur.Date) {
			last[key] = v
		}
	}

	keys := make([]monthKey, 0, len(last))
	for k := range last {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	if len(keys) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(keys)-1)
	prev := last[keys[0]].After
	for _, k := range keys[1:] {
		curr := last[k].After
		if prev.IsPositive() {
			returns = append(returns, curr.Div(prev).Sub(decimal.NewFromInt(1)).InexactFloat64())
		}
		prev = curr
	}
	return returns
}
