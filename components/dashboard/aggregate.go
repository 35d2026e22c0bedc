package dashboard

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/montanaflynn/stats"
)

// Metric titles shown on the overview page.
const (
	MetricRevenue = "Revenue"
	MetricUsers   = "Users"
	MetricGrowth  = "Growth"
)

const (
	minSyntheticSales   = 10000
	syntheticSalesRange = 10000
	maxInitialGrowth    = 20
	maxInitialChange    = 10
)

// DedupeUsers keeps the first user for every id. Ids seen again are returned in
// encounter order.
func DedupeUsers(users []SourceUser) (unique []SourceUser, duplicates []int) {
	unique = make([]SourceUser, 0, len(users))
	seen := make(map[int]struct{}, len(users))
	for _, u := range users {
		if _, ok := seen[u.ID]; ok {
			duplicates = append(duplicates, u.ID)
			continue
		}
		seen[u.ID] = struct{}{}
		unique = append(unique, u)
	}
	return unique, duplicates
}

// UsersFromSource maps upstream users into listing rows. Rows whose id was already seen are
// dropped and returned separately so callers can log them.
func UsersFromSource(users []SourceUser) (rows []UserRecord, duplicates []int) {
	unique, duplicates := DedupeUsers(users)
	rows = make([]UserRecord, 0, len(unique))
	for _, u := range unique {
		rows = append(rows, UserRecord{
			ID:    u.ID,
			Name:  u.FullName(),
			Email: u.Email,
			Phone: u.Phone,
		})
	}
	return rows, duplicates
}

// SalesRowsFromUsers synthesizes overview table rows: sales is drawn from [10000, 20000)
// and the i-th row is dated i days before now.
func SalesRowsFromUsers(users []SourceUser, now time.Time, rng *rand.Rand) []SalesRecord {
	rows := make([]SalesRecord, 0, len(users))
	for i, u := range users {
		rows = append(rows, SalesRecord{
			Name:  u.FullName(),
			Email: u.Email,
			Sales: minSyntheticSales + rng.IntN(syntheticSalesRange),
			Date:  calendarDate(now.AddDate(0, 0, -i)),
		})
	}
	return rows
}

// BuildMetrics derives the summary cards from the overview rows.
func BuildMetrics(rows []SalesRecord, now time.Time, rng *rand.Rand) []MetricRecord {
	var revenue float64
	for _, row := range rows {
		revenue += float64(row.Sales)
	}
	today := calendarDate(now)
	return []MetricRecord{
		{
			Title:  MetricRevenue,
			Value:  Currency(revenue),
			Change: rng.Float64() * maxInitialChange,
			Date:   today,
		},
		{
			Title:  MetricUsers,
			Value:  Count(float64(len(rows))),
			Change: rng.Float64() * maxInitialChange,
			Date:   today,
		},
		{
			Title:  MetricGrowth,
			Value:  Percentage(roundTo(rng.Float64()*maxInitialGrowth, 1)),
			Change: rng.Float64()*maxInitialChange - maxInitialChange/2,
			Date:   today,
		},
	}
}

// SalesSummary aggregates the sales column of the overview table.
type SalesSummary struct {
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// SummarizeSales computes total, mean, and median sales. An empty input yields a zero summary.
func SummarizeSales(rows []SalesRecord) (SalesSummary, error) {
	if len(rows) == 0 {
		return SalesSummary{}, nil
	}
	data := make(stats.Float64Data, 0, len(rows))
	for _, row := range rows {
		data = append(data, float64(row.Sales))
	}
	total, err := stats.Sum(data)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("dashboard: sum sales: %w", err)
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("dashboard: mean sales: %w", err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("dashboard: median sales: %w", err)
	}
	return SalesSummary{
		Count:  len(rows),
		Total:  total,
		Mean:   mean,
		Median: median,
	}, nil
}
