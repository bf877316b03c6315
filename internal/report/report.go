// Package report derives dashboards and multi-month statistics from
// the student collection and the monthly ledgers.
package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Reasonofmoon/tuition-automation/internal/cache"
	"github.com/Reasonofmoon/tuition-automation/internal/core"
	"github.com/Reasonofmoon/tuition-automation/internal/store"
)

// MonthStat aggregates one ledger month. TotalFee sums the base fees
// of students registered now, not the fees in effect back then; the
// drift is a documented property of the data model.
type MonthStat struct {
	Month         core.YearMonth
	TotalFee      core.Amount
	TotalDiscount core.Amount
	// ActualRevenue sums cached totals of paid records, including
	// records whose student has since been deleted.
	ActualRevenue core.Amount
	PaidCount     int
	// PaymentRate is paid students over current students, percent,
	// one decimal. Zero when there are no students.
	PaymentRate float64
}

// Summary rolls a month range up.
type Summary struct {
	TotalRevenue   core.Amount
	AvgPaymentRate float64
	Months         int
}

type RecentPayment struct {
	StudentName string
	Amount      core.Amount
	PaymentDate string
}

type MonthRevenue struct {
	Month   core.YearMonth
	Revenue core.Amount
}

// Dashboard is the landing view: current-month state plus the recent
// payment list and the revenue series feeding the chart.
type Dashboard struct {
	Month           core.YearMonth
	TotalStudents   int
	ExpectedRevenue core.Amount
	PaidCount       int
	UnpaidCount     int
	Recent          []RecentPayment
	Revenue         []MonthRevenue
}

const (
	statCacheSize = 24
	statCacheTTL  = 5 * time.Minute

	recentLimit       = 5
	revenueSeriesSize = 6
)

type Service struct {
	repo  store.Repository
	stats *cache.LRU[MonthStat]
}

func NewService(repo store.Repository) *Service {
	return NewServiceWithCache(repo, statCacheSize, statCacheTTL)
}

// NewServiceWithCache sizes the month-stat cache explicitly.
func NewServiceWithCache(repo store.Repository, size int, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		stats: cache.NewLRU[MonthStat](size, ttl),
	}
}

// InvalidateMonth drops the cached stat for one month after a ledger
// write.
func (s *Service) InvalidateMonth(ym core.YearMonth) {
	s.stats.Delete(ym.String())
}

// InvalidateAll drops every cached stat; roster changes move the
// denominator of every month.
func (s *Service) InvalidateAll() {
	s.stats.Purge()
}

// Range computes per-month stats for the inclusive [start, end] range
// and their summary. The enumeration rolls year boundaries.
func (s *Service) Range(ctx context.Context, start, end core.YearMonth) ([]MonthStat, Summary, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("list students: %w", err)
	}
	months := core.MonthsBetween(start, end)
	rows := make([]MonthStat, 0, len(months))
	var summary Summary
	var rateSum float64
	for _, ym := range months {
		stat, err := s.monthStat(ctx, ym, students)
		if err != nil {
			return nil, Summary{}, err
		}
		rows = append(rows, stat)
		summary.TotalRevenue += stat.ActualRevenue
		rateSum += stat.PaymentRate
	}
	summary.Months = len(rows)
	if summary.Months > 0 {
		summary.AvgPaymentRate = round1(rateSum / float64(summary.Months))
	}
	return rows, summary, nil
}

func (s *Service) monthStat(ctx context.Context, ym core.YearMonth, students []core.Student) (MonthStat, error) {
	if stat, ok := s.stats.Get(ym.String()); ok {
		return stat, nil
	}
	ledger, err := s.repo.MonthPayments(ctx, ym)
	if err != nil {
		return MonthStat{}, fmt.Errorf("month payments %s: %w", ym, err)
	}
	registered := make(map[string]bool, len(students))
	stat := MonthStat{Month: ym}
	for _, st := range students {
		stat.TotalFee += st.BaseFee
		registered[st.ID] = true
	}
	for _, p := range ledger {
		stat.TotalDiscount += p.SiblingDiscount + p.IndividualDiscount
		if p.Status == core.StatusPaid {
			stat.ActualRevenue += p.TotalAmount
			// Dangling records of deleted students still count toward
			// revenue but not toward the student-based payment rate.
			if registered[p.StudentID] {
				stat.PaidCount++
			}
		}
	}
	if len(students) > 0 {
		stat.PaymentRate = round1(float64(stat.PaidCount) / float64(len(students)) * 100)
	}
	s.stats.Set(ym.String(), stat)
	return stat, nil
}

// CurrentMonth returns the stat for the month containing now.
func (s *Service) CurrentMonth(ctx context.Context, now time.Time) (MonthStat, error) {
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return MonthStat{}, fmt.Errorf("list students: %w", err)
	}
	return s.monthStat(ctx, core.CurrentYearMonth(now), students)
}

// Dashboard assembles the landing view for the month containing now.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (Dashboard, error) {
	ym := core.CurrentYearMonth(now)
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list students: %w", err)
	}
	ledger, err := s.repo.MonthPayments(ctx, ym)
	if err != nil {
		return Dashboard{}, fmt.Errorf("month payments: %w", err)
	}

	d := Dashboard{Month: ym, TotalStudents: len(students)}
	byID := make(map[string]core.Student, len(students))
	for _, st := range students {
		d.ExpectedRevenue += st.BaseFee
		byID[st.ID] = st
	}
	for _, p := range ledger {
		if p.Status == core.StatusPaid {
			if _, ok := byID[p.StudentID]; ok {
				d.PaidCount++
			}
		}
	}
	d.UnpaidCount = d.TotalStudents - d.PaidCount

	d.Recent = recentPayments(ledger, byID)

	series, err := s.revenueSeries(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	d.Revenue = series
	return d, nil
}

// recentPayments returns the month's dated records, most recent first,
// truncated to the display limit. Records of deleted students render
// nowhere, so they are skipped.
func recentPayments(ledger []core.PaymentRecord, byID map[string]core.Student) []RecentPayment {
	dated := make([]core.PaymentRecord, 0, len(ledger))
	for _, p := range ledger {
		if p.PaymentDate == "" {
			continue
		}
		if _, ok := byID[p.StudentID]; !ok {
			continue
		}
		dated = append(dated, p)
	}
	sort.SliceStable(dated, func(i, j int) bool {
		// YYYY-MM-DD sorts lexicographically.
		return dated[i].PaymentDate > dated[j].PaymentDate
	})
	if len(dated) > recentLimit {
		dated = dated[:recentLimit]
	}
	out := make([]RecentPayment, 0, len(dated))
	for _, p := range dated {
		out = append(out, RecentPayment{
			StudentName: byID[p.StudentID].Name,
			Amount:      p.TotalAmount,
			PaymentDate: p.PaymentDate,
		})
	}
	return out
}

// revenueSeries sums paid revenue for the last generated months,
// oldest first. It feeds the dashboard chart.
func (s *Service) revenueSeries(ctx context.Context) ([]MonthRevenue, error) {
	months, err := s.repo.PaymentMonths(ctx)
	if err != nil {
		return nil, fmt.Errorf("payment months: %w", err)
	}
	if len(months) > revenueSeriesSize {
		months = months[len(months)-revenueSeriesSize:]
	}
	series := make([]MonthRevenue, 0, len(months))
	for _, ym := range months {
		ledger, err := s.repo.MonthPayments(ctx, ym)
		if err != nil {
			return nil, fmt.Errorf("month payments %s: %w", ym, err)
		}
		var revenue core.Amount
		for _, p := range ledger {
			if p.Status == core.StatusPaid {
				revenue += p.TotalAmount
			}
		}
		series = append(series, MonthRevenue{Month: ym, Revenue: revenue})
	}
	return series, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
