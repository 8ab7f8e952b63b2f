package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateMonthYear(t *testing.T) {
	assert.NoError(t, ValidateMonthYear(1, 2024))
	assert.NoError(t, ValidateMonthYear(12, 2024))
	assert.Error(t, ValidateMonthYear(0, 2024))
	assert.Error(t, ValidateMonthYear(13, 2024))
	assert.Error(t, ValidateMonthYear(6, 1999))
	assert.Error(t, ValidateMonthYear(6, 2101))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2024, 1))
	assert.Equal(t, 29, DaysInMonth(2024, 2)) // 闰年
	assert.Equal(t, 28, DaysInMonth(2023, 2))
	assert.Equal(t, 30, DaysInMonth(2024, 4))
	assert.Equal(t, 29, DaysInMonth(2000, 2)) // 世纪闰年
	assert.Equal(t, 28, DaysInMonth(2100, 2)) // 世纪平年
}

func TestMonthWindow(t *testing.T) {
	start, next := MonthWindow(2024, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local), next)

	// 12 月跨年
	start, next = MonthWindow(2024, 12)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local), next)
}

// 过去月份：钱包余额是全时段口径，与所查月份无关
func TestComputeMonthSummary_PastMonth(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)

	// 充值 1000，历史费用共 500，1 月费用 200
	s := ComputeMonthSummary(1000, 500, 200, 1, 1, 2024, now)
	assert.Equal(t, 1000.0, s.WalletAmount)
	assert.Equal(t, 200.0, s.TotalExpenses)
	assert.Equal(t, 500.0, s.RemainingAmount)
	assert.Equal(t, int64(1), s.ExpenseCount)
	assert.Equal(t, 200.0, s.AverageExpense)
	assert.InDelta(t, 20.0, s.PercentageUsed, 1e-9)
	// 过去月份按整月天数计算日均，不做推算
	assert.InDelta(t, Round2(200.0/31), s.DailyAverage, 1e-9)
	assert.Equal(t, 200.0, s.ProjectedTotal)
	assert.Equal(t, 0, s.DaysLeft)

	// 换查 2 月（费用 300），钱包口径不变
	s2 := ComputeMonthSummary(1000, 500, 300, 1, 2, 2024, now)
	assert.Equal(t, 1000.0, s2.WalletAmount)
	assert.Equal(t, 300.0, s2.TotalExpenses)
	assert.Equal(t, 500.0, s2.RemainingAmount)
}

func TestComputeMonthSummary_CurrentMonth(t *testing.T) {
	// 6 月 15 日查 6 月：已完整过去 14 天
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.Local)
	s := ComputeMonthSummary(2000, 700, 700, 7, 6, 2024, now)

	assert.Equal(t, 100.0, s.AverageExpense)
	wantDaily := Round2(700.0 / 14)
	assert.Equal(t, wantDaily, s.DailyAverage)
	// 推算 = 当前费用 + 日均 × 剩余 15 天
	assert.Equal(t, Round2(700+wantDaily*15), s.ProjectedTotal)
	assert.Equal(t, 15, s.DaysLeft)
}

func TestComputeMonthSummary_CurrentMonthFirstDay(t *testing.T) {
	// 月初第一天：已过天数为 0，按最少 1 天避免除零
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.Local)
	s := ComputeMonthSummary(1000, 0, 30, 1, 6, 2024, now)
	assert.Equal(t, 30.0, s.DailyAverage)
	assert.Equal(t, 29, s.DaysLeft)
	assert.Equal(t, Round2(30+30.0*29), s.ProjectedTotal)
}

func TestComputeMonthSummary_CurrentMonthLastDay(t *testing.T) {
	// 月末最后一天：无剩余天数，不做推算
	now := time.Date(2024, 6, 30, 23, 0, 0, 0, time.Local)
	s := ComputeMonthSummary(1000, 600, 600, 3, 6, 2024, now)
	assert.Equal(t, 600.0, s.ProjectedTotal)
	assert.Equal(t, 0, s.DaysLeft)
}

func TestComputeMonthSummary_FutureMonth(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	s := ComputeMonthSummary(1000, 500, 0, 0, 12, 2024, now)
	assert.Equal(t, 0.0, s.TotalExpenses)
	assert.Equal(t, 31, s.DaysLeft)
	assert.Equal(t, 0.0, s.ProjectedTotal)

	// 次年任意月份也视为未来
	s2 := ComputeMonthSummary(1000, 500, 0, 0, 1, 2025, now)
	assert.Equal(t, 31, s2.DaysLeft)
}

func TestComputeMonthSummary_ZeroWallet(t *testing.T) {
	// 钱包为 0 时占比为 0，不做除法
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	s := ComputeMonthSummary(0, 300, 300, 2, 5, 2024, now)
	assert.Equal(t, 0.0, s.PercentageUsed)
	assert.Equal(t, -300.0, s.RemainingAmount)
}

func TestComputeMonthSummary_ZeroCount(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	s := ComputeMonthSummary(1000, 0, 0, 0, 5, 2024, now)
	assert.Equal(t, 0.0, s.AverageExpense)
	assert.Equal(t, 0.0, s.DailyAverage)
}

// 零费用月份序列化后字段齐全，数值为 0 也不省略
func TestWalletSummary_JSONKeysAlwaysPresent(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	s := ComputeMonthSummary(1000, 0, 0, 0, 5, 2024, now)

	data, err := json.Marshal(s)
	assert.NoError(t, err)
	for _, key := range []string{"monthlyBudget", "dailyAverage", "projectedTotal", "daysLeft"} {
		assert.Contains(t, string(data), `"`+key+`"`)
	}
}

func TestComputeOverallSummary(t *testing.T) {
	s := ComputeOverallSummary(1000, 400, 4)
	assert.Equal(t, 600.0, s.RemainingAmount)
	assert.Equal(t, 100.0, s.AverageExpense)
	assert.InDelta(t, 40.0, s.PercentageUsed, 1e-9)

	// 无费用
	s2 := ComputeOverallSummary(0, 0, 0)
	assert.Equal(t, 0.0, s2.AverageExpense)
	assert.Equal(t, 0.0, s2.PercentageUsed)
}

func TestApplyBreakdownPercentages(t *testing.T) {
	rows := []CategoryBreakdown{
		{Name: "差旅", TotalAmount: 600, ExpenseCount: 3},
		{Name: "餐饮", TotalAmount: 400, ExpenseCount: 2},
		{Name: "其他", TotalAmount: 0, ExpenseCount: 0},
	}
	out := ApplyBreakdownPercentages(rows)
	assert.InDelta(t, 60.0, out[0].Percentage, 1e-9)
	assert.InDelta(t, 40.0, out[1].Percentage, 1e-9)
	assert.Equal(t, 0.0, out[2].Percentage)

	// 占比之和为 100
	var total float64
	for _, r := range out {
		total += r.Percentage
	}
	assert.InDelta(t, 100.0, total, 1e-9)
}

func TestApplyBreakdownPercentages_NoExpenses(t *testing.T) {
	rows := []CategoryBreakdown{
		{Name: "差旅"},
		{Name: "餐饮"},
	}
	out := ApplyBreakdownPercentages(rows)
	for _, r := range out {
		assert.Equal(t, 0.0, r.Percentage)
		assert.Equal(t, 0.0, r.TotalAmount)
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, Round2(100.0/3))
	assert.Equal(t, 0.13, Round2(0.125)) // 半数进位
	assert.Equal(t, 2.0, Round2(2.0))
}
