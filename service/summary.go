package service

import (
	"fmt"
	"math"
	"time"
)

// WalletSummary 钱包分析汇总
// 月度口径下 TotalExpenses/ExpenseCount/AverageExpense 仅统计所查月份，
// WalletAmount/RemainingAmount 始终为全时段口径（钱包是滚存资金池，不按月清零）
type WalletSummary struct {
	WalletAmount    float64 `json:"walletAmount"`    // 历史充值总额
	MonthlyBudget   float64 `json:"monthlyBudget"`   // 与 WalletAmount 一致，供前端展示
	TotalExpenses   float64 `json:"totalExpenses"`   // 所查口径内的费用总额
	RemainingAmount float64 `json:"remainingAmount"` // 充值总额 - 历史费用总额
	ExpenseCount    int64   `json:"expenseCount"`    // 所查口径内的费用笔数
	AverageExpense  float64 `json:"averageExpense"`  // 所查口径内的单笔均值
	PercentageUsed  float64 `json:"percentageUsed"`  // 所查口径费用占充值总额的百分比
	DailyAverage    float64 `json:"dailyAverage"`    // 日均费用（保留 2 位小数）
	ProjectedTotal  float64 `json:"projectedTotal"`  // 按日均推算的月末总额（保留 2 位小数）
	DaysLeft        int     `json:"daysLeft"`        // 本月剩余天数
}

// Round2 四舍五入保留 2 位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ValidateMonthYear 校验月份和年份参数
func ValidateMonthYear(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("月份参数无效: %d，应在 1-12 之间", month)
	}
	if year < 2000 || year > 2100 {
		return fmt.Errorf("年份参数无效: %d，应为 4 位数字（如: 2024）", year)
	}
	return nil
}

// DaysInMonth 指定年月的天数（自动处理闰年）
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.Local).Day()
}

// MonthWindow 指定年月的半开区间 [月初, 下月初)
// 半开区间避免月末边界的差一问题
func MonthWindow(year, month int) (start, next time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	next = start.AddDate(0, 1, 0)
	return
}

// ComputeMonthSummary 计算指定年月的钱包汇总
// 入参为已从数据库聚合出的原始金额；now 注入当前时间便于测试
//
// 规则：
//   - 钱包余额与剩余金额为全时段口径，与所查月份无关
//   - 当月的日均按已完整过去的天数计算（至少 1 天，避免除零）
//   - 仅当月存在剩余天数时才做月末推算，过去/未来月份的总额已固定或尚未产生
func ComputeMonthSummary(totalWallet, totalExpensesEver, monthlyAmount float64, monthlyCount int64, month, year int, now time.Time) WalletSummary {
	availableBalance := totalWallet - totalExpensesEver

	var monthlyAverage float64
	if monthlyCount > 0 {
		monthlyAverage = monthlyAmount / float64(monthlyCount)
	}
	var percentageUsed float64
	if totalWallet > 0 {
		percentageUsed = monthlyAmount / totalWallet * 100
	}

	dim := DaysInMonth(year, month)
	isCurrentMonth := now.Year() == year && int(now.Month()) == month

	// 当月只按已完整过去的天数计算日均
	daysPassed := dim
	if isCurrentMonth {
		daysPassed = now.Day() - 1
		if daysPassed < 1 {
			daysPassed = 1
		}
	}
	dailyAverage := Round2(monthlyAmount / float64(daysPassed))

	projectedTotal := monthlyAmount
	if isCurrentMonth && now.Day() < dim {
		remainingDays := dim - now.Day()
		projectedTotal = Round2(monthlyAmount + dailyAverage*float64(remainingDays))
	}

	var daysLeft int
	switch {
	case isCurrentMonth:
		daysLeft = dim - now.Day()
	case year > now.Year() || (year == now.Year() && month > int(now.Month())):
		daysLeft = dim
	default:
		daysLeft = 0
	}

	return WalletSummary{
		WalletAmount:    totalWallet,
		MonthlyBudget:   totalWallet,
		TotalExpenses:   monthlyAmount,
		RemainingAmount: availableBalance,
		ExpenseCount:    monthlyCount,
		AverageExpense:  monthlyAverage,
		PercentageUsed:  percentageUsed,
		DailyAverage:    dailyAverage,
		ProjectedTotal:  projectedTotal,
		DaysLeft:        daysLeft,
	}
}

// ComputeOverallSummary 计算全时段钱包汇总（不含月度推算字段）
func ComputeOverallSummary(totalWallet, totalExpenses float64, expenseCount int64) WalletSummary {
	var average float64
	if expenseCount > 0 {
		average = totalExpenses / float64(expenseCount)
	}
	var percentageUsed float64
	if totalWallet > 0 {
		percentageUsed = totalExpenses / totalWallet * 100
	}
	return WalletSummary{
		WalletAmount:    totalWallet,
		TotalExpenses:   totalExpenses,
		RemainingAmount: totalWallet - totalExpenses,
		ExpenseCount:    expenseCount,
		AverageExpense:  average,
		PercentageUsed:  percentageUsed,
	}
}

// CategoryBreakdown 类别费用分布行
// 未产生费用的在用类别也会出现在结果中（金额和占比为 0），排序由调用方自行处理
type CategoryBreakdown struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Color        string  `json:"color"`
	Description  string  `json:"description"`
	IsActive     bool    `json:"is_active"`
	TotalAmount  float64 `json:"totalAmount"`
	ExpenseCount int64   `json:"expenseCount"`
	Percentage   float64 `json:"percentage"`
}

// ApplyBreakdownPercentages 按跨类别总额计算每行占比
// 总额为 0 时所有占比为 0（无费用时不做除法）
func ApplyBreakdownPercentages(rows []CategoryBreakdown) []CategoryBreakdown {
	var total float64
	for _, r := range rows {
		total += r.TotalAmount
	}
	for i := range rows {
		if total > 0 {
			rows[i].Percentage = rows[i].TotalAmount / total * 100
		} else {
			rows[i].Percentage = 0
		}
	}
	return rows
}
