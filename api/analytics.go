package api

import (
	"strconv"
	"time"

	"officeexpense/database"
	"officeexpense/models"
	"officeexpense/service"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler 统计分析处理器
type AnalyticsHandler struct{}

// NewAnalyticsHandler 创建统计分析处理器
func NewAnalyticsHandler() *AnalyticsHandler {
	return &AnalyticsHandler{}
}

// BudgetSummary 获取指定月份的预算摘要
// @Summary 获取月度预算摘要
// @Description 返回指定月份的支出统计、经费池余额、日均与月末推算
// @Tags 统计分析
// @Accept json
// @Produce json
// @Param month path int true "月份 (1-12)"
// @Param year path int true "年份 (2000-2100)"
// @Success 200 {object} Response{data=service.WalletSummary} "获取成功"
// @Failure 400 {object} Response "月份或年份非法"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/budget-summary/{month}/{year} [get]
func (h *AnalyticsHandler) BudgetSummary(c *gin.Context) {
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		BadRequest(c, "月份必须是数字")
		return
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		BadRequest(c, "年份必须是数字")
		return
	}
	if err := service.ValidateMonthYear(month, year); err != nil {
		BadRequest(c, err.Error())
		return
	}

	totalWallet, err := sumWallet()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	totalEver, err := sumExpenses(nil, nil)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	start, next := service.MonthWindow(year, month)
	monthlyAmount, err := sumExpenses(&start, &next)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	var monthlyCount int64
	if err := database.DB.Model(&models.Expense{}).
		Where("expense_date >= ? AND expense_date < ?", start, next).
		Count(&monthlyCount).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	summary := service.ComputeMonthSummary(totalWallet, totalEver, monthlyAmount, monthlyCount, month, year, time.Now())
	Success(c, summary)
}

// WalletSummaryOverall 获取全量经费摘要
// @Summary 获取全量经费摘要
// @Description 返回不限月份的经费池与支出总览
// @Tags 统计分析
// @Accept json
// @Produce json
// @Success 200 {object} Response{data=service.WalletSummary} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/wallet-summary [get]
func (h *AnalyticsHandler) WalletSummaryOverall(c *gin.Context) {
	totalWallet, err := sumWallet()
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	totalExpenses, err := sumExpenses(nil, nil)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	var count int64
	if err := database.DB.Model(&models.Expense{}).Count(&count).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, service.ComputeOverallSummary(totalWallet, totalExpenses, count))
}

// CategoryBreakdown 获取类别支出分布
// @Summary 获取类别支出分布
// @Description 返回启用类别的支出分布（含零支出类别），可按月份过滤
// @Tags 统计分析
// @Accept json
// @Produce json
// @Param month query int false "月份 (1-12)，与 year 搭配使用"
// @Param year query int false "年份 (2000-2100)"
// @Success 200 {object} Response{data=[]service.CategoryBreakdown} "获取成功"
// @Failure 400 {object} Response "月份或年份非法"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/category-breakdown [get]
func (h *AnalyticsHandler) CategoryBreakdown(c *gin.Context) {
	monthStr := c.Query("month")
	yearStr := c.Query("year")

	var window *[2]time.Time
	if monthStr != "" && yearStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			BadRequest(c, "月份必须是数字")
			return
		}
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			BadRequest(c, "年份必须是数字")
			return
		}
		if err := service.ValidateMonthYear(month, year); err != nil {
			BadRequest(c, err.Error())
			return
		}
		start, next := service.MonthWindow(year, month)
		window = &[2]time.Time{start, next}
	}

	rows, err := queryCategoryBreakdown(window)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, rows)
}

// queryCategoryBreakdown 启用类别的支出分布
// LEFT JOIN 保证零支出类别也出现在结果里，时间条件放在连接条件上而不是 WHERE
func queryCategoryBreakdown(window *[2]time.Time) ([]service.CategoryBreakdown, error) {
	joinCond := "expenses.category_id = categories.id"
	args := []interface{}{}
	if window != nil {
		joinCond += " AND expenses.expense_date >= ? AND expenses.expense_date < ?"
		args = append(args, window[0], window[1])
	}

	var rows []service.CategoryBreakdown
	err := database.DB.Model(&models.Category{}).
		Select("categories.id, categories.name, categories.color, categories.description, categories.is_active, "+
			"COALESCE(SUM(expenses.amount), 0) AS total_amount, COUNT(expenses.id) AS expense_count").
		Joins("LEFT JOIN expenses ON "+joinCond, args...).
		Where("categories.is_active = ?", true).
		Group("categories.id, categories.name, categories.color, categories.description, categories.is_active").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return service.ApplyBreakdownPercentages(rows), nil
}

// TrendPoint 趋势图数据点
type TrendPoint struct {
	Period string  `json:"period"`
	Total  float64 `json:"total"`
	Count  int64   `json:"count"`
}

// ExpenseTrends 获取按天的支出趋势
// @Summary 获取按天支出趋势
// @Description 返回最近 N 天每天的支出总额与笔数
// @Tags 统计分析
// @Accept json
// @Produce json
// @Param days path int true "天数 (1-365)"
// @Success 200 {object} Response{data=[]TrendPoint} "获取成功"
// @Failure 400 {object} Response "天数非法"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/expense-trends/{days} [get]
func (h *AnalyticsHandler) ExpenseTrends(c *gin.Context) {
	days, err := strconv.Atoi(c.Param("days"))
	if err != nil || days < 1 || days > 365 {
		BadRequest(c, "天数必须在 1-365 之间")
		return
	}

	since := time.Now().AddDate(0, 0, -days)
	var points []TrendPoint
	if err := database.DB.Model(&models.Expense{}).
		Select("DATE(expense_date) AS period, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("expense_date >= ?", since).
		Group("DATE(expense_date)").
		Order("period ASC").
		Scan(&points).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, points)
}

// ExpenseTrendsMonthly 获取按月的支出趋势
// @Summary 获取按月支出趋势
// @Description 返回最近 N 个月每月的支出总额与笔数
// @Tags 统计分析
// @Accept json
// @Produce json
// @Param months path int true "月数 (1-60)"
// @Success 200 {object} Response{data=[]TrendPoint} "获取成功"
// @Failure 400 {object} Response "月数非法"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/analytics/expense-trends-monthly/{months} [get]
func (h *AnalyticsHandler) ExpenseTrendsMonthly(c *gin.Context) {
	months, err := strconv.Atoi(c.Param("months"))
	if err != nil || months < 1 || months > 60 {
		BadRequest(c, "月数必须在 1-60 之间")
		return
	}

	now := time.Now()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local).AddDate(0, -(months - 1), 0)
	var points []TrendPoint
	if err := database.DB.Model(&models.Expense{}).
		Select("DATE_FORMAT(expense_date, '%Y-%m') AS period, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("expense_date >= ?", since).
		Group("DATE_FORMAT(expense_date, '%Y-%m')").
		Order("period ASC").
		Scan(&points).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, points)
}

// sumWallet 经费池历史充值总额
func sumWallet() (float64, error) {
	var total float64
	err := database.DB.Model(&models.WalletEntry{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

// sumExpenses 费用总额，start/next 为 nil 时不限时间（半开区间 [start, next)）
func sumExpenses(start, next *time.Time) (float64, error) {
	query := database.DB.Model(&models.Expense{})
	if start != nil && next != nil {
		query = query.Where("expense_date >= ? AND expense_date < ?", *start, *next)
	}
	var total float64
	err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}
