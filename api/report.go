package api

import (
	"time"

	"officeexpense/config"
	"officeexpense/database"
	"officeexpense/models"
	"officeexpense/service"

	"github.com/gin-gonic/gin"
)

// ReportHandler 报告处理器
type ReportHandler struct{}

// NewReportHandler 创建报告处理器
func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

// SendReportRequest 发送月度报告请求
type SendReportRequest struct {
	Month int    `json:"month" binding:"required" example:"6"`
	Year  int    `json:"year" binding:"required" example:"2024"`
	To    string `json:"to" binding:"required,email" example:"boss@example.com"`
}

// SendMonthlyReport 发送月度费用报告邮件
// @Summary 发送月度费用报告邮件
// @Description 汇总指定月份的支出与类别分布，发送到指定邮箱
// @Tags 报告
// @Accept json
// @Produce json
// @Param request body SendReportRequest true "报告参数"
// @Success 200 {object} Response "发送成功"
// @Failure 400 {object} Response "请求参数错误或邮件服务未启用"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "需要管理员权限"
// @Router /api/v1/reports/email [post]
func (h *ReportHandler) SendMonthlyReport(c *gin.Context) {
	var req SendReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	if err := service.ValidateMonthYear(req.Month, req.Year); err != nil {
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

	start, next := service.MonthWindow(req.Year, req.Month)
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

	summary := service.ComputeMonthSummary(totalWallet, totalEver, monthlyAmount, monthlyCount, req.Month, req.Year, time.Now())

	window := [2]time.Time{start, next}
	breakdown, err := queryCategoryBreakdown(&window)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	emailSvc := service.NewEmailService(&config.GetConfig().Email)
	if err := emailSvc.SendMonthlyReport(req.To, req.Month, req.Year, &summary, breakdown); err != nil {
		BadRequest(c, SafeErrorMessage(err, "发送报告失败"))
		return
	}

	SuccessWithMessage(c, "发送成功", nil)
}
