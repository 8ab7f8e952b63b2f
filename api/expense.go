package api

import (
	"strconv"
	"strings"
	"time"

	"officeexpense/database"
	"officeexpense/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ExpenseHandler 费用记录处理器
type ExpenseHandler struct{}

// NewExpenseHandler 创建费用记录处理器
func NewExpenseHandler() *ExpenseHandler {
	return &ExpenseHandler{}
}

// CreateExpenseRequest 创建费用记录请求
type CreateExpenseRequest struct {
	Description string  `json:"description" binding:"required" example:"打印纸两箱"`
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"199.00"`
	CategoryID  uint    `json:"category_id" binding:"required" example:"1"`
	Vendor      string  `json:"vendor" example:"晨光文具"`
	Date        string  `json:"date" binding:"required" example:"2024-06-15"`
	ReceiptPath string  `json:"receipt_path"`
	Notes       string  `json:"notes"`
}

// UpdateExpenseRequest 更新费用记录请求
// 指针字段区分「未传」与「清空」
type UpdateExpenseRequest struct {
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount" binding:"omitempty,gt=0"`
	CategoryID  *uint    `json:"category_id"`
	Vendor      *string  `json:"vendor"`
	Date        *string  `json:"date"`
	ReceiptPath *string  `json:"receipt_path"`
	Notes       *string  `json:"notes"`
}

// ExpenseListRequest 费用记录列表请求
// 数值筛选用指针区分「未传」与「0」，格式非法由绑定直接报 400
type ExpenseListRequest struct {
	Search     string   `form:"search"`
	CategoryID *uint    `form:"category_id"`
	StartDate  string   `form:"start_date"`
	EndDate    string   `form:"end_date"`
	MinAmount  *float64 `form:"min_amount"`
	MaxAmount  *float64 `form:"max_amount"`
	SortBy     string   `form:"sort_by"`
	SortOrder  string   `form:"sort_order"`
	Limit      int      `form:"limit"`
	Offset     int      `form:"offset"`
}

// ExpenseListResponse 费用记录列表响应
type ExpenseListResponse struct {
	Expenses   []models.ExpenseWithCategory `json:"expenses"`
	TotalCount int64                        `json:"totalCount"`
	HasMore    bool                         `json:"hasMore"`
}

// sortColumns 允许排序的字段白名单，非法值回退为按日期倒序
var sortColumns = map[string]string{
	"date":        "expense_date",
	"amount":      "amount",
	"description": "description",
	"category":    "category_id",
}

// escapeLikeValue 转义 LIKE 模式中的通配符，用户输入按字面匹配
func escapeLikeValue(v string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(v)
}

// parseDateParam 解析 YYYY-MM-DD 格式日期参数
func parseDateParam(v string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", v, time.Local)
}

// applyExpenseFilters 把列表筛选条件拼到查询上，导出接口复用同一套条件
// 日期格式非法时直接写 400 响应并返回 false
func applyExpenseFilters(c *gin.Context, query *gorm.DB, req *ExpenseListRequest) (*gorm.DB, bool) {
	if req.Search != "" {
		// 搜索只作用于描述字段
		query = query.Where("description LIKE ?", "%"+escapeLikeValue(req.Search)+"%")
	}
	if req.CategoryID != nil {
		query = query.Where("category_id = ?", *req.CategoryID)
	}
	if req.StartDate != "" {
		start, err := parseDateParam(req.StartDate)
		if err != nil {
			BadRequest(c, "start_date格式错误，应为：2024-01-01")
			return nil, false
		}
		query = query.Where("expense_date >= ?", start)
	}
	if req.EndDate != "" {
		end, err := parseDateParam(req.EndDate)
		if err != nil {
			BadRequest(c, "end_date格式错误，应为：2024-12-31")
			return nil, false
		}
		// 包含结束日期当天
		query = query.Where("expense_date < ?", end.AddDate(0, 0, 1))
	}
	if req.MinAmount != nil {
		query = query.Where("amount >= ?", *req.MinAmount)
	}
	if req.MaxAmount != nil {
		query = query.Where("amount <= ?", *req.MaxAmount)
	}
	return query, true
}

// sortClause 生成排序子句，sort_by 走白名单（非法回退日期），sort_order 仅认 asc
func sortClause(sortBy, sortOrder string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "expense_date"
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// withCategories 把费用记录和预加载的类别拼成列表返回结构
func withCategories(expenses []models.Expense) []models.ExpenseWithCategory {
	out := make([]models.ExpenseWithCategory, 0, len(expenses))
	for i := range expenses {
		cat := expenses[i].Category
		out = append(out, models.ExpenseWithCategory{
			Expense:  expenses[i],
			Category: &cat,
		})
	}
	return out
}

// Create 创建费用记录
// @Summary 创建费用记录
// @Description 创建一条新的费用记录
// @Tags 费用记录
// @Accept json
// @Produce json
// @Param request body CreateExpenseRequest true "费用记录信息"
// @Success 200 {object} Response{data=models.Expense} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var cat models.Category
	if err := database.DB.Where("id = ? AND is_active = ?", req.CategoryID, true).First(&cat).Error; err != nil {
		BadRequest(c, "无效的费用类别，请先在后台维护类别")
		return
	}

	expenseDate, err := parseDateParam(req.Date)
	if err != nil {
		BadRequest(c, "日期格式错误，应为: 2024-06-15")
		return
	}

	expense := models.Expense{
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		CategoryID:  req.CategoryID,
		Vendor:      req.Vendor,
		ExpenseDate: expenseDate,
		ReceiptPath: req.ReceiptPath,
		Notes:       req.Notes,
	}

	if err := database.DB.Create(&expense).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建费用记录失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", expense)
}

// List 获取费用记录列表
// @Summary 获取费用记录列表
// @Description 获取费用记录列表，支持搜索、筛选、排序和分页
// @Tags 费用记录
// @Accept json
// @Produce json
// @Param search query string false "搜索关键字（匹配描述）"
// @Param category_id query int false "类别筛选"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Param min_amount query number false "最小金额"
// @Param max_amount query number false "最大金额"
// @Param sort_by query string false "排序字段：date/amount/description/category" default(date)
// @Param sort_order query string false "排序方向：asc/desc" default(desc)
// @Param limit query int false "每页数量" default(50)
// @Param offset query int false "偏移量" default(0)
// @Success 200 {object} Response{data=ExpenseListResponse} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Limit > 500 {
		req.Limit = 500
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	query := database.DB.Model(&models.Expense{})
	query, ok := applyExpenseFilters(c, query, &req)
	if !ok {
		return
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	var expenses []models.Expense
	if err := query.Preload("Category").
		Order(sortClause(req.SortBy, req.SortOrder)).
		Offset(req.Offset).
		Limit(req.Limit).
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, ExpenseListResponse{
		Expenses:   withCategories(expenses),
		TotalCount: total,
		HasMore:    int64(req.Offset+len(expenses)) < total,
	})
}

// Get 获取单条费用记录
// @Summary 获取单条费用记录
// @Description 根据ID获取费用记录详情
// @Tags 费用记录
// @Accept json
// @Produce json
// @Param id path int true "费用记录ID"
// @Success 200 {object} Response{data=models.ExpenseWithCategory} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.Preload("Category").First(&expense, id).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	cat := expense.Category
	Success(c, models.ExpenseWithCategory{Expense: expense, Category: &cat})
}

// Update 更新费用记录
// @Summary 更新费用记录
// @Description 更新指定的费用记录，未传字段保持原值
// @Tags 费用记录
// @Accept json
// @Produce json
// @Param id path int true "费用记录ID"
// @Param request body UpdateExpenseRequest true "费用记录信息"
// @Success 200 {object} Response{data=models.Expense} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.First(&expense, id).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		if desc == "" {
			BadRequest(c, "描述不能为空")
			return
		}
		updates["description"] = desc
	}
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.CategoryID != nil {
		var cat models.Category
		if err := database.DB.Where("id = ? AND is_active = ?", *req.CategoryID, true).First(&cat).Error; err != nil {
			BadRequest(c, "无效的费用类别，请先在后台维护类别")
			return
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Vendor != nil {
		updates["vendor"] = *req.Vendor
	}
	if req.Date != nil {
		expenseDate, err := parseDateParam(*req.Date)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2024-06-15")
			return
		}
		updates["expense_date"] = expenseDate
	}
	if req.ReceiptPath != nil {
		updates["receipt_path"] = *req.ReceiptPath
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&expense).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	// 重新获取更新后的记录
	database.DB.First(&expense, expense.ID)
	SuccessWithMessage(c, "更新成功", expense)
}

// Delete 删除费用记录
// @Summary 删除费用记录
// @Description 删除指定的费用记录（物理删除）
// @Tags 费用记录
// @Accept json
// @Produce json
// @Param id path int true "费用记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var expense models.Expense
	if err := database.DB.First(&expense, id).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&expense).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
