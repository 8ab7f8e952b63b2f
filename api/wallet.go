package api

import (
	"strconv"
	"time"

	"officeexpense/database"
	"officeexpense/models"

	"github.com/gin-gonic/gin"
)

// WalletHandler 经费池处理器
type WalletHandler struct{}

// NewWalletHandler 创建经费池处理器
func NewWalletHandler() *WalletHandler {
	return &WalletHandler{}
}

// CreateWalletEntryRequest 创建充值记录请求
type CreateWalletEntryRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"10000"`
	Description string  `json:"description" example:"六月经费拨付"`
	Date        string  `json:"date" example:"2024-06-01"`
}

// UpdateWalletEntryRequest 更新充值记录请求
type UpdateWalletEntryRequest struct {
	Amount      *float64 `json:"amount" binding:"omitempty,gt=0"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}

// List 获取充值记录列表
// @Summary 获取充值记录列表
// @Description 按入账日期倒序返回全部充值记录
// @Tags 经费池
// @Accept json
// @Produce json
// @Success 200 {object} Response{data=[]models.WalletEntry} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/wallet [get]
func (h *WalletHandler) List(c *gin.Context) {
	var entries []models.WalletEntry
	if err := database.DB.Order("entry_date DESC, id DESC").Find(&entries).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, entries)
}

// Current 获取最近一笔充值记录
// 余额口径的汇总走 analytics/wallet-summary
// @Summary 获取最近一笔充值记录
// @Description 返回入账日期最新的一笔充值记录
// @Tags 经费池
// @Accept json
// @Produce json
// @Success 200 {object} Response{data=models.WalletEntry} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "暂无充值记录"
// @Router /api/v1/wallet/current [get]
func (h *WalletHandler) Current(c *gin.Context) {
	var entry models.WalletEntry
	if err := database.DB.Order("entry_date DESC, id DESC").First(&entry).Error; err != nil {
		NotFound(c, "暂无充值记录")
		return
	}
	Success(c, entry)
}

// Create 创建充值记录
// @Summary 创建充值记录
// @Description 向经费池追加一笔充值，金额必须大于 0
// @Tags 经费池
// @Accept json
// @Produce json
// @Param request body CreateWalletEntryRequest true "充值信息"
// @Success 200 {object} Response{data=models.WalletEntry} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/wallet [post]
func (h *WalletHandler) Create(c *gin.Context) {
	var req CreateWalletEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	entry := models.WalletEntry{
		Amount:      req.Amount,
		Description: req.Description,
		EntryDate:   time.Now(),
	}
	if req.Date != "" {
		entryDate, err := parseDateParam(req.Date)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2024-06-01")
			return
		}
		entry.EntryDate = entryDate
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建充值记录失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", entry)
}

// Update 更新充值记录
// @Summary 更新充值记录
// @Description 修正充值金额、描述或入账日期
// @Tags 经费池
// @Accept json
// @Produce json
// @Param id path int true "充值记录ID"
// @Param request body UpdateWalletEntryRequest true "充值信息"
// @Success 200 {object} Response{data=models.WalletEntry} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/wallet/{id} [put]
func (h *WalletHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var entry models.WalletEntry
	if err := database.DB.First(&entry, id).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	var req UpdateWalletEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Date != nil {
		entryDate, err := parseDateParam(*req.Date)
		if err != nil {
			BadRequest(c, "日期格式错误，应为: 2024-06-01")
			return
		}
		updates["entry_date"] = entryDate
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&entry).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	database.DB.First(&entry, entry.ID)
	SuccessWithMessage(c, "更新成功", entry)
}

// Delete 删除充值记录
// @Summary 删除充值记录
// @Description 删除一笔误录入的充值记录
// @Tags 经费池
// @Accept json
// @Produce json
// @Param id path int true "充值记录ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/wallet/{id} [delete]
func (h *WalletHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var entry models.WalletEntry
	if err := database.DB.First(&entry, id).Error; err != nil {
		NotFound(c, "记录不存在")
		return
	}

	if err := database.DB.Delete(&entry).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
