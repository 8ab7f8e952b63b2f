package api

import (
	"strconv"
	"strings"

	"officeexpense/database"
	"officeexpense/models"

	"github.com/gin-gonic/gin"
)

// CategoryHandler 费用类别处理器
type CategoryHandler struct{}

// NewCategoryHandler 创建费用类别处理器
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CreateCategoryRequest 创建类别请求
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required" example:"办公用品"`
	Color       string `json:"color" example:"#3b82f6"`
	Description string `json:"description" example:"纸张、文具等日常办公耗材"`
}

// UpdateCategoryRequest 更新类别请求
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// List 获取类别列表
// @Summary 获取类别列表
// @Description 获取费用类别列表，默认只返回启用的类别，include_inactive=true 时返回全部
// @Tags 费用类别
// @Accept json
// @Produce json
// @Param include_inactive query bool false "是否包含停用类别" default(false)
// @Success 200 {object} Response{data=[]models.Category} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	query := database.DB.Model(&models.Category{})
	if c.Query("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}

	var list []models.Category
	if err := query.Order("name ASC").Find(&list).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, list)
}

// Create 创建类别
// @Summary 创建类别
// @Description 创建一个新的费用类别，名称不能与现有类别重复
// @Tags 费用类别
// @Accept json
// @Produce json
// @Param request body CreateCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		BadRequest(c, "类别名称不能为空")
		return
	}

	var count int64
	database.DB.Model(&models.Category{}).Where("name = ?", name).Count(&count)
	if count > 0 {
		BadRequest(c, "类别名称已存在")
		return
	}

	color := req.Color
	if color == "" {
		color = models.DefaultCategoryColor
	}

	category := models.Category{
		Name:        name,
		Color:       color,
		Description: req.Description,
		IsActive:    true,
	}
	if err := database.DB.Create(&category).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建类别失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", category)
}

// Update 更新类别
// @Summary 更新类别
// @Description 更新类别名称、颜色、描述或启用状态
// @Tags 费用类别
// @Accept json
// @Produce json
// @Param id path int true "类别ID"
// @Param request body UpdateCategoryRequest true "类别信息"
// @Success 200 {object} Response{data=models.Category} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var category models.Category
	if err := database.DB.First(&category, id).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			BadRequest(c, "类别名称不能为空")
			return
		}
		var count int64
		database.DB.Model(&models.Category{}).Where("name = ? AND id != ?", name, id).Count(&count)
		if count > 0 {
			BadRequest(c, "类别名称已存在")
			return
		}
		updates["name"] = name
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&category).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	database.DB.First(&category, category.ID)
	SuccessWithMessage(c, "更新成功", category)
}

// Delete 停用类别
// @Summary 停用类别
// @Description 软删除：把类别标记为停用，历史费用记录保留类别引用
// @Tags 费用类别
// @Accept json
// @Produce json
// @Param id path int true "类别ID"
// @Success 200 {object} Response "停用成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "类别不存在"
// @Router /api/v1/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var category models.Category
	if err := database.DB.First(&category, id).Error; err != nil {
		NotFound(c, "类别不存在")
		return
	}

	if err := database.DB.Model(&category).Update("is_active", false).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "停用失败"))
		return
	}

	SuccessWithMessage(c, "停用成功", nil)
}
