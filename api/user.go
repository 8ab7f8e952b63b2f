package api

import (
	"strconv"
	"strings"

	"officeexpense/database"
	"officeexpense/middleware"
	"officeexpense/models"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户管理处理器（仅管理员）
type UserHandler struct{}

// NewUserHandler 创建用户管理处理器
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// CreateUserRequest 预置用户请求
// 系统不开放注册，登录账号必须先由管理员在此预置
type CreateUserRequest struct {
	Email string `json:"email" binding:"required,email" example:"zhangsan@example.com"`
	Name  string `json:"name" binding:"required" example:"张三"`
	Role  string `json:"role" example:"user"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

// List 获取用户列表
// @Summary 获取用户列表
// @Description 返回全部用户，含停用账号
// @Tags 用户管理
// @Accept json
// @Produce json
// @Success 200 {object} Response{data=[]models.User} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "需要管理员权限"
// @Router /api/v1/users [get]
func (h *UserHandler) List(c *gin.Context) {
	var users []models.User
	if err := database.DB.Order("id ASC").Find(&users).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	Success(c, users)
}

// Create 预置用户
// @Summary 预置用户
// @Description 创建一个可通过 SSO 登录的账号，邮箱不能重复
// @Tags 用户管理
// @Accept json
// @Produce json
// @Param request body CreateUserRequest true "用户信息"
// @Success 200 {object} Response{data=models.User} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "需要管理员权限"
// @Router /api/v1/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		BadRequest(c, "角色只能是 admin 或 user")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var count int64
	database.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		BadRequest(c, "邮箱已存在")
		return
	}

	user := models.User{
		Email:    email,
		Name:     strings.TrimSpace(req.Name),
		Role:     role,
		IsActive: true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建用户失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", user)
}

// Get 获取用户详情
// @Summary 获取用户详情
// @Tags 用户管理
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} Response{data=models.User} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "需要管理员权限"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	Success(c, user)
}

// Update 更新用户
// @Summary 更新用户
// @Description 修改用户姓名或角色，管理员不能撤销自己的管理员角色
// @Tags 用户管理
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Param request body UpdateUserRequest true "用户信息"
// @Success 200 {object} Response{data=models.User} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "需要管理员权限"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/v1/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	current := middleware.GetCurrentUser(c)

	updates := make(map[string]interface{})
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			BadRequest(c, "姓名不能为空")
			return
		}
		updates["name"] = name
	}
	if req.Role != nil {
		role := *req.Role
		if role != models.RoleAdmin && role != models.RoleUser {
			BadRequest(c, "角色只能是 admin 或 user")
			return
		}
		// 不允许撤销自己的管理员角色，避免系统失去最后一个管理员
		if current != nil && current.ID == user.ID && role != models.RoleAdmin {
			BadRequest(c, "不能撤销自己的管理员角色")
			return
		}
		updates["role"] = role
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
			InternalError(c, SafeErrorMessage(err, "更新失败"))
			return
		}
	}

	database.DB.First(&user, user.ID)
	SuccessWithMessage(c, "更新成功", user)
}

// SetStatus 启用/停用用户
// @Summary 启用或停用用户
// @Description 停用后该账号无法登录，管理员不能停用自己
// @Tags 用户管理
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Param request body object{is_active=bool} true "状态"
// @Success 200 {object} Response{data=models.User} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "需要管理员权限"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/v1/users/{id}/status [put]
func (h *UserHandler) SetStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	current := middleware.GetCurrentUser(c)
	if current != nil && current.ID == user.ID && !*req.IsActive {
		BadRequest(c, "不能停用自己的账号")
		return
	}

	if err := database.DB.Model(&user).Update("is_active", *req.IsActive).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&user, user.ID)
	SuccessWithMessage(c, "更新成功", user)
}

// Delete 删除用户
// @Summary 删除用户
// @Description 删除一个用户账号，不能删除自己
// @Tags 用户管理
// @Accept json
// @Produce json
// @Param id path int true "用户ID"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 403 {object} Response "需要管理员权限"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var user models.User
	if err := database.DB.First(&user, id).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	current := middleware.GetCurrentUser(c)
	if current != nil && current.ID == user.ID {
		BadRequest(c, "不能删除自己的账号")
		return
	}

	if err := database.DB.Delete(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}
