package api

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"officeexpense/config"
	"officeexpense/database"
	"officeexpense/middleware"
	"officeexpense/models"
	"officeexpense/service"
	"officeexpense/sessionauth"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler 登录认证处理器
type AuthHandler struct{}

// NewAuthHandler 创建登录认证处理器
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// oauthStateCookie 授权跳转前写入的防 CSRF state
const oauthStateCookie = "oauth_state"

// LoginRequest 本地密码登录请求（引导账号用）
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@example.com"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// newState 生成随机 state
func newState() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "state"
	}
	return hex.EncodeToString(b)
}

// redirectURI SSO 回调地址
func redirectURI(cfg *config.Config) string {
	return cfg.Server.BaseURL + "/auth/redirect"
}

// issueSession 登录成功后签发会话并写 Cookie
func issueSession(c *gin.Context, user *models.User) error {
	cfg := config.GetConfig()
	token, err := sessionauth.GenerateToken(user.ID, user.Email, cfg.Session.ExpireTime)
	if err != nil {
		return err
	}
	sessionauth.SetSessionCookie(c, token, int(cfg.Session.ExpireTime.Seconds()))
	return nil
}

// stampLastLogin 记录本次登录时间
func stampLastLogin(user *models.User) {
	now := time.Now()
	database.DB.Model(user).Update("last_login_at", now)
}

// SignIn 跳转到 Entra 授权页
// @Summary 发起 SSO 登录
// @Description 302 跳转到 Microsoft Entra 授权页面
// @Tags 认证
// @Success 302 {string} string "跳转"
// @Failure 400 {object} Response "SSO 未启用"
// @Router /auth/signin [get]
func (h *AuthHandler) SignIn(c *gin.Context) {
	cfg := config.GetConfig()
	if !cfg.Entra.Enabled {
		BadRequest(c, "SSO 登录未启用，请联系管理员")
		return
	}

	// 跨站回跳要带上 state cookie，SameSite 必须是 Lax
	state := newState()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", gin.Mode() == gin.ReleaseMode, true)

	authURL := service.BuildEntraAuthURL(cfg.Entra.TenantID, cfg.Entra.ClientID, redirectURI(cfg), state)
	c.Redirect(http.StatusFound, authURL)
}

// Redirect SSO 回调
// @Summary SSO 登录回调
// @Description 校验授权码并建立会话。仅允许预置账号登录，不会自动创建用户
// @Tags 认证
// @Success 302 {string} string "登录成功后跳转首页"
// @Failure 400 {object} Response "授权码缺失或 state 不匹配"
// @Failure 403 {object} Response "账号未预置或已停用"
// @Router /auth/redirect [get]
func (h *AuthHandler) Redirect(c *gin.Context) {
	cfg := config.GetConfig()
	if !cfg.Entra.Enabled {
		BadRequest(c, "SSO 登录未启用，请联系管理员")
		return
	}

	code := c.Query("code")
	if code == "" {
		BadRequest(c, "缺少授权码")
		return
	}
	state := c.Query("state")
	savedState, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != savedState {
		BadRequest(c, "state 校验失败，请重新登录")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", gin.Mode() == gin.ReleaseMode, true)

	tokenData, err := service.ExchangeEntraToken(cfg.Entra.TenantID, cfg.Entra.ClientID, cfg.Entra.ClientSecret, code, redirectURI(cfg))
	if err != nil {
		Unauthorized(c, SafeErrorMessage(err, "SSO 授权失败"))
		return
	}
	info, err := service.GetEntraUserInfo(tokenData.AccessToken)
	if err != nil {
		Unauthorized(c, SafeErrorMessage(err, "获取用户信息失败"))
		return
	}

	user, err := matchSSOUser(info)
	if err != nil {
		Forbidden(c, err.Error())
		return
	}
	if !user.IsActive {
		Forbidden(c, "账号已停用，请联系管理员")
		return
	}

	stampLastLogin(user)
	if err := issueSession(c, user); err != nil {
		InternalError(c, SafeErrorMessage(err, "创建会话失败"))
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// matchSSOUser 匹配预置账号
// 优先按 Entra 对象 ID 精确匹配；首次登录按邮箱匹配并回填对象 ID 和姓名
func matchSSOUser(info *service.EntraUserInfo) (*models.User, error) {
	var user models.User
	err := database.DB.Where("entra_object_id = ?", info.ObjectID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	email := info.EmailAddress()
	if email == "" {
		return nil, gorm.ErrRecordNotFound
	}
	if err := database.DB.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"entra_object_id": info.ObjectID}
	if info.DisplayName != "" {
		updates["name"] = info.DisplayName
	}
	if err := database.DB.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Login 本地密码登录
// @Summary 本地密码登录
// @Description 引导账号用密码登录，正式账号请走 SSO
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} Response{data=models.User} "登录成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "邮箱或密码错误"
// @Failure 403 {object} Response "账号已停用"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	var user models.User
	if err := database.DB.Where("LOWER(email) = LOWER(?)", req.Email).First(&user).Error; err != nil {
		Unauthorized(c, "邮箱或密码错误")
		return
	}
	if user.Password == "" {
		Unauthorized(c, "该账号仅支持 SSO 登录")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, "邮箱或密码错误")
		return
	}
	if !user.IsActive {
		Forbidden(c, "账号已停用，请联系管理员")
		return
	}

	stampLastLogin(&user)
	if err := issueSession(c, &user); err != nil {
		InternalError(c, SafeErrorMessage(err, "创建会话失败"))
		return
	}

	SuccessWithMessage(c, "登录成功", user)
}

// SignOut 退出登录
// @Summary 退出登录
// @Description 清除会话 Cookie
// @Tags 认证
// @Produce json
// @Success 200 {object} Response "退出成功"
// @Router /auth/signout [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	sessionauth.ClearSessionCookie(c)
	SuccessWithMessage(c, "退出成功", nil)
}

// Me 获取当前登录用户
// @Summary 获取当前登录用户
// @Description 返回会话对应的用户信息
// @Tags 认证
// @Produce json
// @Success 200 {object} Response{data=models.User} "获取成功"
// @Failure 401 {object} Response "未登录"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		Unauthorized(c, "未登录")
		return
	}
	Success(c, user)
}
