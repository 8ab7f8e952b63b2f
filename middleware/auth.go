package middleware

import (
	"net/http"

	"officeexpense/database"
	"officeexpense/models"
	"officeexpense/sessionauth"

	"github.com/gin-gonic/gin"
)

// contextUserKey 当前登录用户在请求上下文中的键
const contextUserKey = "currentUser"

// SessionAuth 登录态认证中间件
// 从 Cookie 中解析会话令牌并按 ID 查库，停用用户视为未登录；
// 认证结果挂在请求上下文上，后续处理器不持有任何跨请求的会话状态
func SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := sessionauth.GetSessionUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "请先登录"})
			c.Abort()
			return
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "用户不存在"})
			c.Abort()
			return
		}
		if !user.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "账号已停用，请联系管理员"})
			c.Abort()
			return
		}

		c.Set(contextUserKey, &user)
		c.Next()
	}
}

// GetCurrentUser 获取当前登录用户，未认证时返回 nil
func GetCurrentUser(c *gin.Context) *models.User {
	if v, exists := c.Get(contextUserKey); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// RequireAdmin 管理员权限校验中间件，需在 SessionAuth 之后使用
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetCurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "请先登录"})
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "权限不足，需要管理员身份"})
			c.Abort()
			return
		}
		c.Next()
	}
}
