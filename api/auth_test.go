package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"officeexpense/config"
	"officeexpense/database"
	"officeexpense/models"
	"officeexpense/service"
	"officeexpense/sessionauth"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

func initTestConfig(t *testing.T, entraEnabled bool) func() {
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug", BaseURL: "http://localhost:8080"},
		Session: config.SessionConfig{
			Secret:     "test-secret",
			ExpireTime: time.Hour,
		},
		Entra: config.EntraConfig{
			Enabled:  entraEnabled,
			TenantID: "tenant-123",
			ClientID: "client-abc",
		},
	}
	config.GlobalConfig = cfg
	sessionauth.Init(cfg)
	return func() { config.GlobalConfig = nil }
}

func setCurrentUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("currentUser", user)
		c.Next()
	}
}

func serviceEntraInfo(objectID, name, email string) *service.EntraUserInfo {
	return &service.EntraUserInfo{ObjectID: objectID, DisplayName: name, Mail: email}
}

func userColumns() []string {
	return []string{"id", "email", "name", "role", "entra_object_id", "password", "is_active", "last_login_at", "created_at", "updated_at"}
}

func TestAuthHandler_Login(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	defer initTestConfig(t, false)()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(1, "admin@example.com", "管理员", "admin", nil, string(hash), true, nil, time.Now(), time.Now()))

	// 登录时间更新
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.POST("/auth/login", NewAuthHandler().Login)

	body := `{"email":"admin@example.com","password":"admin123"}`
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "登录成功", resp["message"])

	// 会话 Cookie 已写入
	var found bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionauth.SessionCookieName && ck.Value != "" {
			found = true
		}
	}
	assert.True(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	defer initTestConfig(t, false)()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(1, "admin@example.com", "管理员", "admin", nil, string(hash), true, nil, time.Now(), time.Now()))

	router := gin.New()
	router.POST("/auth/login", NewAuthHandler().Login)

	body := `{"email":"admin@example.com","password":"wrong"}`
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_Login_Inactive(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	defer initTestConfig(t, false)()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(1, "admin@example.com", "管理员", "admin", nil, string(hash), false, nil, time.Now(), time.Now()))

	router := gin.New()
	router.POST("/auth/login", NewAuthHandler().Login)

	body := `{"email":"admin@example.com","password":"admin123"}`
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 403, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthHandler_SignIn_Disabled(t *testing.T) {
	defer initTestConfig(t, false)()

	router := gin.New()
	router.GET("/auth/signin", NewAuthHandler().SignIn)

	req := httptest.NewRequest("GET", "/auth/signin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestAuthHandler_SignIn_Redirects(t *testing.T) {
	defer initTestConfig(t, true)()

	router := gin.New()
	router.GET("/auth/signin", NewAuthHandler().SignIn)

	req := httptest.NewRequest("GET", "/auth/signin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 302, w.Code)
	location := w.Header().Get("Location")
	assert.Contains(t, location, "tenant-123")
	assert.Contains(t, location, "client_id=client-abc")
}

func TestAuthHandler_SignOut(t *testing.T) {
	defer initTestConfig(t, false)()

	router := gin.New()
	router.POST("/auth/signout", NewAuthHandler().SignOut)

	req := httptest.NewRequest("POST", "/auth/signout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var cleared bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionauth.SessionCookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestAuthHandler_Me_Unauthorized(t *testing.T) {
	router := gin.New()
	router.GET("/auth/me", NewAuthHandler().Me)

	req := httptest.NewRequest("GET", "/auth/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
}

func TestMatchSSOUser_ByObjectID(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE entra_object_id = ?")).
		WithArgs("obj-1", 1).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(5, "zhangsan@example.com", "张三", "user", "obj-1", "", true, nil, time.Now(), time.Now()))

	user, err := matchSSOUser(serviceEntraInfo("obj-1", "张三", "zhangsan@example.com"))
	require.NoError(t, err)
	assert.Equal(t, uint(5), user.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchSSOUser_ByEmailBackfill(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 对象 ID 未命中，回退到邮箱匹配并回填
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE entra_object_id = ?")).
		WithArgs("obj-2", 1).
		WillReturnRows(sqlmock.NewRows(userColumns()))

	mock.ExpectQuery("SELECT .* FROM `users` WHERE LOWER\\(email\\)").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(7, "lisi@example.com", "预置账号", "user", nil, "", true, nil, time.Now(), time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user, err := matchSSOUser(serviceEntraInfo("obj-2", "李四", "lisi@example.com"))
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchSSOUser_NotProvisioned(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE entra_object_id = ?")).
		WillReturnRows(sqlmock.NewRows(userColumns()))
	mock.ExpectQuery("SELECT .* FROM `users` WHERE LOWER\\(email\\)").
		WillReturnRows(sqlmock.NewRows(userColumns()))

	_, err := matchSSOUser(serviceEntraInfo("obj-3", "陌生人", "stranger@example.com"))
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
