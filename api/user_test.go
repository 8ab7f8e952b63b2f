package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"officeexpense/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminUser(id uint) *models.User {
	return &models.User{ID: id, Email: "admin@example.com", Name: "管理员", Role: models.RoleAdmin, IsActive: true}
}

func TestUserHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setCurrentUser(adminUser(1)))
	router.POST("/users", NewUserHandler().Create)

	body := `{"email":"ZhangSan@Example.com","name":"张三","role":"user"}`
	req := httptest.NewRequest("POST", "/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data models.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	// 邮箱统一小写存储
	assert.Equal(t, "zhangsan@example.com", resp.Data.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserHandler_Create_DuplicateEmail(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	router := gin.New()
	router.Use(setCurrentUser(adminUser(1)))
	router.POST("/users", NewUserHandler().Create)

	body := `{"email":"zhangsan@example.com","name":"张三"}`
	req := httptest.NewRequest("POST", "/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserHandler_Create_InvalidRole(t *testing.T) {
	router := gin.New()
	router.Use(setCurrentUser(adminUser(1)))
	router.POST("/users", NewUserHandler().Create)

	body := `{"email":"zhangsan@example.com","name":"张三","role":"superuser"}`
	req := httptest.NewRequest("POST", "/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestUserHandler_Update_SelfDemote(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(1, "admin@example.com", "管理员", "admin", nil, "", true, nil, time.Now(), time.Now()))

	router := gin.New()
	router.Use(setCurrentUser(adminUser(1)))
	router.PUT("/users/:id", NewUserHandler().Update)

	body := `{"role":"user"}`
	req := httptest.NewRequest("PUT", "/users/1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// 不允许撤销自己的管理员角色
	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserHandler_SetStatus_SelfDeactivate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(1, "admin@example.com", "管理员", "admin", nil, "", true, nil, time.Now(), time.Now()))

	router := gin.New()
	router.Use(setCurrentUser(adminUser(1)))
	router.PUT("/users/:id/status", NewUserHandler().SetStatus)

	body := `{"is_active":false}`
	req := httptest.NewRequest("PUT", "/users/1/status", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserHandler_SetStatus_DeactivateOther(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(2, "zhangsan@example.com", "张三", "user", nil, "", true, nil, time.Now(), time.Now()))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(2, "zhangsan@example.com", "张三", "user", nil, "", false, nil, time.Now(), time.Now()))

	router := gin.New()
	router.Use(setCurrentUser(adminUser(1)))
	router.PUT("/users/:id/status", NewUserHandler().SetStatus)

	body := `{"is_active":false}`
	req := httptest.NewRequest("PUT", "/users/2/status", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserHandler_Get_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns()))

	router := gin.New()
	router.GET("/users/:id", NewUserHandler().Get)

	req := httptest.NewRequest("GET", "/users/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserHandler_Delete_Self(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `users`").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(1, "admin@example.com", "管理员", "admin", nil, "", true, nil, time.Now(), time.Now()))

	router := gin.New()
	router.Use(setCurrentUser(adminUser(1)))
	router.DELETE("/users/:id", NewUserHandler().Delete)

	req := httptest.NewRequest("DELETE", "/users/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
