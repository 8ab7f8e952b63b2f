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

func walletColumns() []string {
	return []string{"id", "amount", "description", "entry_date", "created_at", "updated_at"}
}

func TestWalletHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expense_wallets`").
		WillReturnRows(sqlmock.NewRows(walletColumns()).
			AddRow(2, 5000.0, "六月经费", time.Now(), time.Now(), time.Now()).
			AddRow(1, 10000.0, "五月经费", time.Now().AddDate(0, -1, 0), time.Now(), time.Now()))

	router := gin.New()
	router.GET("/wallet", NewWalletHandler().List)

	req := httptest.NewRequest("GET", "/wallet", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data []models.WalletEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletHandler_Current(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 返回入账日期最新的一笔充值
	mock.ExpectQuery("SELECT .* FROM `expense_wallets` ORDER BY entry_date DESC, id DESC").
		WillReturnRows(sqlmock.NewRows(walletColumns()).
			AddRow(2, 5000.0, "六月经费", time.Now(), time.Now(), time.Now()))

	router := gin.New()
	router.GET("/wallet/current", NewWalletHandler().Current)

	req := httptest.NewRequest("GET", "/wallet/current", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data models.WalletEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint(2), resp.Data.ID)
	assert.Equal(t, 5000.0, resp.Data.Amount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletHandler_Current_Empty(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expense_wallets`").
		WillReturnRows(sqlmock.NewRows(walletColumns()))

	router := gin.New()
	router.GET("/wallet/current", NewWalletHandler().Current)

	req := httptest.NewRequest("GET", "/wallet/current", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `expense_wallets`").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.POST("/wallet", NewWalletHandler().Create)

	body := `{"amount":10000,"description":"六月经费拨付","date":"2024-06-01"}`
	req := httptest.NewRequest("POST", "/wallet", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletHandler_Create_NonPositiveAmount(t *testing.T) {
	router := gin.New()
	router.POST("/wallet", NewWalletHandler().Create)

	for _, body := range []string{`{"amount":0}`, `{"amount":-100}`} {
		req := httptest.NewRequest("POST", "/wallet", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, 400, w.Code)
	}
}

func TestWalletHandler_Delete_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `expense_wallets`").
		WillReturnRows(sqlmock.NewRows(walletColumns()))

	router := gin.New()
	router.DELETE("/wallet/:id", NewWalletHandler().Delete)

	req := httptest.NewRequest("DELETE", "/wallet/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
