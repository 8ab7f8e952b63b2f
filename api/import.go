package api

import (
	"os"
	"path/filepath"
	"strings"

	"officeexpense/service"

	"github.com/gin-gonic/gin"
)

// ImportHandler 导入处理器
type ImportHandler struct{}

// NewImportHandler 创建导入处理器
func NewImportHandler() *ImportHandler {
	return &ImportHandler{}
}

// ImportExcelRequest Excel 导入请求
type ImportExcelRequest struct {
	FilePath string `json:"file_path" binding:"required" example:"/data/uploads/expenses.xlsx"`
}

// ImportExcel 从 Excel 文件批量导入费用记录
// @Summary 从 Excel 批量导入费用记录
// @Description 读取服务器上的 xlsx 文件并逐行导入，单行失败不影响其他行
// @Tags 导入
// @Accept json
// @Produce json
// @Param request body ImportExcelRequest true "文件路径"
// @Success 200 {object} Response{data=service.ImportResult} "导入完成"
// @Failure 400 {object} Response "请求参数错误或文件不可读"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/import-excel [post]
func (h *ImportHandler) ImportExcel(c *gin.Context) {
	var req ImportExcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	if !strings.EqualFold(filepath.Ext(req.FilePath), ".xlsx") {
		BadRequest(c, "仅支持 xlsx 文件")
		return
	}
	if _, err := os.Stat(req.FilePath); err != nil {
		BadRequest(c, "文件不存在或不可读")
		return
	}

	result, err := service.ImportExpensesFromExcel(req.FilePath)
	if err != nil {
		BadRequest(c, SafeErrorMessage(err, "导入失败"))
		return
	}

	SuccessWithMessage(c, "导入完成", result)
}
