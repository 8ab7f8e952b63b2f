package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"officeexpense/database"
	"officeexpense/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// exportHeaders CSV/Excel 固定表头，与导入模板保持一致
var exportHeaders = []string{"Date", "Description", "Category", "Vendor", "Amount", "Notes"}

// queryExportExpenses 按列表接口同一套筛选条件查询待导出记录
func queryExportExpenses(c *gin.Context) ([]models.Expense, bool) {
	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return nil, false
	}

	query := database.DB.Model(&models.Expense{})
	query, ok := applyExpenseFilters(c, query, &req)
	if !ok {
		return nil, false
	}

	var expenses []models.Expense
	if err := query.Preload("Category").
		Order(sortClause(req.SortBy, req.SortOrder)).
		Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询数据失败"))
		return nil, false
	}
	return expenses, true
}

// exportRow 一条费用记录对应的导出行
func exportRow(expense *models.Expense) []string {
	return []string{
		expense.ExpenseDate.Format("2006-01-02"),
		expense.Description,
		expense.Category.Name,
		expense.Vendor,
		fmt.Sprintf("%.2f", expense.Amount),
		expense.Notes,
	}
}

// ExportCSV 导出费用记录为 CSV
// @Summary 导出费用记录为 CSV
// @Description 按列表接口相同的筛选条件导出费用记录
// @Tags 导出
// @Accept json
// @Produce text/csv
// @Param search query string false "搜索关键字"
// @Param category_id query int false "类别筛选"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Param min_amount query number false "最小金额"
// @Param max_amount query number false "最大金额"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/export-csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	expenses, ok := queryExportExpenses(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)
	if err := writer.Write(exportHeaders); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}
	for i := range expenses {
		if err := writer.Write(exportRow(&expenses[i])); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	filename := fmt.Sprintf("expenses_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出费用记录为 Excel
// @Summary 导出费用记录为 Excel
// @Description 按列表接口相同的筛选条件导出费用记录为 xlsx 文件
// @Tags 导出
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param search query string false "搜索关键字"
// @Param category_id query int false "类别筛选"
// @Param start_date query string false "开始日期 (2024-01-01)"
// @Param end_date query string false "结束日期 (2024-12-31)"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/expenses/export-excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	expenses, ok := queryExportExpenses(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headerRow := make([]interface{}, len(exportHeaders))
	for i, hc := range exportHeaders {
		headerRow[i] = hc
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}

	for i := range expenses {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			expenses[i].ExpenseDate.Format("2006-01-02"),
			expenses[i].Description,
			expenses[i].Category.Name,
			expenses[i].Vendor,
			expenses[i].Amount,
			expenses[i].Notes,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			InternalError(c, "生成 Excel 失败")
			return
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}

	filename := fmt.Sprintf("expenses_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
