package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"officeexpense/database"
	"officeexpense/models"

	"github.com/xuri/excelize/v2"
)

// ImportResult 批量导入结果
// 逐行独立处理：单行失败不会中断整批，失败原因逐行记录
type ImportResult struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
}

// importFields 目标字段及各自的表头同义词（按优先级排列，取第一个非空匹配）
var importFields = []struct {
	name     string
	variants []string
}{
	{"date", []string{"date", "Date", "DATE", "expense_date", "Expense Date"}},
	{"description", []string{"description", "Description", "DESCRIPTION", "expense_description", "Expense Description", "item", "Item"}},
	{"amount", []string{"amount", "Amount", "AMOUNT", "expense_amount", "Expense Amount", "cost", "Cost", "price", "Price"}},
	{"category", []string{"category", "Category", "CATEGORY", "expense_category", "Expense Category", "type", "Type"}},
	{"vendor", []string{"vendor", "Vendor", "VENDOR", "supplier", "Supplier", "merchant", "Merchant"}},
	{"notes", []string{"notes", "Notes", "NOTES", "comments", "Comments", "remarks", "Remarks"}},
}

// defaultImportDescription 缺少描述时的占位描述
const defaultImportDescription = "Imported expense"

// excelEpochOffset Excel 序列日期到 Unix 纪元的天数偏移（序列 0 对应 1899-12-30）
const excelEpochOffset = 25569

// mapImportRow 按表头同义词从一行中提取各目标字段
func mapImportRow(row map[string]string) map[string]string {
	mapped := make(map[string]string)
	for _, field := range importFields {
		for _, key := range field.variants {
			if v, ok := row[key]; ok && strings.TrimSpace(v) != "" {
				mapped[field.name] = strings.TrimSpace(v)
				break
			}
		}
	}
	return mapped
}

// parseImportDate 解析导入的日期值
// 数字按 Excel 序列日期转换，文本按常见格式逐个尝试，均失败时回退为今天
func parseImportDate(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Unix(int64((serial-excelEpochOffset)*86400), 0).UTC()
	}
	layouts := []string{
		"2006-01-02",
		"2006/01/02",
		"02/01/2006",
		"01/02/2006",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t
		}
	}
	return now
}

// cleanImportAmount 去掉货币符号、千分位和空白，留下纯数字串
func cleanImportAmount(raw string) string {
	replacer := strings.NewReplacer("₹", "", "$", "", "¥", "", "€", "", ",", "", " ", "", " ", "")
	return strings.TrimSpace(replacer.Replace(raw))
}

// categoryCache 单次导入批次内的类别名 -> ID 缓存
// 新建的类别立即写入缓存，同一批次后续行可直接命中，避免边遍历边改共享列表
type categoryCache struct {
	byName  map[string]uint
	firstID uint
}

func newCategoryCache(categories []models.Category) *categoryCache {
	c := &categoryCache{byName: make(map[string]uint, len(categories))}
	for _, cat := range categories {
		c.byName[strings.ToLower(cat.Name)] = cat.ID
		if c.firstID == 0 {
			c.firstID = cat.ID
		}
	}
	return c
}

// resolve 按名称（忽略大小写）解析类别 ID，不存在则自动创建
// 创建失败时回退到第一个已有类别
func (c *categoryCache) resolve(name string) (uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		if c.firstID == 0 {
			return 0, fmt.Errorf("缺少费用类别且系统中没有可用类别")
		}
		return c.firstID, nil
	}

	if id, ok := c.byName[strings.ToLower(name)]; ok {
		return id, nil
	}

	cat := models.Category{Name: name, Color: models.DefaultCategoryColor, IsActive: true}
	if err := database.DB.Create(&cat).Error; err != nil {
		if c.firstID == 0 {
			return 0, fmt.Errorf("创建类别 %q 失败: %w", name, err)
		}
		return c.firstID, nil
	}
	c.byName[strings.ToLower(name)] = cat.ID
	if c.firstID == 0 {
		c.firstID = cat.ID
	}
	return cat.ID, nil
}

// buildImportExpense 把映射后的一行转成待入库的费用记录
func buildImportExpense(mapped map[string]string, cache *categoryCache, now time.Time) (*models.Expense, error) {
	amountStr := cleanImportAmount(mapped["amount"])
	if amountStr == "" {
		amountStr = "0"
	}
	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		return nil, fmt.Errorf("金额无法解析: %q", mapped["amount"])
	}
	if amount < 0 {
		return nil, fmt.Errorf("金额不能为负数: %v", amount)
	}

	categoryID, err := cache.resolve(mapped["category"])
	if err != nil {
		return nil, err
	}

	description := mapped["description"]
	if description == "" {
		description = defaultImportDescription
	}

	return &models.Expense{
		Description: description,
		Amount:      amount,
		CategoryID:  categoryID,
		Vendor:      mapped["vendor"],
		Notes:       mapped["notes"],
		ExpenseDate: parseImportDate(mapped["date"], now),
	}, nil
}

// readSheetRows 读取工作簿首个工作表，按表头转成 map 行
// 使用原始单元格值，Excel 日期保持为序列数字而不是按单元格格式渲染后的文本
func readSheetRows(filePath string) ([]map[string]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("打开 Excel 文件失败: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel 文件中没有工作表")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel 文件中没有数据")
	}

	headers := rows[0]
	var out []map[string]string
	for _, row := range rows[1:] {
		m := make(map[string]string, len(headers))
		empty := true
		for i, h := range headers {
			if i < len(row) {
				m[strings.TrimSpace(h)] = row[i]
				if strings.TrimSpace(row[i]) != "" {
					empty = false
				}
			}
		}
		if !empty {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("Excel 文件中没有数据")
	}
	return out, nil
}

// ImportExpensesFromExcel 从 Excel 文件批量导入费用记录
func ImportExpensesFromExcel(filePath string) (*ImportResult, error) {
	rawRows, err := readSheetRows(filePath)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := database.DB.Where("is_active = ?", true).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("查询类别失败: %w", err)
	}
	cache := newCategoryCache(categories)

	result := &ImportResult{Total: len(rawRows), Errors: []string{}}
	now := time.Now()

	for i, raw := range rawRows {
		expense, err := buildImportExpense(mapImportRow(raw), cache, now)
		if err == nil {
			err = database.DB.Create(expense).Error
		}
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("第 %d 行: %s", i+1, err.Error()))
			continue
		}
		result.Successful++
	}

	return result, nil
}
