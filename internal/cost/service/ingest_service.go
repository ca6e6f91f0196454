package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bitfantasy/nimo-cost/internal/cost/entity"
	"github.com/bitfantasy/nimo-cost/internal/cost/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"gorm.io/gorm"
)

// UploadType 上传类型。新增类型需要同时补齐 RequiredColumns 和 ingest
// 的分支，switch不带default兜底，漏分支由编译/评审兜住
type UploadType string

const (
	UploadInventory  UploadType = "inventory"  // 库存同步
	UploadProduction UploadType = "production" // 生产计划(BOM)
	UploadReports    UploadType = "reports"    // 日报(实际消耗)
)

// ParseUploadType 解析上传类型参数
func ParseUploadType(s string) (UploadType, error) {
	switch UploadType(s) {
	case UploadInventory, UploadProduction, UploadReports:
		return UploadType(s), nil
	}
	return "", fmt.Errorf("未知的上传类型: %s", s)
}

// RequiredColumns 各类型必需列（规格化后的列名）
func (t UploadType) RequiredColumns() []string {
	switch t {
	case UploadInventory:
		return []string{"material_name", "quantity", "unit", "location"}
	case UploadProduction:
		return []string{"material_name", "planned_qty", "unit_cost", "batch_id"}
	case UploadReports:
		return []string{"date", "material_name", "actual_qty", "actual_cost"}
	}
	return nil
}

// 每次上传的状态流转: idle → parsing → validated|invalid → ingesting → done|failed
const (
	ingestStateParsing   = "parsing"
	ingestStateValidated = "validated"
	ingestStateInvalid   = "invalid"
	ingestStateIngesting = "ingesting"
	ingestStateDone      = "done"
	ingestStateFailed    = "failed"
)

// IngestResult 导入结果。跳过的行是正常现象，不算失败
type IngestResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// IngestService CSV/XLSX导入流水线
// 逐行写库，无事务包裹：中途失败时已提交的行保持不变，失败行只计入skipped
type IngestService struct {
	repos  *repository.Repositories
	cache  *Cache
	logger *zap.Logger
}

func NewIngestService(repos *repository.Repositories, cache *Cache, logger *zap.Logger) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IngestService{repos: repos, cache: cache, logger: logger}
}

// IngestCSV 解析并导入CSV。非UTF-8内容按GB18030回退解码，
// 兼容老版Windows中文环境导出的文件
func (s *IngestService) IngestCSV(ctx context.Context, typ UploadType, r io.Reader) (*IngestResult, error) {
	s.logger.Debug("CSV导入开始", zap.String("type", string(typ)), zap.String("state", ingestStateParsing))

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取上传内容失败: %w", err)
	}
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("解码上传内容失败: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1 // 行宽不齐按短行处理，不视为解析错误
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析CSV失败: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("文件为空或无法解析")
	}
	return s.IngestRows(ctx, typ, records[0], records[1:])
}

// IngestXLSX 从Excel工作簿第一个sheet导入
func (s *IngestService) IngestXLSX(ctx context.Context, typ UploadType, f *excelize.File) (*IngestResult, error) {
	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("读取Excel失败: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("文件为空或无法解析")
	}
	return s.IngestRows(ctx, typ, rows[0], rows[1:])
}

// IngestRows 表头校验 + 按类型分发
// 缺列时整单拒绝，不做部分导入；行级失败只跳过该行
func (s *IngestService) IngestRows(ctx context.Context, typ UploadType, header []string, records [][]string) (*IngestResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("没有可导入的数据行")
	}

	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = normalizeKey(h)
	}

	if missing := missingColumns(keys, typ.RequiredColumns()); len(missing) > 0 {
		s.logger.Warn("表头校验失败",
			zap.String("type", string(typ)),
			zap.Strings("missing", missing),
			zap.String("state", ingestStateInvalid),
		)
		return nil, fmt.Errorf("缺少必需列: %s", strings.Join(missing, ", "))
	}
	s.logger.Debug("表头校验通过", zap.String("type", string(typ)), zap.String("state", ingestStateValidated))

	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		row := make(map[string]string, len(keys))
		for i, key := range keys {
			if i < len(record) {
				row[key] = strings.TrimSpace(record[i])
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}

	s.logger.Debug("开始写入", zap.String("type", string(typ)),
		zap.Int("rows", len(rows)), zap.String("state", ingestStateIngesting))

	var result *IngestResult
	var err error
	switch typ {
	case UploadInventory:
		result, err = s.ingestInventory(ctx, rows)
	case UploadProduction:
		result, err = s.ingestProduction(ctx, rows)
	case UploadReports:
		result, err = s.ingestReports(ctx, rows)
	default:
		err = fmt.Errorf("未知的上传类型: %s", typ)
	}
	if err != nil {
		s.logger.Warn("导入失败", zap.String("type", string(typ)),
			zap.Error(err), zap.String("state", ingestStateFailed))
		return nil, err
	}

	s.cache.Invalidate(ctx, dashboardCacheKey)
	s.logger.Info("导入完成", zap.String("type", string(typ)),
		zap.Int("inserted", result.Inserted), zap.Int("skipped", result.Skipped),
		zap.String("state", ingestStateDone))
	return result, nil
}

// normalizeKey 列名规格化：去BOM、去\r、去首尾空白、转小写
// 兼容各平台导出工具的表头差异
func normalizeKey(key string) string {
	key = strings.TrimPrefix(key, "\uFEFF")
	key = strings.ReplaceAll(key, "\r", "")
	return strings.ToLower(strings.TrimSpace(key))
}

func missingColumns(keys, required []string) []string {
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}
	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// 新建库存项的阈值默认值：首见数量的20%/30%/5%，采购周期3天。
// 这是沿用下来的既定口径，没有配置入口
const (
	defaultMinimumStockRatio = 0.2
	defaultSafetyStockRatio  = 0.3
	defaultDailyRatio        = 0.05
	defaultLeadTimeDays      = 3
)

// ingestInventory 库存同步
// 名称精确匹配（区分大小写）：命中只更新现存量和单位，未命中按默认阈值新建
func (s *IngestService) ingestInventory(ctx context.Context, rows []map[string]string) (*IngestResult, error) {
	result := &IngestResult{}
	for _, row := range rows {
		name := row["material_name"]
		qty, err := strconv.ParseFloat(row["quantity"], 64)
		if name == "" || err != nil {
			result.Skipped++
			continue
		}
		unit := defaultUnit(row["unit"])

		existing, err := s.repos.Inventory.FindByName(ctx, name)
		switch {
		case err == nil:
			existing.CurrentStock = qty
			existing.Unit = unit
			existing.UpdatedAt = time.Now()
			if err := s.repos.Inventory.Update(ctx, existing); err != nil {
				result.Skipped++
				continue
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &entity.InventoryItem{
				ItemName:         name,
				CurrentStock:     qty,
				MinimumStock:     math.Round(qty * defaultMinimumStockRatio),
				SafetyStock:      math.Round(qty * defaultSafetyStockRatio),
				DailyConsumption: math.Max(1, math.Round(qty*defaultDailyRatio)),
				LeadTimeDays:     defaultLeadTimeDays,
				Unit:             unit,
			}
			if err := s.repos.Inventory.Create(ctx, item); err != nil {
				result.Skipped++
				continue
			}
		default:
			result.Skipped++
			continue
		}
		result.Inserted++
	}
	return result, nil
}

// ingestProduction 生产计划导入
// 按batch_id分组，每批 find-or-create 一个订单，BOM行项直接插入。
// 重复导入同一文件：订单按订单号去重，行项会重复插入（行项级无幂等）
func (s *IngestService) ingestProduction(ctx context.Context, rows []map[string]string) (*IngestResult, error) {
	result := &IngestResult{}

	batches := map[string][]map[string]string{}
	var batchOrder []string
	for _, row := range rows {
		batchID := row["batch_id"]
		if batchID == "" {
			result.Skipped++
			continue
		}
		if _, ok := batches[batchID]; !ok {
			batchOrder = append(batchOrder, batchID)
		}
		batches[batchID] = append(batches[batchID], row)
	}

	for _, batchID := range batchOrder {
		batchRows := batches[batchID]

		order, err := s.repos.Order.FindByOrderNumber(ctx, batchID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			order = &entity.Order{
				OrderNumber: batchID,
				Description: fmt.Sprintf("CSV Import — %s", batchID),
				Status:      entity.OrderStatusActive,
			}
			err = s.repos.Order.Create(ctx, order)
		}
		if err != nil {
			// 订单级失败拖垮整批行
			result.Skipped += len(batchRows)
			continue
		}

		for _, row := range batchRows {
			name := row["material_name"]
			plannedQty, qtyErr := strconv.ParseFloat(row["planned_qty"], 64)
			unitCost, costErr := strconv.ParseFloat(row["unit_cost"], 64)
			if name == "" || qtyErr != nil || costErr != nil {
				result.Skipped++
				continue
			}
			item := &entity.BOMItem{
				OrderID:     order.ID,
				ItemName:    name,
				PlannedQty:  plannedQty,
				PlannedRate: unitCost,
				Unit:        "units",
			}
			if err := s.repos.BOMItem.Create(ctx, item); err != nil {
				result.Skipped++
				continue
			}
			result.Inserted++
		}
	}
	return result, nil
}

// ingestReports 日报导入
// 预载全部BOM行项做不区分大小写的名称匹配；匹配不到的行跳过，不做模糊匹配
func (s *IngestService) ingestReports(ctx context.Context, rows []map[string]string) (*IngestResult, error) {
	result := &IngestResult{}

	allItems, err := s.repos.BOMItem.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载BOM行项失败: %w", err)
	}
	lookup := make(map[string]string, len(allItems))
	for _, item := range allItems {
		lookup[strings.ToLower(item.ItemName)] = item.ID
	}

	for _, row := range rows {
		name := row["material_name"]
		actualQty, qtyErr := strconv.ParseFloat(row["actual_qty"], 64)
		actualCost, costErr := strconv.ParseFloat(row["actual_cost"], 64)
		if name == "" || qtyErr != nil || costErr != nil {
			result.Skipped++
			continue
		}

		bomItemID, ok := lookup[strings.ToLower(name)]
		if !ok {
			result.Skipped++
			continue
		}

		// 单价 = 总成本/数量，保留两位小数
		actualRate := 0.0
		if actualQty > 0 {
			actualRate = math.Round(actualCost/actualQty*100) / 100
		}

		dateStr := row["date"]
		notes := "CSV Import — no date"
		if dateStr != "" {
			notes = fmt.Sprintf("CSV Import — %s", dateStr)
		}

		ac := &entity.ActualConsumption{
			BOMItemID:  bomItemID,
			ActualQty:  actualQty,
			ActualRate: actualRate,
			Reason:     entity.ReasonNormal,
			Notes:      notes,
			ConsumedAt: parseReportDate(dateStr),
		}
		if err := s.repos.Consumption.Create(ctx, ac); err != nil {
			result.Skipped++
			continue
		}
		result.Inserted++
	}
	return result, nil
}

// parseReportDate 解析日报日期，解析不了就用当前时间
func parseReportDate(s string) time.Time {
	if s == "" {
		return time.Now()
	}
	layouts := []string{
		"2006-01-02",
		"2006/01/02",
		"02-01-2006",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}
