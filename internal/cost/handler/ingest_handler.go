package handler

import (
	"path/filepath"
	"strings"

	"github.com/bitfantasy/nimo-cost/internal/cost/service"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// IngestHandler 文件导入接口
type IngestHandler struct {
	svc *service.IngestService
}

func NewIngestHandler(svc *service.IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

// Upload 上传CSV/Excel并导入
// POST /api/v1/cost/uploads?type=inventory|production|reports
func (h *IngestHandler) Upload(c *gin.Context) {
	typ, err := service.ParseUploadType(c.Query("type"))
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "缺少上传文件: "+err.Error())
		return
	}
	defer file.Close()

	var result *service.IngestResult
	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".xlsx", ".xls":
		f, err := excelize.OpenReader(file)
		if err != nil {
			BadRequest(c, "无法解析Excel文件: "+err.Error())
			return
		}
		defer f.Close()
		result, err = h.svc.IngestXLSX(c.Request.Context(), typ, f)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
	default:
		result, err = h.svc.IngestCSV(c.Request.Context(), typ, file)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
	}

	Success(c, result)
}
