package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"cafefinder/transfer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	maxImportSize = 5 << 20
	xlsxMIME      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type TransferController struct {
	Store    CafeRepository
	Importer *transfer.Importer
	Logger   *zap.Logger
}

func NewTransferController(store CafeRepository, importer *transfer.Importer, logger *zap.Logger) *TransferController {
	return &TransferController{Store: store, Importer: importer, Logger: logger}
}

// ImportCafes adds every valid row of an uploaded workbook.
func (ctl *TransferController) ImportCafes(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Excel file is required"})
		return
	}
	if fileHeader.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "File size exceeds 5MB limit"})
		return
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid file type, only XLSX allowed"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Unable to open Excel file"})
		return
	}
	defer file.Close()

	report, err := ctl.Importer.Import(c.Request.Context(), file)
	if err != nil {
		if errors.Is(err, transfer.ErrInvalidWorkbook) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		ctl.Logger.Error("import aborted", zap.Error(err), zap.Int("created", len(report.Created)))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Import stopped before the end of the file",
			"created": len(report.Created),
		})
		return
	}

	ctl.Logger.Info("cafes imported",
		zap.Int("created", len(report.Created)),
		zap.Int("skipped", len(report.Skipped)))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Bulk cafe upload finished",
		"count":   len(report.Created),
		"data":    report,
	})
}

func (ctl *TransferController) ExportCafes(c *gin.Context) {
	cafes, err := ctl.Store.ListAll(c.Request.Context())
	if err != nil {
		ctl.Logger.Error("export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch cafes"})
		return
	}

	var buf bytes.Buffer
	if err := transfer.WriteEntries(&buf, cafes); err != nil {
		ctl.Logger.Error("export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to build Excel file"})
		return
	}

	name := fmt.Sprintf("cafes-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}
