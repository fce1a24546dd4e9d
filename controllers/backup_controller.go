package controllers

import (
	"encoding/json"
	"net/http"

	"meeting-backend/middleware"
	"meeting-backend/services"

	"github.com/gin-gonic/gin"
)

type BackupController struct {
	Service *services.BackupService
}

func NewBackupController(service *services.BackupService) *BackupController {
	return &BackupController{Service: service}
}

// GET /api/admin/backup
func (bc *BackupController) GetStatus(c *gin.Context) {
	status, err := bc.Service.Status()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load backup status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

type createBackupPayload struct {
	Type string `json:"type"`
}

// POST /api/admin/backup
func (bc *BackupController) CreateBackup(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var payload createBackupPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	doc, fileName, fileSize, err := bc.Service.Export(payload.Type, user)
	if err != nil {
		if err == services.ErrInvalidBackupType {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be database, system or full"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"backup":   doc,
		"fileName": fileName,
		"fileSize": fileSize,
	})
}

type restorePayload struct {
	Backup json.RawMessage `json:"backup"`
	Tables []string        `json:"tables"`
}

// POST /api/admin/backup/restore
func (bc *BackupController) RestoreBackup(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var payload restorePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if len(payload.Backup) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "backup document required"})
		return
	}

	result, err := bc.Service.Restore(payload.Backup, payload.Tables, user)
	if err != nil {
		switch err {
		case services.ErrMissingMetadata, services.ErrMissingDatabase, services.ErrNoTablesSelected:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// The transaction rolled back; nothing was changed.
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "การกู้คืนล้มเหลว ระบบได้ยกเลิกการเปลี่ยนแปลงทั้งหมดแล้ว ข้อมูลเดิมไม่ถูกเปลี่ยนแปลง (" + err.Error() + ")",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "results": result})
}
