package handlers

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"path/filepath"
	"strings"

	"solardesk/internal/config"
	"solardesk/internal/database"
	"solardesk/internal/middleware"
	"solardesk/internal/models"
	"solardesk/internal/storage"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxUploadBytes = 5 << 20

var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// FileHandlers owns the attachment endpoints. The provider is injected so
// tests can run against a temp-dir local store.
type FileHandlers struct {
	Store storage.Provider
}

func NewFileHandlers(store storage.Provider) *FileHandlers {
	return &FileHandlers{Store: store}
}

func (h *FileHandlers) Upload(c *gin.Context) {
	project, ok := loadProjectChecked(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file field is required")
		return
	}
	if header.Size > maxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "file exceeds 5 MB limit")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !allowedMimeTypes[mimeType] {
		respondError(c, http.StatusBadRequest, "unsupported file type")
		return
	}

	src, err := header.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read upload")
		return
	}
	defer src.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil {
		respondError(c, http.StatusBadRequest, "failed to read upload")
		return
	}

	key := fmt.Sprintf("projects/%d/%s%s", project.ID, uuid.NewString(), safeExt(header.Filename))
	ctx := c.Request.Context()
	if err := h.Store.Save(ctx, key, mimeType, bytes.NewReader(buf.Bytes())); err != nil {
		config.LogError(config.GetLogger(), "file.go", "Upload", "store object", key, err)
		respondError(c, http.StatusInternalServerError, "failed to store file")
		return
	}

	thumbKey := ""
	if mimeType == "image/jpeg" || mimeType == "image/png" {
		thumbKey = key + ".thumb.jpg"
		if err := h.saveThumbnail(c, thumbKey, buf.Bytes()); err != nil {
			// A broken thumbnail is not worth failing the upload over.
			config.LogError(config.GetLogger(), "file.go", "Upload", "thumbnail", key, err)
			thumbKey = ""
		}
	}

	user := middleware.CurrentUser(c)
	file := models.ProjectFile{
		ProjectID:    project.ID,
		UploadedByID: user.ID,
		FileName:     filepath.Base(header.Filename),
		ObjectKey:    key,
		ThumbnailKey: thumbKey,
		MimeType:     mimeType,
		SizeBytes:    header.Size,
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&file).Error; err != nil {
			return err
		}
		return database.AppendProjectHistory(tx, &models.ProjectHistoryEntry{
			ProjectID:   project.ID,
			UserID:      user.ID,
			UserName:    user.Name,
			ChangeType:  models.ChangeFile,
			NewValue:    file.FileName,
			Description: fmt.Sprintf("uploaded file %q", file.FileName),
		})
	})
	if err != nil {
		// Roll the blob back too so the store does not accumulate orphans.
		_ = h.Store.Delete(ctx, key)
		if thumbKey != "" {
			_ = h.Store.Delete(ctx, thumbKey)
		}
		respondError(c, http.StatusInternalServerError, "failed to record file")
		return
	}

	c.JSON(http.StatusCreated, file)
}

func (h *FileHandlers) saveThumbnail(c *gin.Context, key string, data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	thumb := imaging.Fit(img, 320, 320, imaging.Lanczos)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return err
	}
	return h.Store.Save(c.Request.Context(), key, "image/jpeg", &out)
}

func (h *FileHandlers) List(c *gin.Context) {
	project, ok := loadProjectChecked(c, "id")
	if !ok {
		return
	}

	var files []models.ProjectFile
	err := database.DB.Where("project_id = ?", project.ID).
		Order("created_at desc").Find(&files).Error
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load files")
		return
	}
	c.JSON(http.StatusOK, files)
}

func (h *FileHandlers) loadFileChecked(c *gin.Context) (*models.ProjectFile, bool) {
	id, ok := idParam(c, "fileId")
	if !ok {
		return nil, false
	}

	var file models.ProjectFile
	if err := database.DB.Preload("Project").First(&file, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "file not found")
		return nil, false
	}
	user := middleware.CurrentUser(c)
	if !user.CanAccessFirm(file.Project.FirmID) {
		respondError(c, http.StatusForbidden, "no access to this firm")
		return nil, false
	}
	return &file, true
}

func (h *FileHandlers) Download(c *gin.Context) {
	file, ok := h.loadFileChecked(c)
	if !ok {
		return
	}

	key := file.ObjectKey
	contentType := file.MimeType
	if c.Query("thumbnail") == "true" && file.ThumbnailKey != "" {
		key = file.ThumbnailKey
		contentType = "image/jpeg"
	}

	rc, err := h.Store.Open(c.Request.Context(), key)
	if err != nil {
		config.LogError(config.GetLogger(), "file.go", "Download", "open object", key, err)
		respondError(c, http.StatusInternalServerError, "failed to open file")
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.DataFromReader(http.StatusOK, file.SizeBytes, contentType, rc, nil)
}

func (h *FileHandlers) Delete(c *gin.Context) {
	file, ok := h.loadFileChecked(c)
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(file).Error; err != nil {
			return err
		}
		return database.AppendProjectHistory(tx, &models.ProjectHistoryEntry{
			ProjectID:   file.ProjectID,
			UserID:      user.ID,
			UserName:    user.Name,
			ChangeType:  models.ChangeFile,
			OldValue:    file.FileName,
			Description: fmt.Sprintf("deleted file %q", file.FileName),
		})
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to delete file")
		return
	}

	ctx := c.Request.Context()
	if err := h.Store.Delete(ctx, file.ObjectKey); err != nil {
		config.LogError(config.GetLogger(), "file.go", "Delete", "delete object", file.ObjectKey, err)
	}
	if file.ThumbnailKey != "" {
		if err := h.Store.Delete(ctx, file.ThumbnailKey); err != nil {
			config.LogError(config.GetLogger(), "file.go", "Delete", "delete thumbnail", file.ThumbnailKey, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".pdf":
		return ext
	default:
		return ""
	}
}
