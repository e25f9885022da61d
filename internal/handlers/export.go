package handlers

import (
	"fmt"
	"net/http"
	"time"

	"solardesk/internal/config"
	"solardesk/internal/database"
	"solardesk/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"ID", "Title", "Client", "Crew", "Status",
	"Scheduled Start", "Scheduled End", "Contract Amount", "Created",
}

// ExportProjects streams the firm's project list as an xlsx workbook.
func ExportProjects(c *gin.Context) {
	firmID, ok := firmIDFromQuery(c)
	if !ok {
		return
	}

	query := database.DB.Preload("Client").Preload("Crew").
		Where("firm_id = ?", firmID)
	if status := c.Query("status"); status != "" {
		if !models.IsValidProjectStatus(models.ProjectStatus(status)) {
			respondError(c, http.StatusBadRequest, "unknown status")
			return
		}
		query = query.Where("status = ?", status)
	}

	var projects []models.Project
	if err := query.Order("created_at desc").Find(&projects).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load projects")
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Projects"
	f.SetSheetName("Sheet1", sheet)

	for i, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		f.SetRowStyle(sheet, 1, 1, headerStyle)
	}

	for i, p := range projects {
		row := i + 2
		crewName := ""
		if p.Crew != nil {
			crewName = p.Crew.Name
		}
		values := []interface{}{
			p.ID,
			p.Title,
			p.Client.Name,
			crewName,
			string(p.Status),
			formatDate(p.ScheduledStart),
			formatDate(p.ScheduledEnd),
			p.ContractAmount.StringFixed(2),
			p.CreatedAt.Format(dateLayout),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}
	f.SetColWidth(sheet, "B", "C", 28)
	f.SetColWidth(sheet, "F", "G", 14)

	name := fmt.Sprintf("projects-%d-%s.xlsx", firmID, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		config.LogError(config.GetLogger(), "export.go", "ExportProjects", "write workbook", firmID, err)
	}
}
