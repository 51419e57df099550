package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/pkg/response"
)

type reportService interface {
	DepartmentSalaryStats(ctx context.Context) ([]models.DepartmentSalaryStats, error)
	TeacherCountByDepartment(ctx context.Context) ([]models.DepartmentTeacherCount, error)
	EmployeeOverview(ctx context.Context) ([]models.EmployeeOverview, error)
}

// ReportHandler exposes the read-only reporting projections.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// DepartmentSalaries godoc
// @Summary Average and total salary per department
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/department-salaries [get]
func (h *ReportHandler) DepartmentSalaries(c *gin.Context) {
	stats, err := h.reports.DepartmentSalaryStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, stats)
}

// TeachersByDepartment godoc
// @Summary Active teachers per department
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/teachers-by-department [get]
func (h *ReportHandler) TeachersByDepartment(c *gin.Context) {
	counts, err := h.reports.TeacherCountByDepartment(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, counts)
}

// EmployeeOverview godoc
// @Summary Tenure overview of active employees
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/employee-overview [get]
func (h *ReportHandler) EmployeeOverview(c *gin.Context) {
	overview, err := h.reports.EmployeeOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, overview)
}
