package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/internal/service"
	"github.com/noah-isme/school-records-api/pkg/response"
)

type departmentService interface {
	List(ctx context.Context) ([]models.Department, error)
	TotalSalary(ctx context.Context, id int64) (*service.DepartmentTotalSalary, error)
}

type classService interface {
	List(ctx context.Context) ([]models.Class, error)
	Students(ctx context.Context, classID int64) ([]models.StudentDetail, error)
}

// OrganisationHandler exposes departments and classes.
type OrganisationHandler struct {
	departments departmentService
	classes     classService
}

// NewOrganisationHandler constructs OrganisationHandler.
func NewOrganisationHandler(departments departmentService, classes classService) *OrganisationHandler {
	return &OrganisationHandler{departments: departments, classes: classes}
}

// Departments godoc
// @Summary List departments
// @Tags Departments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *OrganisationHandler) Departments(c *gin.Context) {
	departments, err := h.departments.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, departments)
}

// DepartmentTotalSalary godoc
// @Summary Total current salary of active employees in a department
// @Tags Departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} response.Envelope
// @Router /departments/{id}/total-salary [get]
func (h *OrganisationHandler) DepartmentTotalSalary(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	total, err := h.departments.TotalSalary(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, total, nil)
}

// Classes godoc
// @Summary List active classes
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *OrganisationHandler) Classes(c *gin.Context) {
	classes, err := h.classes.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, classes)
}

// ClassStudents godoc
// @Summary List active students of a class
// @Tags Classes
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students [get]
func (h *OrganisationHandler) ClassStudents(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.classes.Students(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, students)
}
