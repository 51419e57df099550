package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/internal/service"
	"github.com/noah-isme/school-records-api/pkg/response"
)

type employeeService interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.EmployeeDetail, error)
	Get(ctx context.Context, pin string) (*models.EmployeeDetail, error)
	Create(ctx context.Context, req service.CreateEmployeeRequest) (*models.Employee, error)
	Update(ctx context.Context, pin string, req service.UpdateEmployeeRequest) (*models.Employee, error)
	Deactivate(ctx context.Context, pin string) error
}

// EmployeeHandler exposes staff endpoints.
type EmployeeHandler struct {
	employees employeeService
}

// NewEmployeeHandler constructs EmployeeHandler.
func NewEmployeeHandler(employees employeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// List godoc
// @Summary List active employees
// @Tags Employees
// @Produce json
// @Param departmentId query int false "Filter by department"
// @Param position query string false "Principal, Administrator or Teacher"
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	departmentID, err := optionalQueryID(c, "departmentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	employees, err := h.employees.List(c.Request.Context(), models.EmployeeFilter{
		DepartmentID: departmentID,
		Position:     strings.TrimSpace(c.Query("position")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, employees)
}

// Get godoc
// @Summary Get an active employee
// @Tags Employees
// @Produce json
// @Param pin path string true "Employee PIN"
// @Success 200 {object} response.Envelope
// @Router /employees/{pin} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.employees.Get(c.Request.Context(), c.Param("pin"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Create godoc
// @Summary Hire an employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body service.CreateEmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	employee, err := h.employees.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

// Update godoc
// @Summary Update an employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param pin path string true "Employee PIN"
// @Param payload body service.UpdateEmployeeRequest true "Employee payload"
// @Success 200 {object} response.Envelope
// @Router /employees/{pin} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	var req service.UpdateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	employee, err := h.employees.Update(c.Request.Context(), c.Param("pin"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Delete godoc
// @Summary Deactivate an employee
// @Tags Employees
// @Param pin path string true "Employee PIN"
// @Success 204
// @Router /employees/{pin} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	if err := h.employees.Deactivate(c.Request.Context(), c.Param("pin")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
