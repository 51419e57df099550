package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/internal/service"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
	"github.com/noah-isme/school-records-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error)
	ListAll(ctx context.Context) ([]models.StudentDetail, error)
	Get(ctx context.Context, pin string) (*models.StudentDetail, error)
	Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error)
	Update(ctx context.Context, pin string, req service.UpdateStudentRequest) (*models.Student, error)
	Deactivate(ctx context.Context, pin string) error
	PinAvailable(ctx context.Context, pin string) (bool, error)
}

type studentGradesService interface {
	StudentGrades(ctx context.Context, pin string) ([]models.StudentCourseGrade, error)
}

type studentExportService interface {
	ExportStudentGrades(ctx context.Context, pin, format string) (*service.ExportFile, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
	grades   studentGradesService
	exports  studentExportService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, grades studentGradesService, exports studentExportService) *StudentHandler {
	return &StudentHandler{students: students, grades: grades, exports: exports}
}

// List godoc
// @Summary List active students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name or PIN"
// @Param classId query int false "Filter by class"
// @Param gender query string false "Filter by gender"
// @Param enrollmentYear query int false "Filter by enrollment year"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var filter models.StudentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Gender = strings.TrimSpace(c.Query("gender"))
	classID, err := optionalQueryID(c, "classId")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.ClassID = classID
	if year := c.Query("enrollmentYear"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "enrollmentYear must be a year"))
			return
		}
		filter.EnrollmentYear = y
	}

	students, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, students)
}

// ListAll godoc
// @Summary List all students including deactivated ones
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students/all [get]
func (h *StudentHandler) ListAll(c *gin.Context) {
	students, err := h.students.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, students)
}

// PinAvailability godoc
// @Summary Check whether a PIN can be used for a new student
// @Tags Students
// @Produce json
// @Param pin query string true "Personal identity number YYYYMMDD-XXXX"
// @Success 200 {object} response.Envelope
// @Router /students/pin-availability [get]
func (h *StudentHandler) PinAvailability(c *gin.Context) {
	pin := c.Query("pin")
	available, err := h.students.PinAvailable(c.Request.Context(), pin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"pin": pin, "available": available}, nil)
}

// Get godoc
// @Summary Get an active student
// @Tags Students
// @Produce json
// @Param pin path string true "Student PIN"
// @Success 200 {object} response.Envelope
// @Router /students/{pin} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("pin"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Register a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update a student
// @Tags Students
// @Accept json
// @Produce json
// @Param pin path string true "Student PIN"
// @Param payload body service.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{pin} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("pin"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Deactivate a student
// @Tags Students
// @Param pin path string true "Student PIN"
// @Success 204
// @Router /students/{pin} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Deactivate(c.Request.Context(), c.Param("pin")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Grades godoc
// @Summary List a student's courses and grades
// @Tags Students
// @Produce json
// @Param pin path string true "Student PIN"
// @Success 200 {object} response.Envelope
// @Router /students/{pin}/grades [get]
func (h *StudentHandler) Grades(c *gin.Context) {
	grades, err := h.grades.StudentGrades(c.Request.Context(), c.Param("pin"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, grades)
}

// ExportGrades godoc
// @Summary Download a student's grades
// @Tags Students
// @Produce octet-stream
// @Param pin path string true "Student PIN"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} file
// @Router /students/{pin}/grades/export [get]
func (h *StudentHandler) ExportGrades(c *gin.Context) {
	file, err := h.exports.ExportStudentGrades(c.Request.Context(), c.Param("pin"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}
