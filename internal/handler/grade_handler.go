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

type gradeService interface {
	ListGradeValues(ctx context.Context) ([]models.GradeValue, error)
	AssignGrade(ctx context.Context, req service.AssignGradeRequest) (*models.CourseEnrollment, error)
	Enrollments(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
}

// GradeHandler exposes the grade scale, grade assignment and enrollment history.
type GradeHandler struct {
	grades gradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades gradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// GradeValues godoc
// @Summary List the grade scale
// @Tags Grades
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grade-values [get]
func (h *GradeHandler) GradeValues(c *gin.Context) {
	values, err := h.grades.ListGradeValues(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, values)
}

// Assign godoc
// @Summary Assign a grade, enrolling the student when needed
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.AssignGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Assign(c *gin.Context) {
	var req service.AssignGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.grades.AssignGrade(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil, map[string]interface{}{"state": enrollment.State()})
}

// Enrollments godoc
// @Summary Enrollment history for a student or a course
// @Tags Grades
// @Produce json
// @Param studentPin query string false "Student PIN"
// @Param courseId query int false "Course ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *GradeHandler) Enrollments(c *gin.Context) {
	courseID, err := optionalQueryID(c, "courseId")
	if err != nil {
		response.Error(c, err)
		return
	}
	enrollments, err := h.grades.Enrollments(c.Request.Context(), models.EnrollmentFilter{
		StudentPIN: strings.TrimSpace(c.Query("studentPin")),
		CourseID:   courseID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, enrollments)
}
