package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/internal/service"
	appErrors "github.com/noah-isme/school-records-api/pkg/errors"
)

type gradeServiceMock struct {
	assigned *models.CourseEnrollment
	err      error
	lastReq  service.AssignGradeRequest
	filter   models.EnrollmentFilter
}

func (m *gradeServiceMock) ListGradeValues(ctx context.Context) ([]models.GradeValue, error) {
	return []models.GradeValue{{Grade: "A", Rank: 5}, {Grade: "F", Rank: 0}}, nil
}

func (m *gradeServiceMock) AssignGrade(ctx context.Context, req service.AssignGradeRequest) (*models.CourseEnrollment, error) {
	m.lastReq = req
	return m.assigned, m.err
}

func (m *gradeServiceMock) Enrollments(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	m.filter = filter
	return nil, nil
}

type studentServiceMock struct {
	deactivated []string
	err         error
}

func (m *studentServiceMock) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error) {
	return []models.StudentDetail{{Student: models.Student{PIN: "20050101-1234", IsActive: true}}}, nil
}

func (m *studentServiceMock) ListAll(ctx context.Context) ([]models.StudentDetail, error) {
	return nil, nil
}

func (m *studentServiceMock) Get(ctx context.Context, pin string) (*models.StudentDetail, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

func (m *studentServiceMock) Create(ctx context.Context, req service.CreateStudentRequest) (*models.Student, error) {
	return nil, appErrors.Clone(appErrors.ErrConflict, "pin already used")
}

func (m *studentServiceMock) Update(ctx context.Context, pin string, req service.UpdateStudentRequest) (*models.Student, error) {
	return &models.Student{PIN: pin, FirstName: req.FirstName}, nil
}

func (m *studentServiceMock) Deactivate(ctx context.Context, pin string) error {
	m.deactivated = append(m.deactivated, pin)
	return m.err
}

func (m *studentServiceMock) PinAvailable(ctx context.Context, pin string) (bool, error) {
	return pin == "20060202-4321", nil
}

type exportServiceMock struct{}

func (exportServiceMock) ExportStudentGrades(ctx context.Context, pin, format string) (*service.ExportFile, error) {
	if format != "csv" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv, pdf or xlsx")
	}
	return &service.ExportFile{Filename: "grades-" + pin + ".csv", ContentType: "text/csv", Payload: []byte("Course\n")}, nil
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Meta       map[string]interface{} `json:"meta"`
	Pagination *models.Pagination     `json:"pagination"`
}

func newTestRouter(grades *gradeServiceMock, students *studentServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r.Group("/api/v1"), Handlers{
		Students:     NewStudentHandler(students, nil, exportServiceMock{}),
		Employees:    NewEmployeeHandler(nil),
		Organisation: NewOrganisationHandler(nil, nil),
		Courses:      NewCourseHandler(nil),
		Grades:       NewGradeHandler(grades),
		Reports:      NewReportHandler(nil),
	})
	return r
}

func perform(r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestGradeHandlerAssign(t *testing.T) {
	grade := "B"
	now := time.Now().UTC()
	grades := &gradeServiceMock{assigned: &models.CourseEnrollment{ID: 1, StudentPIN: "20050101-1234", CourseID: 5, Grade: &grade, GradeAssignedAt: &now, IsActive: true}}
	r := newTestRouter(grades, &studentServiceMock{})

	w, env := perform(r, http.MethodPost, "/api/v1/grades", map[string]interface{}{
		"student_pin": "20050101-1234", "course_id": 5, "teacher_pin": "19800101-0001", "grade": "B",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(models.EnrollmentStateGraded), env.Meta["state"])
	assert.Equal(t, int64(5), grades.lastReq.CourseID)
}

func TestGradeHandlerAssignInvalidGrade(t *testing.T) {
	grades := &gradeServiceMock{err: appErrors.Clone(appErrors.ErrInvalidGrade, "grade \"Z\" is not a recognised grade value")}
	r := newTestRouter(grades, &studentServiceMock{})

	w, env := perform(r, http.MethodPost, "/api/v1/grades", map[string]interface{}{
		"student_pin": "20050101-1234", "course_id": 5, "teacher_pin": "19800101-0001", "grade": "Z",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_GRADE", env.Error.Code)
}

func TestGradeHandlerAssignRejectsMalformedBody(t *testing.T) {
	r := newTestRouter(&gradeServiceMock{}, &studentServiceMock{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/grades", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGradeHandlerEnrollmentsParsesFilter(t *testing.T) {
	grades := &gradeServiceMock{}
	r := newTestRouter(grades, &studentServiceMock{})

	w, env := perform(r, http.MethodGet, "/api/v1/enrollments?courseId=5&studentPin=20050101-1234", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, grades.filter.CourseID)
	assert.Equal(t, int64(5), *grades.filter.CourseID)
	assert.Equal(t, "20050101-1234", grades.filter.StudentPIN)
	assert.Equal(t, 0, env.Pagination.TotalCount)

	w, _ = perform(r, http.MethodGet, "/api/v1/enrollments?courseId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandlerRoutes(t *testing.T) {
	students := &studentServiceMock{}
	r := newTestRouter(&gradeServiceMock{}, students)

	w, env := perform(r, http.MethodGet, "/api/v1/students", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.Pagination.TotalCount)

	w, env = perform(r, http.MethodGet, "/api/v1/students/19990101-0000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	w, _ = perform(r, http.MethodPost, "/api/v1/students", map[string]string{"pin": "20050101-1234"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = perform(r, http.MethodDelete, "/api/v1/students/20050101-1234", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"20050101-1234"}, students.deactivated)

	w, env = perform(r, http.MethodGet, "/api/v1/students/pin-availability?pin=20060202-4321", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"pin":"20060202-4321","available":true}`, string(env.Data))
}

func TestStudentHandlerExportGrades(t *testing.T) {
	r := newTestRouter(&gradeServiceMock{}, &studentServiceMock{})

	w, _ := perform(r, http.MethodGet, "/api/v1/students/20050101-1234/grades/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="grades-20050101-1234.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Course\n", w.Body.String())

	w, _ = perform(r, http.MethodGet, "/api/v1/students/20050101-1234/grades/export?format=docx", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourseHandlerRejectsNonNumericID(t *testing.T) {
	r := newTestRouter(&gradeServiceMock{}, &studentServiceMock{})

	w, env := perform(r, http.MethodGet, "/api/v1/courses/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMetricsHandler(service.NewMetricsService(), pingerFunc(func(ctx context.Context) error { return context.DeadlineExceeded }))
	r.GET("/ready", h.Ready)
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }
