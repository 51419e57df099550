package handler

import "github.com/gin-gonic/gin"

// Handlers bundles every endpoint group mounted under the API prefix.
type Handlers struct {
	Students     *StudentHandler
	Employees    *EmployeeHandler
	Organisation *OrganisationHandler
	Courses      *CourseHandler
	Grades       *GradeHandler
	Reports      *ReportHandler
}

// Register mounts the API routes on group.
func Register(group *gin.RouterGroup, h Handlers) {
	students := group.Group("/students")
	students.GET("", h.Students.List)
	students.GET("/all", h.Students.ListAll)
	students.GET("/pin-availability", h.Students.PinAvailability)
	students.GET("/:pin", h.Students.Get)
	students.POST("", h.Students.Create)
	students.PUT("/:pin", h.Students.Update)
	students.DELETE("/:pin", h.Students.Delete)
	students.GET("/:pin/grades", h.Students.Grades)
	students.GET("/:pin/grades/export", h.Students.ExportGrades)

	employees := group.Group("/employees")
	employees.GET("", h.Employees.List)
	employees.GET("/:pin", h.Employees.Get)
	employees.POST("", h.Employees.Create)
	employees.PUT("/:pin", h.Employees.Update)
	employees.DELETE("/:pin", h.Employees.Delete)

	group.GET("/departments", h.Organisation.Departments)
	group.GET("/departments/:id/total-salary", h.Organisation.DepartmentTotalSalary)
	group.GET("/classes", h.Organisation.Classes)
	group.GET("/classes/:id/students", h.Organisation.ClassStudents)

	courses := group.Group("/courses")
	courses.GET("", h.Courses.List)
	courses.GET("/code-availability", h.Courses.CodeAvailability)
	courses.GET("/:id", h.Courses.Get)
	courses.POST("", h.Courses.Create)
	courses.PUT("/:id", h.Courses.Update)
	courses.DELETE("/:id", h.Courses.Delete)

	group.GET("/grade-values", h.Grades.GradeValues)
	group.POST("/grades", h.Grades.Assign)
	group.GET("/enrollments", h.Grades.Enrollments)

	reports := group.Group("/reports")
	reports.GET("/department-salaries", h.Reports.DepartmentSalaries)
	reports.GET("/teachers-by-department", h.Reports.TeachersByDepartment)
	reports.GET("/employee-overview", h.Reports.EmployeeOverview)
}
