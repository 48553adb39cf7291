package dto

// CreateDepartmentRequest registers a department.
type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CreateCourseRequest registers a course under a department.
type CreateCourseRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	DepartmentID string `json:"department_id" validate:"required,uuid"`
}

// CreateSemesterRequest registers a student cohort of a course.
type CreateSemesterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	CourseID string `json:"course_id" validate:"required,uuid"`
}

// CreateFacultyRequest registers a faculty member. MaxHoursPerWeek defaults to 40.
type CreateFacultyRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	DepartmentID    string `json:"department_id" validate:"required,uuid"`
	MaxHoursPerWeek *int   `json:"max_hours_per_week" validate:"omitempty,min=1,max=168"`
}

// CreateClassroomRequest registers a room.
type CreateClassroomRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Capacity int    `json:"capacity" validate:"min=0"`
	RoomType string `json:"room_type" validate:"required,max=64"`
}

// CreateSubjectRequest registers weekly teaching demand.
type CreateSubjectRequest struct {
	Name            string  `json:"name" validate:"required,max=255"`
	Code            string  `json:"code" validate:"required,max=32"`
	CreditHours     int     `json:"credit_hours" validate:"min=0"`
	WeeklyFrequency int     `json:"weekly_frequency" validate:"min=0"`
	SemesterID      string  `json:"semester_id" validate:"required,uuid"`
	FacultyID       *string `json:"faculty_id" validate:"omitempty,uuid"`
}
