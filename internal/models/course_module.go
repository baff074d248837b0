package models

// CourseModule represents an ordered group of lessons within a course
type CourseModule struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

// CourseLesson represents a single video lesson within a module.
// VideoID references the external video hosting; no media is stored.
type CourseLesson struct {
	ID          string `json:"id"`
	ModuleID    string `json:"moduleId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoID     string `json:"videoId"`
	DurationMs  int64  `json:"durationInMs"`
	Position    int    `json:"position"`
}

// CourseModuleResponse represents a module with its ordered lessons
type CourseModuleResponse struct {
	CourseModule
	Lessons []CourseLesson `json:"lessons"`
}

// CourseLessonPayload represents a lesson within a module create/update
// request. An empty ID means the lesson is new.
type CourseLessonPayload struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoID     string `json:"videoId"`
	DurationMs  int64  `json:"durationInMs"`
	Position    int    `json:"position"`
}

// CourseModulePayload represents a module with nested lessons in
// authoring requests. An empty ID means the module is new.
type CourseModulePayload struct {
	ID          string                `json:"id,omitempty"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Position    int                   `json:"position"`
	Lessons     []CourseLessonPayload `json:"lessons"`
}
