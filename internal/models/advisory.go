package models

// Advisory tells a trainer that a student kept training on the same plan
// long enough that the plan should be revisited.
type Advisory struct {
	StudentID         string `json:"student_id"`
	StudentName       string `json:"student_name"`
	CompletedWorkouts int    `json:"completed_workouts"`
	Message           string `json:"message"`
}
