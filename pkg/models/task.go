package models

type TaskStatus string

const (
	TaskStatusIncomplete TaskStatus = "incomplete"
	TaskStatusComplete   TaskStatus = "complete"
)

func (s TaskStatus) Valid() bool {
	return s == TaskStatusIncomplete || s == TaskStatusComplete
}

const (
	MinPriority = 1
	MaxPriority = 5
)

type Task struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Category    string     `json:"category" db:"category"`
	DueDate     string     `json:"due_date" db:"due_date"`
	Priority    int        `json:"priority" db:"priority"`
	Status      TaskStatus `json:"status" db:"status"`
}

// TaskPatch describes a partial update. A nil field keeps the stored value;
// a non-nil field is written as-is, including "" and 0.
type TaskPatch struct {
	Title       *string
	Description *string
	Category    *string
	DueDate     *string
	Priority    *int
	Status      *TaskStatus
}

// Apply returns a copy of t with every non-nil patch field written over it.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return t
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.DueDate == nil && p.Priority == nil && p.Status == nil
}
