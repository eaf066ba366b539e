package models

import "time"

const NotificationTypeNewTask = "new_task"

type Notification struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	TaskID      *string   `json:"taskId,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Timestamp   time.Time `json:"timestamp"`
	Read        bool      `json:"read"`
}

// PrependNotification puts n at the head of list and keeps at most limit entries.
func PrependNotification(list []Notification, n Notification, limit int) []Notification {
	out := make([]Notification, 0, len(list)+1)
	out = append(out, n)
	out = append(out, list...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PrependActivity puts a at the head of list and keeps at most limit entries.
func PrependActivity(list []Activity, a Activity, limit int) []Activity {
	out := make([]Activity, 0, len(list)+1)
	out = append(out, a)
	out = append(out, list...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
