// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// MessageIndexTask represents a dialog message to be indexed for search.
type MessageIndexTask struct {
	DialogID  uint   `json:"dialog_id"`
	MessageID uint   `json:"message_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Topic     string `json:"topic"`
}
