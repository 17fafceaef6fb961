package link

import "fmt"

// NotificationTopic carries completion notifications to the central system.
const NotificationTopic = "consultease/notifications"

// StatusTopic is the retained availability publication for a faculty member.
func StatusTopic(facultyID string) string {
	return fmt.Sprintf("faculty/%s/status", facultyID)
}

// RequestTopic delivers consultation requests to a faculty member's desk unit.
func RequestTopic(facultyID string) string {
	return fmt.Sprintf("faculty/%s/requests", facultyID)
}

// SystemTopic is the unit's own online/offline announcement (and last will).
func SystemTopic(clientID string) string {
	return fmt.Sprintf("consultease/system/%s/status", clientID)
}
