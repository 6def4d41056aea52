package events

var NotificationReceivedTopic = "NotificationReceivedEvent"

// NotificationReceived carries the decoded "message" field of one websocket frame.
type NotificationReceived struct {
	Topic   string
	Message string
}
