package events

var SessionEndedTopic = "SessionEndedEvent"

type SessionEnded struct {
	Reason string
}
