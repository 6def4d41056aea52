package notifications

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	jobIDDelimiter = "/job_id="
	timeDelimiter  = "/time:"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// Message is one decoded entry of the notification log.
type Message struct {
	ID        string
	Text      string
	JobID     string
	Timestamp time.Time
	Read      bool
	Raw       string
}

// HasJobLink reports whether the message can navigate to a job.
func (m Message) HasJobLink() bool {
	return m.JobID != ""
}

// ParseMessage decodes "<text>/job_id=<id>/time:<timestamp>". The last occurrence of each
// delimiter wins so texts containing slashes survive; missing parts are left empty.
func ParseMessage(index int, raw string) Message {

	message := Message{ID: strconv.Itoa(index), Raw: raw}
	rest := raw

	if i := strings.LastIndex(rest, timeDelimiter); i >= 0 {
		message.Timestamp = parseTimestamp(strings.TrimSpace(rest[i+len(timeDelimiter):]))
		rest = rest[:i]
	}

	if i := strings.LastIndex(rest, jobIDDelimiter); i >= 0 {
		message.JobID = strings.TrimSpace(rest[i+len(jobIDDelimiter):])
		rest = rest[:i]
	}

	message.Text = strings.TrimSpace(rest)
	if message.Text == "" {
		message.Text = strings.TrimSpace(raw)
	}
	return message
}

func parseTimestamp(value string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

var (
	responsesVocabulary = regexp.MustCompile(`(?i)\b(accept(ed|s)?|reject(ed|s)?|declin(e|ed|es)|approv(e|ed|es)|shortlist(ed)?|seen|viewed|interview(s|ed)?)\b`)
	matchesVocabulary   = regexp.MustCompile(`(?i)\b(match(es|ed|ing)?|recommend(s|ed|ation|ations)?)\b`)
)

// IsResponse reports whether the text is a recruiter response to an application.
func IsResponse(text string) bool {
	return responsesVocabulary.MatchString(text)
}

// IsMatch reports whether the text announces a job match.
func IsMatch(text string) bool {
	return matchesVocabulary.MatchString(text)
}
