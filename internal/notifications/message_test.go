package notifications

import (
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func Test_ParseMessage_WhenWellFormed_ShouldSplitAllParts(t *testing.T) {
	message := ParseMessage(3, "Acme accepted your application/job_id=17/time:2024-05-01T10:20:30Z")

	assert.Equal(t, "3", message.ID)
	assert.Equal(t, "Acme accepted your application", message.Text)
	assert.Equal(t, "17", message.JobID)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC), message.Timestamp)
	assert.True(t, message.HasJobLink())
	assert.False(t, message.Read)
}

func Test_ParseMessage_WhenTextContainsSlashes_ShouldUseLastDelimiters(t *testing.T) {
	message := ParseMessage(0, "New job match: C++ / Go developer/job_id=5/time:2024-05-01 10:20:30")

	assert.Equal(t, "New job match: C++ / Go developer", message.Text)
	assert.Equal(t, "5", message.JobID)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC), message.Timestamp)
}

func Test_ParseMessage_WhenMalformed_ShouldDegradeToRawText(t *testing.T) {
	cases := []struct {
		raw       string
		text      string
		jobID     string
		timestamp bool
	}{
		{raw: "Plain notification", text: "Plain notification"},
		{raw: "Seen/time:not-a-date", text: "Seen"},
		{raw: "Offer/job_id=", text: "Offer"},
		{raw: "/job_id=9", text: "/job_id=9", jobID: "9"},
		{raw: "Interview/time:2024-05-01T10:20:30.123456", text: "Interview", timestamp: true},
		{raw: "", text: ""},
	}

	for _, c := range cases {
		t.Run(c.raw, func(t *testing.T) {
			message := ParseMessage(0, c.raw)
			assert.Equal(t, c.text, message.Text)
			assert.Equal(t, c.jobID, message.JobID)
			assert.Equal(t, c.timestamp, !message.Timestamp.IsZero())
			assert.Equal(t, c.raw, message.Raw)
		})
	}
}

func Test_Vocabulary_ShouldCategorizeMessages(t *testing.T) {
	assert.True(t, IsResponse("X accepted your application"))
	assert.True(t, IsResponse("Z rejected your application"))
	assert.True(t, IsResponse("Recruiter has seen your application"))
	assert.False(t, IsResponse("New job match: Y"))

	assert.True(t, IsMatch("New job match: Y"))
	assert.True(t, IsMatch("3 jobs matching your skills"))
	assert.False(t, IsMatch("X accepted your application"))
}

func Test_ParseFilter(t *testing.T) {
	for _, value := range []string{"", "all", "responses", "matches"} {
		_, err := ParseFilter(value)
		assert.NoError(t, err, value)
	}
	_, err := ParseFilter("unread")
	assert.Error(t, err)
}
