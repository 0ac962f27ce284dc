package pages

import (
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/videocollect/internal/model"
)

// orNA substitutes N/A for a missing creator name
func orNA(name string) string {
	if name == "" {
		return "N/A"
	}
	return name
}

const timestampLayout = "2006-01-02 15:04:05"

func formatDate(p model.Participant) string {
	return p.DateOfBirth.Format(model.DateLayout)
}

func formatID(id model.ParticipantID) string {
	return strconv.FormatInt(int64(id), 10)
}

func videoPath(filename string) string {
	return "/videos/" + filename
}

func participantURL(id model.ParticipantID) templ.SafeURL {
	return templ.SafeURL(fmt.Sprintf("/participant/%d", id))
}

func recordURL(id model.ParticipantID) templ.SafeURL {
	return templ.SafeURL("/record?participant_id=" + formatID(id))
}
