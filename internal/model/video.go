package model

import (
	"fmt"
	"regexp"
	"time"
)

// VideoID uniquely identifies a saved video
type VideoID int64

// CaptureTimestampLayout is the second-resolution stamp embedded in file names
const CaptureTimestampLayout = "20060102150405"

// MaxCommentLen mirrors the schema limit on video comments
const MaxCommentLen = 500

// Video is one scored recording of a participant.
// Filename refers to a file in the video directory, not a URL.
type Video struct {
	ID            VideoID
	ParticipantID ParticipantID
	Filename      string
	Score         int
	Comment       string
	CreatedAt     time.Time // capture moment, not the save moment
	CreatedBy     UserID
}

// VideoWithCreator is a video joined with its uploader's display name
type VideoWithCreator struct {
	Video
	CreatorName string
}

// StagedVideo is an uploaded file awaiting review and scoring.
// It lives in the uploader's session until saved or discarded.
type StagedVideo struct {
	Token         string        `json:"token"`
	Filename      string        `json:"filename"`
	ParticipantID ParticipantID `json:"participant_id"`
	CapturedAt    time.Time     `json:"captured_at"`
}

var videoFilenamePattern = regexp.MustCompile(`^video_\d+_\d{14}\.mp4$`)

// VideoFilename returns the storage name for a capture of the participant at t
func VideoFilename(id ParticipantID, t time.Time) string {
	return fmt.Sprintf("video_%d_%s.mp4", id, t.Format(CaptureTimestampLayout))
}

// IsVideoFilename reports whether name follows the upload naming scheme
func IsVideoFilename(name string) bool {
	return videoFilenamePattern.MatchString(name)
}
