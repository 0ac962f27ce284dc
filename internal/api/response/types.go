package response

import (
	"time"

	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/services/participant"
)

// Participant represents a participant in API responses
type Participant struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DateOfBirth string    `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	Pathology   string    `json:"pathology,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   int64     `json:"created_by"`
}

// ParticipantFromModel converts a model.Participant
func ParticipantFromModel(p *model.Participant) Participant {
	return Participant{
		ID:          int64(p.ID),
		Name:        p.Name,
		DateOfBirth: p.DateOfBirth.Format(model.DateLayout),
		Gender:      p.Gender,
		Pathology:   p.Pathology,
		CreatedAt:   p.CreatedAt,
		CreatedBy:   int64(p.CreatedBy),
	}
}

// ParticipantSummary is a participant with its video count
type ParticipantSummary struct {
	Participant
	VideoCount  int    `json:"video_count"`
	CreatorName string `json:"creator_name"`
}

// ParticipantSummariesFromModel converts a participant listing
func ParticipantSummariesFromModel(list []model.ParticipantSummary) []ParticipantSummary {
	out := make([]ParticipantSummary, len(list))
	for i, s := range list {
		out[i] = ParticipantSummary{
			Participant: ParticipantFromModel(&s.Participant),
			VideoCount:  s.VideoCount,
			CreatorName: s.CreatorName,
		}
	}
	return out
}

// Video represents a saved video
type Video struct {
	ID            int64     `json:"id"`
	ParticipantID int64     `json:"participant_id"`
	Filename      string    `json:"filename"`
	URL           string    `json:"url"`
	Score         int       `json:"score"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
	CreatedBy     int64     `json:"created_by"`
	CreatorName   string    `json:"creator_name"`
}

// VideosFromModel converts a video listing
func VideosFromModel(list []model.VideoWithCreator) []Video {
	out := make([]Video, len(list))
	for i, v := range list {
		out[i] = Video{
			ID:            int64(v.ID),
			ParticipantID: int64(v.ParticipantID),
			Filename:      v.Filename,
			URL:           "/videos/" + v.Filename,
			Score:         v.Score,
			Comment:       v.Comment,
			CreatedAt:     v.CreatedAt,
			CreatedBy:     int64(v.CreatedBy),
			CreatorName:   v.CreatorName,
		}
	}
	return out
}

// ParticipantDetail is a participant with its videos
type ParticipantDetail struct {
	Participant Participant `json:"participant"`
	CreatorName string      `json:"creator_name"`
	Videos      []Video     `json:"videos"`
}

// ParticipantDetailFromService converts a participant.Detail
func ParticipantDetailFromService(d *participant.Detail) ParticipantDetail {
	return ParticipantDetail{
		Participant: ParticipantFromModel(d.Participant),
		CreatorName: d.CreatorName,
		Videos:      VideosFromModel(d.Videos),
	}
}

// Health is the health check body
type Health struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
