package pages

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/web/templates/layout"
)

func renderDoc(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestBaseRendersTitleAndFlash(t *testing.T) {
	doc := renderDoc(t, Landing(LandingData{PageData: layout.PageData{
		Title: "Welcome",
		Flash: &layout.FlashMessage{Type: "warning", Message: "<b>careful</b>"},
	}}))

	assert.Equal(t, "Welcome | Video Collection", doc.Find("title").Text())
	flash := doc.Find(".flash.flash-warning")
	require.Equal(t, 1, flash.Length())
	assert.Equal(t, "<b>careful</b>", flash.Text())
	assert.Equal(t, 0, flash.Find("b").Length())
	assert.Equal(t, 1, doc.Find("a.nav-login").Length())
	assert.Equal(t, 0, doc.Find(".nav-user").Length())
}

func TestBaseShowsUserWhenLoggedIn(t *testing.T) {
	doc := renderDoc(t, Home(HomeData{
		PageData:          layout.PageData{Title: "Home", LoggedIn: true, UserName: "Ada"},
		TotalParticipants: 3,
		TotalVideos:       7,
	}))

	assert.Contains(t, doc.Find(".nav-user").Text(), "Ada")
	assert.Equal(t, "3", doc.Find("#total-participants .value").Text())
	assert.Equal(t, "7", doc.Find("#total-videos .value").Text())
	assert.Equal(t, 0, doc.Find("a.nav-login").Length())
}

func TestRecordSelectsParticipant(t *testing.T) {
	doc := renderDoc(t, Record(RecordData{
		PageData: layout.PageData{Title: "Record", LoggedIn: true},
		Participants: []model.ParticipantSummary{
			{Participant: model.Participant{ID: 4, Name: "Alice"}},
			{Participant: model.Participant{ID: 9, Name: "Bob"}},
		},
		SelectedID:  9,
		MaxUploadMB: 100,
	}))

	options := doc.Find("select#participant_id option")
	require.Equal(t, 3, options.Length())
	selected := doc.Find("select#participant_id option[selected]")
	require.Equal(t, 1, selected.Length())
	assert.Equal(t, "Bob", selected.Text())
	value, _ := selected.Attr("value")
	assert.Equal(t, "9", value)
	assert.Contains(t, doc.Find("p.hint").Text(), "100 MB")
}

func TestPreviewLinksStagedFile(t *testing.T) {
	captured := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	doc := renderDoc(t, Preview(PreviewData{
		PageData:    layout.PageData{Title: "Preview", LoggedIn: true},
		Staged:      &model.StagedVideo{Filename: "video_4_20240301103000.mp4", CapturedAt: captured},
		Participant: &model.Participant{ID: 4, Name: "Alice"},
	}))

	src, ok := doc.Find("video#preview").Attr("src")
	require.True(t, ok)
	assert.Equal(t, "/videos/video_4_20240301103000.mp4", src)
	assert.Contains(t, doc.Find(".captured").Text(), "2024-03-01 10:30:00")
	maxLen, _ := doc.Find("form#save-form textarea#comment").Attr("maxlength")
	assert.Equal(t, "500", maxLen)
	assert.Equal(t, 1, doc.Find("form#discard-form").Length())
}

func TestVideosListsRowsWithCreatorFallback(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	doc := renderDoc(t, Videos(VideosData{
		PageData: layout.PageData{Title: "Videos", LoggedIn: true},
		Videos: []model.VideoWithCreator{{
			Video: model.Video{ID: 2, ParticipantID: 4, Filename: "video_4_20240301103000.mp4", Score: 5, Comment: "ok", CreatedAt: created},
		}},
	}))

	row := doc.Find("table#videos .video-row")
	require.Equal(t, 1, row.Length())
	href, _ := row.Find("td.participant a").Attr("href")
	assert.Equal(t, "/participant/4", href)
	assert.Equal(t, "5", row.Find("td.score").Text())
	assert.Equal(t, "N/A", row.Find("td.creator").Text())
}

func TestVideosEmpty(t *testing.T) {
	doc := renderDoc(t, Videos(VideosData{PageData: layout.PageData{Title: "Videos", LoggedIn: true}}))

	assert.Equal(t, 0, doc.Find("table#videos").Length())
	assert.Equal(t, 1, doc.Find("p.empty").Length())
}

func TestParticipantFormEditingHidesPathology(t *testing.T) {
	data := ParticipantFormData{
		PageData: layout.PageData{Title: "Edit participant", LoggedIn: true},
		Action:   "/participant/4/edit",
		Editing:  true,
		Values:   ParticipantFormValues{Name: "Alice", DateOfBirth: "1990-01-02", Gender: "F"},
		Errors:   map[string]string{"gender": "Gender is required"},
	}
	doc := renderDoc(t, ParticipantForm(data))

	action, _ := doc.Find("form#participant-form").Attr("action")
	assert.Equal(t, "/participant/4/edit", action)
	assert.Equal(t, 0, doc.Find("input#pathology").Length())
	name, _ := doc.Find("input#name").Attr("value")
	assert.Equal(t, "Alice", name)
	maxLen, _ := doc.Find("input#name").Attr("maxlength")
	assert.Equal(t, "100", maxLen)
	_, hasMax := doc.Find("input#date_of_birth").Attr("maxlength")
	assert.False(t, hasMax)
	assert.Equal(t, "Gender is required", doc.Find(`.field-error[data-field="gender"]`).Text())

	data.Editing = false
	doc = renderDoc(t, ParticipantForm(data))
	require.Equal(t, 1, doc.Find("input#pathology").Length())
	_, required := doc.Find("input#pathology").Attr("required")
	assert.False(t, required)
}

func TestErrorPage(t *testing.T) {
	doc := renderDoc(t, Error(ErrorData{
		PageData: layout.PageData{Title: "Not Found"},
		Status:   404,
		Message:  "The page you requested does not exist",
	}))

	status, _ := doc.Find("section.error").Attr("data-status")
	assert.Equal(t, "404", status)
	assert.Equal(t, "Not Found", doc.Find("section.error h1").Text())
}
