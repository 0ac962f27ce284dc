package web_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/videocollect/internal/model"
)

func validParticipantForm(name string) url.Values {
	return url.Values{
		"name":          {name},
		"date_of_birth": {"2010-05-01"},
		"gender":        {"F"},
		"pathology":     {"asthma"},
	}
}

func TestCreateParticipant(t *testing.T) {
	ts := newWebTestServer(t)
	ts.login()

	rr := ts.get("/add_participant")
	assert.Equal(t, http.StatusOK, rr.Code)
	assertContainsElement(t, parseHTML(rr.Body), "form#participant-form input#pathology")

	rr = ts.post("/add_participant", validParticipantForm("Ana Lima"))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	location := rr.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/participant/"), location)

	rr = ts.followRedirect(rr)
	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-success", "Participant added")
	assertContainsText(t, doc, "#participant-name", "Ana Lima")
	assertContainsText(t, doc, "#dob", "2010-05-01")
	assertContainsText(t, doc, "#pathology", "asthma")
	assertContainsText(t, doc, "#creator", "Alice Smith")
	assertContainsText(t, doc, ".empty", "No videos")

	list, err := ts.app.Storage.ListParticipants(t.Context(), model.ParticipantFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ts.app.User.ID, list[0].CreatedBy)
	assert.Equal(t, ts.app.MockClock.Now(), list[0].CreatedAt)
}

func TestCreateParticipantValidation(t *testing.T) {
	ts := newWebTestServer(t)
	ts.login()

	form := validParticipantForm("Ana")
	form.Set("date_of_birth", "01/05/2010")
	form.Set("gender", "")

	rr := ts.post("/add_participant", form)

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, `.field-error[data-field="date_of_birth"]`, "YYYY-MM-DD")
	assertContainsText(t, doc, `.field-error[data-field="gender"]`, "required")
	value, _ := doc.Find("input#name").Attr("value")
	assert.Equal(t, "Ana", value)

	count, err := ts.app.Storage.CountParticipants(t.Context())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListParticipantsWithSearch(t *testing.T) {
	ts := newWebTestServer(t)
	for _, name := range []string{"Ana", "MARIANA", "Joana", "Bruno", "50% Club"} {
		ts.createParticipant(name)
	}
	ts.login()

	rr := ts.get("/participants")
	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assert.Equal(t, 5, doc.Find("#participants .participant-row").Length())

	rr = ts.get("/participants?search=ana")
	doc = parseHTML(rr.Body)
	var names []string
	doc.Find("#participants .participant-row .name").Each(func(_ int, s *goquery.Selection) {
		names = append(names, strings.TrimSpace(s.Text()))
	})
	assert.Equal(t, []string{"Ana", "MARIANA", "Joana"}, names)
	value, _ := doc.Find(`input[name="search"]`).Attr("value")
	assert.Equal(t, "ana", value)

	// LIKE wildcards are literal
	rr = ts.get("/participants?search=" + url.QueryEscape("%"))
	doc = parseHTML(rr.Body)
	assert.Equal(t, 1, doc.Find("#participants .participant-row").Length())
	assertContainsText(t, doc, "#participants", "50% Club")

	rr = ts.get("/participants?search=zzz")
	assertContainsText(t, parseHTML(rr.Body), ".empty", "No participants")
}

func TestListParticipantsShowsVideoCounts(t *testing.T) {
	ts := newWebTestServer(t)
	p := ts.createParticipant("Ana")
	ts.createParticipant("Bruno")
	ts.login()
	ts.stageVideo(p)
	require.Equal(t, http.StatusSeeOther, ts.post("/save_video", url.Values{"score": {"3"}}).Code)

	doc := parseHTML(ts.get("/participants").Body)

	counts := map[string]string{}
	doc.Find("#participants .participant-row").Each(func(_ int, s *goquery.Selection) {
		counts[strings.TrimSpace(s.Find(".name").Text())] = strings.TrimSpace(s.Find(".video-count").Text())
	})
	assert.Equal(t, map[string]string{"Ana": "1", "Bruno": "0"}, counts)
}

func TestEditParticipantPreservesPathology(t *testing.T) {
	ts := newWebTestServer(t)
	ts.login()
	rr := ts.post("/add_participant", validParticipantForm("Ana"))
	location := rr.Header().Get("Location")

	rr = ts.get(location + "/edit")
	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	value, _ := doc.Find("input#name").Attr("value")
	assert.Equal(t, "Ana", value)
	assertNotContainsElement(t, doc, "input#pathology")

	form := url.Values{"name": {"Anabel"}, "date_of_birth": {"2011-06-02"}, "gender": {"M"}, "pathology": {"ignored"}}
	rr = ts.post(location+"/edit", form)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, location, rr.Header().Get("Location"))

	doc = parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, "#participant-name", "Anabel")
	assertContainsText(t, doc, "#dob", "2011-06-02")
	assertContainsText(t, doc, "#gender", "M")
	assertContainsText(t, doc, "#pathology", "asthma")
}

func TestEditParticipantValidation(t *testing.T) {
	ts := newWebTestServer(t)
	p := ts.createParticipant("Ana")
	ts.login()

	rr := ts.post(fmt.Sprintf("/participant/%d/edit", p.ID), url.Values{"name": {""}, "date_of_birth": {"bad"}, "gender": {"F"}})

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, `.field-error[data-field="name"]`)
	assertContainsElement(t, doc, `.field-error[data-field="date_of_birth"]`)

	stored, err := ts.app.Storage.GetParticipant(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", stored.Name)
}

func TestMalformedFormKeepsItsPage(t *testing.T) {
	ts := newWebTestServer(t)
	p := ts.createParticipant("Ana")
	ts.login()

	tests := []struct {
		path          string
		title         string
		showPathology bool
	}{
		{fmt.Sprintf("/participant/%d/edit", p.ID), "Edit participant", false},
		{"/add_participant", "Add participant", true},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader("name=%zz&gender=F"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rr := ts.do(req)

			assert.Equal(t, http.StatusOK, rr.Code)
			doc := parseHTML(rr.Body)
			assert.Contains(t, doc.Find("title").Text(), tt.title)
			assert.Equal(t, tt.title, doc.Find("section.card h1").Text())
			action, _ := doc.Find("form#participant-form").Attr("action")
			assert.Equal(t, tt.path, action)
			assert.Equal(t, tt.showPathology, doc.Find("input#pathology").Length() == 1)
			assertContainsText(t, doc, `.field-error[data-field="name"]`, "Invalid form data")
		})
	}

	stored, err := ts.app.Storage.GetParticipant(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", stored.Name)
}

func TestDeleteParticipantRemovesVideos(t *testing.T) {
	ts := newWebTestServer(t)
	p := ts.createParticipant("Ana")
	other := ts.createParticipant("Bruno")
	ts.login()

	for range 2 {
		ts.stageVideo(p)
		require.Equal(t, http.StatusSeeOther, ts.post("/save_video", url.Values{"score": {"4"}}).Code)
		ts.app.MockClock.Advance(2 * time.Second)
	}
	ts.stageVideo(other)
	require.Equal(t, http.StatusSeeOther, ts.post("/save_video", url.Values{"score": {"1"}}).Code)

	rr := ts.post(fmt.Sprintf("/participant/%d/delete", p.ID), nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/participants", rr.Header().Get("Location"))

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-warning", "deleted")

	videos, err := ts.app.Storage.ListVideosForParticipant(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, videos)

	all, err := ts.app.Storage.ListVideos(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, other.ID, all[0].ParticipantID)

	files, err := ts.app.Videos.List()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, all[0].Filename, files[0].Name)
}

func TestMissingParticipantIs404(t *testing.T) {
	ts := newWebTestServer(t)
	ts.login()

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/participant/999"},
		{http.MethodGet, "/participant/999/edit"},
		{http.MethodPost, "/participant/999/edit"},
		{http.MethodPost, "/participant/999/delete"},
		{http.MethodGet, "/participant/abc"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			var form url.Values
			if tc.method == http.MethodPost {
				form = validParticipantForm("Ghost")
			}
			rr := ts.request(tc.method, tc.path, form)

			assert.Equal(t, http.StatusNotFound, rr.Code)
			doc := parseHTML(rr.Body)
			assertContainsElement(t, doc, `.error[data-status="404"]`)
		})
	}
}

func TestParticipantNamesAreEscaped(t *testing.T) {
	ts := newWebTestServer(t)
	p := ts.createParticipant("<script>alert(1)</script>")
	ts.login()

	rr := ts.get(fmt.Sprintf("/participant/%d", p.ID))

	assert.NotContains(t, rr.Body.String(), "<script>alert(1)</script>")
	assertContainsText(t, parseHTML(rr.Body), "#participant-name", "<script>alert(1)</script>")
}
