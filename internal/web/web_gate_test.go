package web_test

import (
	"net/http"
	"sort"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/web"
)

func TestEveryRouteIsNamedAndPublicNamesExist(t *testing.T) {
	ts := newWebTestServer(t)
	router := ts.handler.(*mux.Router)

	require.NoError(t, web.VerifyRouteNames(router, web.PublicRoutes))

	var names []string
	_ = router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		names = append(names, route.GetName())
		return nil
	})
	sort.Strings(names)
	assert.Equal(t, []string{
		"home", "index", "instructions", "login", "login.submit", "logout",
		"participants.create", "participants.delete", "participants.edit",
		"participants.list", "participants.new", "participants.update",
		"participants.view", "preview", "record", "static", "upload",
		"videos.discard", "videos.file", "videos.list", "videos.save",
	}, names)
}

func TestVerifyRouteNamesRejectsMismatch(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}

	unnamed := mux.NewRouter()
	unnamed.HandleFunc("/", noop).Name("index")
	unnamed.HandleFunc("/secret", noop)
	assert.ErrorContains(t, web.VerifyRouteNames(unnamed, []string{"index"}), "/secret")

	missing := mux.NewRouter()
	missing.HandleFunc("/", noop).Name("index")
	assert.ErrorContains(t, web.VerifyRouteNames(missing, []string{"index", "login"}), "login")
}

func TestPublicRoutesReachableAnonymously(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/")
	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#landing")
	assertNotContainsElement(t, doc, ".flash-warning")

	rr = ts.get("/login")
	assert.Equal(t, http.StatusOK, rr.Code)
	assertContainsElement(t, parseHTML(rr.Body), "form#login-form")

	rr = ts.get("/static/style.css")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/css")

	rr = ts.get("/static/record.js")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGateBlocksProtectedRoutes(t *testing.T) {
	ts := newWebTestServer(t)
	p := ts.createParticipant("Ana")
	id := strconv.FormatInt(int64(p.ID), 10)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/home"},
		{http.MethodGet, "/instructions"},
		{http.MethodGet, "/record"},
		{http.MethodPost, "/upload"},
		{http.MethodGet, "/preview"},
		{http.MethodGet, "/videos/video_1_20240101120000.mp4"},
		{http.MethodPost, "/save_video"},
		{http.MethodPost, "/discard_video"},
		{http.MethodGet, "/list_videos"},
		{http.MethodGet, "/add_participant"},
		{http.MethodPost, "/add_participant"},
		{http.MethodGet, "/participants"},
		{http.MethodGet, "/participant/" + id},
		{http.MethodGet, "/participant/" + id + "/edit"},
		{http.MethodPost, "/participant/" + id + "/edit"},
		{http.MethodPost, "/participant/" + id + "/delete"},
		{http.MethodGet, "/logout"},
	}

	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rr := ts.request(tc.method, tc.path, nil)

			assert.Equal(t, http.StatusOK, rr.Code)
			doc := parseHTML(rr.Body)
			assertContainsElement(t, doc, "#landing")
			assertContainsText(t, doc, ".flash-warning", "You need to be logged in to access this page")
		})
	}

	// Nothing changed
	list, err := ts.app.Storage.ListParticipants(t.Context(), model.ParticipantFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].Name)
	assert.Equal(t, "F", list[0].Gender)
}

func TestGateBlocksMutationsWithFormData(t *testing.T) {
	ts := newWebTestServer(t)
	p := ts.createParticipant("Ana")
	id := strconv.FormatInt(int64(p.ID), 10)

	ts.post("/add_participant", validParticipantForm("Eve"))
	ts.post("/participant/"+id+"/edit", validParticipantForm("Changed"))
	ts.post("/participant/"+id+"/delete", nil)
	ts.upload(id, &uploadPart{filename: "clip.mp4", content: []byte("data")})
	ts.post("/save_video", nil)

	list, err := ts.app.Storage.ListParticipants(t.Context(), model.ParticipantFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].Name)

	files, err := ts.app.Videos.List()
	require.NoError(t, err)
	assert.Empty(t, files)

	count, err := ts.app.Storage.CountVideos(t.Context())
	require.NoError(t, err)
	assert.Zero(t, count)
}
