package web_test

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/videocollect/internal/factory"
	"github.com/mcoot/videocollect/internal/model"
	"github.com/mcoot/videocollect/internal/web"
)

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	cookies *cookieJar
}

// newWebTestServer creates a new test server with all dependencies wired
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := factory.NewTestApp(t)

	router := web.NewRouter(web.RouterConfig{
		Logger: logger,
		App:    app.App,
	})

	return &webTestServer{
		t:       t,
		handler: router,
		app:     app,
		cookies: newCookieJar(),
	}
}

// do sends req with the jar's cookies and records the response
func (ts *webTestServer) do(req *http.Request) *httptest.ResponseRecorder {
	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	ts.cookies.extract(rr)
	return rr
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return ts.do(req)
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

// post makes a POST request with form data
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return ts.request(http.MethodPost, path, form)
}

// uploadPart describes the video part of an upload; nil means no part
type uploadPart struct {
	filename string
	content  []byte
}

// upload posts a multipart form to /upload
func (ts *webTestServer) upload(participantID string, part *uploadPart) *httptest.ResponseRecorder {
	ts.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(ts.t, mw.WriteField("participant_id", participantID))
	if part != nil {
		fw, err := mw.CreateFormFile("video", part.filename)
		require.NoError(ts.t, err)
		_, err = fw.Write(part.content)
		require.NoError(ts.t, err)
	}
	require.NoError(ts.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return ts.do(req)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			// Cookie being deleted
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// hasSession returns true if the session cookie is set
func (j *cookieJar) hasSession() bool {
	_, ok := j.cookies["session"]
	return ok
}

// Helper functions for common test operations

// login signs in as the test user
func (ts *webTestServer) login() {
	ts.t.Helper()
	form := url.Values{
		"username": {factory.TestUserUsername},
		"password": {factory.TestUserPassword},
	}
	rr := ts.post("/login", form)
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after login")
	require.Equal(ts.t, "/home", rr.Header().Get("Location"))
	require.True(ts.t, ts.cookies.hasSession(), "Expected session cookie to be set")
}

// createParticipant adds a participant through the service layer
func (ts *webTestServer) createParticipant(name string) *model.Participant {
	ts.t.Helper()
	return ts.app.CreateParticipant(ts.t, name)
}

// stageVideo uploads a small video for p and checks it was accepted
func (ts *webTestServer) stageVideo(p *model.Participant) {
	ts.t.Helper()
	rr := ts.upload(strconv.FormatInt(int64(p.ID), 10), &uploadPart{filename: "clip.mp4", content: []byte("fake mp4 bytes")})
	require.Equal(ts.t, http.StatusOK, rr.Code, rr.Body.String())
}

// followRedirect follows a redirect and returns the response
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "Expected Location header for redirect")
	return ts.get(location)
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}
