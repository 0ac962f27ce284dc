package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/videocollect/internal/factory"
)

func TestLogin(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{
		"username": {factory.TestUserUsername},
		"password": {factory.TestUserPassword},
	}
	rr := ts.post("/login", form)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/home", rr.Header().Get("Location"))
	assert.True(t, ts.cookies.hasSession())

	rr = ts.followRedirect(rr)
	assert.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "nav", factory.TestUserName)
	assertContainsText(t, doc, ".flash-success", "Welcome, "+factory.TestUserName)
	assertContainsElement(t, doc, "#total-participants")
}

func TestLoginFailures(t *testing.T) {
	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", factory.TestUserUsername, "nope"},
		{"unknown user", "mallory", factory.TestUserPassword},
		{"empty fields", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newWebTestServer(t)

			rr := ts.post("/login", url.Values{"username": {tc.username}, "password": {tc.password}})

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.False(t, ts.cookies.hasSession())

			doc := parseHTML(rr.Body)
			assertContainsText(t, doc, ".flash-warning", "Invalid username or password")
			assertContainsElement(t, doc, "form#login-form")

			// Still anonymous
			rr = ts.get("/home")
			doc = parseHTML(rr.Body)
			assertContainsText(t, doc, ".flash-warning", "You need to be logged in")
		})
	}
}

func TestLoginKeepsUsernameOnFailure(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})

	doc := parseHTML(rr.Body)
	value, _ := doc.Find("input#username").Attr("value")
	assert.Equal(t, "alice", value)
}

func TestLoginRotatesSessionCookie(t *testing.T) {
	ts := newWebTestServer(t)
	ts.login()
	first := ts.cookies.cookies["session"]

	ts.login()
	second := ts.cookies.cookies["session"]

	require.NotNil(t, second)
	assert.NotEqual(t, first.Value, second.Value)
	assert.True(t, second.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, second.SameSite)
	assert.Zero(t, second.MaxAge, "session cookie should not persist past the browser session")

	// The pre-login session id is gone
	ts.cookies.cookies["session"] = first
	doc := parseHTML(ts.get("/home").Body)
	assertContainsText(t, doc, ".flash-warning", "You need to be logged in")
}

func TestLoginPageRedirectsWhenLoggedIn(t *testing.T) {
	ts := newWebTestServer(t)
	ts.login()

	rr := ts.get("/login")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/home", rr.Header().Get("Location"))
}

func TestLogout(t *testing.T) {
	ts := newWebTestServer(t)
	ts.login()
	oldCookie := ts.cookies.cookies["session"]

	rr := ts.get("/logout")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	assert.False(t, ts.cookies.hasSession())

	rr = ts.followRedirect(rr)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-info", "logged out")
	assertContainsElement(t, doc, "a.nav-login")

	// Replaying the old cookie does not resurrect the session
	ts.cookies.cookies["session"] = oldCookie
	rr = ts.get("/home")
	doc = parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-warning", "You need to be logged in")
}

func TestLogoutDropsStagedVideo(t *testing.T) {
	ts := newWebTestServer(t)
	p := ts.createParticipant("Ana")
	ts.login()
	ts.stageVideo(p)

	ts.get("/logout")
	ts.login()

	rr := ts.get("/preview")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/record", rr.Header().Get("Location"))
}

func TestForgedSessionCookieIsIgnored(t *testing.T) {
	ts := newWebTestServer(t)
	ts.cookies.cookies["session"] = &http.Cookie{Name: "session", Value: "not-a-token"}

	rr := ts.get("/home")

	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, ".flash-warning", "You need to be logged in")
}
