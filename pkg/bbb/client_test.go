package bbb

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "s3cr3t"

// checksumFor recomputes the signature a BBB server would verify.
func checksumFor(call, query string) string {
	sum := sha1.Sum([]byte(call + query + testSecret))
	return hex.EncodeToString(sum[:])
}

// verifyChecksum strips the checksum parameter from a request and checks it
// against the remaining raw query, the way the server does.
func verifyChecksum(t *testing.T, call string, r *http.Request) {
	t.Helper()
	raw := r.URL.RawQuery
	i := strings.Index(raw, "&checksum=")
	require.GreaterOrEqual(t, i, 0, "request has no checksum: %s", raw)
	query, sum := raw[:i], raw[i+len("&checksum="):]
	assert.Equal(t, checksumFor(call, query), sum)
}

func TestNewClient(t *testing.T) {
	t.Run("appends api path", func(t *testing.T) {
		c, err := NewClient("https://bbb.example.com", testSecret)
		require.NoError(t, err)
		assert.Equal(t, "/bigbluebutton/api", c.api.Path)
	})

	t.Run("keeps explicit api path", func(t *testing.T) {
		c, err := NewClient("https://bbb.example.com/bigbluebutton/api", testSecret)
		require.NoError(t, err)
		assert.Equal(t, "/bigbluebutton/api", c.api.Path)
	})

	t.Run("rejects empty secret", func(t *testing.T) {
		_, err := NewClient("https://bbb.example.com", "")
		assert.Error(t, err)
	})

	t.Run("rejects relative URL", func(t *testing.T) {
		_, err := NewClient("bbb.example.com", testSecret)
		assert.Error(t, err)
	})
}

func TestGetModeratorPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/getMeetingInfo"))
		verifyChecksum(t, "getMeetingInfo", r)
		assert.Equal(t, "demo", r.URL.Query().Get("meetingID"))
		fmt.Fprint(w, `<response><returncode>SUCCESS</returncode><moderatorPW>mp</moderatorPW><attendeePW>ap</attendeePW></response>`)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, testSecret)
	require.NoError(t, err)

	pw, err := c.GetModeratorPassword(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "mp", pw)
}

func TestGetModeratorPasswordFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<response><returncode>FAILED</returncode><messageKey>notFound</messageKey><message>A meeting with that ID does not exist</message></response>`)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, testSecret)
	require.NoError(t, err)

	_, err = c.GetModeratorPassword(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notFound")
}

func TestCreateMeeting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/create"))
		verifyChecksum(t, "create", r)
		assert.Equal(t, "demo", r.URL.Query().Get("meetingID"))
		assert.Equal(t, "Load Test", r.URL.Query().Get("name"))
		fmt.Fprint(w, `<response><returncode>SUCCESS</returncode><meetingID>demo</meetingID><moderatorPW>mp</moderatorPW></response>`)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, testSecret)
	require.NoError(t, err)

	pw, err := c.CreateMeeting(context.Background(), "demo", "Load Test")
	require.NoError(t, err)
	assert.Equal(t, "mp", pw)
}

func TestGetJoinURL(t *testing.T) {
	c, err := NewClient("https://bbb.example.com", testSecret)
	require.NoError(t, err)

	raw, err := c.GetJoinURL("cam1 user", "demo", "mp")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/bigbluebutton/api/join", u.Path)

	q := u.Query()
	assert.Equal(t, "cam1 user", q.Get("fullName"))
	assert.Equal(t, "demo", q.Get("meetingID"))
	assert.Equal(t, "mp", q.Get("password"))

	// The signature covers the encoded query without the checksum itself.
	signed := url.Values{
		"fullName":  {"cam1 user"},
		"meetingID": {"demo"},
		"password":  {"mp"},
	}.Encode()
	assert.Equal(t, checksumFor("join", signed), q.Get("checksum"))
}
