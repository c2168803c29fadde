// Package bbb is a minimal BigBlueButton API client covering what a load
// run needs: the moderator password for a meeting, meeting creation, and
// checksum-signed join URLs for the synthetic participants.
package bbb

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Client talks to one BigBlueButton server's API endpoint.
type Client struct {
	api    *url.URL
	secret string
	hc     *http.Client
}

// NewClient builds a client for the given server. serverURL may be the bare
// server root or the full /bigbluebutton/api endpoint; secret is the shared
// API secret every call is signed with.
func NewClient(serverURL, secret string) (*Client, error) {
	if secret == "" {
		return nil, errors.New("empty API secret")
	}
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: missing scheme or host", serverURL)
	}
	if !strings.Contains(u.Path, "/api") {
		u.Path = path.Join("/", u.Path, "bigbluebutton", "api")
	}
	return &Client{
		api:    u,
		secret: secret,
		hc:     &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// apiResponse is the envelope every API call answers with.
type apiResponse struct {
	XMLName     xml.Name `xml:"response"`
	ReturnCode  string   `xml:"returncode"`
	MessageKey  string   `xml:"messageKey"`
	Message     string   `xml:"message"`
	ModeratorPW string   `xml:"moderatorPW"`
}

// GetModeratorPassword fetches the moderator password of an existing
// meeting via getMeetingInfo.
func (c *Client) GetModeratorPassword(ctx context.Context, meetingID string) (string, error) {
	resp, err := c.call(ctx, "getMeetingInfo", url.Values{"meetingID": {meetingID}})
	if err != nil {
		return "", err
	}
	if resp.ModeratorPW == "" {
		return "", fmt.Errorf("getMeetingInfo for %s returned no moderator password", meetingID)
	}
	return resp.ModeratorPW, nil
}

// CreateMeeting creates the meeting (a no-op if it already exists; the API
// then answers with the existing meeting's data) and returns its moderator
// password.
func (c *Client) CreateMeeting(ctx context.Context, meetingID, name string) (string, error) {
	if name == "" {
		name = meetingID
	}
	resp, err := c.call(ctx, "create", url.Values{
		"meetingID": {meetingID},
		"name":      {name},
	})
	if err != nil {
		return "", err
	}
	if resp.ModeratorPW == "" {
		return "", fmt.Errorf("create for %s returned no moderator password", meetingID)
	}
	return resp.ModeratorPW, nil
}

// GetJoinURL mints a signed join URL. No network call: the URL is handed to
// a browser page, which performs the actual join.
func (c *Client) GetJoinURL(identity, meetingID, password string) (string, error) {
	return c.signedURL("join", url.Values{
		"fullName":  {identity},
		"meetingID": {meetingID},
		"password":  {password},
	}), nil
}

func (c *Client) call(ctx context.Context, name string, params url.Values) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.signedURL(name, params), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", name, res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", name, err)
	}

	var resp apiResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", name, err)
	}
	if resp.ReturnCode != "SUCCESS" {
		return nil, fmt.Errorf("%s failed: %s (%s)", name, resp.Message, resp.MessageKey)
	}
	return &resp, nil
}

// signedURL builds callName?query&checksum=SHA1(callName + query + secret).
// url.Values.Encode sorts keys, so the signed query is deterministic.
func (c *Client) signedURL(name string, params url.Values) string {
	query := params.Encode()
	sum := sha1.Sum([]byte(name + query + c.secret))

	u := *c.api
	u.Path = path.Join(u.Path, name)
	if query != "" {
		query += "&"
	}
	u.RawQuery = query + "checksum=" + hex.EncodeToString(sum[:])
	return u.String()
}
