package qobuz

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/llehouerou/quartz/internal/logger"
)

const (
	defaultBaseURL = "https://www.qobuz.com/api.json/0.2/"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/102.0.0.0 Safari/537.36"
	pageLimit      = 500
)

// ErrNoCredentials is returned when login is attempted without a username
// and password pair.
var ErrNoCredentials = errors.New("qobuz: username and password required")

// APIError is a remote service or transport failure.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("qobuz api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("qobuz api: %s", e.Message)
}

// Credentials identify a Qobuz account. Password is the MD5 hex digest,
// never the cleartext.
type Credentials struct {
	Username    string
	PasswordMD5 string
}

// Client talks to the Qobuz catalog API. App id and secret are opaque
// values the caller loads from the state store.
type Client struct {
	baseURL      string
	appID        string
	appSecret    string
	userToken    string
	creds        Credentials
	quality      Quality
	httpClient   *http.Client
	nowTimestamp func() int64
}

// New creates a catalog client. The zero quality defaults to MP3.
func New(appID, appSecret string, creds Credentials, quality Quality) *Client {
	if quality == 0 {
		quality = QualityMP3
	}
	return &Client{
		baseURL:      defaultBaseURL,
		appID:        appID,
		appSecret:    appSecret,
		creds:        creds,
		quality:      quality,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		nowTimestamp: func() int64 { return time.Now().Unix() },
	}
}

// Quality returns the negotiated default quality.
func (c *Client) Quality() Quality { return c.quality }

// UserToken returns the auth token obtained by Login, empty before login.
func (c *Client) UserToken() string { return c.userToken }

// SetUserToken restores a token persisted from an earlier session, letting
// the client skip the login round trip.
func (c *Client) SetUserToken(token string) { c.userToken = token }

// Login exchanges credentials for a user auth token. Idempotent: a second
// call with a token already present is a no-op.
func (c *Client) Login(ctx context.Context) error {
	if c.userToken != "" {
		return nil
	}
	if c.creds.Username == "" || c.creds.PasswordMD5 == "" {
		return ErrNoCredentials
	}

	logger.Info("logging in to qobuz", logger.String("username", c.creds.Username))

	var resp loginResponse
	err := c.call(ctx, "user/login", url.Values{
		"email":    {c.creds.Username},
		"password": {c.creds.PasswordMD5},
		"app_id":   {c.appID},
	}, &resp)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if resp.UserAuthToken == "" {
		return &APIError{Message: "login succeeded but no token returned"}
	}
	c.userToken = resp.UserAuthToken
	return nil
}

// Album fetches an album with its tracks.
func (c *Client) Album(ctx context.Context, id string) (*Album, error) {
	var album Album
	err := c.call(ctx, "album/get", url.Values{
		"album_id": {id},
		"extra":    {"tracks"},
		"limit":    {strconv.Itoa(pageLimit)},
	}, &album)
	if err != nil {
		return nil, fmt.Errorf("album %s: %w", id, err)
	}
	return &album, nil
}

// Playlist fetches a playlist, paging until all tracks are present.
func (c *Client) Playlist(ctx context.Context, id int64) (*Playlist, error) {
	params := url.Values{
		"playlist_id": {strconv.FormatInt(id, 10)},
		"extra":       {"tracks"},
		"limit":       {strconv.Itoa(pageLimit)},
		"offset":      {"0"},
	}

	var playlist Playlist
	if err := c.call(ctx, "playlist/get", params, &playlist); err != nil {
		return nil, fmt.Errorf("playlist %d: %w", id, err)
	}

	for playlist.Tracks != nil && len(playlist.Tracks.Items) < playlist.TracksCount {
		params.Set("offset", strconv.Itoa(len(playlist.Tracks.Items)))
		var page Playlist
		if err := c.call(ctx, "playlist/get", params, &page); err != nil {
			return nil, fmt.Errorf("playlist %d page: %w", id, err)
		}
		if page.Tracks == nil || len(page.Tracks.Items) == 0 {
			break
		}
		playlist.Tracks.Items = append(playlist.Tracks.Items, page.Tracks.Items...)
	}

	return &playlist, nil
}

// Track fetches a single track.
func (c *Client) Track(ctx context.Context, id int) (*Track, error) {
	var track Track
	err := c.call(ctx, "track/get", url.Values{
		"track_id": {strconv.Itoa(id)},
	}, &track)
	if err != nil {
		return nil, fmt.Errorf("track %d: %w", id, err)
	}
	return &track, nil
}

// Artist fetches an artist with up to limit albums.
func (c *Client) Artist(ctx context.Context, id, limit int) (*Artist, error) {
	if limit <= 0 {
		limit = pageLimit
	}
	var artist Artist
	err := c.call(ctx, "artist/get", url.Values{
		"artist_id": {strconv.Itoa(id)},
		"extra":     {"albums"},
		"limit":     {strconv.Itoa(limit)},
	}, &artist)
	if err != nil {
		return nil, fmt.Errorf("artist %d: %w", id, err)
	}
	return &artist, nil
}

// SearchAll queries the whole catalog.
func (c *Client) SearchAll(ctx context.Context, query string, limit int) (*SearchResults, error) {
	if limit <= 0 {
		limit = 20
	}
	var results SearchResults
	err := c.call(ctx, "catalog/search", url.Values{
		"query": {query},
		"limit": {strconv.Itoa(limit)},
	}, &results)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return &results, nil
}

// UserPlaylists lists the logged-in user's playlists.
func (c *Client) UserPlaylists(ctx context.Context) ([]Playlist, error) {
	var resp UserPlaylists
	err := c.call(ctx, "playlist/getUserPlaylists", url.Values{
		"limit":  {strconv.Itoa(pageLimit)},
		"offset": {"0"},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("user playlists: %w", err)
	}
	return resp.Playlists.Items, nil
}

// TrackURL fetches a fresh signed stream URL for one track. The request
// carries an MD5 signature over the endpoint parameters, timestamp and app
// secret, per the API's signing scheme.
func (c *Client) TrackURL(ctx context.Context, trackID int, quality Quality) (*TrackURL, error) {
	if quality == 0 {
		quality = c.quality
	}
	ts := c.nowTimestamp()

	var track TrackURL
	err := c.call(ctx, "track/getFileUrl", url.Values{
		"request_ts":  {strconv.FormatInt(ts, 10)},
		"request_sig": {signTrackURL(trackID, quality, ts, c.appSecret)},
		"track_id":    {strconv.Itoa(trackID)},
		"format_id":   {quality.String()},
		"intent":      {"stream"},
	}, &track)
	if err != nil {
		return nil, fmt.Errorf("track url %d: %w", trackID, err)
	}
	if track.URL == "" {
		return nil, &APIError{Message: fmt.Sprintf("no stream url for track %d", trackID)}
	}
	return &track, nil
}

// signTrackURL computes the request signature for track/getFileUrl.
func signTrackURL(trackID int, quality Quality, ts int64, secret string) string {
	payload := fmt.Sprintf("trackgetFileUrlformat_id%sintentstreamtrack_id%d%d%s",
		quality, trackID, ts, secret)
	return fmt.Sprintf("%x", md5.Sum([]byte(payload)))
}

// call performs one GET against the API and decodes the JSON response.
func (c *Client) call(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-App-Id", c.appID)
	if c.userToken != "" {
		req.Header.Set("X-User-Auth-Token", c.userToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return &APIError{Status: resp.StatusCode, Message: "bad request"}
	case http.StatusUnauthorized:
		return &APIError{Status: resp.StatusCode, Message: "unauthorized"}
	case http.StatusNotFound:
		return &APIError{Status: resp.StatusCode, Message: "item not found"}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Status: resp.StatusCode, Message: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}
