package qobuz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New("123456789", "s3cret", Credentials{
		Username:    "user@example.com",
		PasswordMD5: "0123456789abcdef0123456789abcdef",
	}, QualityCD)
	c.baseURL = srv.URL + "/"
	c.nowTimestamp = func() int64 { return 1700000000 }
	return c
}

func TestLogin_StoresToken(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("email"); got != "user@example.com" {
			t.Errorf("email = %s", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"user_auth_token": "tok123"})
	})

	if err := c.Login(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.UserToken() != "tok123" {
		t.Errorf("token = %s", c.UserToken())
	}

	// Second login is a no-op.
	if err := c.Login(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestLogin_NoCredentials(t *testing.T) {
	c := New("123456789", "s3cret", Credentials{}, QualityCD)
	if err := c.Login(context.Background()); err != ErrNoCredentials {
		t.Errorf("err = %v, want ErrNoCredentials", err)
	}
}

func TestTrackURL_SignsRequest(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("request_sig"); got != signTrackURL(42, QualityCD, 1700000000, "s3cret") {
			t.Errorf("request_sig = %s", got)
		}
		if got := q.Get("intent"); got != "stream" {
			t.Errorf("intent = %s", got)
		}
		json.NewEncoder(w).Encode(TrackURL{
			TrackID:      42,
			URL:          "https://streaming.example.com/file.flac?sig=x",
			FormatID:     6,
			MimeType:     "audio/flac",
			SamplingRate: 44.1,
			BitDepth:     16,
		})
	})

	tu, err := c.TrackURL(context.Background(), 42, QualityCD)
	if err != nil {
		t.Fatal(err)
	}
	if tu.URL == "" || tu.BitDepth != 16 {
		t.Errorf("unexpected result %+v", tu)
	}
}

func TestTrackURL_EmptyURLFails(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(TrackURL{TrackID: 42})
	})

	if _, err := c.TrackURL(context.Background(), 42, QualityCD); err == nil {
		t.Error("expected error for missing stream url")
	}
}

func TestPlaylist_PagesUntilComplete(t *testing.T) {
	calls := 0
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		offset := r.URL.Query().Get("offset")
		page := Playlist{ID: 55, Name: "Mix", TracksCount: 3, Tracks: &Tracks{Total: 3}}
		if offset == "0" || offset == "" {
			page.Tracks.Items = []Track{{ID: 1}, {ID: 2}}
		} else {
			page.Tracks.Items = []Track{{ID: 3}}
		}
		json.NewEncoder(w).Encode(page)
	})

	pl, err := c.Playlist(context.Background(), 55)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(pl.Tracks.Items) != 3 {
		t.Errorf("tracks = %d, want 3", len(pl.Tracks.Items))
	}
}

func TestCall_ErrorStatuses(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Album(context.Background(), "abc")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("err = %v", err)
	}
}
