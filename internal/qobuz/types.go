package qobuz

import "fmt"

// Quality is the audio quality format id as defined by the Qobuz API.
type Quality int

const (
	QualityMP3     Quality = 5
	QualityCD      Quality = 6
	QualityHiRes96 Quality = 7
	QualityHiRes   Quality = 27
)

// String returns the numeric format id used on the wire.
func (q Quality) String() string { return fmt.Sprintf("%d", int(q)) }

// Name returns a human-readable label.
func (q Quality) Name() string {
	switch q {
	case QualityMP3:
		return "MP3 320"
	case QualityCD:
		return "CD 16/44.1"
	case QualityHiRes96:
		return "Hi-Res 24/96"
	case QualityHiRes:
		return "Hi-Res 24/192"
	default:
		return "Unknown"
	}
}

// ParseQuality converts a config/CLI value into a Quality.
func ParseQuality(s string) (Quality, error) {
	switch s {
	case "mp3", "5":
		return QualityMP3, nil
	case "cd", "6":
		return QualityCD, nil
	case "hires96", "7":
		return QualityHiRes96, nil
	case "hires192", "hires", "27":
		return QualityHiRes, nil
	default:
		return 0, fmt.Errorf("unknown quality %q (mp3, cd, hires96, hires192)", s)
	}
}

// Artist as returned by artist/get and embedded in albums.
type Artist struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Albums *Albums `json:"albums,omitempty"`
}

// Albums is a paged album container.
type Albums struct {
	Total int     `json:"total"`
	Items []Album `json:"items"`
}

// Album as returned by album/get.
type Album struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Artist          Artist  `json:"artist"`
	TracksCount     int     `json:"tracks_count"`
	ReleaseDate     string  `json:"release_date_original,omitempty"`
	Duration        int     `json:"duration"`
	ParentalWarning bool    `json:"parental_warning"`
	HiResStreamable bool    `json:"hires_streamable"`
	Streamable      bool    `json:"streamable"`
	Tracks          *Tracks `json:"tracks,omitempty"`
}

// Tracks is a paged track container.
type Tracks struct {
	Total int     `json:"total"`
	Items []Track `json:"items"`
}

// Track as returned by track/get and embedded in albums and playlists.
type Track struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	TrackNumber     int     `json:"track_number"`
	Duration        int     `json:"duration"` // seconds
	ParentalWarning bool    `json:"parental_warning"`
	HiResStreamable bool    `json:"hires_streamable"`
	Streamable      bool    `json:"streamable"`
	Performer       *Person `json:"performer,omitempty"`
	Album           *Album  `json:"album,omitempty"`
}

// Person is a minimal name/id pair used for performers and owners.
type Person struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Playlist as returned by playlist/get.
type Playlist struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Owner       *Person `json:"owner,omitempty"`
	TracksCount int     `json:"tracks_count"`
	Duration    int     `json:"duration"`
	Tracks      *Tracks `json:"tracks,omitempty"`
}

// UserPlaylists is the playlist/getUserPlaylists response.
type UserPlaylists struct {
	Playlists struct {
		Total int        `json:"total"`
		Items []Playlist `json:"items"`
	} `json:"playlists"`
}

// TrackURL is a signed, short-lived stream URL for one track.
type TrackURL struct {
	TrackID      int     `json:"track_id"`
	URL          string  `json:"url"`
	FormatID     int     `json:"format_id"`
	MimeType     string  `json:"mime_type"`
	SamplingRate float64 `json:"sampling_rate"`
	BitDepth     int     `json:"bit_depth"`
	Duration     int     `json:"duration"`
}

// SearchResults is the catalog/search response.
type SearchResults struct {
	Query  string `json:"query"`
	Albums struct {
		Total int     `json:"total"`
		Items []Album `json:"items"`
	} `json:"albums"`
	Artists struct {
		Total int      `json:"total"`
		Items []Artist `json:"items"`
	} `json:"artists"`
	Tracks struct {
		Total int     `json:"total"`
		Items []Track `json:"items"`
	} `json:"tracks"`
	Playlists struct {
		Total int        `json:"total"`
		Items []Playlist `json:"items"`
	} `json:"playlists"`
}

// loginResponse is the user/login response subset we keep.
type loginResponse struct {
	UserAuthToken string `json:"user_auth_token"`
	User          struct {
		ID    int    `json:"id"`
		Login string `json:"login"`
	} `json:"user"`
}
