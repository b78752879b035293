package qobuz

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// EntityKind tags what a web URL points at.
type EntityKind string

const (
	EntityAlbum    EntityKind = "album"
	EntityPlaylist EntityKind = "playlist"
	EntityTrack    EntityKind = "track"
)

// ErrUnrecognizedURI is returned for URLs that are not Qobuz entity links.
var ErrUnrecognizedURI = errors.New("qobuz: unrecognized uri")

// EntityRef is a parsed web URL.
type EntityRef struct {
	Kind EntityKind
	ID   string
}

// ParseURL accepts streaming links of the form
// https://{play|open}.qobuz.com/{album|playlist|track}/<id>.
func ParseURL(raw string) (EntityRef, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return EntityRef{}, fmt.Errorf("%w: %q", ErrUnrecognizedURI, raw)
	}
	if u.Host != "play.qobuz.com" && u.Host != "open.qobuz.com" {
		return EntityRef{}, fmt.Errorf("%w: host %q", ErrUnrecognizedURI, u.Host)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[1] == "" {
		return EntityRef{}, fmt.Errorf("%w: path %q", ErrUnrecognizedURI, u.Path)
	}

	switch parts[0] {
	case "album":
		return EntityRef{Kind: EntityAlbum, ID: parts[1]}, nil
	case "playlist":
		return EntityRef{Kind: EntityPlaylist, ID: parts[1]}, nil
	case "track":
		return EntityRef{Kind: EntityTrack, ID: parts[1]}, nil
	default:
		return EntityRef{}, fmt.Errorf("%w: entity %q", ErrUnrecognizedURI, parts[0])
	}
}
