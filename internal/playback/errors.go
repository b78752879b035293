package playback

import "errors"

// ErrorKind classifies failures surfaced to observers. Surfaces never see
// raw errors from the engine; they see Error events on the notification bus
// tagged with one of these kinds.
type ErrorKind string

const (
	// ErrorCatalog is a remote service or network failure.
	ErrorCatalog ErrorKind = "catalog"
	// ErrorPipeline is a native media graph failure.
	ErrorPipeline ErrorKind = "pipeline"
	// ErrorStreamURL means a signed stream URL was unavailable or rejected.
	ErrorStreamURL ErrorKind = "stream_url"
	// ErrorResume means the saved session snapshot could not be restored.
	ErrorResume ErrorKind = "resume"
	// ErrorUnrecognizedURI means a play URL did not parse as an entity link.
	ErrorUnrecognizedURI ErrorKind = "unrecognized_uri"
	// ErrorNoCredentials means login was attempted without a username and
	// password pair.
	ErrorNoCredentials ErrorKind = "no_credentials"
)

// ErrNoSession is returned by Resume when no snapshot has been saved.
var ErrNoSession = errors.New("playback: no saved session")
