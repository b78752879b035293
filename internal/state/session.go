package state

import (
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/quartz/internal/playback"
)

var _ playback.SessionStore = (*Store)(nil)

// SaveSession overwrites the single snapshot row.
func (s *Store) SaveSession(sess playback.Session) error {
	_, err := s.db.Exec(`
		INSERT INTO session (id, entity_kind, entity_id, track_position, position_ms)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			entity_kind = excluded.entity_kind,
			entity_id = excluded.entity_id,
			track_position = excluded.track_position,
			position_ms = excluded.position_ms
	`, sess.EntityKind, sess.EntityID, sess.TrackPosition, sess.Position.Milliseconds())
	return err
}

// Session reads the snapshot, false when none has been saved.
func (s *Store) Session() (playback.Session, bool, error) {
	row := s.db.QueryRow(`
		SELECT entity_kind, entity_id, track_position, position_ms
		FROM session WHERE id = 1
	`)

	var sess playback.Session
	var positionMS int64
	err := row.Scan(&sess.EntityKind, &sess.EntityID, &sess.TrackPosition, &positionMS)
	if errors.Is(err, sql.ErrNoRows) {
		return playback.Session{}, false, nil
	}
	if err != nil {
		return playback.Session{}, false, err
	}
	sess.Position = time.Duration(positionMS) * time.Millisecond
	return sess, true, nil
}

// ClearSession drops the snapshot.
func (s *Store) ClearSession() error {
	_, err := s.db.Exec(`DELETE FROM session`)
	return err
}
