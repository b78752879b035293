package state

import (
	"database/sql"
	"errors"
	"fmt"

	dbutil "github.com/llehouerou/quartz/internal/db"
	"github.com/llehouerou/quartz/internal/qobuz"
)

// Config is the single account/credentials row. PasswordMD5 is the hex MD5
// digest of the account password; the cleartext never touches disk. AppID
// and ActiveSecret are opaque values the catalog client signs requests
// with.
type Config struct {
	Username       string
	PasswordMD5    string
	AppID          string
	ActiveSecret   string
	UserToken      string
	DefaultQuality qobuz.Quality
}

// Config reads the config row. A missing row yields defaults.
func (s *Store) Config() (Config, error) {
	row := s.db.QueryRow(`
		SELECT username, password_md5, app_id, active_secret, user_token, default_quality
		FROM config WHERE id = 1
	`)

	cfg := Config{DefaultQuality: qobuz.QualityCD}
	var username, passwordMD5, appID, activeSecret, userToken sql.NullString
	var quality int

	err := row.Scan(&username, &passwordMD5, &appID, &activeSecret, &userToken, &quality)
	if errors.Is(err, sql.ErrNoRows) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}

	cfg.Username = dbutil.NullStringValue(username)
	cfg.PasswordMD5 = dbutil.NullStringValue(passwordMD5)
	cfg.AppID = dbutil.NullStringValue(appID)
	cfg.ActiveSecret = dbutil.NullStringValue(activeSecret)
	cfg.UserToken = dbutil.NullStringValue(userToken)
	cfg.DefaultQuality = qobuz.Quality(quality)
	return cfg, nil
}

// SaveConfig writes the whole config row.
func (s *Store) SaveConfig(cfg Config) error {
	_, err := s.db.Exec(`
		INSERT INTO config (id, username, password_md5, app_id, active_secret, user_token, default_quality)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			password_md5 = excluded.password_md5,
			app_id = excluded.app_id,
			active_secret = excluded.active_secret,
			user_token = excluded.user_token,
			default_quality = excluded.default_quality
	`, dbutil.NullString(cfg.Username), dbutil.NullString(cfg.PasswordMD5),
		dbutil.NullString(cfg.AppID), dbutil.NullString(cfg.ActiveSecret),
		dbutil.NullString(cfg.UserToken), int(cfg.DefaultQuality))
	return err
}

func (s *Store) SetUsername(v string) error {
	return s.setColumn("username", v)
}

func (s *Store) SetPasswordMD5(v string) error {
	return s.setColumn("password_md5", v)
}

func (s *Store) SetUserToken(v string) error {
	return s.setColumn("user_token", v)
}

func (s *Store) SetDefaultQuality(q qobuz.Quality) error {
	return s.setColumn("default_quality", int(q))
}

// SetAppCredentials stores the app id/secret pair used for URL signing.
func (s *Store) SetAppCredentials(appID, secret string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (id, app_id, active_secret)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			app_id = excluded.app_id,
			active_secret = excluded.active_secret
	`, appID, secret)
	return err
}

func (s *Store) setColumn(column string, value any) error {
	query := fmt.Sprintf(`
		INSERT INTO config (id, %s) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET %s = excluded.%s
	`, column, column, column)
	_, err := s.db.Exec(query, value)
	return err
}

// ClearAll wipes credentials and the saved session in one transaction.
func (s *Store) ClearAll() error {
	return dbutil.WithTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM session`); err != nil {
			return err
		}
		_, err := tx.Exec(`DELETE FROM config`)
		return err
	})
}
