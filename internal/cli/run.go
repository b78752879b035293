package cli

import (
	"context"
	"crypto/md5" //nolint:gosec // Qobuz authenticates with an MD5 digest.
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/llehouerou/quartz/internal/config"
	"github.com/llehouerou/quartz/internal/logger"
	"github.com/llehouerou/quartz/internal/mpris"
	"github.com/llehouerou/quartz/internal/notify"
	"github.com/llehouerou/quartz/internal/playback"
	"github.com/llehouerou/quartz/internal/player"
	"github.com/llehouerou/quartz/internal/qobuz"
	"github.com/llehouerou/quartz/internal/state"
	"github.com/llehouerou/quartz/internal/stderr"
	"github.com/llehouerou/quartz/internal/tui"
	"github.com/llehouerou/quartz/internal/web"
)

// bootstrap holds everything a command needs after wiring: file config,
// state store and a catalog client carrying merged credentials.
type bootstrap struct {
	cfg    *config.Config
	store  *state.Store
	client *qobuz.Client
	stored state.Config
}

func (b *bootstrap) Close() {
	_ = b.store.Close()
	logger.Sync()
}

// setup merges the three credential layers: flags beat the config file,
// the config file beats the state store.
func setup() (*bootstrap, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.LogLevel)

	store, err := state.Open()
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	stored, err := store.Config()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("read stored config: %w", err)
	}

	username := stored.Username
	if cfg.Username != "" {
		username = cfg.Username
	}
	if flagUsername != "" {
		username = flagUsername
	}

	passwordMD5 := stored.PasswordMD5
	if flagPassword != "" {
		passwordMD5 = hashPassword(flagPassword)
	}

	quality := stored.DefaultQuality
	if cfg.DefaultQuality != "" {
		q, err := qobuz.ParseQuality(cfg.DefaultQuality)
		if err != nil {
			store.Close()
			return nil, err
		}
		quality = q
	}

	client := qobuz.New(stored.AppID, stored.ActiveSecret, qobuz.Credentials{
		Username:    username,
		PasswordMD5: passwordMD5,
	}, quality)
	client.SetUserToken(stored.UserToken)

	return &bootstrap{cfg: cfg, store: store, client: client, stored: stored}, nil
}

// login authenticates and persists a freshly minted token.
func (b *bootstrap) login(ctx context.Context) error {
	if err := b.client.Login(ctx); err != nil {
		return err
	}
	if token := b.client.UserToken(); token != b.stored.UserToken {
		if err := b.store.SetUserToken(token); err != nil {
			logger.Warn("could not persist user token", logger.Err(err))
		}
	}
	return nil
}

// runPlayer is the shared player bootstrap. When initial is nil the last
// session is restored; otherwise initial seeds the queue.
func runPlayer(ctx context.Context, initial playback.Command) error {
	b, err := setup()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.login(ctx); err != nil {
		return err
	}

	tuiEnabled := !flagDisableTUI && !b.cfg.TUI.Disabled
	if tuiEnabled {
		// ALSA writes straight to fd 2 and would tear the TUI apart.
		if err := stderr.Start(); err == nil {
			defer stderr.Stop()
		}
	}

	pipe := player.NewBeepPipeline()
	engine := playback.NewEngine(pipe, b.client, playback.Options{
		Store:        b.store,
		QuitWhenDone: flagQuitWhenDone,
	})

	if initial == nil {
		if err := engine.Resume(ctx, false); err != nil && !errors.Is(err, playback.ErrNoSession) {
			logger.Warn("session restore failed", logger.Err(err))
		}
	}

	engineErr := make(chan error, 1)
	go func() {
		engineErr <- engine.Run(ctx)
	}()

	if initial != nil {
		engine.Controls().Send(initial)
	}

	if flagWeb || b.cfg.Web.Enabled {
		addr := b.cfg.Web.Interface
		if flagInterface != "" {
			addr = flagInterface
		}
		srv := web.NewServer(addr, engine)
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Error("web server failed", logger.Err(err))
			}
		}()
		logger.Info("web remote listening", logger.String("addr", addr))
	}

	adapter, err := mpris.New(engine.Controls(), engine.State())
	if err != nil {
		logger.Warn("mpris unavailable", logger.Err(err))
	} else {
		defer adapter.Close()
	}

	if notifier, err := notify.New(); err == nil {
		go notify.Watch(engine.Subscribe(), notifier)
	}

	if !tuiEnabled {
		return <-engineErr
	}

	if err := tui.Run(ctx, engine); err != nil {
		// The terminal is gone; make sure the engine still winds down.
		engine.Controls().Send(playback.Quit{})
		<-engineErr
		return err
	}
	return <-engineErr
}

func hashPassword(cleartext string) string {
	sum := md5.Sum([]byte(cleartext)) //nolint:gosec // Qobuz wire format.
	return hex.EncodeToString(sum[:])
}
