//go:build !linux

package mpris

import "github.com/llehouerou/quartz/internal/playback"

// Adapter does nothing off Linux; MPRIS is a D-Bus interface.
type Adapter struct{}

func New(_ playback.Controls, _ *playback.State) (*Adapter, error) {
	return &Adapter{}, nil
}

func (a *Adapter) Close() error { return nil }
