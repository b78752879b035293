package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/llehouerou/quartz/internal/playback"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the player, restoring the last session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPlayer(cmd.Context(), nil)
	},
}

var playURL string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a Qobuz web link (album, playlist or track)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPlayer(cmd.Context(), playback.PlayURI{URL: playURL})
	},
}

var streamTrackCmd = &cobra.Command{
	Use:   "stream-track <id>",
	Short: "Stream a single track by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		return runPlayer(cmd.Context(), playback.PlayTrack{TrackID: id})
	},
}

var streamAlbumCmd = &cobra.Command{
	Use:   "stream-album <id>",
	Short: "Stream an album by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlayer(cmd.Context(), playback.PlayAlbum{AlbumID: args[0]})
	},
}

func init() {
	playCmd.Flags().StringVar(&playURL, "url", "", "play.qobuz.com or open.qobuz.com link")
	_ = playCmd.MarkFlagRequired("url")

	rootCmd.AddCommand(openCmd, playCmd, streamTrackCmd, streamAlbumCmd)
}
