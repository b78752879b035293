package cli

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Query the catalog and print JSON",
}

var apiSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search albums, artists, tracks and playlists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd.Context(), func(ctx context.Context, b *bootstrap) (any, error) {
			return b.client.SearchAll(ctx, args[0], 20)
		})
	},
}

var apiAlbumCmd = &cobra.Command{
	Use:   "album <id>",
	Short: "Fetch an album with its tracks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd.Context(), func(ctx context.Context, b *bootstrap) (any, error) {
			return b.client.Album(ctx, args[0])
		})
	},
}

var apiArtistCmd = &cobra.Command{
	Use:   "artist <id>",
	Short: "Fetch an artist with their albums",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		return apiCall(cmd.Context(), func(ctx context.Context, b *bootstrap) (any, error) {
			return b.client.Artist(ctx, id, 100)
		})
	},
}

var apiTrackCmd = &cobra.Command{
	Use:   "track <id>",
	Short: "Fetch a single track",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		return apiCall(cmd.Context(), func(ctx context.Context, b *bootstrap) (any, error) {
			return b.client.Track(ctx, id)
		})
	},
}

var apiPlaylistCmd = &cobra.Command{
	Use:   "playlist [id]",
	Short: "Fetch a playlist, or list your playlists without an id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiCall(cmd.Context(), func(ctx context.Context, b *bootstrap) (any, error) {
			if len(args) == 0 {
				return b.client.UserPlaylists(ctx)
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return nil, err
			}
			return b.client.Playlist(ctx, id)
		})
	},
}

// apiCall runs one headless catalog request and prints the result as
// indented JSON on stdout.
func apiCall(ctx context.Context, fn func(context.Context, *bootstrap) (any, error)) error {
	b, err := setup()
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.login(ctx); err != nil {
		return err
	}

	result, err := fn(ctx, b)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func init() {
	apiCmd.AddCommand(apiSearchCmd, apiAlbumCmd, apiArtistCmd, apiTrackCmd, apiPlaylistCmd)
	rootCmd.AddCommand(apiCmd)
}
