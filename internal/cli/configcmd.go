package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llehouerou/quartz/internal/qobuz"
	"github.com/llehouerou/quartz/internal/state"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stored credentials and defaults",
}

var configUsernameCmd = &cobra.Command{
	Use:   "username <email>",
	Short: "Store the Qobuz account email",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withStore(func(s *state.Store) error {
			return s.SetUsername(args[0])
		})
	},
}

var configPasswordCmd = &cobra.Command{
	Use:   "password <password>",
	Short: "Store the Qobuz account password (kept as an MD5 digest)",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withStore(func(s *state.Store) error {
			return s.SetPasswordMD5(hashPassword(args[0]))
		})
	},
}

var configQualityCmd = &cobra.Command{
	Use:   "default-quality <mp3|cd|hires96|hires192>",
	Short: "Store the default streaming quality",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		quality, err := qobuz.ParseQuality(args[0])
		if err != nil {
			return err
		}
		return withStore(func(s *state.Store) error {
			return s.SetDefaultQuality(quality)
		})
	},
}

var configAppCmd = &cobra.Command{
	Use:   "app-credentials <app-id> <secret>",
	Short: "Store the API app id and signing secret",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		return withStore(func(s *state.Store) error {
			return s.SetAppCredentials(args[0], args[1])
		})
	},
}

var configClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all stored credentials and the saved session",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withStore(func(s *state.Store) error {
			return s.ClearAll()
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the saved playback session",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withStore(func(s *state.Store) error {
			return s.ClearSession()
		})
	},
}

func withStore(fn func(*state.Store) error) error {
	store, err := state.Open()
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func init() {
	configCmd.AddCommand(configUsernameCmd, configPasswordCmd, configQualityCmd, configAppCmd, configClearCmd)
	rootCmd.AddCommand(configCmd, resetCmd)
}
