package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/netchat/netchat/internal/models"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List saved channels",
	Long: `List the channels saved in local storage. A fresh client starts with
Main and the network channel of its public IP.

With --remote, list every public channel of the remote store instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}

		var channels []models.Channel
		if remote, _ := cmd.Flags().GetBool("remote"); remote {
			channels, err = a.channels.ListAll(cmd.Context())
		} else {
			channels, err = a.cache.GetAll(cmd.Context())
		}
		if err != nil {
			return err
		}
		printChannels(cmd.OutOrStdout(), channels)
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [channel-id]",
	Short: "Resolve a channel id against the saved channels",
	Long: `Resolve a channel id against the saved channels. Without an id, or on a
client that has not saved anything yet, the Main channel is returned.

With --discover, a channel that is not saved is fetched from the remote store
and saved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}

		id := ""
		if len(args) == 1 {
			id = args[0]
		}

		var ch models.Channel
		if discover, _ := cmd.Flags().GetBool("discover"); discover && id != "" {
			ch, err = a.directory.ResolveOrDiscover(cmd.Context(), id)
		} else {
			ch, err = a.directory.Current(cmd.Context(), id)
		}
		if err != nil {
			return err
		}
		printChannels(cmd.OutOrStdout(), []models.Channel{ch})
		return nil
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <channel-id>",
	Short: "Save a channel to local storage",
	Long: `Fetch a channel from the remote store and add it to the saved channels.
For a protected channel the password is checked first and remembered so
later reads do not ask for it again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}

		var saved *string
		if cmd.Flags().Changed("password") {
			pass, _ := cmd.Flags().GetString("password")
			ok, err := a.channels.VerifyPassword(cmd.Context(), args[0], pass)
			if err != nil {
				return err
			}
			if !ok {
				return models.ErrAuthenticationFailed
			}
			saved = &pass
		}

		ch, err := a.directory.Discover(cmd.Context(), args[0], saved)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", ch.Name, ch.ID)
		return nil
	},
}

var unsaveCmd = &cobra.Command{
	Use:   "unsave <channel-id>",
	Short: "Remove a channel from local storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}

		// Resolve falls back to Main on a fresh client, so look the id up directly
		ch, found, err := a.cache.Find(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is not saved\n", args[0])
			return nil
		}
		if err := a.cache.Unsave(cmd.Context(), ch); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\n", ch.Name, ch.ID)
		return nil
	},
}

var passwordCmd = &cobra.Command{
	Use:   "password <channel-id>",
	Short: "Print the password remembered for a saved channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		pass, err := a.cache.GetPassword(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pass)
		return nil
	},
}

func init() {
	channelsCmd.Flags().Bool("remote", false, "list public channels from the remote store")
	resolveCmd.Flags().Bool("discover", false, "fetch and save the channel when it is not saved")
	saveCmd.Flags().String("password", "", "password of a protected channel")

	rootCmd.AddCommand(channelsCmd, resolveCmd, saveCmd, unsaveCmd, passwordCmd)
}

func printChannels(w io.Writer, channels []models.Channel) {
	for _, ch := range channels {
		lock := " "
		if ch.Protected {
			lock = "*"
		}
		fmt.Fprintf(w, "%s %-24s %-20s expires %s\n", lock, ch.ID, ch.Name, ch.Expiration.Format("2006-01-02"))
	}
}
