package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the stored username and avatar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}

		username, err := a.cache.GetUsername(cmd.Context())
		if err != nil {
			return err
		}
		avatar, err := a.cache.GetAvatarID(cmd.Context())
		if err != nil {
			return err
		}

		if username == "" {
			username = "(not set)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "username: %s\n", username)
		if avatar != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "avatar:   %s\n", *avatar)
		}
		return nil
	},
}

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Set the username and avatar stored locally",
	Long: `Set the username and avatar stored in local storage. Pass an empty
--avatar to clear the avatar.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("username") && !cmd.Flags().Changed("avatar") {
			return fmt.Errorf("nothing to set, use --username or --avatar")
		}
		if cmd.Flags().Changed("username") {
			username, _ := cmd.Flags().GetString("username")
			if err := a.cache.SetUsername(cmd.Context(), username); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("avatar") {
			avatar, _ := cmd.Flags().GetString("avatar")
			if err := a.cache.SetAvatarID(cmd.Context(), avatar); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Identity updated")
		return nil
	},
}

func init() {
	identityCmd.Flags().String("username", "", "display name")
	identityCmd.Flags().String("avatar", "", "avatar file id")

	rootCmd.AddCommand(whoamiCmd, identityCmd)
}
