package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/netchat/netchat/internal/models"
	"github.com/netchat/netchat/internal/services"
)

var messagesCmd = &cobra.Command{
	Use:   "messages [channel-id]",
	Short: "Print a page of messages",
	Long: `Print one page of messages of a channel, oldest first, grouped by author.
Without an id the Main channel is read. The password remembered for a saved
channel is used unless --password is given.

Use --before with the id of the oldest message shown to page further back.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}

		id := a.channels.MainChannel().ID
		if len(args) == 1 {
			id = args[0]
		}

		params := services.FetchPageParams{ChannelID: id}
		if cmd.Flags().Changed("password") {
			pass, _ := cmd.Flags().GetString("password")
			params.Password = &pass
		} else {
			pass, err := a.cache.GetPassword(cmd.Context(), id)
			if err != nil {
				return err
			}
			params.Password = &pass
		}
		if before, _ := cmd.Flags().GetString("before"); before != "" {
			params.Cursor = &before
		}

		page, err := a.messages.FetchPage(cmd.Context(), params)
		if err != nil {
			return err
		}

		// pages come newest first
		slices.Reverse(page)
		window, _ := cmd.Flags().GetDuration("group-window")
		printGroups(cmd.OutOrStdout(), models.GroupMessages(page, window))
		return nil
	},
}

func init() {
	messagesCmd.Flags().String("password", "", "password of a protected channel")
	messagesCmd.Flags().String("before", "", "id of the oldest message already shown")
	messagesCmd.Flags().Duration("group-window", models.DefaultGroupWindow, "merge messages of one author sent within this window")

	rootCmd.AddCommand(messagesCmd)
}

func printGroups(w io.Writer, groups []models.MessageGroup) {
	for _, g := range groups {
		first := g.Messages[0]
		if first.Type != models.MessageTypeUser {
			fmt.Fprintf(w, "* %s  %s\n", first.Content, models.FormatDate(first.CreatedAt))
			continue
		}

		fmt.Fprintf(w, "%s  %s\n", g.Username, models.FormatDate(g.CreatedAt))
		for _, msg := range g.Messages {
			if msg.Content != "" {
				fmt.Fprintf(w, "  %s\n", msg.Content)
			}
			for _, f := range msg.MediaFiles() {
				fmt.Fprintf(w, "  [%s] %s %s\n", mediaKind(f), f.Name, f.ViewURL)
			}
			for _, f := range msg.NonMediaFiles() {
				fmt.Fprintf(w, "  [file] %s (%s) %s\n", f.Name, models.FormatBytes(f.Size), f.DownloadURL)
			}
		}
	}
}

func mediaKind(f models.MessageFile) string {
	if f.IsVideo() {
		return "video"
	}
	return "image"
}
