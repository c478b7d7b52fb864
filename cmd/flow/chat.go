package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/untoldecay/flowai/internal/chatstore"
	"github.com/untoldecay/flowai/internal/config"
	"github.com/untoldecay/flowai/internal/types"
	"github.com/untoldecay/flowai/internal/ui"
)

var chatCmd = &cobra.Command{
	Use:     "chat",
	GroupID: "chat",
	Short:   "Team chat channels",
	Long: `Team chat with seeded channels (#general, #dev-team, #design).

Chat state lives in memory for the session; channels and history reset
between runs.`,
}

var chatChannelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List channels with unread counts",
	Run: func(cmd *cobra.Command, args []string) {
		store := openChatStore()
		channels := store.Channels()

		if jsonOutput {
			type channelView struct {
				types.Channel
				Unread int  `json:"unread"`
				Active bool `json:"active"`
			}
			var out []channelView
			for _, ch := range channels {
				out = append(out, channelView{
					Channel: ch,
					Unread:  store.UnreadCount(ch.ID),
					Active:  ch.ID == store.ActiveChannel(),
				})
			}
			outputJSON(out)
			return
		}

		for _, ch := range channels {
			marker := " "
			if ch.ID == store.ActiveChannel() {
				marker = ui.RenderPass("*")
			}
			line := fmt.Sprintf("%s #%s", marker, ch.Name)
			if unread := store.UnreadCount(ch.ID); unread > 0 {
				line += " " + ui.RenderWarn(fmt.Sprintf("(%d unread)", unread))
			}
			fmt.Println(line)
		}
	},
}

var chatSendCmd = &cobra.Command{
	Use:   "send <text>...",
	Short: "Send a message",
	Long: `Send a message to a channel (the active channel by default) and
print the resulting thread. Chat is session-scoped: the message lives
only for this run.

  flow chat send hello everyone
  flow chat send --channel dev-team deploy is done`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		channelName, _ := cmd.Flags().GetString("channel")

		store := openChatStore()
		channelID := ""
		if channelName != "" {
			ch, ok := channelByName(store, channelName)
			if !ok {
				FatalErrorRespectJSON("no channel #%s", channelName)
			}
			channelID = ch.ID
		}

		msg, ok := store.SendMessage(strings.Join(args, " "), types.MessageText, channelID)
		if !ok {
			FatalErrorRespectJSON("no such channel")
		}

		if jsonOutput {
			outputJSON(msg)
			return
		}
		targetID := resolveChannelID(store, channelID)
		fmt.Printf("%s Sent to #%s\n", ui.CheckMark(), channelNameByID(store, targetID))
		for _, m := range store.Messages(targetID) {
			sender := memberName(m.Sender)
			if m.Sender == store.CurrentUser() {
				sender = store.CurrentUser()
			}
			fmt.Printf("  %s %s: %s\n",
				ui.RenderMuted(m.Timestamp.Format("15:04")), ui.RenderBold(sender), m.Content)
		}
	},
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history [channel]",
	Short: "Show a channel's message history",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openChatStore()

		channelID := store.ActiveChannel()
		if len(args) == 1 {
			ch, ok := channelByName(store, args[0])
			if !ok {
				FatalErrorRespectJSON("no channel #%s", args[0])
			}
			channelID = ch.ID
		}
		store.SetActiveChannel(channelID)
		messages := store.Messages(channelID)

		if jsonOutput {
			outputJSON(messages)
			return
		}
		fmt.Printf("#%s\n", channelNameByID(store, channelID))
		for _, m := range messages {
			sender := memberName(m.Sender)
			if m.Sender == store.CurrentUser() {
				sender = store.CurrentUser()
			}
			fmt.Printf("  %s %s: %s\n",
				ui.RenderMuted(m.Timestamp.Format("15:04")), ui.RenderBold(sender), m.Content)
		}
	},
}

var chatAddCmd = &cobra.Command{
	Use:     "add <name>",
	Aliases: []string{"join"},
	Short:   "Create a channel",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		members, _ := cmd.Flags().GetStringSlice("member")

		store := openChatStore()
		ch := store.AddChannel(args[0], types.ChannelShared, members)

		if jsonOutput {
			outputJSON(ch)
			return
		}
		fmt.Printf("%s Created #%s\n", ui.CheckMark(), ch.Name)
	},
}

var chatPresenceCmd = &cobra.Command{
	Use:   "presence",
	Short: "Watch who is online",
	Long: `Show online team members, refreshed by the presence feed until
interrupted. The feed simulates presence with a randomized roster subset;
a real presence source can replace it without touching the store.`,
	Run: func(cmd *cobra.Command, args []string) {
		once, _ := cmd.Flags().GetBool("once")

		store := openChatStore()

		printOnline := func() {
			online := store.OnlineUsers()
			if jsonOutput {
				outputJSON(map[string]interface{}{"online": online})
				return
			}
			names := make([]string, 0, len(online))
			for _, id := range online {
				names = append(names, memberName(id))
			}
			fmt.Printf("%s online: %s\n", ui.RenderPass("●"), strings.Join(names, ", "))
		}

		printOnline()
		if once {
			return
		}

		var roster []string
		for _, ch := range store.Channels() {
			if ch.ID == "general" {
				roster = ch.Members
				break
			}
		}

		interval := config.GetDuration("chat.presence-interval")
		feed := chatstore.NewSimulatedFeed(store, roster, interval)
		defer feed.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		feed.Start(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		for {
			select {
			case <-ticker.C:
				printOnline()
			case <-sig:
				return
			}
		}
	},
}

func channelByName(store *chatstore.Store, name string) (types.Channel, bool) {
	name = strings.TrimPrefix(name, "#")
	for _, ch := range store.Channels() {
		if ch.Name == name || ch.ID == name {
			return ch, true
		}
	}
	return types.Channel{}, false
}

func channelNameByID(store *chatstore.Store, id string) string {
	if ch, ok := store.Channel(id); ok {
		return ch.Name
	}
	return id
}

func resolveChannelID(store *chatstore.Store, id string) string {
	if id == "" {
		return store.ActiveChannel()
	}
	return id
}

func init() {
	chatSendCmd.Flags().StringP("channel", "c", "", "Channel name (default: active channel)")
	chatAddCmd.Flags().StringSlice("member", nil, "Team member id to include (repeatable)")
	chatPresenceCmd.Flags().Bool("once", false, "Print the current roster and exit")

	chatCmd.AddCommand(chatChannelsCmd)
	chatCmd.AddCommand(chatSendCmd)
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatAddCmd)
	chatCmd.AddCommand(chatPresenceCmd)
	rootCmd.AddCommand(chatCmd)
}
