// Package chatstore owns channels, per-channel message lists, online
// presence, and typing indicators. Chat state is not persisted: channels
// and history are seeded each run, matching the reference behavior.
package chatstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/untoldecay/flowai/internal/catalog"
	"github.com/untoldecay/flowai/internal/types"
)

// Store holds chat state behind a single-writer mutex.
type Store struct {
	mu            sync.Mutex
	channels      []types.Channel
	messages      map[string][]types.Message
	activeChannel string
	onlineUsers   []string
	typingUsers   map[string][]string

	currentUser string

	now   func() time.Time
	newID func() string
}

// New seeds a chat store for the given current user: the seed channels and
// history, everyone online, "general" active.
func New(currentUser string) *Store {
	s := &Store{
		channels:    catalog.SeedChannels(),
		messages:    map[string][]types.Message{},
		typingUsers: map[string][]string{},
		currentUser: currentUser,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for id, msgs := range catalog.SeedMessages(s.now()) {
		s.messages[id] = msgs
	}
	for _, m := range catalog.TeamMembers() {
		s.onlineUsers = append(s.onlineUsers, m.ID)
	}
	if len(s.channels) > 0 {
		s.activeChannel = s.channels[0].ID
	}
	return s
}

// CurrentUser returns the member id messages are sent as.
func (s *Store) CurrentUser() string {
	return s.currentUser
}

// SendMessage appends one message to the channel. An empty channelID
// targets the active channel. Sending to an unknown channel is a no-op;
// empty-content validation is a caller concern.
func (s *Store) SendMessage(content string, kind types.MessageKind, channelID string) (types.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if channelID == "" {
		channelID = s.activeChannel
	}
	if s.channel(channelID) == nil {
		return types.Message{}, false
	}
	if kind == "" {
		kind = types.MessageText
	}

	msg := types.Message{
		ID:        s.newID(),
		Content:   content,
		Sender:    s.currentUser,
		Kind:      kind,
		Timestamp: s.now(),
	}
	s.messages[channelID] = append(s.messages[channelID], msg)
	return msg, true
}

// SetActiveChannel switches focus and marks every message in that channel
// read, wholesale. Unknown channels are a no-op.
func (s *Store) SetActiveChannel(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel(channelID) == nil {
		return false
	}
	s.activeChannel = channelID
	msgs := s.messages[channelID]
	for i := range msgs {
		msgs[i].Read = true
	}
	return true
}

// ActiveChannel returns the focused channel id.
func (s *Store) ActiveChannel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeChannel
}

// AddChannel creates a channel with an empty message list.
func (s *Store) AddChannel(name string, channelType types.ChannelType, members []string) types.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()

	if channelType == "" {
		channelType = types.ChannelShared
	}
	ch := types.Channel{
		ID:      s.newID(),
		Name:    name,
		Type:    channelType,
		Members: append([]string(nil), members...),
	}
	s.channels = append(s.channels, ch)
	s.messages[ch.ID] = []types.Message{}
	return ch
}

// Channels returns a snapshot copy of all channels.
func (s *Store) Channels() []types.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		c := ch
		c.Members = append([]string(nil), ch.Members...)
		out = append(out, c)
	}
	return out
}

// Channel returns one channel by id.
func (s *Store) Channel(id string) (types.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch := s.channel(id); ch != nil {
		c := *ch
		c.Members = append([]string(nil), ch.Members...)
		return c, true
	}
	return types.Channel{}, false
}

// Messages returns a snapshot copy of a channel's history, in send order.
func (s *Store) Messages(channelID string) []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Message(nil), s.messages[channelID]...)
}

// UnreadCount counts messages in the channel that are unread and not sent
// by the current user.
func (s *Store) UnreadCount(channelID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, m := range s.messages[channelID] {
		if !m.Read && m.Sender != s.currentUser {
			count++
		}
	}
	return count
}

// SetTypingUsers replaces the typing indicator set for a channel. Purely
// ephemeral presentation state.
func (s *Store) SetTypingUsers(channelID string, userIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typingUsers[channelID] = append([]string(nil), userIDs...)
}

// TypingUsers returns the typing indicator set for a channel.
func (s *Store) TypingUsers(channelID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.typingUsers[channelID]...)
}

// SetOnlineUsers installs the current presence set. Called by whatever
// presence feed is wired in.
func (s *Store) SetOnlineUsers(userIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onlineUsers = append([]string(nil), userIDs...)
}

// OnlineUsers returns the current presence set.
func (s *Store) OnlineUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.onlineUsers...)
}

// channel returns a pointer into s.channels. Caller holds s.mu.
func (s *Store) channel(id string) *types.Channel {
	for i := range s.channels {
		if s.channels[i].ID == id {
			return &s.channels[i]
		}
	}
	return nil
}
