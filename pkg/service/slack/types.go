package slack

import (
	"context"
)

// Gateway provides the Slack Web API operations the engine performs on
// behalf of one user. Every implementation acts with that user's token, so
// profile and deletion calls affect the user, not a bot.
type Gateway interface {
	// GetChannelInfo looks up a channel by ID (conversations.info)
	GetChannelInfo(ctx context.Context, channelID string) (*Channel, error)

	// GetUserProfile fetches the token owner's current profile
	// (users.profile.get)
	GetUserProfile(ctx context.Context) (*Profile, error)

	// SetUserStatus sets the token owner's status text, emoji and
	// expiration in unix seconds (users.profile.set)
	SetUserStatus(ctx context.Context, text, emoji string, expiration int64) error

	// GetChannelHistory fetches a single page of recent channel messages,
	// most recent first (conversations.history)
	GetChannelHistory(ctx context.Context, channelID string, limit int) ([]Message, error)

	// GetThreadReplies fetches one page of thread replies and the cursor of
	// the next page; an empty cursor means the thread is exhausted
	// (conversations.replies)
	GetThreadReplies(ctx context.Context, channelID, threadTS, cursor string) ([]Message, string, error)

	// DeleteMessage deletes one message as the user (chat.delete)
	DeleteMessage(ctx context.Context, channelID, timestamp string) error
}

// Factory yields a Gateway bound to a user token
type Factory interface {
	ForToken(token string) (Gateway, error)
}

// Channel represents a Slack channel
type Channel struct {
	ID   string
	Name string
}

// Profile is the status-relevant slice of a user profile
type Profile struct {
	StatusText  string
	StatusEmoji string
}

// Message is a platform message as seen during bulk-delete selection
type Message struct {
	UserID    string
	Timestamp string
	ThreadTS  string
}
