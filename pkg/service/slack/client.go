package slack

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

// repliesPageLimit is the page size requested from conversations.replies;
// the engine follows cursors until the thread is exhausted regardless.
const repliesPageLimit = 200

// factory creates and caches per-token API clients
type factory struct {
	mu      sync.RWMutex
	clients map[string]*client
}

var _ Factory = &factory{}

// NewFactory creates a Gateway factory. Clients are cached per token so a
// chatty user reuses one HTTP client.
func NewFactory() Factory {
	return &factory{
		clients: make(map[string]*client),
	}
}

func (f *factory) ForToken(token string) (Gateway, error) {
	if token == "" {
		return nil, goerr.New("slack user token is required")
	}

	f.mu.RLock()
	c, ok := f.clients[token]
	f.mu.RUnlock()
	if ok {
		return c, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.clients[token]; ok {
		return c, nil
	}

	c = &client{api: slack.New(token)}
	f.clients[token] = c
	return c, nil
}

// client implements Gateway over the Slack Web API
type client struct {
	api *slack.Client
}

var _ Gateway = &client{}

func (c *client) GetChannelInfo(ctx context.Context, channelID string) (*Channel, error) {
	info, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get channel info", goerr.V("channelID", channelID))
	}

	return &Channel{
		ID:   info.ID,
		Name: info.Name,
	}, nil
}

func (c *client) GetUserProfile(ctx context.Context) (*Profile, error) {
	profile, err := c.api.GetUserProfileContext(ctx, &slack.GetUserProfileParameters{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get user profile")
	}

	return &Profile{
		StatusText:  profile.StatusText,
		StatusEmoji: profile.StatusEmoji,
	}, nil
}

func (c *client) SetUserStatus(ctx context.Context, text, emoji string, expiration int64) error {
	if err := c.api.SetUserCustomStatusContext(ctx, text, emoji, expiration); err != nil {
		return goerr.Wrap(err, "failed to set user status", goerr.V("text", text))
	}
	return nil
}

func (c *client) GetChannelHistory(ctx context.Context, channelID string, limit int) ([]Message, error) {
	resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channelID,
		Limit:     limit,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get channel history", goerr.V("channelID", channelID))
	}

	messages := make([]Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		messages = append(messages, Message{
			UserID:    m.User,
			Timestamp: m.Timestamp,
			ThreadTS:  m.ThreadTimestamp,
		})
	}

	return messages, nil
}

func (c *client) GetThreadReplies(ctx context.Context, channelID, threadTS, cursor string) ([]Message, string, error) {
	msgs, _, nextCursor, err := c.api.GetConversationRepliesContext(ctx, &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: threadTS,
		Cursor:    cursor,
		Limit:     repliesPageLimit,
	})
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to get thread replies",
			goerr.V("channelID", channelID),
			goerr.V("threadTS", threadTS),
		)
	}

	messages := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		messages = append(messages, Message{
			UserID:    m.User,
			Timestamp: m.Timestamp,
			ThreadTS:  m.ThreadTimestamp,
		})
	}

	return messages, nextCursor, nil
}

func (c *client) DeleteMessage(ctx context.Context, channelID, timestamp string) error {
	if _, _, err := c.api.DeleteMessageContext(ctx, channelID, timestamp); err != nil {
		return goerr.Wrap(err, "failed to delete message",
			goerr.V("channelID", channelID),
			goerr.V("timestamp", timestamp),
		)
	}
	return nil
}
