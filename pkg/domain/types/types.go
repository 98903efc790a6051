package types

// UserID represents a unique identifier for a Slack user
type UserID string

// String returns the string representation of the user ID
func (x UserID) String() string {
	return string(x)
}

// ChannelID represents a unique identifier for a Slack channel
type ChannelID string

// String returns the string representation of the channel ID
func (x ChannelID) String() string {
	return string(x)
}
