package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack/slackevents"

	"github.com/aoi-lab/chatkeeper/pkg/domain/types"
)

// EventKind discriminates the closed set of inbound event shapes
type EventKind string

const (
	// EventKindMessage is a user message in a channel or thread
	EventKindMessage EventKind = "message"
	// EventKindChallenge is the Events API URL verification handshake
	EventKindChallenge EventKind = "challenge"
	// EventKindOther covers callback events this system does not act on
	EventKindOther EventKind = "other"
)

// Event is an inbound webhook event parsed once at the boundary.
// Exactly one of Message / Challenge is populated depending on Kind.
type Event struct {
	ID   string
	Time int64
	Kind EventKind

	Message   *Message
	Challenge string
}

// Message is the message payload of an inbound event
type Message struct {
	UserID    types.UserID
	ChannelID types.ChannelID
	Text      string
	Timestamp string
	// ThreadTS is set only when the message is a reply inside a thread
	ThreadTS string
}

// ParseEvent parses a raw Slack Events API request body into the domain
// event union. Malformed bodies yield an error; callback events with an
// inner event this system does not handle yield EventKindOther. Message
// subtypes (edits, deletions, bot messages) are not user activity and are
// also mapped to EventKindOther.
func ParseEvent(body []byte) (*Event, error) {
	apiEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse slack event")
	}

	switch apiEvent.Type {
	case slackevents.URLVerification:
		var cr slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &cr); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal challenge")
		}
		return &Event{Kind: EventKindChallenge, Challenge: cr.Challenge}, nil

	case slackevents.CallbackEvent:
		cb, ok := apiEvent.Data.(*slackevents.EventsAPICallbackEvent)
		if !ok {
			return nil, goerr.New("malformed callback event envelope")
		}

		ev := &Event{
			ID:   cb.EventID,
			Time: int64(cb.EventTime),
			Kind: EventKindOther,
		}

		msg, ok := apiEvent.InnerEvent.Data.(*slackevents.MessageEvent)
		if !ok || msg.SubType != "" || msg.User == "" {
			return ev, nil
		}

		threadTS := ""
		if msg.ThreadTimeStamp != "" && msg.ThreadTimeStamp != msg.TimeStamp {
			threadTS = msg.ThreadTimeStamp
		}

		ev.Kind = EventKindMessage
		ev.Message = &Message{
			UserID:    types.UserID(msg.User),
			ChannelID: types.ChannelID(msg.Channel),
			Text:      msg.Text,
			Timestamp: msg.TimeStamp,
			ThreadTS:  threadTS,
		}
		return ev, nil

	default:
		return &Event{Kind: EventKindOther}, nil
	}
}
