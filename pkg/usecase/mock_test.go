package usecase_test

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	slacksvc "github.com/aoi-lab/chatkeeper/pkg/service/slack"
)

// mockGateway is a scriptable Gateway recording every call
type mockGateway struct {
	mu sync.Mutex

	channel      *slacksvc.Channel
	channelErr   error
	profile      *slacksvc.Profile
	profileErr   error
	setStatusErr error
	history      []slacksvc.Message
	historyErr   error
	replyPages   [][]slacksvc.Message
	deleteErrs   map[string]error

	channelCalls int
	profileCalls int
	statusCalls  []statusCall
	historyCalls int
	replyCalls   int
	deletedTS    []string
}

type statusCall struct {
	text       string
	emoji      string
	expiration int64
}

var _ slacksvc.Gateway = &mockGateway{}

func newMockGateway() *mockGateway {
	return &mockGateway{
		channel: &slacksvc.Channel{ID: "C123", Name: "general"},
		profile: &slacksvc.Profile{},
	}
}

func (m *mockGateway) GetChannelInfo(ctx context.Context, channelID string) (*slacksvc.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channelCalls++
	if m.channelErr != nil {
		return nil, m.channelErr
	}
	return m.channel, nil
}

func (m *mockGateway) GetUserProfile(ctx context.Context) (*slacksvc.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profileCalls++
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	return m.profile, nil
}

func (m *mockGateway) SetUserStatus(ctx context.Context, text, emoji string, expiration int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setStatusErr != nil {
		return m.setStatusErr
	}
	m.statusCalls = append(m.statusCalls, statusCall{text: text, emoji: emoji, expiration: expiration})
	return nil
}

func (m *mockGateway) GetChannelHistory(ctx context.Context, channelID string, limit int) ([]slacksvc.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyCalls++
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	if limit < len(m.history) {
		return m.history[:limit], nil
	}
	return m.history, nil
}

func (m *mockGateway) GetThreadReplies(ctx context.Context, channelID, threadTS, cursor string) ([]slacksvc.Message, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replyCalls++

	page := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("unexpected cursor %q", cursor)
		}
		page = n
	}
	if page >= len(m.replyPages) {
		return nil, "", nil
	}

	next := ""
	if page+1 < len(m.replyPages) {
		next = strconv.Itoa(page + 1)
	}
	return m.replyPages[page], next, nil
}

func (m *mockGateway) DeleteMessage(ctx context.Context, channelID, timestamp string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.deleteErrs[timestamp]; ok {
		return err
	}
	m.deletedTS = append(m.deletedTS, timestamp)
	return nil
}

func (m *mockGateway) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.channelCalls + m.profileCalls + len(m.statusCalls) + m.historyCalls + m.replyCalls + len(m.deletedTS)
}

// mockFactory hands out one gateway for every token
type mockFactory struct {
	mu     sync.Mutex
	gw     *mockGateway
	tokens []string
}

var _ slacksvc.Factory = &mockFactory{}

func newMockFactory(gw *mockGateway) *mockFactory {
	return &mockFactory{gw: gw}
}

func (f *mockFactory) ForToken(token string) (slacksvc.Gateway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f.gw, nil
}
