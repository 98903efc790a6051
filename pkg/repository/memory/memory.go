package memory

import (
	"errors"

	"github.com/aoi-lab/chatkeeper/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	user *userRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		user: newUserRepository(),
	}
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Close() error {
	return nil
}
