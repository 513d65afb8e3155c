package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// SessionID identifies one dashboard session
type SessionID ID

func (id SessionID) String() string { return ID(id).String() }

// NewSessionID creates a session identifier
func NewSessionID() SessionID {
	return SessionID(NewID())
}

// ParseSessionID validates a session identifier received from a client
func ParseSessionID(s string) (SessionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid session ID: %w", err)
	}
	return SessionID(s), nil
}
