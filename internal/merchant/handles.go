package merchant

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// HandleSet is the registry of UPI handles the user owns, used to tell a
// self transfer from a payment to someone else. It satisfies the
// classifier's HandleRegistry interface.
type HandleSet struct {
	handles map[string]struct{}
}

// NewHandleSet builds a registry from a list of handles (the part before
// the @ in a VPA). Handles are stored lower-cased.
func NewHandleSet(handles []string) *HandleSet {
	s := &HandleSet{handles: make(map[string]struct{}, len(handles))}
	for _, h := range handles {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			s.handles[h] = struct{}{}
		}
	}
	return s
}

// LoadHandles reads a JSON array of handle strings.
func LoadHandles(path string) (*HandleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read UPI handle registry: %w", err)
	}
	var handles []string
	if err := json.Unmarshal(data, &handles); err != nil {
		return nil, fmt.Errorf("failed to parse UPI handle registry: %w", err)
	}
	return NewHandleSet(handles), nil
}

// Contains reports whether the handle belongs to the user.
func (s *HandleSet) Contains(handle string) bool {
	_, ok := s.handles[strings.ToLower(strings.TrimSpace(handle))]
	return ok
}

// Len returns the number of registered handles.
func (s *HandleSet) Len() int { return len(s.handles) }
