package state

import (
	"encoding/json"
	"sync"

	"github.com/vladimiradmaev/nutrition-diary/internal/fooddata"
	"github.com/vladimiradmaev/nutrition-diary/internal/logger"
)

// User states constants
const (
	None              = "none"
	WaitingForSearch  = "waiting_for_search"
	WaitingForPick    = "waiting_for_pick"
	WaitingForWeight  = "waiting_for_weight"
	WaitingForSleep   = "waiting_for_sleep"
	candidatesTempKey = "candidates"
)

// StateManager keeps per-user conversation state between updates
type StateManager interface {
	SetUserState(userID int64, state string)
	GetUserState(userID int64) string
	ClearUserState(userID int64)
	SetTempData(userID int64, key, value string)
	GetTempData(userID int64, key string) (string, bool)
	ClearTempData(userID int64)
}

var (
	_ StateManager = (*Manager)(nil)
	_ StateManager = (*RedisManager)(nil)
)

// Manager manages user states and temporary data in memory
type Manager struct {
	userStates map[int64]string
	tempData   map[int64]map[string]string
	mu         sync.RWMutex
}

// NewManager creates a new state manager
func NewManager() *Manager {
	return &Manager{
		userStates: make(map[int64]string),
		tempData:   make(map[int64]map[string]string),
	}
}

// SetUserState sets the state for a user
func (m *Manager) SetUserState(userID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userStates[userID] = state
}

// GetUserState gets the state for a user
func (m *Manager) GetUserState(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, exists := m.userStates[userID]
	if !exists {
		return None
	}
	return state
}

// ClearUserState clears the state for a user
func (m *Manager) ClearUserState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.userStates, userID)
}

// SetTempData sets temporary data for a user
func (m *Manager) SetTempData(userID int64, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tempData[userID] == nil {
		m.tempData[userID] = make(map[string]string)
	}
	m.tempData[userID][key] = value
}

// GetTempData gets temporary data for a user
func (m *Manager) GetTempData(userID int64, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.tempData[userID][key]
	return value, exists
}

// ClearTempData clears all temporary data for a user
func (m *Manager) ClearTempData(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tempData, userID)
}

// SetCandidates remembers the search results a user can pick from
func SetCandidates(m StateManager, userID int64, foods []fooddata.FoodSummary) {
	data, err := json.Marshal(foods)
	if err != nil {
		logger.Error("Failed to encode search candidates", "user_id", userID, "error", err)
		return
	}
	m.SetTempData(userID, candidatesTempKey, string(data))
}

// Candidates returns the remembered search results, or nil
func Candidates(m StateManager, userID int64) []fooddata.FoodSummary {
	raw, ok := m.GetTempData(userID, candidatesTempKey)
	if !ok || raw == "" {
		return nil
	}
	var foods []fooddata.FoodSummary
	if err := json.Unmarshal([]byte(raw), &foods); err != nil {
		logger.Warn("Discarding unreadable search candidates", "user_id", userID, "error", err)
		return nil
	}
	return foods
}

// Reset returns the user to the idle state and drops temporary data
func Reset(m StateManager, userID int64) {
	m.SetUserState(userID, None)
	m.ClearTempData(userID)
}
