package devserver

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// timestampLayout matches the backend's SQLite CURRENT_TIMESTAMP format.
const timestampLayout = "2006-01-02 15:04:05"

// Session is a chat thread as returned by the sessions endpoints.
type Session struct {
	ID        int    `json:"id"`
	Name      string `json:"session_name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Message is one entry of a session's history.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Module is a knowledge-base module.
type Module struct {
	ID          int    `json:"module_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TeamID      int    `json:"team_id"`
	TeamName    string `json:"team_name"`
}

type session struct {
	Session
	owner    string
	messages []Message
	updated  time.Time
}

type account struct {
	password   string
	mustChange bool
	config     map[string]any
}

// state is the mock backend's in-memory database.
type state struct {
	mu        sync.RWMutex
	now       func() time.Time
	accounts  map[string]*account
	tokens    map[string]string
	sessions  map[int]*session
	nextID    int
	modules   []Module
	documents []Document
}

func newState(config Config) *state {
	accounts := make(map[string]*account, len(config.Users))
	for username, password := range config.Users {
		accounts[username] = &account{password: password}
	}
	for _, username := range config.MustChangePassword {
		if a, ok := accounts[username]; ok {
			a.mustChange = true
		}
	}

	return &state{
		now:      time.Now,
		accounts: accounts,
		tokens:   make(map[string]string),
		sessions: make(map[int]*session),
		nextID:   1,
		modules: []Module{
			{ID: 1, Name: "Onboarding", Description: "Team processes, tooling and first steps", TeamID: 1, TeamName: "Platform"},
			{ID: 2, Name: "Payments API", Description: "Payments service reference", TeamID: 2, TeamName: "Payments"},
		},
		documents: seedDocuments(),
	}
}

// checkPassword reports whether password is username's current password and
// whether it still has to be changed.
func (s *state) checkPassword(username, password string) (ok, mustChange bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, known := s.accounts[username]
	if !known || a.password != password {
		return false, false
	}
	return true, a.mustChange
}

// changePassword replaces username's password and clears the must-change
// flag. It reports false for unknown users.
func (s *state) changePassword(username, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[username]
	if !ok {
		return false
	}
	a.password = password
	a.mustChange = false
	return true
}

// userConfig returns username's saved preferences, or the defaults when
// nothing was saved.
func (s *state) userConfig(username string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := defaultUserConfig
	if a, ok := s.accounts[username]; ok && len(a.config) > 0 {
		src = a.config
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// saveUserConfig replaces username's saved preferences. Token holders
// without an account get one without a password.
func (s *state) saveUserConfig(username string, config map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[username]
	if !ok {
		a = &account{}
		s.accounts[username] = a
	}
	a.config = make(map[string]any, len(config))
	for k, v := range config {
		a.config[k] = v
	}
}

func (s *state) issueToken(username string) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = username
	s.mu.Unlock()
	return token
}

func (s *state) userForToken(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.tokens[token]
	return u, ok
}

func (s *state) createSession(owner, name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	id := s.nextID
	s.nextID++
	s.sessions[id] = &session{
		Session: Session{
			ID:        id,
			Name:      name,
			CreatedAt: now.Format(timestampLayout),
			UpdatedAt: now.Format(timestampLayout),
		},
		owner:   owner,
		updated: now,
	}
	return id
}

// listSessions returns owner's sessions, most recently updated first.
func (s *state) listSessions(owner string) []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []*session
	for _, sess := range s.sessions {
		if sess.owner == owner {
			owned = append(owned, sess)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].updated.Equal(owned[j].updated) {
			return owned[i].ID > owned[j].ID
		}
		return owned[i].updated.After(owned[j].updated)
	})

	out := make([]Session, 0, len(owned))
	for _, sess := range owned {
		out = append(out, sess.Session)
	}
	return out
}

// session looks up one of owner's sessions. Callers hold the lock.
func (s *state) session(owner string, id int) (*session, bool) {
	sess, ok := s.sessions[id]
	if !ok || sess.owner != owner {
		return nil, false
	}
	return sess, true
}

func (s *state) touch(sess *session) {
	now := s.now().UTC()
	sess.updated = now
	sess.UpdatedAt = now.Format(timestampLayout)
}

func (s *state) renameSession(owner string, id int, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.session(owner, id)
	if !ok {
		return false
	}
	sess.Name = name
	s.touch(sess)
	return true
}

func (s *state) deleteSession(owner string, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.session(owner, id); !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *state) history(owner string, id int) ([]Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.session(owner, id)
	if !ok {
		return nil, false
	}
	out := make([]Message, len(sess.messages))
	copy(out, sess.messages)
	return out, true
}

func (s *state) clearMessages(owner string, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.session(owner, id)
	if !ok {
		return false
	}
	sess.messages = nil
	s.touch(sess)
	return true
}

func (s *state) addMessage(owner string, id int, role, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.session(owner, id)
	if !ok {
		return false
	}
	sess.messages = append(sess.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: s.now().UTC().Format(timestampLayout),
	})
	s.touch(sess)
	return true
}

// addQuestion records a user question and, while the session has seen only
// greetings, names the session after the first substantive question.
func (s *state) addQuestion(owner string, id int, question string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.session(owner, id)
	if !ok {
		return false
	}

	rename := true
	for _, m := range sess.messages {
		if m.Role == "user" && !isGreeting(m.Content) {
			rename = false
			break
		}
	}

	sess.messages = append(sess.messages, Message{
		Role:      "user",
		Content:   question,
		Timestamp: s.now().UTC().Format(timestampLayout),
	})
	if rename && isSubstantive(question) {
		sess.Name = sessionNameFromQuestion(question)
	}
	s.touch(sess)
	return true
}

func (s *state) listModules(teamID *int) []Module {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Module, 0, len(s.modules))
	for _, m := range s.modules {
		if teamID != nil && m.TeamID != *teamID {
			continue
		}
		out = append(out, m)
	}
	return out
}
