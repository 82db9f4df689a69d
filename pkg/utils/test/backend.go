// Package testutils holds helpers shared by command and package tests.
package testutils

import (
	"net/http/httptest"

	"github.com/papercomputeco/devassist/pkg/devserver"
	"github.com/papercomputeco/devassist/pkg/dotdir"
)

// Backend is a mock assistant backend served over a local HTTP listener.
type Backend struct {
	*devserver.Server

	HTTP *httptest.Server
}

// NewBackend starts a mock backend. Callers must Close it.
func NewBackend(config devserver.Config) *Backend {
	dev := devserver.NewServer(config, nil)
	return &Backend{
		Server: dev,
		HTTP:   httptest.NewServer(dev.Handler()),
	}
}

func (b *Backend) URL() string {
	return b.HTTP.URL
}

func (b *Backend) Close() {
	b.HTTP.Close()
}

// SaveLogin stores a login for username in configDir, as "devassist login"
// would, and returns the state written.
func (b *Backend) SaveLogin(configDir, username string) (*dotdir.State, error) {
	state := &dotdir.State{
		BaseURL:  b.URL(),
		Username: username,
		Token:    b.Login(username),
	}
	if err := dotdir.NewManager().SaveState(state, configDir); err != nil {
		return nil, err
	}
	return state, nil
}
