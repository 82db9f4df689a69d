// Package dotdir manages the .devassist/ and ~/.devassist directories, which
// hold the config file, the login state and the client log.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the devassist directory.
	dirName = ".devassist"

	// logFile is the JSON log written by interactive commands.
	logFile = "devassist.log"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .devassist/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.devassist/ dir
//  3. Home ~/.devassist/ dir, created if missing
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating devassist directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// LogPath returns the path of the client log inside the target directory.
func (m *Manager) LogPath(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFile), nil
}

// localDirExists checks whether a .devassist/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
