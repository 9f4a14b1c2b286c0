// Package credentials finds the service account used to reach the store.
// Strategies are tried in order and the first one that resolves wins.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"google.golang.org/api/option"
)

var (
	ErrNoCredentials      = errors.New("no credentials found")
	ErrInvalidCredentials = errors.New("invalid credentials file")
)

const (
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceDefault = "application-default"
)

type Resolution struct {
	Source  string
	Path    string
	Options []option.ClientOption
}

// Strategy returns ErrNoCredentials when it has nothing to offer, so the next one runs.
type Strategy interface {
	Name() string
	Resolve() (Resolution, error)
}

/*
* Walk the strategies in order
* Skip those that report ErrNoCredentials
* Any other error stops the walk
 */
func Resolve(strategies ...Strategy) (Resolution, error) {
	for _, s := range strategies {
		res, err := s.Resolve()
		if errors.Is(err, ErrNoCredentials) {
			continue
		}
		if err != nil {
			log.Println("Error from credential strategy", s.Name()+":", err)
			return Resolution{}, err
		}
		return res, nil
	}
	return Resolution{}, ErrNoCredentials
}

// DefaultStrategies checks the files the firebase and gcloud tooling leave behind
// before any environment variable.
func DefaultStrategies(projectID string) []Strategy {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Println("Unable to find the home directory:", err)
	}
	paths := []string{}
	if home != "" {
		paths = append(paths,
			filepath.Join(home, ".config/firebase", projectID+"-key.json"),
			filepath.Join(home, ".firebase", projectID+"-key.json"),
			filepath.Join(home, ".config/gcloud/application_default_credentials.json"),
			filepath.Join(home, ".cache/firebase/credentials.json"),
		)
	}
	paths = append(paths, "firebase-key.json", ".env.firebase", ".env.firebasekey")

	return []Strategy{
		KnownFiles{Paths: paths},
		EnvFile{Var: "FIREBASE_SERVICE_ACCOUNT"},
		EnvFile{Var: "GOOGLE_APPLICATION_CREDENTIALS"},
		ApplicationDefault{},
	}
}

// EnvFile reads the path of a credentials file from an environment variable.
type EnvFile struct {
	Var string
}

func (e EnvFile) Name() string { return "env " + e.Var }

func (e EnvFile) Resolve() (Resolution, error) {
	path := os.Getenv(e.Var)
	if path == "" {
		return Resolution{}, ErrNoCredentials
	}
	if err := checkFile(path); err != nil {
		return Resolution{}, fmt.Errorf("%s=%s: %w", e.Var, path, err)
	}
	return Resolution{
		Source:  SourceEnv,
		Path:    path,
		Options: []option.ClientOption{option.WithCredentialsFile(path)},
	}, nil
}

// KnownFiles uses the first path that exists on disk.
type KnownFiles struct {
	Paths []string
}

func (k KnownFiles) Name() string { return "known files" }

func (k KnownFiles) Resolve() (Resolution, error) {
	for _, path := range k.Paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := checkFile(path); err != nil {
			return Resolution{}, fmt.Errorf("%s: %w", path, err)
		}
		return Resolution{
			Source:  SourceFile,
			Path:    path,
			Options: []option.ClientOption{option.WithCredentialsFile(path)},
		}, nil
	}
	return Resolution{}, ErrNoCredentials
}

// ApplicationDefault leaves discovery to the client library.
type ApplicationDefault struct{}

func (ApplicationDefault) Name() string { return "application default" }

func (ApplicationDefault) Resolve() (Resolution, error) {
	return Resolution{Source: SourceDefault}, nil
}

func checkFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return nil
}
