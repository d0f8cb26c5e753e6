package credential

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	storeDirName  = "msgraphdelegatetool"
	storeFileName = "credential.json"

	dirMode  = 0o700
	fileMode = 0o600
)

// DefaultStorePath returns the per-user credential file location,
// e.g. ~/.cache/msgraphdelegatetool/credential.json on Linux.
func DefaultStorePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolving user cache directory: %w", err)
	}
	return filepath.Join(cacheDir, storeDirName, storeFileName), nil
}

// FileStore persists a single Credential as one JSON file. Saves
// replace the whole file. There is no locking: concurrent invocations
// sharing one store are not supported.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file. An empty
// path selects DefaultStorePath.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultStorePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string { return s.path }

// read parses the stored file without checking token usability.
func (s *FileStore) read() (*Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoCredential, s.path)
		}
		return nil, fmt.Errorf("reading credential file %s: %w", s.path, err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("%w: %s holds invalid JSON", ErrNoCredential, s.path)
	}
	return &cred, nil
}

// Load reads the stored credential. Returns ErrNoCredential when the
// file is missing, not valid JSON, or holds no usable access token.
// The literal string "null" counts as no token: jq-based predecessors
// wrote it when extracting an absent field.
func (s *FileStore) Load() (*Credential, error) {
	cred, err := s.read()
	if err != nil {
		return nil, err
	}
	if cred.AccessToken == "" || cred.AccessToken == "null" {
		return nil, fmt.Errorf("%w: %s holds no access token", ErrNoCredential, s.path)
	}
	return cred, nil
}

// Save writes the credential, creating the parent directory with
// user-only permissions. The file is replaced in a single write so a
// reader never sees a mix of old and new tokens.
func (s *FileStore) Save(cred *Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, fileMode); err != nil {
		return fmt.Errorf("writing credential file %s: %w", s.path, err)
	}
	return nil
}
