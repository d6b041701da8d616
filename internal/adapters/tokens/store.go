// Package tokens persists the access/refresh token pair as a TOML file under
// the teamsync config directory.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/teamsync-cli/internal/domain"
	"github.com/bnema/teamsync-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	tokensFileMode  = 0o600
	tokensDirMode   = 0o700
	tempFilePattern = ".tokens-*.toml.tmp"

	schemaVersion = 1
)

type fileSchema struct {
	Version      int    `toml:"version"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
}

// Store keeps at most one token pair in a single file. Writes go through a
// temp file and rename, so readers never observe a partial pair.
type Store struct {
	path string
	mu   sync.RWMutex
}

var _ ports.TokenStore = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

func (s *Store) Get(ctx context.Context) (domain.TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return domain.TokenPair{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.TokenPair{}, domain.ErrNotSignedIn
		}
		return domain.TokenPair{}, fmt.Errorf("read tokens file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.TokenPair{}, fmt.Errorf("decode tokens file: %w", err)
	}
	if file.Version > schemaVersion {
		return domain.TokenPair{}, fmt.Errorf("tokens file version %d is newer than supported %d", file.Version, schemaVersion)
	}

	pair := domain.TokenPair{Access: file.AccessToken, Refresh: file.RefreshToken}
	if pair.Zero() {
		return domain.TokenPair{}, domain.ErrNotSignedIn
	}

	return pair, nil
}

func (s *Store) Save(ctx context.Context, pair domain.TokenPair) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(pair.Access) == "" || strings.TrimSpace(pair.Refresh) == "" {
		return errors.New("token pair requires both access and refresh tokens")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.replaceFile(fileSchema{
		Version:      schemaVersion,
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	})
}

func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove tokens file: %w", err)
	}

	return nil
}

func (s *Store) replaceFile(file fileSchema) error {
	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode tokens file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, tokensDirMode); err != nil {
		return fmt.Errorf("create tokens directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp tokens file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp tokens file: %w", err)
	}
	if err := tmp.Chmod(tokensFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp tokens file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp tokens file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace tokens file: %w", err)
	}
	cleanup = false

	return nil
}
