package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	profiledomain "mallops-console/internal/profile/domain"
	sessiondomain "mallops-console/internal/session/domain"
)

// Storage slot file names. One slot per value, mirroring the three keys the
// console keeps in client storage.
const (
	profileFile = "profile.json"
	tokenFile   = "token"
	savedAtFile = "saved_at"
)

// FileStore keeps the session in three files under a directory. Writes are
// last-writer-wins; there is no cross-process locking.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore rooted at dir. The directory is created
// lazily on the first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Save writes the profile, token, and save timestamp slots.
func (s *FileStore) Save(ctx context.Context, sess *sessiondomain.Session) error {
	if sess == nil {
		return errors.New("nil session")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	blob, err := json.Marshal(sess.Profile)
	if err != nil {
		return err
	}
	savedAt := sess.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now().UTC()
	}
	for _, slot := range []struct {
		name string
		data []byte
	}{
		{profileFile, blob},
		{tokenFile, []byte(sess.Token)},
		{savedAtFile, []byte(savedAt.UTC().Format(time.RFC3339))},
	} {
		if err := os.WriteFile(filepath.Join(s.dir, slot.name), slot.data, 0o600); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}
	return nil
}

// Load reads the stored session. A missing token slot means no session is
// stored and yields (nil, nil). An unreadable profile slot does not fail the
// load; the token alone is returned and the caller re-resolves the profile.
func (s *FileStore) Load(ctx context.Context) (*sessiondomain.Session, error) {
	tok, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	token := strings.TrimSpace(string(tok))
	if token == "" {
		return nil, nil
	}
	sess := &sessiondomain.Session{Token: token}
	if blob, err := os.ReadFile(filepath.Join(s.dir, profileFile)); err == nil {
		var p profiledomain.Profile
		if json.Unmarshal(blob, &p) == nil {
			sess.Profile = &p
		}
	}
	if raw, err := os.ReadFile(filepath.Join(s.dir, savedAtFile)); err == nil {
		if at, err := time.Parse(time.RFC3339, strings.TrimSpace(string(raw))); err == nil {
			sess.SavedAt = at
		}
	}
	return sess, nil
}

// Clear removes all three slots. Missing slots are ignored.
func (s *FileStore) Clear(ctx context.Context) error {
	for _, name := range []string{profileFile, tokenFile, savedAtFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}
	return nil
}
