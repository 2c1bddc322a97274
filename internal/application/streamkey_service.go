package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"github.com/sirupsen/logrus"

	repo "github.com/glowcast/glowcast/internal/domain/repository"
)

// streamKeyBytes is the entropy of a stream key; the key on the wire is its
// hex encoding.
const streamKeyBytes = 16

// maxKeyAttempts bounds retries on a uniqueness collision against the global
// stream-key index. Collisions are astronomically rare at 128 bits.
const maxKeyAttempts = 5

// StreamKeyService mints and rotates the opaque per-identity ingest secret.
// The key carries the same secrecy requirements as a password: it is returned
// only to its owner and to the ingest authorization path.
type StreamKeyService struct {
	Repo   repo.UserRepository
	Logger *logrus.Logger
}

func NewStreamKeyService(r repo.UserRepository, logger *logrus.Logger) *StreamKeyService {
	return &StreamKeyService{Repo: r, Logger: logger}
}

// Issue generates a fresh key for the identity and persists it, replacing any
// previous key. The old key stops authorizing ingest the moment the update
// lands. Rotation is the same operation.
func (s *StreamKeyService) Issue(ctx context.Context, userID string) (string, error) {
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key, err := newStreamKey()
		if err != nil {
			return "", err
		}
		err = s.Repo.SetStreamKey(ctx, userID, key)
		if err == nil {
			if s.Logger != nil {
				s.Logger.WithFields(logrus.Fields{"user_id": userID, "attempt": attempt}).Info("stream key issued")
			}
			return key, nil
		}
		if field, dup := repo.IsDuplicate(err); dup && field == "stream_key" {
			continue
		}
		return "", err
	}
	return "", errors.New("could not allocate a unique stream key")
}

// AuthorizeIngest resolves a stream key to its owning identity id. Unknown
// keys are reported as ErrUserNotFound with no further detail.
func (s *StreamKeyService) AuthorizeIngest(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrUserNotFound
	}
	u, err := s.Repo.GetByStreamKey(ctx, key)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return u.ID, nil
}

func newStreamKey() (string, error) {
	b := make([]byte, streamKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
