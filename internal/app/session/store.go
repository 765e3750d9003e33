package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/emirhan/campuslink/internal/app/models"
	"github.com/emirhan/campuslink/internal/pkg/apperrors"
)

// Store persists the authenticated user's snapshot and session token under
// well-known keys. A JSON file per key in the session dir is the durable
// copy; when a redis address is configured the snapshot is mirrored there as
// well, best-effort, so other hosts of the same user can warm-start.
//
// The snapshot file is the one shared mutable resource between concurrently
// running clients of the same user. Discipline is last-write-wins; external
// writes are detected by the mtime watcher and surfaced as a SnapshotChanged
// signal, after which the owner reloads authenticated data in full.
type Store struct {
	dir      string
	userKey  string
	tokenKey string

	rdb    *redis.Client
	logger zerolog.Logger

	mu        sync.Mutex
	lastWrite time.Time

	watchStop chan struct{}
	watchOnce sync.Once
}

// Options configures a session store
type Options struct {
	Dir       string
	UserKey   string
	TokenKey  string
	RedisAddr string
}

// NewStore creates a session store rooted at the configured directory.
// The redis mirror is optional; when no address is configured, or the server
// is unreachable, mirroring is silently disabled.
func NewStore(opts Options, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(opts.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}

	s := &Store{
		dir:      opts.Dir,
		userKey:  opts.UserKey,
		tokenKey: opts.TokenKey,
		logger:   logger,
	}

	if opts.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).
				Str("addr", opts.RedisAddr).
				Msg("Redis mirror unreachable, continuing without it")
			rdb.Close()
		} else {
			s.rdb = rdb
			logger.Info().Str("addr", opts.RedisAddr).Msg("Session redis mirror enabled")
		}
	}

	return s, nil
}

func (s *Store) keyPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// SaveUser serializes the user snapshot to the durable key and mirrors it
func (s *Store) SaveUser(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to serialize user snapshot: %w", err)
	}

	if err := s.writeKey(s.userKey, data); err != nil {
		return err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, s.userKey, data, 0).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to mirror user snapshot to redis")
		}
	}

	return nil
}

// LoadUser reads the persisted user snapshot. A missing key is reported as
// apperrors.ErrNoSession; a corrupt one as apperrors.ErrSnapshotInvalid.
func (s *Store) LoadUser(ctx context.Context) (*models.User, error) {
	data, err := os.ReadFile(s.keyPath(s.userKey))
	if errors.Is(err, os.ErrNotExist) {
		data = s.loadMirror(ctx, s.userKey)
		if data == nil {
			return nil, apperrors.ErrNoSession
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read user snapshot: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrSnapshotInvalid, "persisted user snapshot is not valid JSON")
	}
	return &user, nil
}

// SaveToken persists the opaque session token
func (s *Store) SaveToken(ctx context.Context, token string) error {
	if err := s.writeKey(s.tokenKey, []byte(token)); err != nil {
		return err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, s.tokenKey, token, 0).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to mirror token to redis")
		}
	}
	return nil
}

// LoadToken reads the persisted session token; ErrNoSession when absent
func (s *Store) LoadToken(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.keyPath(s.tokenKey))
	if errors.Is(err, os.ErrNotExist) {
		data = s.loadMirror(ctx, s.tokenKey)
		if data == nil {
			return "", apperrors.ErrNoSession
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return string(data), nil
}

// Clear removes both persisted keys
func (s *Store) Clear(ctx context.Context) error {
	var firstErr error
	for _, key := range []string{s.userKey, s.tokenKey} {
		if err := os.Remove(s.keyPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			if firstErr == nil {
				firstErr = err
			}
		}
		if s.rdb != nil {
			if err := s.rdb.Del(ctx, key).Err(); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("Failed to clear redis mirror")
			}
		}
	}
	return firstErr
}

// Close releases the redis mirror and stops the watcher if running
func (s *Store) Close() error {
	s.watchOnce.Do(func() {})
	if s.watchStop != nil {
		select {
		case <-s.watchStop:
		default:
			close(s.watchStop)
		}
	}
	if s.rdb != nil {
		return s.rdb.Close()
	}
	return nil
}

func (s *Store) writeKey(key string, data []byte) error {
	path := s.keyPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	// Record the resulting mtime so the watcher can tell our own writes apart
	// from another process rewriting the snapshot.
	if info, err := os.Stat(path); err == nil {
		s.mu.Lock()
		s.lastWrite = info.ModTime()
		s.mu.Unlock()
	}
	return nil
}

func (s *Store) loadMirror(ctx context.Context, key string) []byte {
	if s.rdb == nil {
		return nil
	}
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	return data
}

// StartWatch polls the snapshot file's mtime and emits SnapshotChanged on the
// given signals when another process rewrote it. Writes made through this
// store within the poll window are not reported.
func (s *Store) StartWatch(signals *Signals, interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	s.watchStop = make(chan struct{})

	go func() {
		var lastSeen time.Time
		if info, err := os.Stat(s.keyPath(s.userKey)); err == nil {
			lastSeen = info.ModTime()
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				info, err := os.Stat(s.keyPath(s.userKey))
				if err != nil {
					continue
				}
				mod := info.ModTime()
				if mod.Equal(lastSeen) {
					continue
				}
				lastSeen = mod

				s.mu.Lock()
				own := mod.Equal(s.lastWrite)
				s.mu.Unlock()
				if own {
					continue
				}

				s.logger.Debug().Msg("User snapshot changed externally")
				signals.EmitSnapshotChanged()

			case <-s.watchStop:
				return
			}
		}
	}()
}
