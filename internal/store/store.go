package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/huddle/internal/domain"
)

// Bucket names
var (
	bucketSession = []byte("session")
	bucketLikes   = []byte("likes")
)

// Keys
const (
	keyCurrentSession = "current"
	keyLikedPosts     = "posts"
)

// ClientStore implements domain.Store using BoltDB.
type ClientStore struct {
	db     *bolt.DB
	mu     sync.RWMutex // Protects memory cache
	logger *slog.Logger

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// Option configures a ClientStore
type Option func(*ClientStore)

// WithLogger sets the logger used to report dropped blobs
func WithLogger(logger *slog.Logger) Option {
	return func(s *ClientStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewClientStore opens the store for the given auth endpoint. Each endpoint
// gets its own database so sessions from different servers never mix.
func NewClientStore(baseDir, endpointURL string, opts ...Option) (*ClientStore, error) {
	s := &ClientStore{cache: make(map[string][]byte), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	if baseDir == "" {
		// Memory-only mode (no persistence)
		return s, nil
	}

	dir := baseDir
	if endpointURL != "" {
		dir = filepath.Join(baseDir, hashEndpointURL(endpointURL))
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "huddle.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSession, bucketLikes} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func hashEndpointURL(endpointURL string) string {
	normalized := strings.TrimRight(strings.ToLower(endpointURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *ClientStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

// get decodes the value at bucket/key into dest. A value that exists but
// cannot be decoded is reported through the error.
func (s *ClientStore) get(bucket []byte, key string, dest any) (bool, error) {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	data, ok := s.cache[cacheKey]
	s.mu.RUnlock()

	if !ok && s.db != nil {
		err := s.db.View(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucket)
			if b == nil {
				return nil
			}
			if v := b.Get([]byte(key)); v != nil {
				data = make([]byte, len(v))
				copy(data, v)
			}
			return nil
		})
		if err != nil {
			return false, err
		}
		if data != nil {
			// Promote to memory cache
			s.mu.Lock()
			s.cache[cacheKey] = data
			s.mu.Unlock()
		}
	}

	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("corrupt %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

func (s *ClientStore) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucket).Put([]byte(key), data)
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()
	return nil
}

func (s *ClientStore) delete(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

// === Session ===

// LoadSession returns the persisted session. A corrupt blob is removed and
// reported as absent.
func (s *ClientStore) LoadSession() (*domain.Session, bool) {
	var sess domain.Session
	ok, err := s.get(bucketSession, keyCurrentSession, &sess)
	if err != nil {
		s.logger.Warn("dropping corrupt session blob", "error", err)
		_ = s.delete(bucketSession, keyCurrentSession)
		return nil, false
	}
	if !ok || sess.ID == 0 {
		return nil, false
	}
	return &sess, true
}

func (s *ClientStore) SaveSession(sess *domain.Session) error {
	if sess == nil {
		return s.ClearSession()
	}
	return s.set(bucketSession, keyCurrentSession, sess)
}

func (s *ClientStore) ClearSession() error {
	return s.delete(bucketSession, keyCurrentSession)
}

// === Liked posts ===

func (s *ClientStore) LoadLikedPosts() ([]int64, bool) {
	var ids []int64
	ok, err := s.get(bucketLikes, keyLikedPosts, &ids)
	if err != nil {
		s.logger.Warn("dropping corrupt liked posts blob", "error", err)
		_ = s.delete(bucketLikes, keyLikedPosts)
		return nil, false
	}
	return ids, ok
}

func (s *ClientStore) SaveLikedPosts(ids []int64) error {
	return s.set(bucketLikes, keyLikedPosts, ids)
}

func (s *ClientStore) ClearLikedPosts() error {
	return s.delete(bucketLikes, keyLikedPosts)
}

var _ domain.Store = (*ClientStore)(nil)
