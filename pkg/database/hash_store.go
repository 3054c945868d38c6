package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// HashCollection stores one document of registration hashes per guild
const HashCollection = "command_hashes"

const globalKey = "global"

type hashDocument struct {
	ID        string            `bson:"_id"`
	Hashes    map[string]string `bson:"hashes"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

// HashStore persists command registration hashes in MongoDB. Hashes are
// cached in memory so they stay readable while the database is offline.
type HashStore struct {
	db    *Database
	mu    sync.RWMutex
	cache map[string]map[string]string
}

// NewHashStore creates a HashStore over db
func NewHashStore(db *Database) *HashStore {
	return &HashStore{db: db, cache: make(map[string]map[string]string)}
}

func documentID(guildID string) string {
	if guildID == "" {
		return globalKey
	}
	return guildID
}

func copyHashes(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// LoadHashes returns the stored hashes of guildID; the empty ID is global
func (s *HashStore) LoadHashes(ctx context.Context, guildID string) (map[string]string, error) {
	id := documentID(guildID)

	s.mu.RLock()
	cached, ok := s.cache[id]
	s.mu.RUnlock()
	if ok {
		return copyHashes(cached), nil
	}

	col := s.db.Collection(HashCollection)
	if col == nil {
		return make(map[string]string), nil
	}

	var doc hashDocument
	err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading hashes of %s: %w", id, err)
	}

	s.mu.Lock()
	s.cache[id] = copyHashes(doc.Hashes)
	s.mu.Unlock()
	return copyHashes(doc.Hashes), nil
}

// SaveHashes replaces the stored hashes of guildID
func (s *HashStore) SaveHashes(ctx context.Context, guildID string, hashes map[string]string) error {
	id := documentID(guildID)

	s.mu.Lock()
	s.cache[id] = copyHashes(hashes)
	s.mu.Unlock()

	return s.db.upsert(ctx, HashCollection, bson.M{"_id": id}, bson.M{
		"hashes":    copyHashes(hashes),
		"updatedAt": time.Now(),
	})
}
