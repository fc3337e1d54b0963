package profiles

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"steamshelf/pkg/models"
)

// Single bucket, two logical keys: the consent flag and the saved
// profile list serialized as one JSON value, mirroring how a browser
// would keep this in localStorage.
var (
	bucketStorage = []byte("storage")

	keyConsent  = []byte("consent")
	keyProfiles = []byte("profiles")
)

// Store keeps a short list of saved profiles behind an explicit consent
// flag. It is a UI-adjacent convenience store, not a system of record:
// every storage failure is logged and reported as op-failed, never
// propagated, and all reads/writes except SetConsent(true) are no-ops
// while consent is absent.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure profiles dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open profiles db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketStorage)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create storage bucket: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the store is usable (readiness checks).
func (s *Store) Ping() error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketStorage) == nil {
			return fmt.Errorf("storage bucket missing")
		}
		return nil
	})
}

func (s *Store) HasConsent() bool {
	consent := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketStorage).Get(keyConsent)
		consent = string(v) == "true"
		return nil
	})
	if err != nil {
		log.Printf("[profiles] consent read failed: %v", err)
		return false
	}
	return consent
}

// SetConsent grants or revokes storage consent. Revoking also purges
// every stored profile.
func (s *Store) SetConsent(consent bool) bool {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketStorage)
		if consent {
			return b.Put(keyConsent, []byte("true"))
		}
		if err := b.Delete(keyConsent); err != nil {
			return err
		}
		return b.Delete(keyProfiles)
	})
	if err != nil {
		log.Printf("[profiles] set consent failed: %v", err)
		return false
	}
	return true
}

// List returns all saved profiles, or empty without consent.
func (s *Store) List() []models.SavedProfile {
	if !s.HasConsent() {
		return []models.SavedProfile{}
	}

	out := []models.SavedProfile{}
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketStorage).Get(keyProfiles)
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &out)
	})
	if err != nil {
		log.Printf("[profiles] list failed: %v", err)
		return []models.SavedProfile{}
	}
	return out
}

// Upsert inserts or replaces the profile with the same SteamID64.
func (s *Store) Upsert(p models.SavedProfile) bool {
	if !s.HasConsent() {
		return false
	}

	profiles := s.List()
	replaced := false
	for i := range profiles {
		if profiles[i].SteamID64 == p.SteamID64 {
			profiles[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		profiles = append(profiles, p)
	}

	return s.writeProfiles(profiles)
}

// Remove deletes the profile with the given id. Removing an unknown id
// still succeeds.
func (s *Store) Remove(steamID64 string) bool {
	if !s.HasConsent() {
		return false
	}

	profiles := s.List()
	filtered := profiles[:0]
	for _, p := range profiles {
		if p.SteamID64 != steamID64 {
			filtered = append(filtered, p)
		}
	}

	return s.writeProfiles(filtered)
}

func (s *Store) writeProfiles(profiles []models.SavedProfile) bool {
	data, err := json.Marshal(profiles)
	if err != nil {
		log.Printf("[profiles] marshal failed: %v", err)
		return false
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketStorage).Put(keyProfiles, data)
	})
	if err != nil {
		log.Printf("[profiles] write failed: %v", err)
		return false
	}
	return true
}
