package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	saltSize  = 16
	nonceSize = 24
	keyInfo   = "rooms-client file store"
)

var (
	ErrDecrypt       = errors.New("failed to decrypt store: wrong secret or corrupted file")
	ErrNotEncrypted  = errors.New("store file is not encrypted but a secret was given")
	ErrEncryptedFile = errors.New("store file is encrypted but no secret was given")
)

// sealedFile is the on-disk form when a secret is configured
type sealedFile struct {
	Salt string `json:"salt"`
	Box  string `json:"box"`
}

// FileStore keeps all values in one JSON file. With a secret the file is
// sealed with NaCl secretbox under a key derived from the secret with HKDF.
// Writes go to a temp file that is renamed over the old one.
type FileStore struct {
	mu   sync.Mutex
	path string
	salt []byte
	key  *[32]byte
}

// NewFileStore opens the store at path. An empty secret stores plain JSON.
func NewFileStore(path, secret string) (*FileStore, error) {
	s := &FileStore{path: path}
	if secret == "" {
		if _, err := s.load(); err != nil {
			return nil, err
		}
		return s, nil
	}

	salt, err := s.existingSalt()
	if err != nil {
		return nil, err
	}
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	}
	key, err := deriveKey(secret, salt)
	if err != nil {
		return nil, err
	}
	s.salt = salt
	s.key = key

	// fail early on a wrong secret
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func deriveKey(secret string, salt []byte) (*[32]byte, error) {
	h := hkdf.New(sha256.New, []byte(secret), salt, []byte(keyInfo))
	var key [32]byte
	if _, err := io.ReadFull(h, key[:]); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return &key, nil
}

func (s *FileStore) Get(_ context.Context, key string) (v string, ok bool, err error) {
	defer func(start time.Time) { observe("file", "get", start, err) }(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok = values[key]
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) (err error) {
	defer func(start time.Time) { observe("file", "set", start, err) }(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.save(values)
}

func (s *FileStore) Delete(_ context.Context, key string) (err error) {
	defer func(start time.Time) { observe("file", "delete", start, err) }(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.save(values)
}

// readRaw returns the file content, or nil when the file does not exist
func (s *FileStore) readRaw() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	return data, nil
}

func (s *FileStore) existingSalt() ([]byte, error) {
	data, err := s.readRaw()
	if err != nil || len(data) == 0 {
		return nil, err
	}
	var sealed sealedFile
	if err := json.Unmarshal(data, &sealed); err != nil || sealed.Salt == "" {
		return nil, ErrNotEncrypted
	}
	salt, err := base64.StdEncoding.DecodeString(sealed.Salt)
	if err != nil || len(salt) != saltSize {
		return nil, ErrDecrypt
	}
	return salt, nil
}

func (s *FileStore) load() (map[string]string, error) {
	values := make(map[string]string)

	data, err := s.readRaw()
	if err != nil || len(data) == 0 {
		return values, err
	}

	if s.key != nil {
		if data, err = s.open(data); err != nil {
			return nil, err
		}
	} else if isSealed(data) {
		return nil, ErrEncryptedFile
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode store file: %w", err)
	}
	return values, nil
}

func isSealed(data []byte) bool {
	var envelope struct {
		Salt *string `json:"salt"`
		Box  *string `json:"box"`
	}
	return json.Unmarshal(data, &envelope) == nil && envelope.Salt != nil && envelope.Box != nil
}

func (s *FileStore) open(data []byte) ([]byte, error) {
	var sealed sealedFile
	if err := json.Unmarshal(data, &sealed); err != nil {
		return nil, ErrNotEncrypted
	}
	box, err := base64.StdEncoding.DecodeString(sealed.Box)
	if err != nil || len(box) < nonceSize {
		return nil, ErrDecrypt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, s.key)
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}

func (s *FileStore) seal(plain []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], plain, &nonce, s.key)
	return json.Marshal(sealedFile{
		Salt: base64.StdEncoding.EncodeToString(s.salt),
		Box:  base64.StdEncoding.EncodeToString(box),
	})
}

func (s *FileStore) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	if s.key != nil {
		if data, err = s.seal(data); err != nil {
			return err
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".store-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
