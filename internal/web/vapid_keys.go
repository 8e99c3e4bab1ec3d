package web

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// PushVAPIDKeysFileName is the key file kept in the data directory.
const PushVAPIDKeysFileName = "web_push_vapid_keys.json"

// Uncompressed P-256 point and scalar sizes.
const (
	vapidPublicKeyLen  = 65
	vapidPrivateKeyLen = 32
)

// VAPIDKeys identifies this server to browser push services. Rotating the
// pair invalidates every stored subscription, so it is generated once and
// kept beside the database.
type VAPIDKeys struct {
	PublicKey  string    `json:"publicKey"`
	PrivateKey string    `json:"privateKey"`
	Subject    string    `json:"subject,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Validate checks that both keys decode to P-256 material of the right size.
func (k VAPIDKeys) Validate() error {
	if err := checkKeyLen("public", k.PublicKey, vapidPublicKeyLen); err != nil {
		return err
	}
	raw, _ := decodeVAPIDKey(k.PublicKey)
	if raw[0] != 0x04 {
		return errors.New("vapid public key is not an uncompressed point")
	}
	return checkKeyLen("private", k.PrivateKey, vapidPrivateKeyLen)
}

func checkKeyLen(kind, key string, want int) error {
	if key == "" {
		return fmt.Errorf("vapid %s key is empty", kind)
	}
	raw, err := decodeVAPIDKey(key)
	if err != nil {
		return fmt.Errorf("vapid %s key: %w", kind, err)
	}
	if len(raw) != want {
		return fmt.Errorf("vapid %s key is %d bytes, want %d", kind, len(raw), want)
	}
	return nil
}

// decodeVAPIDKey accepts base64url with or without padding.
func decodeVAPIDKey(key string) ([]byte, error) {
	if raw, err := base64.RawURLEncoding.DecodeString(key); err == nil {
		return raw, nil
	}
	return base64.URLEncoding.DecodeString(key)
}

// EnsurePushVAPIDKeys returns the keypair stored in dataDir, generating and
// saving a new one when none exists. A non-empty subject replaces the stored
// one. generated reports whether the pair is new.
func EnsurePushVAPIDKeys(dataDir, subject string) (keys VAPIDKeys, generated bool, err error) {
	dataDir = strings.TrimSpace(dataDir)
	if dataDir == "" {
		return VAPIDKeys{}, false, errors.New("data dir is required")
	}
	path := filepath.Join(dataDir, PushVAPIDKeysFileName)
	subject = strings.TrimSpace(subject)
	now := time.Now().UTC()

	keys, err = readVAPIDKeys(path)
	switch {
	case err == nil:
		if subject == "" || subject == keys.Subject {
			return keys, false, nil
		}
		keys.Subject = subject
		keys.UpdatedAt = now
		return keys, false, saveVAPIDKeys(path, keys)
	case !errors.Is(err, os.ErrNotExist):
		return VAPIDKeys{}, false, err
	}

	priv, pub, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return VAPIDKeys{}, false, fmt.Errorf("generate vapid keypair: %w", err)
	}
	keys = VAPIDKeys{
		PublicKey:  pub,
		PrivateKey: priv,
		Subject:    subject,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := saveVAPIDKeys(path, keys); err != nil {
		return VAPIDKeys{}, false, err
	}
	return keys, true, nil
}

// readVAPIDKeys loads path. A missing file yields an error matching
// os.ErrNotExist; a file with unusable keys is an error rather than a reason
// to regenerate.
func readVAPIDKeys(path string) (VAPIDKeys, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return VAPIDKeys{}, err
		}
		return VAPIDKeys{}, fmt.Errorf("read %s: %w", PushVAPIDKeysFileName, err)
	}
	var keys VAPIDKeys
	if err := json.Unmarshal(data, &keys); err != nil {
		return VAPIDKeys{}, fmt.Errorf("parse %s: %w", PushVAPIDKeysFileName, err)
	}
	keys.PublicKey = strings.TrimSpace(keys.PublicKey)
	keys.PrivateKey = strings.TrimSpace(keys.PrivateKey)
	keys.Subject = strings.TrimSpace(keys.Subject)
	if err := keys.Validate(); err != nil {
		return VAPIDKeys{}, fmt.Errorf("%s: %w", path, err)
	}
	return keys, nil
}

// saveVAPIDKeys writes keys owner-only through a temp file and rename.
func saveVAPIDKeys(path string, keys VAPIDKeys) error {
	if err := keys.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".vapid-*")
	if err != nil {
		return fmt.Errorf("create temp key file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write key file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
