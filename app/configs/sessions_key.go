package configs

import (
	"encoding/base64"
	"fmt"
	"io"

	"github.com/gorilla/securecookie"
)

type SessionKeys struct {
	AuthKey []byte
	EncKey  []byte
}

// LoadSessionKeys decodes APP_AUTH_KEY and APP_ENC_KEY. Outside production a
// missing pair is replaced by random keys, which invalidates sessions on restart.
func LoadSessionKeys(env ENV) (*SessionKeys, error) {
	if env.AppAuthKey == "" || env.AppEncKey == "" {
		if env.IsProduction() {
			return nil, fmt.Errorf("APP_AUTH_KEY and APP_ENC_KEY must be set in production")
		}
		return &SessionKeys{
			AuthKey: securecookie.GenerateRandomKey(64),
			EncKey:  securecookie.GenerateRandomKey(32),
		}, nil
	}

	authKey, err := base64.URLEncoding.DecodeString(env.AppAuthKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode APP_AUTH_KEY from Base64: %w", err)
	}
	encKey, err := base64.URLEncoding.DecodeString(env.AppEncKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode APP_ENC_KEY from Base64: %w", err)
	}

	if len(encKey) != 16 && len(encKey) != 24 && len(encKey) != 32 {
		return nil, fmt.Errorf("APP_ENC_KEY has invalid length %d after decoding, must be 16, 24 or 32 bytes", len(encKey))
	}

	return &SessionKeys{AuthKey: authKey, EncKey: encKey}, nil
}

// CSRFKey returns the 32 byte key for gorilla/csrf, derived from the session auth key when CSRF_KEY is unset.
func CSRFKey(env ENV, keys *SessionKeys) ([]byte, error) {
	if env.CSRFKey != "" {
		key, err := base64.URLEncoding.DecodeString(env.CSRFKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode CSRF_KEY from Base64: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("CSRF_KEY must decode to 32 bytes, got %d", len(key))
		}
		return key, nil
	}
	if keys == nil || len(keys.AuthKey) < 32 {
		return nil, fmt.Errorf("CSRF_KEY not set and no session auth key to derive it from")
	}
	return keys.AuthKey[:32], nil
}

// WriteNewSessionKeys generates a fresh key set and writes it in .env syntax to w.
func WriteNewSessionKeys(w io.Writer) error {
	authKey := securecookie.GenerateRandomKey(64)
	encKey := securecookie.GenerateRandomKey(32)
	csrfKey := securecookie.GenerateRandomKey(32)
	if authKey == nil || encKey == nil || csrfKey == nil {
		return fmt.Errorf("could not generate random keys")
	}

	_, err := fmt.Fprintf(w, "APP_AUTH_KEY=%s\nAPP_ENC_KEY=%s\nCSRF_KEY=%s\n",
		base64.URLEncoding.EncodeToString(authKey),
		base64.URLEncoding.EncodeToString(encKey),
		base64.URLEncoding.EncodeToString(csrfKey),
	)
	if err != nil {
		return fmt.Errorf("failed to write keys: %w", err)
	}
	return nil
}
