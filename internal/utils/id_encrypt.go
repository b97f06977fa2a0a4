package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

func cipherBlock(key string) (cipher.Block, error) {
	k := []byte(key)
	if len(k) != 16 && len(k) != 24 && len(k) != 32 {
		return nil, fmt.Errorf("invalid key length: %d (must be 16/24/32)", len(k))
	}
	return aes.NewCipher(k)
}

// EncryptID turns a record id into an opaque, URL-safe portal token.
// A fresh IV is used on every call, so tokens for one id differ.
func EncryptID(id uuid.UUID, key string) (string, error) {
	block, err := cipherBlock(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(id))
	iv := ciphertext[:aes.BlockSize]
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to read random iv: %w", err)
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], id[:])

	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

func DecryptID(enc string, key string) (uuid.UUID, error) {
	if enc == "" {
		return uuid.Nil, fmt.Errorf("empty encrypted id")
	}
	ciphertext, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return uuid.Nil, fmt.Errorf("decode base64 failed: %w", err)
	}
	if len(ciphertext) != aes.BlockSize+16 {
		return uuid.Nil, fmt.Errorf("ciphertext has wrong length: %d", len(ciphertext))
	}

	block, err := cipherBlock(key)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	stream := cipher.NewCFBDecrypter(block, ciphertext[:aes.BlockSize])
	stream.XORKeyStream(id[:], ciphertext[aes.BlockSize:])
	return id, nil
}
