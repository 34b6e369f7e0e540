// Package badge issues and reads the encrypted QR codes printed on meal
// badges. The payload names one entitlement; scan stations post the
// encrypted string back for validation.
package badge

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"

	"github.com/skip2/go-qrcode"

	"ms-catering/internal/catering/service"
)

type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

// Payload identifies one entitlement on a badge. For ticket holders the
// MealID travels with the badge since grant rows may not exist yet.
type Payload struct {
	Kind          service.EntitlementKind `json:"kind"`
	EntitlementID string                  `json:"entitlement_id"`
	MealID        string                  `json:"meal_id,omitempty"`
}

// GenerateQR renders the encrypted payload as a PNG QR code.
func (g *Generator) GenerateQR(payload Payload) ([]byte, error) {
	encrypted, err := g.Encrypt(payload)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

// Encrypt serializes and AES-encrypts a payload into the scannable string.
func (g *Generator) Encrypt(payload Payload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt and rejects anything that does not decode into a
// known entitlement kind.
func (g *Generator) Decrypt(encrypted string) (*Payload, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aes.BlockSize {
		return nil, errors.New("badge payload too short")
	}

	block, err := aes.NewCipher(g.secret)
	if err != nil {
		return nil, err
	}

	iv := ciphertext[:aes.BlockSize]
	data := make([]byte, len(ciphertext)-aes.BlockSize)
	stream := cipher.NewCFBDecrypter(block, iv)
	stream.XORKeyStream(data, ciphertext[aes.BlockSize:])

	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.New("invalid badge payload")
	}
	if !service.ValidKind(payload.Kind) || payload.EntitlementID == "" {
		return nil, errors.New("invalid badge payload")
	}
	return &payload, nil
}
