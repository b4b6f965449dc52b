package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// LegacySalt is the fixed salt of blobs written before per-vault salts existed.
// Such blobs have two segments: "<ivHex>:<cipherHex>".
const LegacySalt = "legacy_salt"

const (
	saltSize = 16
	keySize  = 32
)

var (
	ErrMalformedBlob    = errors.New("malformed encrypted blob")
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Params are the scrypt cost parameters used to stretch a password into an
// AES-256 key.
type Params struct {
	N int
	R int
	P int
}

// DefaultParams match the parameters legacy blobs were written with.
var DefaultParams = Params{N: 1 << 14, R: 8, P: 1}

// VaultCipher encrypts JSON-serializable content under a password.
// The output format is "<saltHex>:<ivHex>:<cipherHex>" (AES-256-CBC, PKCS#7).
type VaultCipher struct {
	params Params
	random io.Reader
}

// NewVaultCipher creates a cipher with the given scrypt parameters.
func NewVaultCipher(params Params) *VaultCipher {
	return &VaultCipher{
		params: params,
		random: rand.Reader,
	}
}

var defaultCipher = NewVaultCipher(DefaultParams)

// Encrypt encrypts content with the default parameters.
func Encrypt(content any, password string) (string, error) {
	return defaultCipher.Encrypt(content, password)
}

// Decrypt decrypts blob with the default parameters into out.
func Decrypt(blob, password string, out any) error {
	return defaultCipher.Decrypt(blob, password, out)
}

// Encrypt serializes content to JSON and encrypts it with a key derived from
// password and a fresh random salt. Every call uses a new IV.
func (c *VaultCipher) Encrypt(content any, password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(c.random, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	return c.seal(content, password, salt, true)
}

func (c *VaultCipher) seal(content any, password string, salt []byte, embedSalt bool) (string, error) {
	plaintext, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to serialize content: %w", err)
	}

	key, err := c.deriveKey(password, salt)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(c.random, iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	parts := []string{hex.EncodeToString(iv), hex.EncodeToString(ciphertext)}
	if embedSalt {
		parts = append([]string{hex.EncodeToString(salt)}, parts...)
	}

	return strings.Join(parts, ":"), nil
}

// Decrypt reverses Encrypt and also accepts legacy two-segment blobs.
// A wrong password and a damaged ciphertext both yield ErrDecryptionFailed.
func (c *VaultCipher) Decrypt(blob, password string, out any) error {
	salt, iv, ciphertext, err := parseBlob(blob)
	if err != nil {
		return err
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return ErrDecryptionFailed
	}

	key, err := c.deriveKey(password, salt)
	if err != nil {
		return err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	plaintext, ok := pkcs7Unpad(plaintext, aes.BlockSize)
	if !ok {
		return ErrDecryptionFailed
	}

	if err := json.Unmarshal(plaintext, out); err != nil {
		return ErrDecryptionFailed
	}

	return nil
}

func (c *VaultCipher) deriveKey(password string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), salt, c.params.N, c.params.R, c.params.P, keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

func parseBlob(blob string) (salt, iv, ciphertext []byte, err error) {
	parts := strings.Split(strings.TrimSpace(blob), ":")

	var saltHex, ivHex, cipherHex string
	switch len(parts) {
	case 2:
		ivHex, cipherHex = parts[0], parts[1]
		salt = []byte(LegacySalt)
	case 3:
		saltHex, ivHex, cipherHex = parts[0], parts[1], parts[2]
		salt, err = hex.DecodeString(saltHex)
		if err != nil || len(salt) == 0 {
			return nil, nil, nil, ErrMalformedBlob
		}
	default:
		return nil, nil, nil, ErrMalformedBlob
	}

	iv, err = hex.DecodeString(ivHex)
	if err != nil || len(iv) != aes.BlockSize {
		return nil, nil, nil, ErrMalformedBlob
	}

	ciphertext, err = hex.DecodeString(cipherHex)
	if err != nil {
		return nil, nil, nil, ErrMalformedBlob
	}

	return salt, iv, ciphertext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, false
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}

	return data[:len(data)-n], true
}
