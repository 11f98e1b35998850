package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"github.com/forceu/mamupload/internal/models"
	"github.com/secure-io/sio-go"
	"golang.org/x/crypto/scrypt"
	"io"
)

// MetadataKey is added to the metadata of every encrypted file
const MetadataKey = "encryption"

// MetadataValue describes the format of an encrypted file
const MetadataValue = "aes256gcm-sio-scrypt"

const blockSize = 32
const saltSize = 16

// scrypt parameters as recommended for interactive logins
const scryptN = 32768
const scryptR = 8
const scryptP = 1

// ErrEmptyPassphrase is returned if no passphrase was provided
var ErrEmptyPassphrase = errors.New("empty passphrase provided")

// WrapFile returns a copy of file that is encrypted with a key derived from passphrase while being read.
// Every call to Open uses a new random salt and nonce, which are written in front of the ciphertext.
func WrapFile(file models.PendingFile, passphrase string) (models.PendingFile, error) {
	if passphrase == "" {
		return models.PendingFile{}, ErrEmptyPassphrase
	}
	metadata := make(map[string]string, len(file.Metadata)+1)
	for key, value := range file.Metadata {
		metadata[key] = value
	}
	metadata[MetadataKey] = MetadataValue
	return file.WithContent(CalculateEncryptedFilesize(file.Size), func() (io.ReadCloser, error) {
		reader, err := file.Open()
		if err != nil {
			return nil, err
		}
		encrypted, err := EncryptReader(reader, passphrase)
		if err != nil {
			_ = reader.Close()
			return nil, err
		}
		return &encryptedReadCloser{Reader: encrypted, Closer: reader}, nil
	}).WithMetadata(metadata), nil
}

type encryptedReadCloser struct {
	io.Reader
	io.Closer
}

// EncryptReader returns a reader that outputs the header followed by the encrypted content of input
func EncryptReader(input io.Reader, passphrase string) (io.Reader, error) {
	salt, err := getRandomData(saltSize)
	if err != nil {
		return nil, err
	}
	stream, err := getStream(passphrase, salt)
	if err != nil {
		return nil, err
	}
	nonce, err := getRandomData(stream.NonceSize())
	if err != nil {
		return nil, err
	}
	header := append(salt, nonce...)
	return io.MultiReader(bytes.NewReader(header), stream.EncryptReader(input, nonce, nil)), nil
}

// DecryptReader returns a reader that outputs the plaintext of a stream created by EncryptReader
func DecryptReader(input io.Reader, passphrase string) (io.Reader, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	salt := make([]byte, saltSize)
	_, err := io.ReadFull(input, salt)
	if err != nil {
		return nil, err
	}
	stream, err := getStream(passphrase, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, stream.NonceSize())
	_, err = io.ReadFull(input, nonce)
	if err != nil {
		return nil, err
	}
	return stream.DecryptReader(input, nonce, nil), nil
}

// CalculateEncryptedFilesize returns the size of the output of EncryptReader for a plaintext of the given size
func CalculateEncryptedFilesize(size int64) int64 {
	stream := sio.NewStream(getEmptyGcm(), sio.BufSize)
	return saltSize + int64(stream.NonceSize()) + size + stream.Overhead(size)
}

func getStream(passphrase string, salt []byte) (*sio.Stream, error) {
	cipherKey, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, blockSize)
	if err != nil {
		return nil, err
	}
	gcm, err := getGcm(cipherKey)
	if err != nil {
		return nil, err
	}
	return sio.NewStream(gcm, sio.BufSize), nil
}

func getGcm(cipherKey []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(cipherKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Only used for size calculations, the key is never used for encryption
func getEmptyGcm() cipher.AEAD {
	gcm, err := getGcm(make([]byte, blockSize))
	if err != nil {
		panic(err)
	}
	return gcm
}

func getRandomData(size int) ([]byte, error) {
	data := make([]byte, size)
	read, err := rand.Read(data)
	if err != nil {
		return []byte{}, err
	}
	if read != size {
		return []byte{}, errors.New("incorrect size written")
	}
	return data, nil
}
