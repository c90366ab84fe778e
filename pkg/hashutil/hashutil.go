package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

type HashAlgo string

const (
	HashAlgoSHA256 HashAlgo = "sha256"
	HashAlgoBLAKE3 HashAlgo = "blake3"
)

// HashBytes returns the hash of bytes as a hex string using the specified algorithm.
// Supported algorithms: "sha256" and "blake3".
func HashBytes(data []byte, algo HashAlgo) (string, error) {
	switch algo {
	case HashAlgoSHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	case HashAlgoBLAKE3:
		sum := blake3.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// Fingerprint returns "<algo>:<hex>" so that hashes produced with
// different algorithms never compare equal.
func Fingerprint(data []byte, algo HashAlgo) (string, error) {
	sum, err := HashBytes(data, algo)
	if err != nil {
		return "", err
	}
	return string(algo) + ":" + sum, nil
}

// ShortID returns the first n hex characters of the BLAKE3 hash of s.
// Used for stable, human-sized identifiers of URLs in reports.
func ShortID(s string, n int) string {
	sum := blake3.Sum256([]byte(s))
	full := hex.EncodeToString(sum[:])
	if n <= 0 || n > len(full) {
		return full
	}
	return full[:n]
}
