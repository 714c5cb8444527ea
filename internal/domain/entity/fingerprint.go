package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
)

// Fingerprint is a content-derived identifier for an uploaded image. Identical
// bytes always produce the same fingerprint, so re-uploads by any user hit the
// same RecognitionStore entry.
type Fingerprint string

// minImageSize guards against truncated uploads that cannot be a real photo.
const minImageSize = 64

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ComputeFingerprint hashes raw image bytes with SHA-256. It rejects empty or
// non-image payloads with ErrInvalidInput and has no other failure path.
func ComputeFingerprint(data []byte) (Fingerprint, error) {
	if len(data) < minImageSize {
		return "", ErrInvalidInput
	}
	if !imageTypes[http.DetectContentType(data)] {
		return "", ErrInvalidInput
	}
	sum := sha256.Sum256(data)
	return Fingerprint(hex.EncodeToString(sum[:])), nil
}

// DetectImageMIME returns the sniffed MIME type for image bytes, defaulting
// to JPEG when the sniffer is unsure.
func DetectImageMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if imageTypes[mime] {
		return mime
	}
	return "image/jpeg"
}
