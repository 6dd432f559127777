package qr

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

var ErrEmptyPayload = errors.New("qr payload has no submission id")

// Payload is the canonical content of a verification QR code. The same
// structure is embedded at issuance and parsed back at redemption, so
// producer and consumer can never drift apart.
type Payload struct {
	SubmissionID string `json:"submission_id"`
}

// Encode serializes the payload to the JSON form embedded in the QR image.
func Encode(p Payload) (string, error) {
	if p.SubmissionID == "" {
		return "", ErrEmptyPayload
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Decode parses a scanned QR string back into a payload.
func Decode(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, err
	}
	if p.SubmissionID == "" {
		return Payload{}, ErrEmptyPayload
	}
	return p, nil
}

// FileName returns the stored image name for a submission's QR code.
func FileName(submissionID string) string {
	return fmt.Sprintf("qr-%s.png", submissionID)
}

// WriteImage renders the payload as a PNG under dir and returns the
// stored file name (not the full path).
func WriteImage(p Payload, dir string) (string, error) {
	content, err := Encode(p)
	if err != nil {
		return "", err
	}

	name := FileName(p.SubmissionID)
	if err := qrcode.WriteFile(content, qrcode.Medium, 256, filepath.Join(dir, name)); err != nil {
		return "", err
	}
	return name, nil
}
