package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainDataset = "insight/dataset/v1"
	DomainQuery   = "insight/query/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DatasetHash computes the content hash of a dataset.
// The hash covers the kind and every record in order, but not the dataset id,
// so the same records added under two ids share a hash.
func DatasetHash(kind Kind, records []Record) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"kind":    string(kind),
		"records": records,
	})
	if err != nil {
		return "", fmt.Errorf("DatasetHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDataset, canonical), nil
}

// QueryHash computes a stable fingerprint of a raw query document, used to
// correlate repeated queries in logs.
func QueryHash(raw any) (string, error) {
	canonical, err := MarshalCanonical(raw)
	if err != nil {
		return "", fmt.Errorf("QueryHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainQuery, canonical), nil
}
