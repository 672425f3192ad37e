package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

const defaultKeyPrefix = "retailbi"

func keyPrefix(prefix string) string {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		return defaultKeyPrefix
	}
	return prefix
}

// ReportKey addresses one computed report. Dataset IDs are positional, and
// params is JSON-encoded, so map keys are always in sorted order.
func ReportKey(prefix, name string, datasetIDs []string, params any) (string, error) {
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode cache key params: %w", err)
	}

	raw := strings.Join(datasetIDs, ",") + "|" + string(encoded)
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:report:%s:%s", keyPrefix(prefix), name, hex.EncodeToString(hash[:])), nil
}
