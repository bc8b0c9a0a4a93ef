package cachekey

import (
	"encoding/hex"
	"sort"
	"strings"

	"lukechampine.com/blake3"
)

// digestLen is the number of hex characters kept from the parameter digest.
// 16 characters (64 bits) is plenty for the handful of distinct match ids a
// process ever sees.
const digestLen = 16

// Build derives a deterministic cache key from an endpoint identity and its
// query parameters. The same logical inputs always map to the same key:
// parameter order, key casing, and incidental whitespace do not matter.
//
// The key keeps the endpoint readable (it shows up in logs) and appends a
// short digest of the normalized parameters.
func Build(endpoint string, params map[string]string) string {
	digest := blake3.Sum256([]byte(Normalize(params)))
	return endpoint + ":" + hex.EncodeToString(digest[:])[:digestLen]
}

// Normalize flattens parameters into a canonical string form: keys
// lowercased and sorted, values whitespace-trimmed, pairs joined with '&'.
func Normalize(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}

	normalized := make([]string, 0, len(params))
	for k, v := range params {
		key := strings.ToLower(strings.TrimSpace(k))
		normalized = append(normalized, key+"="+strings.TrimSpace(v))
	}
	sort.Strings(normalized)

	return strings.Join(normalized, "&")
}
