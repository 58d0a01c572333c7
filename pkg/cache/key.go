package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
)

// BuildKey derives a deterministic cache key from an endpoint and its
// parameters. Params are sorted by name before hashing so call sites that
// build maps in different orders share one entry.
func BuildKey(endpoint string, params map[string]string) string {
	cleaned := strings.ReplaceAll(strings.Trim(endpoint, "/"), "/", "_")

	if len(params) == 0 {
		return "compay_market_" + cleaned
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var canonical strings.Builder
	for _, name := range names {
		canonical.WriteString(name)
		canonical.WriteByte('=')
		canonical.WriteString(params[name])
		canonical.WriteByte('&')
	}

	sum := sha1.Sum([]byte(canonical.String()))
	return "compay_market_" + cleaned + "_" + hex.EncodeToString(sum[:])
}
