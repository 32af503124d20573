package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/csight/csight/internal/source"
)

// Fingerprint returns a stable cache and single-flight key for the
// request: a sha256 over the normalized text, the sorted entity sets,
// and every retrieval setting that changes the answer. Two requests
// with equal fingerprints are interchangeable.
func (r *Request) Fingerprint() string {
	var b strings.Builder

	b.WriteString("text=")
	b.WriteString(normalizeText(r.Text))
	b.WriteString(";fn=")
	b.WriteString(sortedJoin(r.Functions))
	b.WriteString(";file=")
	b.WriteString(sortedJoin(r.Files))
	b.WriteString(";kw=")
	b.WriteString(sortedJoin(r.Keywords))

	for _, k := range source.Kinds() {
		s := r.Sources[k]
		fmt.Fprintf(&b, ";%s=%t,%d,%g", k, s.Enabled, s.TopK, s.MinScore)
	}
	fmt.Fprintf(&b, ";top=%d;rerank=%t", r.FinalTopK, r.Rerank)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// normalizeText lowercases and collapses whitespace so trivially
// reworded queries share a cache entry.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func sortedJoin(items []string) string {
	if len(items) == 0 {
		return ""
	}
	sorted := make([]string, len(items))
	copy(sorted, items)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
