// Package merchant extracts and canonicalizes counterparty names. The
// normalization algorithm is data-agnostic: the known-merchant dictionary
// and the known-UPI-handle registry load from external JSON files so new
// merchants never require a rebuild.
package merchant

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Dictionary maps raw merchant tokens to canonical display names. Lookup is
// case-insensitive and tries exact, then prefix, then substring matches.
// Tokens are scanned in sorted order so lookups are deterministic when more
// than one entry could match.
type Dictionary struct {
	entries map[string]string // lower-cased token -> canonical name
	tokens  []string          // sorted keys of entries
}

// NewDictionary builds a dictionary from token -> canonical name pairs.
// Canonical names are indexed under their own lower-cased form too, so a
// canonical name always resolves to itself.
func NewDictionary(entries map[string]string) *Dictionary {
	d := &Dictionary{entries: make(map[string]string, len(entries)*2)}
	for token, canonical := range entries {
		d.entries[strings.ToLower(strings.TrimSpace(token))] = canonical
		d.entries[strings.ToLower(canonical)] = canonical
	}
	d.tokens = make([]string, 0, len(d.entries))
	for token := range d.entries {
		d.tokens = append(d.tokens, token)
	}
	sort.Strings(d.tokens)
	return d
}

// LoadDictionary reads a JSON object of token -> canonical name pairs.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read merchant dictionary: %w", err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse merchant dictionary: %w", err)
	}
	return NewDictionary(entries), nil
}

// Lookup resolves a token to its canonical name. Exact matches win over
// prefix matches, which win over substring matches.
func (d *Dictionary) Lookup(token string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(token))
	if key == "" {
		return "", false
	}
	if canonical, ok := d.entries[key]; ok {
		return canonical, true
	}
	for _, entry := range d.tokens {
		if strings.HasPrefix(key, entry) {
			return d.entries[entry], true
		}
	}
	for _, entry := range d.tokens {
		if strings.Contains(key, entry) {
			return d.entries[entry], true
		}
	}
	return "", false
}

// Len returns the number of indexed tokens.
func (d *Dictionary) Len() int { return len(d.entries) }
