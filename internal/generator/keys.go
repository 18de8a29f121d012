package generator

import "strings"

// KeyPool hands out API keys round-robin. Rotate is called after a 429 so
// the next attempt uses a different credential when there is one.
type KeyPool struct {
	keys   []string
	cursor int
}

func NewKeyPool(keys []string) *KeyPool {
	p := &KeyPool{}
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			p.keys = append(p.keys, k)
		}
	}
	return p
}

func (p *KeyPool) Len() int {
	return len(p.keys)
}

// Current returns the key under the cursor, or "" for an empty pool.
func (p *KeyPool) Current() string {
	if len(p.keys) == 0 {
		return ""
	}
	return p.keys[p.cursor]
}

// Rotate advances the cursor and returns the new current key.
func (p *KeyPool) Rotate() string {
	if len(p.keys) == 0 {
		return ""
	}
	p.cursor = (p.cursor + 1) % len(p.keys)
	return p.keys[p.cursor]
}
