package cache

import (
	"testing"
)

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{
			name:  "single part",
			parts: []string{"timeline"},
		},
		{
			name:  "multiple parts",
			parts: []string{"timeline", "viewer", "42"},
		},
		{
			name:  "empty parts",
			parts: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed1 := HashKey(tt.parts...)
			hashed2 := HashKey(tt.parts...)

			// Hash should be consistent
			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}

			// Hash should be 32 characters (MD5 hex)
			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}
}

func TestHashKeyDistinct(t *testing.T) {
	if HashKey("timeline", "viewer", "1") == HashKey("timeline", "viewer", "2") {
		t.Error("HashKey() should differ for different parts")
	}
}

func TestCache_NamespaceKey(t *testing.T) {
	cache := &Cache{}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "simple key",
			key:      "timeline",
			expected: "porchlight:timeline",
		},
		{
			name:     "already namespaced",
			key:      "porchlight:timeline",
			expected: "porchlight:timeline",
		},
		{
			name:     "key with colon",
			key:      "timeline:42",
			expected: "porchlight:timeline:42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cache.NamespaceKey(tt.key); got != tt.expected {
				t.Errorf("NamespaceKey(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}
