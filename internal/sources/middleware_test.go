package sources

import "testing"

func TestIsDomainAllowed(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		domains []string
		want    bool
	}{
		{"exact match", "https://example.com/form", []string{"example.com"}, true},
		{"exact match with port", "https://example.com:8443", []string{"example.com"}, true},
		{"case insensitive", "https://EXAMPLE.com", []string{"Example.COM"}, true},
		{"different host", "https://evil.com", []string{"example.com"}, false},
		{"suffix is not a match", "https://notexample.com", []string{"example.com"}, false},
		{"wildcard matches subdomain", "https://forms.example.com", []string{"*.example.com"}, true},
		{"wildcard matches nested subdomain", "https://a.b.example.com", []string{"*.example.com"}, true},
		{"wildcard matches bare domain", "https://example.com", []string{"*.example.com"}, true},
		{"wildcard rejects other domain", "https://example.org", []string{"*.example.com"}, false},
		{"star allows everything", "https://anything.test", []string{"*"}, true},
		{"second entry matches", "https://b.test", []string{"a.test", "b.test"}, true},
		{"referer style origin", "https://example.com/contact?utm=1", []string{"example.com"}, true},
		{"empty origin", "", []string{"example.com"}, false},
		{"no domains", "https://example.com", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDomainAllowed(tt.origin, tt.domains); got != tt.want {
				t.Errorf("isDomainAllowed(%q, %v) = %v, want %v", tt.origin, tt.domains, got, tt.want)
			}
		})
	}
}

func TestGenerateAPIKey(t *testing.T) {
	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}

	if len(plaintext) != 4+64 {
		t.Errorf("plaintext length = %d, want %d", len(plaintext), 4+64)
	}
	if plaintext[:4] != "src_" {
		t.Errorf("plaintext prefix = %q, want src_", plaintext[:4])
	}
	if prefix != plaintext[:12] {
		t.Errorf("prefix = %q, want first 12 chars of key", prefix)
	}
	if hash != HashKey(plaintext) {
		t.Error("returned hash does not match HashKey of the plaintext")
	}

	other, _, _, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if other == plaintext {
		t.Error("two generated keys are identical")
	}
}
