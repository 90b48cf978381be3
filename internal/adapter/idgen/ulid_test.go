package idgen

import (
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestGenerateProducesValidUniqueIDs(t *testing.T) {
	g := NewULIDGenerator()

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := g.Generate()
		if _, err := ulid.Parse(id); err != nil {
			t.Fatalf("generated ID %q is not a ULID: %v", id, err)
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}
