package normalize

import (
	"strings"

	"github.com/tassa-yoniso-manasi-karoto/go-philolex/encoding"
	"github.com/tassa-yoniso-manasi-karoto/go-philolex/schema"
)

// normalizeLatin implements spec §4.3's Latin rule: fold macrons and
// breves to ASCII, lowercase, then generate the i/j,u/v orthographic
// alternates. No external enrichment.
func normalizeLatin(raw string) (schema.CanonicalQuery, error) {
	folded := encoding.FoldMacrons(raw)
	canonical := strings.ToLower(folded)
	notes := []string{"folded_macrons", "lowercased"}

	alternates := encoding.OrthographicVariants(canonical)

	return schema.NewCanonicalQuery(raw, schema.Latin, canonical, schema.AsciiRoman, 1.0, notes, alternates...)
}
