// Package argbound determines where the router's own options end in a raw
// token stream. There is no reserved separator between router options and the
// tokens destined for Snakemake or the workflow, and an option value may look
// exactly like a flag, so the boundary cannot be found with a single scan.
package argbound

// OptionGrammar validates a prefix of the token stream. A successful
// validation returns the tokens the grammar did not recognize (possibly
// none). A failure means the prefix is incomplete or invalid as given, e.g.
// an option at the end of the prefix is still waiting for its value.
type OptionGrammar interface {
	Validate(tokens []string) (leftover []string, err error)
}

// DetectBoundary returns the index at which the router's options end.
//
// The candidate prefix grows one token at a time. A validation failure is
// never terminal: a longer prefix may supply a missing option value. The
// first prefix that validates with leftover tokens fixes the boundary just
// before the first leftover token. If the grammar consumes every prefix, the
// whole stream belongs to the router and the stream length is returned.
//
// An empty stream is validated once against the empty prefix and yields 1 so
// downstream offset arithmetic holds; callers must treat any boundary at or
// past the stream length as "consumed everything". Quadratic in the token
// count for pathological grammars, which is fine for a human-entered command
// line.
func DetectBoundary(tokens []string, grammar OptionGrammar) int {
	if len(tokens) == 0 {
		_, _ = grammar.Validate(nil)
		return 1
	}
	for end := 1; end <= len(tokens); end++ {
		leftover, err := grammar.Validate(tokens[:end])
		if err != nil {
			continue
		}
		if len(leftover) > 0 {
			return end - 1
		}
	}
	return len(tokens)
}
