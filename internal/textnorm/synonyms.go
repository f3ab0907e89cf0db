package textnorm

// techSynonyms maps a family head term to the terms that imply it.
// Families cover the failure vocabulary seen in hardware-verification
// logs; the table is deliberately small and fixed.
var techSynonyms = map[string][]string{
	"memory":  {"mem", "ram", "heap", "allocation", "malloc", "alloc"},
	"crash":   {"segfault", "sigsegv", "sigabrt", "abort", "coredump", "panic", "fault"},
	"timeout": {"hang", "freeze", "stuck", "deadlock", "unresponsive", "blocked"},
	"null":    {"nullptr", "nil", "none", "undefined", "invalid"},
	"gpu":     {"graphics", "render", "display", "cuda", "opencl", "vulkan"},
	"fail":    {"failure", "failed", "failing", "error", "unsuccessful"},
	"network": {"socket", "connection", "tcp", "udp", "http", "https"},
	"io":      {"read", "write", "file", "disk", "storage"},
	"assert":  {"assertion", "invariant", "precondition", "postcondition"},
	"driver":  {"kernel", "module", "firmware"},
}

// synonymFamily indexes every member (and head) back to its family head.
var synonymFamily = func() map[string]string {
	idx := make(map[string]string)
	for head, members := range techSynonyms {
		idx[head] = head
		for _, m := range members {
			idx[m] = head
		}
	}
	return idx
}()

// ExpandSynonyms returns a copy of s with the full synonym family of
// every member token added as synthetic tokens. Tokens already present
// keep their exact status.
func (s *TokenSet) ExpandSynonyms() *TokenSet {
	out := s.clone()
	for tok := range s.all {
		head, ok := synonymFamily[tok]
		if !ok {
			continue
		}
		out.add(head, true)
		for _, m := range techSynonyms[head] {
			out.add(m, true)
		}
	}
	return out
}

// SynonymFamily returns the family head for a token, or "" when the
// token belongs to no family.
func SynonymFamily(tok string) string {
	return synonymFamily[tok]
}
