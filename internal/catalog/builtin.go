package catalog

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed builtin_rules.yaml
var builtinRulesYAML []byte

var builtinOnce = sync.OnceValue(func() *Catalog {
	c, err := Load(builtinRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("builtin rules corrupt: %v", err))
	}
	return c
})

// Builtin returns the embedded default catalog. The embedded rule file is
// compiled once and shared; it is validated at build time by the package
// tests, so a failure here is a programming error.
func Builtin() *Catalog {
	return builtinOnce()
}
