package meta

import (
	"os"
	"strings"
	"unicode"
)

// expandEnvExpr replaces every ${env.KEY} in value with the environment
// variable KEY, and every ${env.KEY:-fallback} with KEY or, when KEY is unset
// or empty, with fallback. Malformed expressions are kept literally.
func expandEnvExpr(value string) string {
	const prefix = "${env."
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(value[i:], prefix)
		if idx < 0 {
			b.WriteString(value[i:])
			break
		}
		b.WriteString(value[i : i+idx])
		startKey := i + idx + len(prefix)
		endKey := strings.IndexByte(value[startKey:], '}')
		if endKey < 0 {
			b.WriteString(value[i+idx:])
			break
		}
		expr := value[startKey : startKey+endKey]
		key, fallback, hasFallback := strings.Cut(expr, ":-")
		if !validKey(key) {
			// keep the prefix and rescan after it so nested expressions expand
			b.WriteString(value[i+idx : startKey])
			i = startKey
			continue
		}
		env := os.Getenv(key)
		if env == "" && hasFallback {
			env = fallback
		}
		b.WriteString(env)
		i = startKey + endKey + 1
	}
	return b.String()
}

func validKey(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}
