package secret

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

var bracedVar = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnvStrict expands $VAR and ${VAR} from the process environment.
// Every ${VAR} must be set, otherwise ErrMissingEnv lists the missing names.
// $$ yields a literal $.
func ExpandEnvStrict(s string) (string, error) {
	return expand(s, os.LookupEnv)
}

func expand(s string, lookup func(string) (string, bool)) (string, error) {
	const dollar = "\x00dashcache-dollar\x00"
	s = strings.ReplaceAll(s, "$$", dollar)

	var missing []string
	for _, m := range bracedVar.FindAllStringSubmatch(s, -1) {
		if _, ok := lookup(m[1]); !ok && !slices.Contains(missing, m[1]) {
			missing = append(missing, m[1])
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	s = os.Expand(s, func(name string) string {
		v, _ := lookup(name)
		return v
	})
	return strings.ReplaceAll(s, dollar, "$"), nil
}
