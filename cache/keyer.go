package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	keySep  = "|"
	pairSep = "="
)

// BuildKey derives a deterministic cache key from a resource name and an
// unordered parameter set.
//
// Format: <resource>|<k1>=<v1>|<k2>=<v2>|
// where parameters are sorted by name and every component is query-escaped,
// so the separators never occur inside a component. Each pair is terminated,
// which keeps the key for {id: "P1"} from being a prefix of {id: "P10"}.
//
// A nil value is written as the bare name (<k>|), so it differs from "".
// Parameter values should be primitives. Anything else is formatted with
// fmt.Sprint and carries no determinism guarantee.
func BuildKey(resource string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(ResourcePrefix(resource))
	for _, name := range names {
		b.WriteString(url.QueryEscape(name))
		if params[name] == nil {
			b.WriteString(keySep)
			continue
		}
		b.WriteString(pairSep)
		b.WriteString(url.QueryEscape(formatParam(params[name])))
		b.WriteString(keySep)
	}
	return b.String()
}

// ResourcePrefix returns the prefix shared by every key built for resource.
// Passing it to Engine.InvalidatePrefix drops every cached view of the resource.
func ResourcePrefix(resource string) string {
	return url.QueryEscape(resource) + keySep
}

// ParamKey is a shorthand for the common single-parameter key.
func ParamKey(resource, name string, value any) string {
	return BuildKey(resource, map[string]any{name: value})
}

func formatParam(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
