package metrics

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

type (
	Client interface {
		Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue)
		Observe(ctx context.Context, key string, value float64, attributes ...attribute.KeyValue)
		Handler() http.Handler
		Shutdown(ctx context.Context) error
	}
)

// SanitizeName turns a dotted key such as "queries.listpersons.success"
// into a valid exposition name.
func SanitizeName(namespace, key string) string {
	var b strings.Builder

	if namespace != "" {
		b.WriteString(namespace)
		b.WriteByte('_')
	}

	for _, r := range strings.ToLower(key) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	return b.String()
}

// LabelNames returns the sorted attribute keys.
func LabelNames(attributes []attribute.KeyValue) []string {
	names := make([]string, 0, len(attributes))
	for _, attr := range attributes {
		names = append(names, SanitizeName("", string(attr.Key)))
	}

	sort.Strings(names)

	return names
}

// LabelValues returns the attribute values keyed by sanitized name.
func LabelValues(attributes []attribute.KeyValue) map[string]string {
	values := make(map[string]string, len(attributes))
	for _, attr := range attributes {
		values[SanitizeName("", string(attr.Key))] = attr.Value.Emit()
	}

	return values
}
