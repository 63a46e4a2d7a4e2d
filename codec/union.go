package codec

import (
	"fmt"
	"strconv"
)

// stringifyDiscriminator renders a document value the way a union's
// variant keys are written in a schema, so a lookup can match either
// a numeric, boolean, or string discriminator against the same map.
func stringifyDiscriminator(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		if i, ok := toInt64(v); ok {
			return strconv.FormatInt(i, 10)
		}
		if f, ok := toFloat64(v); ok {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return fmt.Sprintf("%v", v)
	}
}
