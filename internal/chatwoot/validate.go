package chatwoot

import (
	"github.com/tombee/chatwoot-connector/internal/operation"
)

// ValidateRequiredFields reports the required fields that are absent or hold a
// zero value (nil, "", 0 or false), in the order they were declared.
func ValidateRequiredFields(fields map[string]interface{}, required []string) error {
	var missing []string
	for _, name := range required {
		if isFalsy(fields[name]) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return operation.NewMissingFieldsError(missing)
	}
	return nil
}

func isFalsy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case float64:
		return v == 0
	case float32:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	case int32:
		return v == 0
	default:
		return false
	}
}
