package chatwoot

// RemoveEmptyFields returns a copy of fields without nil and empty-string
// values. Zero numbers and false are kept.
func RemoveEmptyFields(fields map[string]interface{}) map[string]interface{} {
	cleaned := make(map[string]interface{}, len(fields))
	for key, value := range fields {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		cleaned[key] = value
	}
	return cleaned
}
