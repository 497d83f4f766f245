package analysis

// hasEmptyStrings walks the result payload and reports whether any scalar
// string field, at any depth, is empty. The output schema marks every field
// required, so an empty string means the research run produced a formally
// valid but hollow answer.
func hasEmptyStrings(value interface{}) bool {
	switch v := value.(type) {
	case string:
		return v == ""
	case map[string]interface{}:
		for _, item := range v {
			if hasEmptyStrings(item) {
				return true
			}
		}
	case []interface{}:
		for _, item := range v {
			if hasEmptyStrings(item) {
				return true
			}
		}
	}
	return false
}

func stringValue(content map[string]interface{}, key string) string {
	if s, ok := content[key].(string); ok {
		return s
	}
	return ""
}
