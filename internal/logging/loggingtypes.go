package logging

// GetLogType creates a slice of key/value pairs which can be passed to the Log* methods.
// It takes up to 3 arguments: subtype, the slug or id the entry is about, and a request id.
// Empty values are skipped.
func GetLogType(logType ...string) []any {
	keys := []string{"subType", "contextId1", "correlationId"}

	temp := make([]any, 0, 2*len(keys))
	for i, value := range logType {
		if i >= len(keys) {
			break
		}
		if len(value) == 0 {
			continue
		}
		temp = append(temp, keys[i], value)
	}
	return temp
}

func GetLogTypeInitialization() []any {
	return GetLogType("initialization")
}
