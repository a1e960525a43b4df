package postindex

import "strings"

// Post IDs arrive from the backend as 32-char hex strings while the index
// stores native UUIDs. Translation happens only at this boundary; callers
// never see the dashed form.

// ToNativeID converts a 32-char hex ID into dashed UUID form. IDs that
// already contain dashes, or have an unexpected length, pass through as-is.
func ToNativeID(hexID string) string {
	if strings.Contains(hexID, "-") {
		return hexID
	}
	if len(hexID) != 32 {
		return hexID
	}
	return hexID[:8] + "-" + hexID[8:12] + "-" + hexID[12:16] + "-" + hexID[16:20] + "-" + hexID[20:]
}

// FromNativeID strips dashes, returning the backend's hex form.
func FromNativeID(nativeID string) string {
	return strings.ReplaceAll(nativeID, "-", "")
}
