// Small string-slice helpers shared across packages, mostly for comparing
// configured variable selections against source headers.
package util

// Diff returns the elements of s1 that are not present in s2.
func Diff(s1 []string, s2 []string) []string {
	result := make([]string, 0)
	for _, s := range s1 {
		if !Includes(s2, s) {
			result = append(result, s)
		}
	}

	return result
}

// Includes reports whether ss contains s.
func Includes(ss []string, s string) bool {
	for _, existing := range ss {
		if existing == s {
			return true
		}
	}

	return false
}
