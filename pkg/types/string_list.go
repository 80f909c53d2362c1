package types

// StringList is a jsonb-persisted list of strings (service-area pin codes,
// device photo references).
type StringList []string

// Contains reports whether value is a member of the list.
func (l StringList) Contains(value string) bool {
	for _, item := range l {
		if item == value {
			return true
		}
	}
	return false
}
