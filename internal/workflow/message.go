package workflow

import "eie-registry/internal/model"

// SuccessMessageKey picks the confirmation banner shown after a status action.
// The key is "<role>.<action>", suffixed with ".mixed" when the selected
// products did not all share the same prior status.
func SuccessMessageKey(a Action, role string, prior []model.ProductStatus) string {
	key := role + "." + string(a)
	if !uniform(prior) {
		key += ".mixed"
	}
	return key
}

func uniform(statuses []model.ProductStatus) bool {
	for i := 1; i < len(statuses); i++ {
		if statuses[i] != statuses[0] {
			return false
		}
	}
	return true
}
