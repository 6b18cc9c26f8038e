package document

import "strings"

// Document type labels stored in chunk metadata and used as search filters.
const (
	DocTypeCI3     = "ci3_documentation"
	DocTypeCI4     = "ci4_documentation"
	DocTypeUpgrade = "upgrade_guide"
	DocTypeModel   = "model_docs"
	DocTypeView    = "view_docs"
	DocTypeHelper  = "helper_docs"
	DocTypeLibrary = "library_docs"
	DocTypeGeneral = "general"
)

// DocTypes lists every known document type label.
var DocTypes = []string{
	DocTypeCI3,
	DocTypeCI4,
	DocTypeUpgrade,
	DocTypeModel,
	DocTypeView,
	DocTypeHelper,
	DocTypeLibrary,
	DocTypeGeneral,
}

// Classify derives the document type from a filename. Matching is
// case-insensitive and ordered: a name mentioning both ci3 and ci4 counts
// as CI4 documentation, upgrade/migration guides win over the per-topic
// categories, and anything unmatched falls back to general.
func Classify(filename string) string {
	name := strings.ToLower(filename)

	switch {
	case strings.Contains(name, "ci3") && !strings.Contains(name, "ci4"):
		return DocTypeCI3
	case strings.Contains(name, "ci4"):
		return DocTypeCI4
	case strings.Contains(name, "upgrade") || strings.Contains(name, "migration"):
		return DocTypeUpgrade
	case strings.Contains(name, "model"):
		return DocTypeModel
	case strings.Contains(name, "view"):
		return DocTypeView
	case strings.Contains(name, "helper"):
		return DocTypeHelper
	case strings.Contains(name, "library") || strings.Contains(name, "lib"):
		return DocTypeLibrary
	default:
		return DocTypeGeneral
	}
}

// ValidDocType reports whether s is a known document type label.
func ValidDocType(s string) bool {
	for _, t := range DocTypes {
		if s == t {
			return true
		}
	}
	return false
}
