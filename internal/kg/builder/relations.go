package builder

import "github.com/mdgraph/backend/internal/kg/terms"

// DefaultRelation labels pairs the table has no entry for.
const DefaultRelation = "related"

// CategoryPair is a directional lookup key: the category of the entity seen
// first in a document, then the category of the one seen after it.
type CategoryPair struct {
	From terms.Category
	To   terms.Category
}

// RelationTable maps category pairs to relationship labels.
type RelationTable map[CategoryPair]string

func (t RelationTable) Lookup(from, to terms.Category) string {
	if label, ok := t[CategoryPair{From: from, To: to}]; ok {
		return label
	}
	return DefaultRelation
}

func DefaultRelationTable() RelationTable {
	return RelationTable{
		{terms.Frameworks, terms.Languages}:  "written-in",
		{terms.Frameworks, terms.Concepts}:   "uses",
		{terms.Frameworks, terms.Tools}:      "built-with",
		{terms.Frameworks, terms.Patterns}:   "implements",
		{terms.Frameworks, terms.Frameworks}: "related-to",

		{terms.Concepts, terms.Languages}:  "applied-in",
		{terms.Concepts, terms.Concepts}:   "related-to",
		{terms.Concepts, terms.Tools}:      "used-by",
		{terms.Concepts, terms.Frameworks}: "used-in",
		{terms.Concepts, terms.Patterns}:   "related-to",

		{terms.Languages, terms.Languages}:  "related-to",
		{terms.Languages, terms.Frameworks}: "used-by",
		{terms.Languages, terms.Concepts}:   "supports",
		{terms.Languages, terms.Tools}:      "used-with",
		{terms.Languages, terms.Patterns}:   "implements",

		{terms.Tools, terms.Languages}:  "works-with",
		{terms.Tools, terms.Frameworks}: "builds",
		{terms.Tools, terms.Concepts}:   "supports",
		{terms.Tools, terms.Tools}:      "integrates-with",
		{terms.Tools, terms.Patterns}:   "supports",

		{terms.Patterns, terms.Languages}:  "implemented-in",
		{terms.Patterns, terms.Frameworks}: "used-by",
		{terms.Patterns, terms.Concepts}:   "related-to",
		{terms.Patterns, terms.Tools}:      "used-with",
		{terms.Patterns, terms.Patterns}:   "related-to",
	}
}
