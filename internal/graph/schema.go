package graph

// --- Enums ---

// EntityKind distinguishes the two C++ class-key keywords.
type EntityKind string

const (
	EntityKindClass  EntityKind = "class"
	EntityKindStruct EntityKind = "struct"
)

// DefaultVisibility returns the access level that applies before the first
// access label in a declaration body.
func (k EntityKind) DefaultVisibility() Visibility {
	if k == EntityKindStruct {
		return VisibilityPublic
	}
	return VisibilityPrivate
}

// Visibility is a C++ access specifier.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// Marker returns the PlantUML visibility marker.
func (v Visibility) Marker() string {
	switch v {
	case VisibilityPublic:
		return "+"
	case VisibilityProtected:
		return "#"
	default:
		return "-"
	}
}

// RelationKind classifies relationships between class entities.
type RelationKind string

const (
	RelationInheritance RelationKind = "inheritance"
	RelationComposition RelationKind = "composition"
	RelationAggregation RelationKind = "aggregation"
	RelationDependency  RelationKind = "dependency"
)

// AllRelationKinds lists every relationship kind in rendering order.
var AllRelationKinds = []RelationKind{
	RelationInheritance,
	RelationComposition,
	RelationAggregation,
	RelationDependency,
}

// ParseRelationKind maps a user-supplied name to a RelationKind.
func ParseRelationKind(s string) (RelationKind, bool) {
	for _, k := range AllRelationKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// KindSet is a relationship-kind filter. An empty set allows every kind.
type KindSet map[RelationKind]bool

// NewKindSet builds a filter from the given kinds.
func NewKindSet(kinds ...RelationKind) KindSet {
	s := make(KindSet, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

// Allows reports whether edges of kind k pass the filter.
func (s KindSet) Allows(k RelationKind) bool {
	return len(s) == 0 || s[k]
}

// --- Models ---

// Member is a data member of a class entity.
type Member struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Visibility Visibility `json:"visibility"`
}

// Param is one entry of a method parameter list. Name is empty for unnamed
// parameters.
type Param struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// Method is a member function declaration.
type Method struct {
	Name          string     `json:"name"`
	ReturnType    string     `json:"returnType,omitempty"`
	Params        []Param    `json:"params,omitempty"`
	Visibility    Visibility `json:"visibility"`
	IsVirtual     bool       `json:"isVirtual,omitempty"`
	IsPureVirtual bool       `json:"isPureVirtual,omitempty"`
	IsStatic      bool       `json:"isStatic,omitempty"`
	IsConst       bool       `json:"isConst,omitempty"`
	IsConstructor bool       `json:"isConstructor,omitempty"`
	IsDestructor  bool       `json:"isDestructor,omitempty"`
}

// ClassEntity is one extracted class or struct declaration.
type ClassEntity struct {
	Name    string     `json:"name"`
	Kind    EntityKind `json:"kind"`
	Bases   []string   `json:"bases,omitempty"`
	Fields  []Member   `json:"fields,omitempty"`
	Methods []Method   `json:"methods,omitempty"`
	File    string     `json:"file,omitempty"`
	Line    int        `json:"line,omitempty"`
}

// Edge is a directed, kind-tagged relationship between two entity names.
// To may name a type that is not part of the model.
type Edge struct {
	From  string       `json:"from"`
	To    string       `json:"to"`
	Kind  RelationKind `json:"kind"`
	Label string       `json:"label,omitempty"` // multiplicity, e.g. "*"
}

// Other returns the endpoint of e opposite to name.
func (e Edge) Other(name string) string {
	if e.From == name {
		return e.To
	}
	return e.From
}

// GraphStats summarizes a class graph.
type GraphStats struct {
	ClassCount    int `json:"classCount"`
	ExternalCount int `json:"externalCount"`
	EdgeCount     int `json:"edgeCount"`
}
