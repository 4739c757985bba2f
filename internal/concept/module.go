package concept

// DependencyKind tells whether a dependency endpoint is a declaration or a
// whole module.
type DependencyKind string

const (
	KindDeclaration DependencyKind = "declaration"
	KindModule      DependencyKind = "module"
)

// Dependency is a directed, cardinality-weighted reference edge between two
// global FQNs.
type Dependency struct {
	Target      string         `json:"fqn"`
	TargetKind  DependencyKind `json:"targetType"`
	Source      string         `json:"sourceFQN"`
	SourceKind  DependencyKind `json:"sourceType"`
	Cardinality int            `json:"cardinality"`
	Ref         *Ref           `json:"-"`
}

// NewDependency creates a single-occurrence dependency. The source kind is
// derived from the shape of the source FQN.
func NewDependency(source, target string, targetKind DependencyKind) Dependency {
	sourceKind := KindDeclaration
	if IsModule(source) {
		sourceKind = KindModule
	}
	return Dependency{
		Target:      target,
		TargetKind:  targetKind,
		Source:      source,
		SourceKind:  sourceKind,
		Cardinality: 1,
	}
}

// Key identifies the (source, target) pair that aggregation merges on.
func (d Dependency) Key() [2]string {
	return [2]string{d.Source, d.Target}
}

// ExportKind is the kind of an export statement.
type ExportKind string

const (
	ExportValue     ExportKind = "value"
	ExportType      ExportKind = "type"
	ExportNamespace ExportKind = "namespace"
)

// ExportDeclaration records one exported identifier of a module.
type ExportDeclaration struct {
	Identifier             string     `json:"identifier"`
	Alias                  string     `json:"alias,omitempty"`
	GlobalDeclFQN          string     `json:"globalDeclFqn,omitempty"`
	ImportSource           string     `json:"importSource,omitempty"`
	IsDefault              bool       `json:"isDefault"`
	Kind                   ExportKind `json:"kind"`
	SourceFilePathAbsolute string     `json:"sourceFilePathAbsolute"`
}

// ExportedName returns the name under which the declaration is visible to
// importers.
func (e ExportDeclaration) ExportedName() string {
	if e.IsDefault {
		return "default"
	}
	if e.Alias != "" {
		return e.Alias
	}
	return e.Identifier
}

// ImportDeclaration records one imported binding of a module.
type ImportDeclaration struct {
	Identifier             string     `json:"identifier"`
	Alias                  string     `json:"alias,omitempty"`
	IsDefault              bool       `json:"isDefault"`
	Kind                   ExportKind `json:"kind"`
	ImportSource           string     `json:"importSource"`
	TargetFQN              string     `json:"targetFqn"`
	SourceFilePathAbsolute string     `json:"sourceFilePathAbsolute"`
}

// ExternalModule is a module outside the analyzed projects.
type ExternalModule struct {
	FQN          FQN                   `json:"fqn"`
	Declarations []ExternalDeclaration `json:"declarations"`
}

// ExternalDeclaration is a declaration of an external module that the
// analyzed code depends on.
type ExternalDeclaration struct {
	FQN  FQN    `json:"fqn"`
	Name string `json:"name"`
}

// Module is one analyzed source file. Path is the project-relative path in
// graph form (no leading ".").
type Module struct {
	FQN  FQN    `json:"fqn"`
	Path string `json:"path"`
}

// Project is one analyzed TypeScript project.
type Project struct {
	RootPath    string   `json:"projectRoot"`
	ConfigPath  string   `json:"configPath,omitempty"`
	SourceFiles []string `json:"sourceFiles"`
	References  []string `json:"references"`
}

func (Dependency) ConceptID() ID          { return IDDependency }
func (ExportDeclaration) ConceptID() ID   { return IDExportDeclaration }
func (ImportDeclaration) ConceptID() ID   { return IDImportDeclaration }
func (ExternalModule) ConceptID() ID      { return IDExternalModule }
func (ExternalDeclaration) ConceptID() ID { return IDExternalDeclaration }
func (Module) ConceptID() ID              { return IDModule }
func (Project) ConceptID() ID             { return IDProject }

func (m ExternalModule) QualifiedName() FQN      { return m.FQN }
func (d ExternalDeclaration) QualifiedName() FQN { return d.FQN }
func (m Module) QualifiedName() FQN              { return m.FQN }
