package ast

// SourceKind identifies where a data access reads from.
type SourceKind string

const (
	SourceInput     SourceKind = "input"     // $input
	SourceNode      SourceKind = "node"      // $node('id')
	SourceEnv       SourceKind = "env"       // $env
	SourceSystem    SourceKind = "system"    // $system
	SourceExecution SourceKind = "execution" // $execution
	SourceWorkflow  SourceKind = "workflow"  // $workflow
	SourceVar       SourceKind = "var"       // foreach iterator
)

// SourceNames lists the sigil names accepted after '$'.
var SourceNames = []string{"input", "node", "env", "system", "execution", "workflow"}

// DataSource is the root of a data access. Name holds the node id for
// SourceNode and the iterator name for SourceVar.
type DataSource struct {
	Kind SourceKind
	Name string
}

// Input returns the $input source.
func Input() DataSource { return DataSource{Kind: SourceInput} }

// NodeSource returns the $node('id') source.
func NodeSource(id string) DataSource { return DataSource{Kind: SourceNode, Name: id} }

// Var returns a loop variable source.
func Var(name string) DataSource { return DataSource{Kind: SourceVar, Name: name} }

// String returns the source as written in a template.
func (s DataSource) String() string {
	switch s.Kind {
	case SourceNode:
		return "$node('" + s.Name + "')"
	case SourceVar:
		return s.Name
	default:
		return "$" + string(s.Kind)
	}
}
