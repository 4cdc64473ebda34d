package swaggerkit

// SpecMutator edits the decoded doc.json in place before it is served
type SpecMutator func(map[string]any)

// package-level registry, appended at module construction and read at serve
var mutators []SpecMutator

// Register adds a spec mutator for swagger JSON. Modules call this during
// construction so their doc tweaks ride along without touching swaggerkit
func Register(m SpecMutator) {
	if m != nil {
		mutators = append(mutators, m)
	}
}
