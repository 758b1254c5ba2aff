package transaction

// Metadata is the per-container transaction metadata carried across
// state transitions and into the agent parameter blob (spec.md §4.5),
// grounded on original_source's TransactionMetadata.
type Metadata struct {
	ForeignPkgs  map[string]bool
	ResidentPkgs map[string]bool
	Deps         []string
	Queue        []string
	Mode         Mode
	Flags        Flags
}

// NewMetadata seeds metadata with the packages queue originally passed
// on the command line.
func NewMetadata(queue []string) *Metadata {
	return &Metadata{
		ForeignPkgs:  make(map[string]bool),
		ResidentPkgs: make(map[string]bool),
		Queue:        append([]string(nil), queue...),
	}
}
