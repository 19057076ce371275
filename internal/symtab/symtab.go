// Package symtab holds the process-wide map from code address to resolved
// symbol name, plus a user-supplied name filter that accumulates matching
// addresses as symbols are observed.
package symtab

// Table is a process-wide mapping from code address to resolved symbol
// name, unique by address.
type Table struct {
	names map[uint32]string

	filterNames map[string]bool
	filterAddrs map[uint32]bool
}

// New returns an empty Table configured with the given filter names (API
// names whose addresses should be tracked once resolved).
func New(filterNames []string) *Table {
	fn := make(map[string]bool, len(filterNames))
	for _, n := range filterNames {
		fn[n] = true
	}
	return &Table{
		names:       make(map[uint32]string),
		filterNames: fn,
		filterAddrs: make(map[uint32]bool),
	}
}

// Register records a resolved symbol. If name matches one of the
// configured filter names, addr is added to the filter-address set.
func (t *Table) Register(addr uint32, name string) {
	t.names[addr] = name
	if t.filterNames[name] {
		t.filterAddrs[addr] = true
	}
}

// Lookup returns the resolved name for addr, if known.
func (t *Table) Lookup(addr uint32) (string, bool) {
	name, ok := t.names[addr]
	return name, ok
}

// Filtered reports whether addr was resolved to a name on the filter list.
func (t *Table) Filtered(addr uint32) bool {
	return t.filterAddrs[addr]
}

// Len returns the number of resolved symbols.
func (t *Table) Len() int {
	return len(t.names)
}

// Each calls fn once per resolved symbol. Iteration order is unspecified.
func (t *Table) Each(fn func(addr uint32, name string)) {
	for addr, name := range t.names {
		fn(addr, name)
	}
}

// Replace clears the table and repopulates it from entries, used when
// restoring a snapshot.
func (t *Table) Replace(entries map[uint32]string) {
	t.names = make(map[uint32]string, len(entries))
	for addr, name := range entries {
		t.names[addr] = name
	}
	t.filterAddrs = make(map[uint32]bool)
	for addr, name := range t.names {
		if t.filterNames[name] {
			t.filterAddrs[addr] = true
		}
	}
}

// Equal reports whether two tables hold identical address-to-name
// mappings, used by snapshot round-trip tests.
func (t *Table) Equal(other *Table) bool {
	if len(t.names) != len(other.names) {
		return false
	}
	for addr, name := range t.names {
		if other.names[addr] != name {
			return false
		}
	}
	return true
}
