package loader

// Feature names a capability a loader plug-in may or may not provide for a
// given binary (spec §6: "Loader advertises its capabilities as features so
// that downstream processors can check availability").
type Feature string

const (
	// FeatureSymbols means Program.Symbols is populated.
	FeatureSymbols Feature = "loader.symbols"
	// FeatureSourceLines means per-instruction source-line resolution is
	// available (optional; no loader in this repo provides it yet).
	FeatureSourceLines Feature = "loader.source-lines"
	// FeatureRegisterUsage means per-instruction read/written register sets
	// are available without re-decoding (optional).
	FeatureRegisterUsage Feature = "loader.register-usage"
)

// Symbol names an address range resolved from the binary's symbol table.
type Symbol struct {
	Name  string
	Addr  uint64
	Size  uint64
	IsFun bool
}

// Config carries loader-plugin options (e.g. an alternate ABI or an
// explicit entry-point override). Left minimal; concrete plugins may extend
// behavior via their own functional options instead.
type Config struct {
	// EntryOverride, if non-zero, replaces the ELF header's e_entry.
	EntryOverride uint64
}

// Plugin is the contract a binary loader plug-in must satisfy (spec §6).
// Plugin only standardizes how the driver obtains a Program and which
// optional features it can rely on; the format parsing itself is each
// plugin's own (ELFPlugin wraps Load).
type Plugin interface {
	// Name identifies the plugin, e.g. "elf/arm64".
	Name() string
	// Supports reports whether this plugin can load the given path without
	// fully parsing it (e.g. by checking a magic number or extension).
	Supports(path string) bool
	// Features reports which optional capabilities this plugin provides.
	Features() []Feature
	// Load parses path and returns a ready-to-run Program.
	Load(path string, cfg Config) (*Program, error)
}

// Registry is the capability table spec §9 calls for: loaders register
// themselves, and discovery is a search over the registered plugins rather
// than a hardcoded format list.
type Registry struct {
	plugins []Plugin
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a plugin to the registry. Plugins are tried in registration
// order by Find.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
}

// Find returns the first registered plugin that supports path.
func (r *Registry) Find(path string) (Plugin, bool) {
	for _, p := range r.plugins {
		if p.Supports(path) {
			return p, true
		}
	}
	return nil, false
}

// Plugins returns all registered plugins, in registration order.
func (r *Registry) Plugins() []Plugin {
	out := make([]Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}
