package rank

// Feature root tokens produced by FeatureRoot that are not path segments.
const (
	RootMeta        = "meta"
	RootPackage     = "root_package"
	RootAssets      = "root_assets"
	RootMixin       = "mixin"
	DefaultPriority = 50
	MetaPriority    = -10
)

// Bucket groups feature root tokens under one priority.
type Bucket struct {
	Priority int
	Tokens   []string
}

// DefaultBuckets is the fixed feature-root table, most foundational first.
var DefaultBuckets = []Bucket{
	// Entrypoints, config, datagen.
	{0, []string{RootPackage, "config", "registry", "init", "main", "datagen"}},
	// Core game objects.
	{10, []string{"block", "item", "entity", "fluid", "effect", "enchantment", "potion", "sound", RootAssets}},
	// Gameplay and data systems.
	{20, []string{"advancement", "recipe", "loot", "tag", "data", "networking", "component", "command", "event", "function", "data_maps"}},
	// Documentation and guides.
	{25, []string{"patchouli_books", "guidebook", "books"}},
	// World generation.
	{30, []string{"world", "biome", "structure", "dimension"}},
	// Client and visuals.
	{40, []string{"client", "screen", "gui", "render", "model", "texture", "particle", "animation", "geo", "blockstates"}},
	// Integration, compatibility, utilities.
	{90, []string{RootMixin, "integration", "compat", "util", "access", "accessor"}},
	// Localization.
	{99, []string{"lang"}},
}

// Table maps a feature root token to its priority bucket.
type Table map[string]int

// NewTable flattens buckets into a lookup table. A token listed in more than
// one bucket keeps its first (lowest) priority.
func NewTable(buckets []Bucket) Table {
	t := make(Table)
	for _, b := range buckets {
		for _, token := range b.Tokens {
			if _, ok := t[token]; !ok {
				t[token] = b.Priority
			}
		}
	}
	return t
}

// Priority returns the bucket for token, DefaultPriority when unknown.
func (t Table) Priority(token string) int {
	if token == RootMeta {
		return MetaPriority
	}
	if p, ok := t[token]; ok {
		return p
	}
	return DefaultPriority
}
