// Package rank computes the semantic sort key that orders files in the
// generated document: well-known root files first, then loader trees, code
// before resources, and within those, feature areas from foundational to
// cosmetic. Directories are kept contiguous.
package rank

import (
	"path"
	"slices"
	"sort"
	"strings"
)

// Loader priorities.
const (
	LoaderWellKnown = 0
	LoaderRootFile  = 1
	LoaderMeta      = 90
	LoaderOther     = 99
)

// Root type priorities.
const (
	RootTypeCode     = 0
	RootTypeResource = 1
	RootTypeUntyped  = 2
)

// File priorities.
const (
	FileMeta     = -1
	FileRegistry = 0
	FileDefault  = 10
)

// DefaultFeatureKeywords are the project namespace fragments scanned for a feature root.
var DefaultFeatureKeywords = []string{
	"com/dawson/chunkpartyspreader/",
	"assets/chunkpartyspreader/",
	"data/chunkpartyspreader/",
	"data/c/",
}

var (
	wellKnownRootFiles = []string{"changelog.md", "readme.md", "readme_curseforge_style.md"}

	// Loader directories in priority order, starting at 2.
	loaderDirs = [][]string{
		{"common/"},
		{"fabric/"},
		{"neoforge/", "forge/"},
	}
	metaDirPrefix = ".github"

	codeTrees     = []string{"src/main/java", "src/main/kotlin"}
	resourceTrees = []string{"src/main/resources", "src/main/generated"}

	metaKeywords     = []string{"license", "readme", "fabric.mod.json", "mods.toml", "neoforge.mods.toml", "pack.mcmeta", "mixins.json"}
	registryKeywords = []string{"registry", "registries", "modblocks", "moditems", "modentities"}
	loaderWrappers   = []string{"fabric", "neoforge", "forge"}

	resourceAssetsPrefix = "src/main/resources/assets"
)

// Key is the multi-component sort key for one path.
type Key struct {
	Loader      int
	RootType    int
	Feature     int
	Directory   string
	File        int
	Filename    string
	FeatureRoot string // informational; not compared
	Path        string // original path, final tie-break
}

// Less orders keys component by component.
func (k Key) Less(o Key) bool {
	switch {
	case k.Loader != o.Loader:
		return k.Loader < o.Loader
	case k.RootType != o.RootType:
		return k.RootType < o.RootType
	case k.Feature != o.Feature:
		return k.Feature < o.Feature
	case k.Directory != o.Directory:
		return k.Directory < o.Directory
	case k.File != o.File:
		return k.File < o.File
	case k.Filename != o.Filename:
		return k.Filename < o.Filename
	}
	return k.Path < o.Path
}

// Ranker computes sort keys for a fixed keyword list and priority table.
type Ranker struct {
	keywords []string
	table    Table
}

// New returns a Ranker. Empty keywords fall back to DefaultFeatureKeywords and
// a nil table to the one built from DefaultBuckets.
func New(keywords []string, table Table) *Ranker {
	if len(keywords) == 0 {
		keywords = DefaultFeatureKeywords
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	if table == nil {
		table = NewTable(DefaultBuckets)
	}
	return &Ranker{keywords: lowered, table: table}
}

// Key computes the sort key for a slash-separated relative path.
func (r *Ranker) Key(relPath string) Key {
	lower := strings.ToLower(relPath)
	filename := path.Base(lower)
	directory := path.Dir(lower)
	if directory == "." {
		directory = ""
	}

	k := Key{
		Loader:    LoaderPriority(lower),
		RootType:  RootTypePriority(lower),
		Directory: directory,
		File:      FilePriority(filename),
		Filename:  filename,
		Path:      relPath,
	}

	if IsMetaFile(filename) {
		k.FeatureRoot = RootMeta
	} else {
		k.FeatureRoot = r.FeatureRoot(lower)
	}
	k.Feature = r.table.Priority(k.FeatureRoot)
	return k
}

// Sort orders paths in place by their keys. Keys are computed once per path.
func (r *Ranker) Sort(paths []string) {
	keys := make(map[string]Key, len(paths))
	for _, p := range paths {
		keys[p] = r.Key(p)
	}
	sort.SliceStable(paths, func(i, j int) bool {
		return keys[paths[i]].Less(keys[paths[j]])
	})
}

// FeatureRoot finds the classification token for a lowercased path. The first
// configured keyword contained in the path wins; the token is the segment after
// it, looking one level deeper past a loader wrapper segment. A keyword followed
// only by a file name yields RootPackage. Without a keyword hit, structural
// fallbacks apply and "" means unclassified.
func (r *Ranker) FeatureRoot(lower string) string {
	for _, kw := range r.keywords {
		idx := strings.Index(lower, kw)
		if idx < 0 {
			continue
		}
		remainder := lower[idx+len(kw):]
		if !strings.Contains(remainder, "/") {
			return RootPackage
		}
		parts := strings.Split(remainder, "/")
		if slices.Contains(loaderWrappers, parts[0]) && len(parts) > 1 {
			return parts[1]
		}
		return parts[0]
	}

	switch {
	case strings.Contains(lower, "mixin"):
		return RootMixin
	case strings.Contains(lower, resourceAssetsPrefix):
		return RootAssets
	}
	return ""
}

// LoaderPriority buckets a lowercased path by well-known file or top-level tree.
func LoaderPriority(lower string) int {
	if slices.Contains(wellKnownRootFiles, lower) {
		return LoaderWellKnown
	}
	if !strings.Contains(lower, "/") {
		return LoaderRootFile
	}
	for i, prefixes := range loaderDirs {
		for _, prefix := range prefixes {
			if strings.HasPrefix(lower, prefix) {
				return 2 + i
			}
		}
	}
	if strings.HasPrefix(lower, metaDirPrefix) {
		return LoaderMeta
	}
	return LoaderOther
}

// RootTypePriority puts source trees before resource trees and both before the rest.
func RootTypePriority(lower string) int {
	switch {
	case containsAny(lower, resourceTrees):
		return RootTypeResource
	case containsAny(lower, codeTrees):
		return RootTypeCode
	}
	return RootTypeUntyped
}

// IsMetaFile reports whether a lowercased file name is a license, readme,
// loader manifest or build descriptor.
func IsMetaFile(filename string) bool {
	return containsAny(filename, metaKeywords)
}

// FilePriority weights meta files first, registry-like files next.
func FilePriority(filename string) int {
	switch {
	case IsMetaFile(filename):
		return FileMeta
	case containsAny(filename, registryKeywords):
		return FileRegistry
	}
	return FileDefault
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
