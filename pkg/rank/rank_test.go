package rank

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

const pkgRoot = "src/main/java/com/dawson/chunkpartyspreader/"

func TestRanker_Sort_SemanticOrder(t *testing.T) {
	want := []string{
		"README.md",
		"CHANGELOG.md",
		"LICENSE",
		"build.gradle",
		".github/workflows/build.yml",
		pkgRoot + "ChunkPartySpreader.java",
		pkgRoot + "block/ModBlocks.java",
		pkgRoot + "block/Alpha.java",
		pkgRoot + "client/Render.java",
		"src/main/resources/fabric.mod.json",
		"src/main/resources/assets/chunkpartyspreader/textures/icon.png",
		"src/main/resources/assets/chunkpartyspreader/lang/en_us.json",
	}

	got := append([]string(nil), want...)
	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(got), func(i, j int) { got[i], got[j] = got[j], got[i] })

	New(nil, nil).Sort(got)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Sort() mismatch (-want +got):\n%s", diff)
	}
}

func TestRanker_Sort_MetaThenCodeThenBinary(t *testing.T) {
	paths := []string{
		"assets/mod/icon.png",
		"src/main/java/com/x/mod/Config.java",
		"LICENSE",
		"README.md",
	}
	New(nil, nil).Sort(paths)

	assert.Equal(t, []string{
		"README.md",
		"LICENSE",
		"src/main/java/com/x/mod/Config.java",
		"assets/mod/icon.png",
	}, paths)
}

func TestRanker_Sort_DirectoryBeforeFilename(t *testing.T) {
	paths := []string{
		pkgRoot + "block/custom/Aaa.java",
		pkgRoot + "block/Zzz.java",
		pkgRoot + "block/custom/Bbb.java",
		pkgRoot + "block/ModBlocks.java",
	}
	New(nil, nil).Sort(paths)

	assert.Equal(t, []string{
		pkgRoot + "block/ModBlocks.java",
		pkgRoot + "block/Zzz.java",
		pkgRoot + "block/custom/Aaa.java",
		pkgRoot + "block/custom/Bbb.java",
	}, paths)
}

func TestRanker_Sort_Deterministic(t *testing.T) {
	r := New([]string{"com/x/mod/"}, nil)
	base := []string{
		"src/main/java/com/x/mod/item/B.java",
		"src/main/java/com/x/mod/item/a.java",
		"src/main/java/com/x/mod/item/A.java",
		"src/main/java/com/x/mod/util/Helpers.java",
		"src/main/java/com/x/mod/Mod.java",
		"docs/guide.md",
		"Docs/guide.md",
	}

	first := append([]string(nil), base...)
	r.Sort(first)
	second := append([]string(nil), first...)
	r.Sort(second)
	assert.Equal(t, first, second)

	reversed := append([]string(nil), base...)
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	r.Sort(reversed)
	assert.Equal(t, first, reversed)
}

func TestRanker_FeatureRoot(t *testing.T) {
	r := New([]string{"com/x/mod/", "assets/mod/"}, nil)

	tests := []struct {
		path string
		want string
	}{
		{"src/main/java/com/x/mod/block/custom/foo.java", "block"},
		{"src/main/java/com/x/mod/fabric/datagen/gen.java", "datagen"},
		{"src/main/java/com/x/mod/neoforge/client/hud.java", "client"},
		{"src/main/java/com/x/mod/mod.java", RootPackage},
		{"src/main/resources/assets/mod/lang/en_us.json", "lang"},
		{"src/main/java/com/other/mixin/servermixin.java", RootMixin},
		{"src/main/resources/assets/other/models/x.json", RootAssets},
		{"gradle/wrapper/gradle-wrapper.properties", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, r.FeatureRoot(tt.path))
		})
	}
}

func TestRanker_Key(t *testing.T) {
	r := New([]string{"com/x/mod/"}, nil)

	k := r.Key("src/main/java/com/x/mod/registry/ModRegistries.java")
	assert.Equal(t, LoaderOther, k.Loader)
	assert.Equal(t, RootTypeCode, k.RootType)
	assert.Equal(t, "registry", k.FeatureRoot)
	assert.Equal(t, 0, k.Feature)
	assert.Equal(t, "src/main/java/com/x/mod/registry", k.Directory)
	assert.Equal(t, FileRegistry, k.File)
	assert.Equal(t, "modregistries.java", k.Filename)

	k = r.Key("fabric/src/main/resources/fabric.mod.json")
	assert.Equal(t, 3, k.Loader)
	assert.Equal(t, RootTypeResource, k.RootType)
	assert.Equal(t, RootMeta, k.FeatureRoot)
	assert.Equal(t, MetaPriority, k.Feature)
	assert.Equal(t, FileMeta, k.File)
}

func TestLoaderPriority(t *testing.T) {
	tests := map[string]int{
		"readme.md":                     LoaderWellKnown,
		"changelog.md":                  LoaderWellKnown,
		"gradle.properties":             LoaderRootFile,
		"common/src/main/java/a.java":   2,
		"fabric/build.gradle":           3,
		"neoforge/build.gradle":         4,
		"forge/build.gradle":            4,
		".github/workflows/release.yml": LoaderMeta,
		"src/main/java/com/x/a.java":    LoaderOther,
		"docs/readme.md":                LoaderOther,
	}
	for path, want := range tests {
		assert.Equal(t, want, LoaderPriority(path), path)
	}
}

func TestTable_Priority(t *testing.T) {
	table := NewTable(DefaultBuckets)

	assert.Equal(t, 0, table.Priority("config"))
	assert.Equal(t, 10, table.Priority(RootAssets))
	assert.Equal(t, 25, table.Priority("guidebook"))
	assert.Equal(t, 90, table.Priority(RootMixin))
	assert.Equal(t, 99, table.Priority("lang"))
	assert.Equal(t, MetaPriority, table.Priority(RootMeta))
	assert.Equal(t, DefaultPriority, table.Priority("something_else"))
	assert.Equal(t, DefaultPriority, table.Priority(""))
}

func TestNewTable_FirstBucketWins(t *testing.T) {
	table := NewTable([]Bucket{
		{5, []string{"block"}},
		{60, []string{"block", "item"}},
	})
	assert.Equal(t, 5, table.Priority("block"))
	assert.Equal(t, 60, table.Priority("item"))
}
