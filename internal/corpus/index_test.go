package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexLookups(t *testing.T) {
	idx := NewTestIndex()

	art, ok := idx.ArticleByID("tu-37")
	require.True(t, ok)
	assert.Equal(t, "37", art.Number)

	art, ok = idx.ArticleByNumber("21")
	require.True(t, ok)
	assert.Equal(t, "tu-21", art.ID)

	_, ok = idx.ArticleByNumber("999")
	assert.False(t, ok)

	rul, ok := idx.RulingByKey(19, 2024)
	require.True(t, ok)
	assert.Equal(t, "int-19-2024", rul.ID)

	_, ok = idx.RulingByKey(19, 2023)
	assert.False(t, ok)
}

func TestIndexMapOldRef(t *testing.T) {
	idx := NewTestIndex()

	targets := idx.MapOldRef("DPR 633/1972 art. 10")
	require.Len(t, targets, 1)
	assert.Equal(t, "tu-37", targets[0].ID)

	// Citation spelling variants resolve to the same targets.
	assert.Len(t, idx.MapOldRef("dpr 633/1972  ART. 10"), 1)
	assert.Len(t, idx.MapOldRef("art. 10 DPR 633/1972"), 1)
	assert.Len(t, idx.MapOldRef("articolo 10 DPR 633/1972"), 1)

	assert.Nil(t, idx.MapOldRef("DPR 633/1972 art. 99"))
}

func TestIndexThemes(t *testing.T) {
	idx := NewTestIndex()

	arts := idx.ArticlesByTheme("esenzioni")
	require.Len(t, arts, 1)
	assert.Equal(t, "tu-37", arts[0].ID)

	// Union across themes, each ruling once, corpus order.
	ruls := idx.RulingsByThemes([]string{"esenzioni", "iva_edilizia"})
	require.Len(t, ruls, 2)
	assert.Equal(t, "int-19-2024", ruls[0].ID)
	assert.Equal(t, "int-7-2025", ruls[1].ID)

	assert.Empty(t, idx.RulingsByThemes([]string{"sanzioni"}))
}

func TestIndexLinkedRulings(t *testing.T) {
	idx := NewTestIndex()

	linked := idx.LinkedRulings("tu-37")
	require.Len(t, linked, 1)
	assert.Equal(t, "int-19-2024", linked[0].ID)

	assert.Nil(t, idx.LinkedRulings("tu-21"))
}

func TestIndexLatestRulingYear(t *testing.T) {
	idx := NewTestIndex()
	assert.Equal(t, 2025, idx.LatestRulingYear())
}

func TestIndexDropsUnresolvableMappings(t *testing.T) {
	articleDB := &ArticleDatabase{
		OldCodeMap: map[string][]MappedArticle{
			"DPR 633/1972 art. 5": {{NewArticle: "5", ID: "missing"}},
		},
		LinkedRulings: map[string][]RulingLink{
			"tu-x": {{ID: "missing", Number: 1, Year: 2024}},
		},
	}
	idx := NewIndex(articleDB, &RulingDatabase{})

	assert.Nil(t, idx.MapOldRef("DPR 633/1972 art. 5"))
	assert.Nil(t, idx.LinkedRulings("tu-x"))
}
