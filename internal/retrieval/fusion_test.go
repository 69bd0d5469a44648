package retrieval

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscolab/tuiva/internal/config"
	"github.com/fiscolab/tuiva/internal/corpus"
	"github.com/fiscolab/tuiva/internal/models"
)

func testFusionConfig() *config.FusionConfig {
	return &config.FusionConfig{
		MaxArticles:     5,
		MaxRulings:      2,
		MinArticleScore: 0.40,
		MinRulingScore:  0.70,
	}
}

func newTestReranker(t *testing.T) *FusionReranker {
	t.Helper()
	return NewFusionReranker(corpus.NewTestIndex(), testFusionConfig())
}

func fakeArticle(id string, themes ...string) *models.Article {
	return &models.Article{ID: id, Themes: themes}
}

func fakeRuling(id string, year int) *models.Ruling {
	return &models.Ruling{ID: id, Year: year}
}

func TestFuseCitationPrecedence(t *testing.T) {
	f := newTestReranker(t)
	idx := corpus.NewTestIndex()
	art37, _ := idx.ArticleByID("tu-37")
	art4, _ := idx.ArticleByID("tu-4")

	fused := f.Fuse(
		[]*Result{ArticleResult(art37, 1.0, SourceLookup)},
		[]*Result{ArticleResult(art4, 0.95, SourceSemantic)},
		nil, nil, nil,
		&models.QueryAnalysis{Type: models.QueryNormativa},
	)

	require.NotEmpty(t, fused.Articles)
	assert.Equal(t, "tu-37", fused.Articles[0].ID)
	assert.GreaterOrEqual(t, fused.Articles[0].Score, 1.5)
}

func TestFuseThematicFullCoverageDominance(t *testing.T) {
	f := newTestReranker(t)
	idx := corpus.NewTestIndex()
	art37, _ := idx.ArticleByID("tu-37") // carries both query tags
	art21, _ := idx.ArticleByID("tu-21") // carries neither

	analysis := &models.QueryAnalysis{
		Type:   models.QuerySpecifica,
		Themes: []string{"esenzioni", "iva_edilizia"},
	}
	fused := f.Fuse(
		nil,
		[]*Result{
			ArticleResult(art37, 0.74, SourceSemantic),
			ArticleResult(art21, 0.82, SourceSemantic),
		},
		nil,
		[]*Result{ArticleResult(art37, 1.0, SourceThematic)},
		nil,
		analysis,
	)

	// tu-37: merge max(0.74, 1.0*0.65)+0.1 = 0.84, then +0.3 full coverage.
	full := findByID(fused.Articles, "tu-37")
	require.NotNil(t, full)
	assert.InDelta(t, 1.14, full.Score, 1e-9)

	// tu-21: zero coverage, non-lookup, 0.82*0.7.
	zero := findByID(fused.Articles, "tu-21")
	require.NotNil(t, zero)
	assert.InDelta(t, 0.574, zero.Score, 1e-9)

	assert.Equal(t, "tu-37", fused.Articles[0].ID)
}

func TestFuseZeroCoverageExemptsLookup(t *testing.T) {
	f := newTestReranker(t)
	idx := corpus.NewTestIndex()
	art21, _ := idx.ArticleByID("tu-21")

	fused := f.Fuse(
		[]*Result{ArticleResult(art21, 1.0, SourceLookup)},
		nil, nil, nil, nil,
		&models.QueryAnalysis{
			Type:   models.QueryNormativa,
			Themes: []string{"esenzioni", "iva_edilizia"},
		},
	)

	// 1.0 + 0.5 citation bonus, untouched by the zero-coverage penalty.
	require.NotEmpty(t, fused.Articles)
	assert.InDelta(t, 1.5, fused.Articles[0].Score, 1e-9)
}

func TestFuseRecencyBonus(t *testing.T) {
	f := newTestReranker(t)
	idx := corpus.NewTestIndex()
	latest, _ := idx.RulingByID("int-7-2025")
	older, _ := idx.RulingByID("int-19-2024")

	fused := f.Fuse(
		nil, nil,
		[]*Result{
			RulingResult(latest, 0.80, SourceSemantic),
			RulingResult(older, 0.80, SourceSemantic),
		},
		nil, nil,
		&models.QueryAnalysis{Type: models.QuerySpecifica},
	)

	// 2025 is the most recent tracked year in the fixture.
	assert.InDelta(t, 0.85, findByID(fused.Rulings, "int-7-2025").Score, 1e-9)
	assert.InDelta(t, 0.80, findByID(fused.Rulings, "int-19-2024").Score, 1e-9)
}

func TestFuseCrossRefBonus(t *testing.T) {
	f := newTestReranker(t)
	idx := corpus.NewTestIndex()
	art37, _ := idx.ArticleByID("tu-37")
	linked, _ := idx.RulingByID("int-19-2024") // pre-indexed as linked to tu-37

	fused := f.Fuse(
		nil,
		[]*Result{ArticleResult(art37, 0.6, SourceSemantic)},
		[]*Result{RulingResult(linked, 0.70, SourceSemantic)},
		nil, nil,
		&models.QueryAnalysis{Type: models.QuerySpecifica},
	)

	rul := findByID(fused.Rulings, "int-19-2024")
	require.NotNil(t, rul)
	assert.InDelta(t, 0.80, rul.Score, 1e-9)
}

func TestFusePerTagRulingBonus(t *testing.T) {
	f := newTestReranker(t)
	idx := corpus.NewTestIndex()
	rul, _ := idx.RulingByID("int-7-2025") // shares both tags, year 2025

	fused := f.Fuse(
		nil, nil,
		[]*Result{RulingResult(rul, 0.70, SourceSemantic)},
		nil, nil,
		&models.QueryAnalysis{
			Type:   models.QuerySpecifica,
			Themes: []string{"esenzioni", "iva_edilizia"},
		},
	)

	// 0.70 + 0.05 recency + 2*0.02 tag bonus.
	require.NotEmpty(t, fused.Rulings)
	assert.InDelta(t, 0.79, fused.Rulings[0].Score, 1e-9)
}

func TestFuseCategoryAwareCaps(t *testing.T) {
	f := newTestReranker(t)

	var semArticles []*Result
	for i := 0; i < 8; i++ {
		semArticles = append(semArticles, ArticleResult(fakeArticle(fmt.Sprintf("a-%d", i)), 0.9, SourceSemantic))
	}
	var semRulings []*Result
	for i := 0; i < 4; i++ {
		semRulings = append(semRulings, RulingResult(fakeRuling(fmt.Sprintf("r-%d", i), 2024), 0.8, SourceSemantic))
	}

	generica := f.Fuse(nil, semArticles, semRulings, nil, nil, &models.QueryAnalysis{Type: models.QueryGenerica})
	assert.Len(t, generica.Articles, 6)
	assert.Len(t, generica.Rulings, 1)

	specifica := f.Fuse(nil, semArticles, semRulings, nil, nil, &models.QueryAnalysis{Type: models.QuerySpecifica})
	assert.Len(t, specifica.Articles, 5)
	assert.Len(t, specifica.Rulings, 2)
}

func TestFuseThresholdExclusion(t *testing.T) {
	f := newTestReranker(t)

	fused := f.Fuse(
		nil,
		[]*Result{
			ArticleResult(fakeArticle("a-low"), 0.39, SourceSemantic),
			ArticleResult(fakeArticle("a-ok"), 0.40, SourceSemantic),
		},
		[]*Result{RulingResult(fakeRuling("r-low", 2020), 0.69, SourceSemantic)},
		nil, nil,
		&models.QueryAnalysis{Type: models.QuerySpecifica},
	)

	require.Len(t, fused.Articles, 1)
	assert.Equal(t, "a-ok", fused.Articles[0].ID)
	assert.Empty(t, fused.Rulings)
	assert.Equal(t, 3, fused.TotalCandidates)
}

func TestFuseMergeIdempotence(t *testing.T) {
	f := newTestReranker(t)
	analysis := &models.QueryAnalysis{Type: models.QuerySpecifica}

	// The same entity inserted twice within one path's batch combines to
	// max + 0.1, same as one insertion plus a manual multi-path bonus.
	twice := f.Fuse(nil, []*Result{
		ArticleResult(fakeArticle("a-1"), 0.6, SourceSemantic),
		ArticleResult(fakeArticle("a-1"), 0.5, SourceSemantic),
	}, nil, nil, nil, analysis)

	require.Len(t, twice.Articles, 1)
	assert.InDelta(t, 0.7, twice.Articles[0].Score, 1e-9)
	assert.Equal(t, 1, twice.TotalCandidates)
}

func TestFuseStableTieBreak(t *testing.T) {
	f := newTestReranker(t)
	analysis := &models.QueryAnalysis{Type: models.QuerySpecifica}
	inputs := []*Result{
		ArticleResult(fakeArticle("a-first"), 0.8, SourceSemantic),
		ArticleResult(fakeArticle("a-second"), 0.8, SourceSemantic),
	}

	for i := 0; i < 10; i++ {
		fused := f.Fuse(nil, inputs, nil, nil, nil, analysis)
		require.Len(t, fused.Articles, 2)
		assert.Equal(t, "a-first", fused.Articles[0].ID)
		assert.Equal(t, "a-second", fused.Articles[1].ID)
	}
}

func TestFuseEmptyInputs(t *testing.T) {
	f := newTestReranker(t)

	fused := f.Fuse(nil, nil, nil, nil, nil, &models.QueryAnalysis{Type: models.QueryGenerica})
	assert.Empty(t, fused.Articles)
	assert.Empty(t, fused.Rulings)
	assert.Zero(t, fused.TotalCandidates)
}

func TestFuseInputsNotMutated(t *testing.T) {
	f := newTestReranker(t)
	in := ArticleResult(fakeArticle("a-1"), 1.0, SourceSemantic)

	f.Fuse(nil, []*Result{in}, nil, nil, nil, &models.QueryAnalysis{Type: models.QuerySpecifica})
	assert.Equal(t, 1.0, in.Score)
	assert.Equal(t, SourceSemantic, in.Source)
}
