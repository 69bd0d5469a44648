// Package integration exercises the full corpus-to-slate path: load the two
// databases from disk, vectorize them, and run a query through the pipeline.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/fiscolab/tuiva/internal/analyzer"
	"github.com/fiscolab/tuiva/internal/config"
	"github.com/fiscolab/tuiva/internal/corpus"
	"github.com/fiscolab/tuiva/internal/embedding"
	"github.com/fiscolab/tuiva/internal/indexer"
	"github.com/fiscolab/tuiva/internal/retrieval"
	"github.com/fiscolab/tuiva/internal/vector"
)

const articlesJSON = `{
  "metadata": {"norma": "D.Lgs. 10/2026", "numero_articoli": 2},
  "articoli": [
    {"id": "tu-37", "articolo": "37", "titolo": "Operazioni esenti",
     "temi": ["esenzioni"],
     "testo_integrale": "Sono esenti dall'imposta le operazioni indicate nel presente articolo.",
     "metadati_rag": {"search_text": "operazioni esenti locazioni immobiliari",
                      "citazione_formale": "Art. 37 TU IVA (D.Lgs. 10/2026)"}},
    {"id": "tu-21", "articolo": "21", "titolo": "Fatturazione delle operazioni",
     "temi": ["fatturazione"],
     "testo_integrale": "Per ciascuna operazione imponibile il cedente emette fattura.",
     "metadati_rag": {"search_text": "fatturazione emissione fattura elettronica",
                      "citazione_formale": "Art. 21 TU IVA (D.Lgs. 10/2026)"}}
  ],
  "mappatura_vecchio_nuovo_codice": {
    "DPR 633/1972 art. 10": [{"nuovo_articolo": "37", "id": "tu-37"}]
  },
  "interpelli_collegati": {
    "tu-37": [{"id": "int-19-2024", "numero": 19, "anno": 2024}]
  }
}`

const rulingsJSON = `{
  "metadata": {"totale_interpelli": 1},
  "interpelli": [
    {"id": "int-19-2024", "numero": 19, "anno": 2024, "tag": "IVA",
     "oggetto": "Esenzione per prestazioni sanitarie",
     "massima": "Le prestazioni rientrano nel regime di esenzione.",
     "temi": ["esenzioni"],
     "metadati_rag": {"search_text": "esenzione prestazioni sanitarie"}}
  ]
}`

func TestIntegration_Retrieve(t *testing.T) {
	dir := t.TempDir()
	articlesPath := filepath.Join(dir, "articles.json")
	rulingsPath := filepath.Join(dir, "rulings.json")
	if err := os.WriteFile(articlesPath, []byte(articlesJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(rulingsPath, []byte(rulingsJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	index, err := corpus.Load(articlesPath, rulingsPath)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.AI.EmbeddingDimensions = 8

	embedder := embedding.NewMockEmbedder(cfg.AI.EmbeddingDimensions)
	defer embedder.Close()

	articleVecs, err := vector.NewMemoryIndex(cfg.AI.EmbeddingDimensions)
	if err != nil {
		t.Fatal(err)
	}
	defer articleVecs.Close()
	rulingVecs, err := vector.NewMemoryIndex(cfg.AI.EmbeddingDimensions)
	if err != nil {
		t.Fatal(err)
	}
	defer rulingVecs.Close()

	ctx := context.Background()
	logger := zap.NewNop()
	if err := indexer.New(index, embedder, articleVecs, rulingVecs, logger).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if articleVecs.Size() != 2 || rulingVecs.Size() != 1 {
		t.Fatalf("unexpected collection sizes: %d articles, %d rulings", articleVecs.Size(), rulingVecs.Size())
	}

	pipeline := retrieval.NewPipeline(index, embedder, articleVecs, rulingVecs, &cfg.Retrieval, logger)

	// A cited old-code article must come back first regardless of similarity.
	query := "Cosa prevede l'art. 10 del DPR 633/1972?"
	analysis := analyzer.FallbackAnalysis(query)
	results, err := pipeline.Retrieve(ctx, analysis.Rewritten, analysis)
	if err != nil {
		t.Fatal(err)
	}
	if len(results.Articles) == 0 {
		t.Fatal("expected at least one article")
	}
	top := results.Articles[0]
	if top.ID != "tu-37" {
		t.Errorf("expected tu-37 first, got %s", top.ID)
	}
	if top.Source != retrieval.SourceLookup {
		t.Errorf("expected lookup source, got %s", top.Source)
	}
	if top.Score < 1.5 {
		t.Errorf("expected cited article score >= 1.5, got %f", top.Score)
	}
}
