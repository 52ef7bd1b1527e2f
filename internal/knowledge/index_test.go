package knowledge_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ugorjiizu/globus-assessment/internal/knowledge"
	"github.com/ugorjiizu/globus-assessment/internal/log"
	"github.com/ugorjiizu/globus-assessment/internal/testutil"
)

const testCorpus = `Savings Accounts
Our savings accounts offer competitive interest rates with no minimum balance requirement for standard tiers.

Loan Products
We provide salary advance loans, mortgage financing, and small business loans with flexible repayment schedules.

Debit And Credit Cards
Verve and Mastercard debit cards work at all ATMs nationwide. Credit cards require a minimum monthly income.`

func buildTestIndex(t *testing.T) *knowledge.Index {
	t.Helper()
	ix, err := knowledge.BuildIndex(context.Background(), testCorpus, 400, testutil.HashEmbedding(), log.NewNop())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	return ix
}

func TestBuildIndex(t *testing.T) {
	ix := buildTestIndex(t)
	if ix.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ix.Len())
	}
}

func TestBuildIndexEmptyCorpus(t *testing.T) {
	_, err := knowledge.BuildIndex(context.Background(), "   \n\n  ", 400, testutil.HashEmbedding(), log.NewNop())
	if !errors.Is(err, knowledge.ErrEmptyCorpus) {
		t.Errorf("err = %v, want ErrEmptyCorpus", err)
	}
}

func TestSearch(t *testing.T) {
	ix := buildTestIndex(t)

	results, err := ix.Search(context.Background(), "salary advance loans repayment", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !strings.Contains(results[0].Text, "salary advance loans") {
		t.Errorf("top result is not the loan section: %q", results[0].Text)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Errorf("results not in descending similarity order: %v then %v",
			results[0].Similarity, results[1].Similarity)
	}
}

func TestSearchClampsTopK(t *testing.T) {
	ix := buildTestIndex(t)

	results, err := ix.Search(context.Background(), "interest rates", 50)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != ix.Len() {
		t.Errorf("got %d results, want %d", len(results), ix.Len())
	}
}

func TestSearchRejectsNonPositiveTopK(t *testing.T) {
	ix := buildTestIndex(t)
	if _, err := ix.Search(context.Background(), "anything", 0); err == nil {
		t.Error("expected error for topK = 0")
	}
}

func TestBuildIndexFromFileMissing(t *testing.T) {
	_, err := knowledge.BuildIndexFromFile(context.Background(), "/nonexistent/corpus.txt", 400, testutil.HashEmbedding(), log.NewNop())
	if err == nil {
		t.Error("expected error for missing file")
	}
}
