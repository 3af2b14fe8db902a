// Package searcher is the embeddable API for knowledge base search.
//
// A [KnowledgeBase] loads Markdown and text documents plus JSON Lines record
// packs into an in-memory BM25 index and answers multilingual queries:
//
//	kb, err := searcher.New(
//	    searcher.WithKnowledgeBaseDir("data/knowledge_base"),
//	    searcher.WithPacksDir("data/knowledge_packs/processed"),
//	)
//	if err != nil {
//	    return err
//	}
//	results, err := kb.Search(ctx, "what is BM25?", 4)
//
// Documents can also be supplied in memory with [WithDocuments], which is
// convenient in tests.
//
// # Thread Safety
//
// All methods are safe for concurrent use. [KnowledgeBase.Reload] swaps the
// index atomically; searches in flight finish on the snapshot they started with.
package searcher
