// Package searcher ranks indexed projects against free-text queries.
//
// Semantic similarity comes from the vector index as 100/(1+distance) and is
// then boosted by name and metadata matches:
//
//	s := searcher.New(store, emb, searcher.Options{})
//	res, err := s.Resolve(ctx, "cache en rust")
//	if res.Resolved() {
//	    fmt.Println(res.Path())
//	}
//
// Resolve picks one project and records the visit. List returns the best
// matches without touching access statistics. When nothing has been
// indexed, Resolve falls back to exact and fuzzy name matching.
//
// RunSuite checks a TOML file of ranking expectations against the current
// index.
package searcher
