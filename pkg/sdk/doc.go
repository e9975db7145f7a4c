// Package entlink embeds the entity-linking pipeline in a Go program.
//
// A Client owns a Valkey or Redis connection holding the knowledge base and
// the background term index, and drives a configured stage list over
// documents:
//
//	client, _ := entlink.New(ctx,
//	    entlink.WithValkey("localhost:6379", ""),
//	    entlink.WithResolver("authority"),
//	    entlink.WithRating("idf"),
//	)
//	defer client.Close()
//
//	_ = client.LoadKnowledge(ctx, resources, clusters)
//	results, _ := client.Process(ctx, docs)
//	for _, r := range results {
//	    fmt.Println(r.ID, r.Accepted, r.Ratings)
//	}
//
// Evaluate runs a single stage and scores it against newline-separated
// ground-truth URIs:
//
//	report, _ := client.Evaluate(ctx, 1, doc, "dbr:Berlin\ndbr:Germany")
package entlink
