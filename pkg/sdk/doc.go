// Package jobmatch embeds the matching engine in a Go program without the
// HTTP server.
//
// The client loads the posting corpus from Redis, Valkey or Postgres once,
// then serves matches from that snapshot. Call Reload after Import or
// IndexMissing to pick up new postings.
//
//	client, _ := jobmatch.New(ctx,
//	    jobmatch.WithRedis("localhost:6379", ""),
//	    jobmatch.WithEmbedder(myEmbedder),
//	    jobmatch.WithGenerator(myModel, "gemini", "gemini-2.0-flash"),
//	)
//	defer client.Close()
//
//	report, _ := client.Match(ctx, []string{"go", "postgres"}, nil, 10)
//	trends, _ := client.SalaryTrend(ctx, report.Titles()...)
package jobmatch
