// Package datadesk embeds the data office catalog search and dashboard metrics
// in a Go program.
//
// The client talks to the remote record service for live data and keeps the
// search history and the last good record sets in Redis or in memory, so
// searches degrade to the last snapshot when the record service fails.
//
// # Searching
//
//	client, _ := datadesk.New(ctx,
//	    datadesk.WithRedis("localhost:6379", ""),
//	    datadesk.WithCatalog("https://catalog.example.gov/api", token),
//	)
//	page, _ := client.Records(datadesk.KindAsset).Query().
//	    Text("marketing").
//	    Where(datadesk.DimType, "Dataset", "Report").
//	    Tab(datadesk.TabPendingCertification).
//	    Limit(50).
//	    Do(ctx)
//
// # Suggestions
//
//	list, _ := client.Records(datadesk.KindAsset).Suggest(ctx, "mar", false)
//
// # Dashboard metrics
//
//	sum, _ := client.Summary(ctx, datadesk.SummaryOptions{Type: "Disability"})
//	label := datadesk.Classify(datadesk.ScaleRisk, 72)
package datadesk
