// Package crvs embeds the crvs-search query builder and correction engine
// in a Go program, with optional Redis-backed event documents.
//
// # Search and corrections only
//
//	client, _ := crvs.New(ctx, crvs.WithEventsDir("config/events"))
//	res, _ := client.Search().Advanced(ctx, "birth", crvs.State{
//	    "child.gender": "female",
//	    "event.status": "REGISTERED",
//	})
//	fmt.Println(string(res.Query), res.Allowed)
//
// # With document storage
//
//	client, _ := crvs.New(ctx,
//	    crvs.WithEventsDir("config/events"),
//	    crvs.WithRedis("localhost:6379", ""),
//	)
//	defer client.Close()
//	_, _ = client.Documents().Put(ctx, crvs.Document{ID: "d1", EventType: "birth", Actions: actions})
//	diff, _ := client.Corrections().Preview(ctx, "d1", form, nil)
package crvs
