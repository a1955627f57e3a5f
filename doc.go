// Package feedcache implements a read-through, in-process cache for a
// document collection, kept fresh by the collection's change-notification
// feed rather than polling, with a TTL fallback for missed notifications.
//
// Components:
//   - source.Source: the backing store (bulk query + change feed).
//   - Strategy[V]: caller-supplied hooks per cached entity type
//     (key extraction, record parsing, bulk-load filter).
//   - Metrics: cheap observability callbacks (hit/miss/invalidation/size/age),
//     labeled by the instance's Name.
//   - resume.Store: optional durable continuation-position storage.
//
// One Cache is created per cached entity type (a farmer cache, an agent
// config cache, ...). Any observed change drops the whole snapshot ("coarse
// invalidation"); the next read reloads everything. That trades one extra
// bulk load per change for never having to diff or patch record shapes.
//
// Usage:
//
//	cache, _ := feedcache.New[Farmer](feedcache.Options[Farmer]{
//	    Name:     "farmer",
//	    Source:   mongosrc.New(coll),
//	    Strategy: mongosrc.DocStrategy[Farmer]{KeyFunc: func(f Farmer) string { return f.ID }},
//	})
//	cache.Start()        // change-feed watcher; stops via cache.Stop(ctx)
//	all, err := cache.GetAll(ctx)
package feedcache
