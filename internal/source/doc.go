// Package source implements the connectors that turn one query into raw
// hits from a third-party service.
//
// Every connector follows the same contract: Fetch never returns an error.
// Transport failures, non-2xx responses and malformed bodies produce an
// Outcome with status "failed" and a reason; a connector that is not
// configured (for example NewsData without an API key) produces "skipped".
// Either way the Outcome carries zero hits, so aggregation treats all
// failures as empty results while the reason stays visible in the report.
//
// Connectors:
//   - NewsData: news API, first in priority, needs NEWSDATA_KEY
//   - DuckDuckGo: instant-answer JSON API
//   - Bing: HTML scrape of li.b_algo result blocks
//   - GoogleNews: RSS search feed, off by default
//
// OpenSanctions (sanctions lookup) and Wikipedia (alias discovery) are not
// hit connectors and have their own result shapes.
package source
