// Package crawler walks the implicit first-link graph of an encyclopedia.
//
// # Architecture
//
// A run starts from a random article and repeatedly follows the first
// qualifying link of the current article. The run ends when it reaches the
// target article, revisits an article (cycle), finds no qualifying link
// (dead end), fails to fetch a page, or reaches an article that an earlier
// run already walked through (memo hit). In the last case the remainder of
// the earlier run is spliced in without further fetches.
//
// # Components
//
//   - Walker: the per-run state machine
//   - Parser: candidate discovery and the parenthesis heuristic
//   - Throttle: the politeness gate shared by all fetches of a session
//
// # Link selection
//
// Candidates are anchors whose parent is a paragraph of the article body and
// that do not wrap an image. A running parenthesis counter is fed by the
// few bytes before each candidate; the first candidate seen with the counter
// at or below zero is followed. The counter is deliberately not balanced
// per candidate: article text often has unmatched parentheses and a strict
// balance makes whole pages unwalkable.
//
// # Usage
//
//	walker := crawler.NewWalker(fetcher, crawler.NewParser(), memory.New(),
//		crawler.WithThrottle(crawler.NewThrottle(time.Second)))
//	result, err := walker.Walk(ctx)
package crawler
