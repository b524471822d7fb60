// Package research provides the external search backends used to enrich
// sender profiles.
//
// Three providers are implemented behind the same Backend interface: Exa
// (neural search), Serper (keyword web search) and Sonar (conversational
// search on the Perplexity API). The coordinator treats them
// interchangeably; each returns an opaque text blob that the parser turns
// into structured profile fields. Backends are failure-isolated and apply
// their own per-query timeout, so a slow or broken provider only removes
// its own contribution from the aggregate.
package research
