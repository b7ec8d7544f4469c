// Package collector implements cursor-based pagination over
// reverse-chronological listings.
//
// A listing exposes no total count, so CollectSince keeps requesting older
// pages, using the fullname of the oldest entity seen as the "before" cursor,
// until it has reached past the requested time threshold. Results are
// trimmed to the window before being returned.
package collector
