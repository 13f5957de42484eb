// Package store is the SQLite cache behind the Wikidata client.
//
// Three tables, all keyed by text and written with ON CONFLICT DO NOTHING:
//   - http_requests: raw response body per request URL
//   - labels: English label per entity or property id (NULL when the id
//     has no label)
//   - alt_labels: JSON array of English aliases per id
//
// Racing writers of the same key are therefore harmless: the first write
// wins and later ones are no-ops.
//
// Connections open in WAL mode with synchronous=NORMAL and a five second
// busy timeout, set through the driver DSN. The pool holds one connection.
package store
