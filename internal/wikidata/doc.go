// Package wikidata is a small client for the Wikidata SPARQL query service.
//
// It builds the handful of SELECT queries kbmatch needs (entity search scoped
// by class, VIAF lookup, full statements for one entity, birth country), paces
// requests with a token bucket, decodes gzip responses, and flattens SPARQL
// JSON bindings into Entity values whose absent fields are empty strings.
package wikidata
