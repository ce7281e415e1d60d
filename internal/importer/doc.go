// Package importer bulk-loads people and places from CSV exports into the
// record stores.
//
// People rows are name, viaf, aliases; place rows are name, lat, lon, viaf,
// aliases. Aliases are separated by ";". The first row is a header. Imported
// rows merge into existing records without touching match results, so an
// import can be repeated safely.
package importer
