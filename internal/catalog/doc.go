// Package catalog loads threat catalog seed files.
//
// A seed file is YAML with a list of categories and a list of ingredients;
// ingredients name their category by key. The default catalog is embedded in
// the binary and used when no file is configured. Seeds are validated before
// they reach the database so that an invalid file never replaces a working
// catalog.
package catalog
