// Package routes maps display input to view operations.
//
// A routing table binds (page, input kind, action) keys to a target: a view
// name, an operation name and literal arguments. The table is data, loaded
// from YAML, so a new screen layout only needs a new routing file. The stock
// layout is embedded as default_routes.yaml.
//
// Operations are registered in a closed Operations table keyed by
// (view, operation). NewRouter validates the routing table against it and
// fails on any dangling reference, so a typo in a layout file is caught at
// startup rather than on the first touch.
//
// Dispatch never aborts the caller: unmapped input, bad arguments and
// operation failures all come back as *RouteError for logging.
package routes
