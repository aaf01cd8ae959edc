// Package views implements the screen's pages.
//
// Each view is a struct instance built once by New and holding its own
// state: the file list page and selection, the jog step, the extrusion
// length and speed. Views talk to the navigation engine through Navigator
// and to the printer through Printer, and expose their operations to the
// router through Set.Operations.
package views
