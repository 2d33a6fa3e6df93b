// Package render provides the template helpers holonet adds to the host's
// Handlebars surface: iff (binary comparison block), localize (catalog
// lookup) and times (counted repetition with an @index data variable).
//
// The comparison and repetition rules live in Compare and Repeat so they
// can be used without a template engine; Iff and Times adapt them to
// raymond block helpers.
package render
