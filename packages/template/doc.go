// Package template renders manifest fields with the pongo2 template engine
// (Django/Jinja syntax).
//
// Templates are registered under a name that identifies them in errors,
// typically "<file>#/<field>". Rendering is strict: an expression whose
// leading variable does not resolve in the context fails the render unless
// it is guarded by the default filter or sits inside an if block.
//
// Structured values are rendered leaf by leaf: objects and arrays are walked
// and only string leaves are treated as templates.
package template
