// Package verifier implements the static pass that runs between reduction
// and code generation. It resolves function calls through the lexical chain
// of where-blocks, resolves constructor calls against local classes and the
// host type system, and checks call arities, producing diagnostics that a
// build driver may treat as fatal or merely print. Variable references are
// not checked unless strict mode is requested.
package verifier
