// Package markuptext tokenizes markup documents in a single forward pass.
// It checks well-formedness, resolves entity references, and reports raw
// qualified names; namespace resolution happens in the callers.
package markuptext
