// Package xmltree reads and writes XML documents as generic element trees.
//
// The Reader resolves namespaces and drops xmlns declarations, so every
// element and attribute name is a full QName. The Writer chooses prefixes
// itself: the root's namespace becomes the default namespace when that is
// unambiguous, configured hints are preferred for the rest, and anything
// else is numbered ns1, ns2, ...
package xmltree
