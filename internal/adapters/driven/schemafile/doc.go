// Package schemafile loads declarative schema packs from YAML.
//
// A pack declares namespaces, enum vocabularies and element types:
//
//	namespace: http://example.com/contacts
//	namespaces:
//	  gd: http://schemas.google.com/g/2005
//	  atom: http://www.w3.org/2005/Atom
//	enums:
//	  rel:
//	    prefix: "http://schemas.google.com/g/2005#"
//	    values:
//	      - {uri: home, symbol: HOME}
//	      - {uri: work, symbol: WORK}
//	types:
//	  - element: contact
//	    name: Contact
//	    extends: atom:entry
//	    attributes:
//	      - {field: rel, name: rel, enum: rel}
//	    children:
//	      - {field: emails, name: gd:email, many: true}
//	      - {field: nickname, name: nickname}
//
// Element and child names are "prefix:local", "{uri}local" or a bare local
// name in the pack's default namespace. Bare attribute names are
// unqualified. Types register in order, so a type may extend or target any
// type declared before it, in this pack or already in the registry.
package schemafile
