package domain

// EnumPair binds one controlled-vocabulary URI to its symbolic value.
type EnumPair struct {
	URI    string
	Symbol string
}

// EnumTable maps an attribute's URI vocabulary to short symbolic values.
// When several pairs share a URI or a symbol, the first declared pair wins
// in that direction.
type EnumTable struct {
	pairs    []EnumPair
	bySymbol map[string]string
	byURI    map[string]string
}

// NewEnumTable builds a table from pairs in declaration order.
func NewEnumTable(pairs ...EnumPair) *EnumTable {
	t := &EnumTable{
		pairs:    append([]EnumPair(nil), pairs...),
		bySymbol: make(map[string]string, len(pairs)),
		byURI:    make(map[string]string, len(pairs)),
	}
	for _, p := range pairs {
		if _, ok := t.byURI[p.URI]; !ok {
			t.byURI[p.URI] = p.Symbol
		}
		if _, ok := t.bySymbol[p.Symbol]; !ok {
			t.bySymbol[p.Symbol] = p.URI
		}
	}
	return t
}

// PrefixedEnum builds a table whose URIs share a common prefix, as in
// "http://schemas.google.com/g/2005#event." + "accepted".
// suffixes and symbols are paired by position.
func PrefixedEnum(prefix string, suffixSymbols ...[2]string) *EnumTable {
	pairs := make([]EnumPair, 0, len(suffixSymbols))
	for _, ss := range suffixSymbols {
		pairs = append(pairs, EnumPair{URI: prefix + ss[0], Symbol: ss[1]})
	}
	return NewEnumTable(pairs...)
}

// ToSymbol maps a URI to its symbolic value.
func (t *EnumTable) ToSymbol(uri string) (string, error) {
	if s, ok := t.byURI[uri]; ok {
		return s, nil
	}
	return "", ErrUnknownEnumValue
}

// ToURI maps a symbolic value to its URI.
func (t *EnumTable) ToURI(symbol string) (string, error) {
	if u, ok := t.bySymbol[symbol]; ok {
		return u, nil
	}
	return "", ErrUnknownSymbol
}

// Pairs returns the declared pairs in order.
func (t *EnumTable) Pairs() []EnumPair {
	return append([]EnumPair(nil), t.pairs...)
}

// Len returns the number of declared pairs.
func (t *EnumTable) Len() int {
	return len(t.pairs)
}
