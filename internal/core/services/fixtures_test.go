package services

import (
	"github.com/GAM-team/gam/internal/core/domain"
)

const (
	testNS  = "urn:test"
	extNS   = "urn:ext"
	vocabNS = "http://schemas.example.com/point#"
)

func tn(local string) domain.QName { return domain.Name(testNS, local) }

func plain(local string) domain.QName { return domain.Name("", local) }

// Test schema: a contact with a single name, a list of phones, a status
// point backed by a controlled vocabulary and a nested address.
var (
	pointValues = domain.PrefixedEnum(vocabNS,
		[2]string{"accepted", "ACCEPTED"},
		[2]string{"declined", "DECLINED"},
	)

	pointDesc = domain.NewDescriptor(tn("point"), "test:point").
		Enum("value", plain("value"), pointValues).
		MustBuild()

	phoneDesc = domain.NewDescriptor(tn("phone"), "test:phone").
		Attr("rel", plain("rel")).
		MustBuild()

	addressDesc = domain.NewDescriptor(tn("address"), "test:address").
		One("city", tn("city"), nil).
		One("country", tn("country"), nil).
		MustBuild()

	contactDesc = domain.NewDescriptor(tn("contact"), "test:contact").
		Attr("id", plain("id")).
		One("name", tn("name"), nil).
		Many("phones", tn("phone"), phoneDesc).
		One("status", tn("point"), pointDesc).
		One("address", tn("address"), addressDesc).
		MustBuild()
)

func newTestRegistry() *Registry {
	r := NewRegistry()
	_ = r.RegisterAll(pointDesc, phoneDesc, addressDesc, contactDesc)
	return r
}

func el(name domain.QName, text string, children ...*domain.Element) *domain.Element {
	return &domain.Element{Name: name, Text: text, Children: children}
}

func withAttrs(e *domain.Element, kv ...string) *domain.Element {
	for i := 0; i+1 < len(kv); i += 2 {
		name, err := domain.ParseQName(kv[i])
		if err != nil {
			panic(err)
		}
		e.Attrs = append(e.Attrs, domain.Attr{Name: name, Value: kv[i+1]})
	}
	return e
}

// contactElement is a contact using only declared structure, in
// declaration order.
func contactElement() *domain.Element {
	return withAttrs(el(tn("contact"), "",
		el(tn("name"), "Ada Lovelace"),
		withAttrs(el(tn("phone"), "+44 1"), "rel", "work"),
		withAttrs(el(tn("phone"), "+44 2"), "rel", "home"),
		withAttrs(el(tn("point"), ""), "value", vocabNS+"accepted"),
		el(tn("address"), "",
			el(tn("city"), "London"),
			el(tn("country"), "UK"),
		),
	), "id", "c1")
}
