// Package atom declares the Atom syndication format core elements.
package atom

import (
	"github.com/GAM-team/gam/internal/core/domain"
	"github.com/GAM-team/gam/internal/core/ports/driven"
)

// Namespace is the Atom namespace URI.
const Namespace = "http://www.w3.org/2005/Atom"

// Prefix is the conventional prefix for Namespace.
const Prefix = "atom"

// N returns the Atom-qualified name for local.
func N(local string) domain.QName {
	return domain.Name(Namespace, local)
}

// attr names are unqualified in Atom.
func a(local string) domain.QName {
	return domain.Name("", local)
}

// Field names shared by the Atom descriptors.
const (
	FieldID           = "id"
	FieldTitle        = "title"
	FieldSubtitle     = "subtitle"
	FieldSummary      = "summary"
	FieldContent      = "content"
	FieldRights       = "rights"
	FieldUpdated      = "updated"
	FieldPublished    = "published"
	FieldAuthors      = "authors"
	FieldContributors = "contributors"
	FieldCategories   = "categories"
	FieldLinks        = "links"
	FieldEntries      = "entries"
	FieldGenerator    = "generator"
	FieldIcon         = "icon"
	FieldLogo         = "logo"

	FieldType  = "type"
	FieldName  = "name"
	FieldEmail = "email"
	FieldURI   = "uri"
)

func textConstruct(local string) *domain.Descriptor {
	return domain.NewDescriptor(N(local), "atom:"+local).
		Attr(FieldType, a("type")).
		MustBuild()
}

func person(local string) *domain.Descriptor {
	return domain.NewDescriptor(N(local), "atom:"+local).
		One(FieldName, N("name"), nil).
		One(FieldEmail, N("email"), nil).
		One(FieldURI, N("uri"), nil).
		MustBuild()
}

// Descriptors for the Atom elements.
var (
	Title    = textConstruct("title")
	Subtitle = textConstruct("subtitle")
	Summary  = textConstruct("summary")
	Rights   = textConstruct("rights")

	Author      = person("author")
	Contributor = person("contributor")

	Content = domain.NewDescriptor(N("content"), "atom:content").
		Attr(FieldType, a("type")).
		Attr("src", a("src")).
		MustBuild()

	Link = domain.NewDescriptor(N("link"), "atom:link").
		Attr("href", a("href")).
		Attr("rel", a("rel")).
		Attr(FieldType, a("type")).
		Attr("hreflang", a("hreflang")).
		Attr(FieldTitle, a("title")).
		Attr("length", a("length")).
		MustBuild()

	Category = domain.NewDescriptor(N("category"), "atom:category").
		Attr("term", a("term")).
		Attr("scheme", a("scheme")).
		Attr("label", a("label")).
		MustBuild()

	Generator = domain.NewDescriptor(N("generator"), "atom:generator").
		Attr(FieldURI, a("uri")).
		Attr("version", a("version")).
		MustBuild()

	// Entry is the base entry type; kinds extend it.
	Entry = domain.NewDescriptor(N("entry"), "atom:entry").
		One(FieldID, N("id"), nil).
		One(FieldTitle, N("title"), Title).
		One(FieldSummary, N("summary"), Summary).
		One(FieldContent, N("content"), Content).
		One(FieldRights, N("rights"), Rights).
		One(FieldPublished, N("published"), nil).
		One(FieldUpdated, N("updated"), nil).
		Many(FieldAuthors, N("author"), Author).
		Many(FieldContributors, N("contributor"), Contributor).
		Many(FieldCategories, N("category"), Category).
		Many(FieldLinks, N("link"), Link).
		MustBuild()

	Feed = domain.NewDescriptor(N("feed"), "atom:feed").
		One(FieldID, N("id"), nil).
		One(FieldTitle, N("title"), Title).
		One(FieldSubtitle, N("subtitle"), Subtitle).
		One(FieldRights, N("rights"), Rights).
		One(FieldUpdated, N("updated"), nil).
		One(FieldGenerator, N("generator"), Generator).
		One(FieldIcon, N("icon"), nil).
		One(FieldLogo, N("logo"), nil).
		Many(FieldAuthors, N("author"), Author).
		Many(FieldContributors, N("contributor"), Contributor).
		Many(FieldCategories, N("category"), Category).
		Many(FieldLinks, N("link"), Link).
		Many(FieldEntries, N("entry"), Entry).
		MustBuild()
)

// Descriptors returns the Atom descriptors in registration order.
func Descriptors() []*domain.Descriptor {
	return []*domain.Descriptor{
		Title, Subtitle, Summary, Rights,
		Author, Contributor,
		Content, Link, Category, Generator,
		Entry, Feed,
	}
}

// Register installs the Atom descriptors.
func Register(reg driven.SchemaRegistrar) error {
	for _, d := range Descriptors() {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}
