// Package schema maps Wikidata ids to ThingTalk names and types.
//
// A schema is a CUE document listing domains (one ThingTalk function each),
// the Wikidata class of each domain, and the properties of the domain with
// their ThingTalk types:
//
//	domains: country: {
//		wikidata_subject: "Q6256"
//		properties: {
//			population: {wikidata_id: "P1082", type: "Number"}
//			member_of: {
//				wikidata_id: "P463"
//				type:        "Array(Entity(org.wikidata:organization))"
//				fields: start_time: {wikidata_id: "P580", type: "Date"}
//			}
//		}
//	}
//
// A property with fields is a statement with qualifiers: its type becomes a
// compound whose "value" field holds the declared element type. A property
// may list the properties it covers (covers: ["P22", "P25"]); an alternative
// path over covered properties collapses to it.
package schema

import (
	"strings"

	"github.com/roach88/sparqltt/internal/thingtalk"
)

// GenericDomain is the catch-all domain accepting every known property.
const GenericDomain = "entity"

// Property is one property of a domain, or one qualifier field of a
// statement property.
type Property struct {
	Name   string
	ID     string
	Type   thingtalk.Type
	Fields []Property
	Covers []string
}

// Domain is one ThingTalk function backed by a Wikidata class.
type Domain struct {
	Name       string
	Subject    string
	Properties []Property
}

// Index answers the id and type lookups the converter needs. It is
// immutable after Compile and safe for concurrent use.
type Index struct {
	class   string
	domains []*Domain

	domainByName  map[string]*Domain
	domainBySubj  map[string]string
	propertyNames map[string]string
	propertyTypes map[string]thingtalk.Type
	domainProps   map[string]map[string]bool
	covering      []Property
}

func newIndex(class string) *Index {
	return &Index{
		class:         class,
		domainByName:  make(map[string]*Domain),
		domainBySubj:  make(map[string]string),
		propertyNames: make(map[string]string),
		propertyTypes: make(map[string]thingtalk.Type),
		domainProps:   make(map[string]map[string]bool),
	}
}

func (ix *Index) addDomain(d *Domain) {
	ix.domains = append(ix.domains, d)
	ix.domainByName[d.Name] = d
	if _, taken := ix.domainBySubj[d.Subject]; !taken {
		ix.domainBySubj[d.Subject] = d.Name
	}

	props := make(map[string]bool, len(d.Properties))
	for _, p := range d.Properties {
		props[p.Name] = true
		ix.addProperty(p.Name, p)
		for _, f := range p.Fields {
			ix.addProperty(p.Name+"."+f.Name, f)
		}
		if len(p.Covers) > 0 {
			ix.covering = append(ix.covering, p)
		}
	}
	ix.domainProps[d.Name] = props
}

func (ix *Index) addProperty(key string, p Property) {
	if p.ID != "" {
		if _, taken := ix.propertyNames[p.ID]; !taken {
			ix.propertyNames[p.ID] = p.Name
		}
	}
	if _, taken := ix.propertyTypes[key]; !taken {
		ix.propertyTypes[key] = p.Type
	}
	// Qualifier fields are also addressable by their bare name.
	if _, taken := ix.propertyTypes[p.Name]; !taken {
		ix.propertyTypes[p.Name] = p.Type
	}
}

// Class returns the ThingTalk class of the schema's functions.
func (ix *Index) Class() string {
	return ix.class
}

// Domains returns the domains in declaration order.
func (ix *Index) Domains() []*Domain {
	return ix.domains
}

// Domain returns the named domain.
func (ix *Index) Domain(name string) (*Domain, bool) {
	d, ok := ix.domainByName[name]
	return d, ok
}

// Table returns the domain whose Wikidata class is qid.
func (ix *Index) Table(qid string) (string, bool) {
	name, ok := ix.domainBySubj[qid]
	return name, ok
}

// Property returns the ThingTalk name of a property or qualifier id.
func (ix *Index) Property(pid string) (string, bool) {
	name, ok := ix.propertyNames[pid]
	return name, ok
}

// PropertyType returns the type of a property. Dotted names
// (property.qualifier) resolve to the qualifier's type; id and instance_of
// are entities.
func (ix *Index) PropertyType(name string) (thingtalk.Type, bool) {
	switch name {
	case thingtalk.IDField:
		return &thingtalk.EntityType{Name: thingtalk.EntityTypeName(GenericDomain)}, true
	case thingtalk.InstanceOfField:
		return &thingtalk.EntityType{Name: thingtalk.EntityTypeName("domain")}, true
	}
	t, ok := ix.propertyTypes[name]
	return t, ok
}

// HasProperty reports whether domain declares the property. The generic
// domain accepts every property of the schema, and every domain has id and
// instance_of.
func (ix *Index) HasProperty(domain, name string) bool {
	if name == thingtalk.IDField || name == thingtalk.InstanceOfField {
		return true
	}
	if base, _, dotted := strings.Cut(name, "."); dotted {
		name = base
	}
	if domain == GenericDomain {
		_, ok := ix.propertyTypes[name]
		return ok
	}
	return ix.domainProps[domain][name]
}

// DomainSubject returns the Wikidata class of a domain.
func (ix *Index) DomainSubject(domain string) (string, bool) {
	d, ok := ix.domainByName[domain]
	if !ok {
		return "", false
	}
	return d.Subject, true
}

// AbstractProperty returns the id of a property covering every pid.
func (ix *Index) AbstractProperty(pids []string) (string, bool) {
	if len(pids) == 0 {
		return "", false
	}
	for _, p := range ix.covering {
		if coversAll(p.Covers, pids) {
			return p.ID, true
		}
	}
	return "", false
}

func coversAll(covers, pids []string) bool {
	set := make(map[string]bool, len(covers))
	for _, c := range covers {
		set[c] = true
	}
	for _, pid := range pids {
		if !set[pid] {
			return false
		}
	}
	return true
}
