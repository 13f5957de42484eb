package converter

import (
	"context"
	"strings"

	"github.com/roach88/sparqltt/internal/schema"
	"github.com/roach88/sparqltt/internal/sparql"
	"github.com/roach88/sparqltt/internal/textutil"
	"github.com/roach88/sparqltt/internal/thingtalk"
)

// maxClassDepth bounds the subclass-of walk of topLevelDomain.
const maxClassDepth = 5

// preprocess simplifies the registry before a root is chosen. sel is nil
// for verification queries, which keep their domain-only tables.
func (c *conversion) preprocess(ctx context.Context, sel *outputs) error {
	if sel != nil {
		if err := c.foldDomainTables(ctx, sel); err != nil {
			return err
		}
	}
	if err := c.resolveSubdomains(ctx); err != nil {
		return err
	}
	return c.widenDomains(ctx)
}

// foldDomainTables removes tables that only name a domain and are projected
// by another table; the domain becomes a type hint on that projection.
func (c *conversion) foldDomainTables(ctx context.Context, sel *outputs) error {
	for _, t := range c.reg.all() {
		if isEntitySubject(t.Subject) || genericTable(t.Name) {
			continue
		}
		if len(t.Filters) > 0 || len(t.Projections) > 0 {
			continue
		}

		hint := t.Name
		if c.kb.IsEntity(t.Name) {
			label, ok, err := c.values.label(ctx, t.Name)
			if err != nil {
				return err
			}
			if !ok {
				return resolutionf("no label for class %s", t.Name)
			}
			hint = textutil.CleanName(label)
		}

		projected := false
		for _, subject := range sel.order {
			if subject == t.Subject {
				continue
			}
			for _, o := range sel.get(subject) {
				if !o.isAggregation() && o.Variable == t.Subject {
					o.Type = hint
					projected = true
					break
				}
			}
		}
		if projected {
			c.reg.remove(t.Subject)
		}
	}
	return nil
}

// resolveSubdomains gives tables named by a class the schema lacks the
// closest schema domain above that class, filtered by instance_of.
func (c *conversion) resolveSubdomains(ctx context.Context) error {
	for _, t := range c.reg.all() {
		if !c.kb.IsEntity(t.Name) {
			continue
		}
		qid := t.Name
		domain, err := c.topLevelDomain(ctx, qid)
		if err != nil {
			return err
		}
		display, err := c.classDisplay(ctx, qid)
		if err != nil {
			return err
		}
		c.logger.Debug("resolved subdomain", "subject", t.Subject, "class", qid, "domain", domain)
		t.Name = domain
		t.Filters = append([]thingtalk.BooleanExpression{instanceOf(qid, domain, display)}, t.Filters...)
	}
	return nil
}

// topLevelDomain walks subclass-of edges upwards, one level at a time, and
// returns the first schema domain it meets.
func (c *conversion) topLevelDomain(ctx context.Context, qid string) (string, error) {
	visited := map[string]bool{qid: true}
	frontier := []string{qid}
	for depth := 0; depth < maxClassDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, class := range frontier {
			parents, err := c.kb.PropertyValues(ctx, class, sparql.SubclassOf)
			if err != nil {
				return "", lookupError("superclasses of "+class, err)
			}
			for _, parent := range parents {
				if visited[parent] {
					continue
				}
				visited[parent] = true
				next = append(next, parent)
			}
		}
		for _, class := range next {
			if name, ok := c.schema.Table(class); ok {
				return name, nil
			}
		}
		frontier = next
	}
	return schema.GenericDomain, nil
}

// classDisplay is the display of a class value: its utterance span when
// there is one, else its label.
func (c *conversion) classDisplay(ctx context.Context, qid string) (string, error) {
	if c.values.excludeDisplay {
		return "", nil
	}
	display, err := c.values.display(ctx, qid)
	if err == nil {
		return display, nil
	}
	if !IsResolutionFailure(err) || IsTransient(err) {
		return "", err
	}
	label, _, err := c.values.label(ctx, qid)
	return label, err
}

// widenDomains moves tables using properties outside their domain to the
// generic domain, keeping the class as an instance_of filter.
func (c *conversion) widenDomains(ctx context.Context) error {
	for _, t := range c.reg.all() {
		if genericTable(t.Name) || c.fitsDomain(t) {
			continue
		}
		old := t.Name
		t.Name = schema.GenericDomain
		c.logger.Debug("widened table domain", "subject", t.Subject, "from", old)

		if _, ok := thingtalk.InstanceOfFilter(t.Filters); ok {
			continue
		}
		if retypeIDFilter(t.Filters) {
			continue
		}
		qid, ok := c.schema.DomainSubject(old)
		if !ok {
			continue
		}
		display, err := c.classDisplay(ctx, qid)
		if err != nil {
			return err
		}
		t.Filters = append([]thingtalk.BooleanExpression{instanceOf(qid, schema.GenericDomain, display)}, t.Filters...)
	}
	return nil
}

func (c *conversion) fitsDomain(t *Table) bool {
	for _, name := range tableProperties(t) {
		if !c.schema.HasProperty(t.Name, name) {
			return false
		}
	}
	return true
}

// retypeIDFilter moves the entity of an id filter to the generic type.
func retypeIDFilter(filters []thingtalk.BooleanExpression) bool {
	for _, f := range filters {
		if !thingtalk.IsIDFilter(f) {
			continue
		}
		atom := f.(*thingtalk.AtomBooleanExpression)
		entity := *atom.Value.(*thingtalk.EntityValue)
		entity.Type = thingtalk.EntityTypeName(schema.GenericDomain)
		atom.Value = &entity
		return true
	}
	return false
}

// tableProperties lists the fields a table filters on or projects.
func tableProperties(t *Table) []string {
	var names []string
	for _, f := range t.Filters {
		for _, name := range thingtalk.PropertiesInFilter(f) {
			names = append(names, strings.TrimSuffix(name, labelSuffix))
		}
	}
	for _, p := range t.Projections {
		if name, ok := projectedProperty(p.Property); ok {
			names = append(names, strings.TrimSuffix(name, labelSuffix))
		}
	}
	return names
}

func projectedProperty(v thingtalk.Value) (string, bool) {
	switch prop := v.(type) {
	case *thingtalk.VarRef:
		return prop.Name, true
	case thingtalk.PropertyPath:
		if len(prop) == 0 {
			return "", false
		}
		return prop[0].Property, true
	case *thingtalk.FilterValue:
		return projectedProperty(prop.Value)
	case *thingtalk.ArrayFieldValue:
		return projectedProperty(prop.Value)
	}
	return "", false
}
