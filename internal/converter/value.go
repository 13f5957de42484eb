package converter

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/sparqltt/internal/sparql"
	"github.com/roach88/sparqltt/internal/textutil"
	"github.com/roach88/sparqltt/internal/thingtalk"
	"github.com/roach88/sparqltt/internal/tokenizer"
)

// displayOverrides are displays for entities whose labels never appear in
// the questions that mention them.
var displayOverrides = map[string]string{
	"Q11631":    "cosmonauts", // astronaut
	"Q15180":    "cosmonauts", // Soviet Union
	"Q159":      "cosmonauts", // Russia
	"Q5274359":  "the first season of the hbo television series the sopranos",
	"Q4970706":  "federal chancellors of germany",
	"Q10800557": "actors",
}

// unitWords maps unit words of an utterance to ThingTalk units.
var unitWords = map[string]string{
	"meters":     "m",
	"metres":     "m",
	"meter":      "m",
	"m":          "m",
	"kilometers": "km",
	"kilometres": "km",
	"km":         "km",
	"feet":       "ft",
	"foot":       "ft",
	"miles":      "mi",
	"kilograms":  "kg",
	"kg":         "kg",
	"pounds":     "lb",
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// valueConverter turns raw SPARQL values into typed ThingTalk values.
type valueConverter struct {
	kb             KnowledgeBase
	algorithm      textutil.Algorithm
	excludeDisplay bool

	utterance string
	keywords  []string
	labels    map[string]string
}

func (v *valueConverter) reset(tok Tokenizer, utterance string) {
	v.utterance = utterance
	v.keywords = tokenizer.Spans(tok.Tokenize(utterance))
	v.labels = make(map[string]string)
}

// prefetch loads the labels of ids in one batch.
func (v *valueConverter) prefetch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	labels, err := v.kb.Labels(ctx, ids)
	if err != nil {
		return lookupError("prefetch labels", err)
	}
	for id, label := range labels {
		v.labels[id] = label
	}
	return nil
}

func (v *valueConverter) label(ctx context.Context, id string) (string, bool, error) {
	if label, ok := v.labels[id]; ok {
		return label, true, nil
	}
	label, ok, err := v.kb.Label(ctx, id)
	if err != nil {
		return "", false, lookupError("label of "+id, err)
	}
	if ok {
		v.labels[id] = label
	}
	return label, ok, nil
}

// toValue converts raw to a value of type t.
func (v *valueConverter) toValue(ctx context.Context, raw string, t thingtalk.Type) (thingtalk.Value, error) {
	switch typ := t.(type) {
	case *thingtalk.EntityType:
		qid := sparql.EntityID(raw)
		if !v.kb.IsEntity(qid) {
			return nil, resolutionf("%q is not an entity", raw)
		}
		value := &thingtalk.EntityValue{ID: qid, Type: typ.Name}
		if v.excludeDisplay {
			return value, nil
		}
		display, err := v.display(ctx, qid)
		if err != nil {
			return nil, err
		}
		value.Display = display
		return value, nil
	case *thingtalk.EnumType:
		id := sparql.EntityID(raw)
		label, ok, err := v.label(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, resolutionf("no label for enum value %s", id)
		}
		return &thingtalk.EnumValue{Value: textutil.SnakeCase(label)}, nil
	case *thingtalk.MeasureType:
		return v.measure(raw, typ.Unit)
	case thingtalk.NumberType:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, resolutionf("invalid number %q", raw)
		}
		return thingtalk.NewNumber(n), nil
	case thingtalk.StringType:
		return &thingtalk.StringValue{Value: raw}, nil
	case thingtalk.BooleanType:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, resolutionf("invalid boolean %q", raw)
		}
		return &thingtalk.BooleanValue{Value: b}, nil
	case thingtalk.DateType:
		return toDate(raw)
	case *thingtalk.CompoundType:
		field, ok := typ.Fields[thingtalk.CompoundValueField]
		if !ok {
			return nil, resolutionf("compound type has no %s field", thingtalk.CompoundValueField)
		}
		return v.toValue(ctx, raw, field)
	case *thingtalk.ArrayType:
		return v.toValue(ctx, raw, typ.Elem)
	default:
		return nil, unsupportedf("value of type %v", t)
	}
}

// display picks the utterance span naming qid: the span closest to its
// label, then to one of its aliases, then a fixed override.
func (v *valueConverter) display(ctx context.Context, qid string) (string, error) {
	label, ok, err := v.label(ctx, qid)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", resolutionf("no label for %s", qid)
	}
	if span, ok := textutil.Closest(label, v.keywords, v.algorithm); ok {
		return span, nil
	}

	aliases, err := v.kb.AltLabels(ctx, qid)
	if err != nil {
		return "", lookupError("aliases of "+qid, err)
	}
	for _, alias := range aliases {
		if span, ok := textutil.Closest(alias, v.keywords, v.algorithm); ok {
			return span, nil
		}
	}

	if display, ok := displayOverrides[qid]; ok {
		return display, nil
	}
	return "", resolutionf("no span of the utterance matches %s (%s)", label, qid)
}

// measure finds "<number> <unit>" in the utterance with a unit of the same
// dimension as unit.
func (v *valueConverter) measure(raw, unit string) (thingtalk.Value, error) {
	base := thingtalk.BaseUnit(unit)
	tokens := strings.Split(tokenizer.WordsToNumbers(v.utterance), " ")
	for i := 0; i+1 < len(tokens); i++ {
		n, err := strconv.ParseFloat(tokens[i], 64)
		if err != nil {
			continue
		}
		u, ok := unitWords[strings.ToLower(strings.TrimRight(tokens[i+1], ".,;!?"))]
		if !ok || thingtalk.BaseUnit(u) != base {
			continue
		}
		return &thingtalk.MeasureValue{Value: n, Unit: u}, nil
	}
	return nil, resolutionf("no measure in %s matches %s (%s)", unit, raw, v.utterance)
}

func toDate(raw string) (thingtalk.Value, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		t = t.UTC()
		return &thingtalk.DateValue{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
	}
	return nil, resolutionf("invalid date %q", raw)
}
