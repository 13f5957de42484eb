// Package harness runs conversion scenarios: YAML files listing SPARQL
// queries, the utterances they answer and the ThingTalk each one must
// produce.
//
// A scenario names a schema and a knowledge-base fixture, so a run never
// touches the network. Each case either expects a program, compared
// verbatim, or an error code. Assertions check properties across cases,
// and RunWithGolden compares all outcomes of a scenario against a golden
// file under testdata/golden.
//
// Scenario format:
//
//	name: capitals
//	description: Capital lookups
//	schema: ../schema/wikidata.cue
//	kb: ../kb.yaml
//	cases:
//	  - id: france
//	    utterance: What is the capital of France?
//	    sparql: SELECT ?c WHERE { wd:Q142 wdt:P36 ?c }
//	    expect:
//	      program: '[capital] of @org.wikidata.country() filter ...;'
//	assertions:
//	  - type: program_contains
//	    case: france
//	    text: capital
package harness
