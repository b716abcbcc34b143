// Package ontotest provides a small CIM-like ontology for tests.
package ontotest

import "github.com/ersonp/osl-core/internal/domain/entities"

// Name and Version of the fixture ontology.
const (
	Name    = "cim"
	Version = "2.1.0"
)

func prop(name, target string, card entities.Cardinality) entities.PropertyDefinition {
	return entities.PropertyDefinition{Name: name, Target: target, Cardinality: card}
}

func members(values ...string) []entities.EnumMember {
	out := make([]entities.EnumMember, len(values))
	for i, v := range values {
		out[i] = entities.EnumMember{Value: v}
	}
	return out
}

// Schema returns a fresh copy of the fixture schema.
func Schema() *entities.RawSchema {
	return &entities.RawSchema{
		Name:          Name,
		Version:       Version,
		Documentation: "Test fixture modelled on CIM2",
		Packages: map[string]entities.Package{
			"shared":    shared(),
			"activity":  activity(),
			"designing": designing(),
		},
	}
}

func shared() entities.Package {
	return entities.Package{
		"shared.nil_reason": {
			Type: entities.RecordClass,
			Properties: []entities.PropertyDefinition{
				prop("reason", "str", entities.Required),
			},
			Doc: "Explains why a value is missing.",
		},
		"shared.doc_reference": {
			Type: entities.RecordClass,
			Properties: []entities.PropertyDefinition{
				prop("name", "str", entities.Optional),
				prop("canonical_name", "str", entities.Optional),
				prop("id", "str", entities.Optional),
				prop("version", "int", entities.Optional),
				prop("type", "str", entities.Optional),
				prop("relationship", "str", entities.Optional),
				prop("description", "text", entities.Optional),
			},
		},
		"shared.doc_meta_info": {
			Type: entities.RecordClass,
			Properties: []entities.PropertyDefinition{
				prop("uid", "str", entities.Required),
				prop("author", entities.LinkedTo("shared.party"), entities.Optional),
				prop("version", "int", entities.Required),
				prop("create_date", "datetime", entities.Optional),
				prop("drafted_by", "str", entities.Optional),
			},
			Constraints: []entities.Constraint{
				{Kind: entities.ConstraintValue, Property: "version", Value: 1},
			},
		},
		"shared.party": {
			Type:       entities.RecordClass,
			IsDocument: entities.Bool(true),
			Properties: []entities.PropertyDefinition{
				prop("name", "str", entities.Optional),
				prop("email", "str", entities.Optional),
				prop("url", "shared.online_resource", entities.Optional),
				prop("organisation", "bool", entities.Optional),
			},
		},
		"shared.online_resource": {
			Type: entities.RecordClass,
			Properties: []entities.PropertyDefinition{
				prop("name", "str", entities.Required),
				prop("linkage", "str", entities.Required),
				prop("protocol", "str", entities.Optional),
			},
			Pstr: &entities.PrintTemplate{Format: "{} ({})", Properties: []string{"name", "linkage"}},
		},
		"shared.responsibility": {
			Type: entities.RecordClass,
			Properties: []entities.PropertyDefinition{
				prop("role", "shared.role_code", entities.Required),
				prop("party", entities.LinkedTo("shared.party"), entities.OneOrMore),
			},
		},
		"shared.role_code": {
			Type:    entities.RecordEnum,
			Members: members("author", "point of contact", "principal investigator", "publisher"),
		},
		"shared.numeric": {
			Type: entities.RecordClass,
			Properties: []entities.PropertyDefinition{
				prop("value", "float", entities.Required),
				prop("units", "str", entities.Required),
			},
			Pstr: &entities.PrintTemplate{Format: "{} {}", Properties: []string{"value", "units"}},
		},
		"shared.citation": {
			Type:       entities.RecordClass,
			IsDocument: entities.Bool(true),
			Properties: []entities.PropertyDefinition{
				prop("title", "str", entities.Optional),
				prop("doi", "str", entities.Optional),
				prop("year", "int", entities.Optional),
			},
		},
	}
}

func activity() entities.Package {
	return entities.Package{
		"activity.activity": {
			Type:       entities.RecordClass,
			IsDocument: entities.Bool(true),
			IsAbstract: true,
			Properties: []entities.PropertyDefinition{
				prop("name", "str", entities.Required),
				prop("canonical_name", "str", entities.Optional),
				prop("long_name", "str", entities.Optional),
				prop("description", "text", entities.Optional),
				prop("keywords", "str", entities.ZeroOrMore),
				prop("references", "shared.citation", entities.ZeroOrMore),
				prop("responsible_parties", "shared.responsibility", entities.ZeroOrMore),
				prop("rationale", "text", entities.Optional),
				prop("duration", "shared.numeric", entities.Optional),
			},
		},
		"activity.conformance_type": {
			Type:    entities.RecordEnum,
			IsOpen:  true,
			Members: members("via inputs", "via model mods", "not conformed"),
		},
	}
}

func designing() entities.Package {
	return entities.Package{
		"designing.numerical_requirement": {
			Type: entities.RecordClass,
			Base: "activity.activity",
			Properties: []entities.PropertyDefinition{
				prop("description", "str", entities.Optional),
				prop("conformance_is_requested", "bool", entities.Optional),
				prop("conformance", "activity.conformance_type", entities.Optional),
				prop("additional_requirements", entities.LinkedTo("designing.numerical_requirement"), entities.ZeroOrMore),
			},
		},
		"designing.temporal_constraint": {
			Type: entities.RecordClass,
			Base: "designing.numerical_requirement",
			Properties: []entities.PropertyDefinition{
				prop("required_calendar", "str", entities.Optional),
				prop("start_date", "datetime", entities.Optional),
				prop("length_in_days", "int", entities.Optional),
			},
			Constraints: []entities.Constraint{
				{Kind: entities.ConstraintValue, Property: "required_calendar", Value: "gregorian"},
				{Kind: entities.ConstraintCardinality, Property: "additional_requirements", Value: "0.0"},
			},
		},
		"designing.numerical_experiment": {
			Type: entities.RecordClass,
			Base: "activity.activity",
			Properties: []entities.PropertyDefinition{
				prop("related_experiments", entities.LinkedTo("designing.numerical_experiment"), entities.ZeroOrMore),
				prop("requirements", entities.LinkedTo("designing.numerical_requirement"), entities.ZeroOrMore),
				prop("required_period", entities.LinkedTo("designing.temporal_constraint"), entities.Optional),
				prop("tier", "int", entities.Optional),
			},
			Pstr: &entities.PrintTemplate{Format: "Experiment {} {}", Properties: []string{"name", "keywords"}},
		},
		"designing.project": {
			Type: entities.RecordClass,
			Base: "activity.activity",
			Properties: []entities.PropertyDefinition{
				prop("homepage", "shared.online_resource", entities.Optional),
				prop("sub_projects", entities.LinkedTo("designing.project"), entities.ZeroOrMore),
				prop("requires_experiments", entities.LinkedTo("designing.numerical_experiment"), entities.ZeroOrMore),
				prop("governed_experiments", "designing.numerical_experiment", entities.ZeroOrMore),
				prop("lead", "shared.party", entities.Optional),
				prop("budget", "float", entities.Optional),
			},
		},
		"designing.simulation_plan": {
			Type: entities.RecordClass,
			Base: "activity.activity",
			Properties: []entities.PropertyDefinition{
				prop("will_support_experiments", entities.LinkedTo("designing.numerical_experiment"), entities.OneOrMore),
				prop("expected_platform", "str", entities.Optional),
			},
		},
	}
}
