package models

// CatalogDocument is the parsed dataset handed to the import job. The same
// shape decodes from the JSON admin upload and from legacy Mongo documents.
type CatalogDocument struct {
	Cards []CatalogCard `json:"cards"`
}

// CatalogCard is one catalog entry before validation. Level is a string
// because legacy datasets carry roman numerals ("IV") next to plain ints.
type CatalogCard struct {
	GlobalID    string `json:"idGlobal" bson:"idGlobal"`
	PhysicalID  string `json:"idFisico,omitempty" bson:"idFisico,omitempty"`
	Name        string `json:"name" bson:"name"`
	Description string `json:"description" bson:"description"`
	CardType    string `json:"cardType" bson:"cardType"`

	Atk             *int    `json:"atk,omitempty" bson:"atk,omitempty"`
	Def             *int    `json:"def,omitempty" bson:"def,omitempty"`
	Level           string  `json:"lvl,omitempty" bson:"lvl,omitempty"`
	Realm           *string `json:"realm,omitempty" bson:"realm,omitempty"`
	HasSpecialSkill *bool   `json:"hasSpecialSkill,omitempty" bson:"hasSpecialSkill,omitempty"`
	Subtype         *string `json:"subtype,omitempty" bson:"subtype,omitempty"`
}

// ImportReport summarizes one import run.
type ImportReport struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Skipped int           `json:"skipped"`
	Errors  []ImportIssue `json:"errors,omitempty"`
}

// ImportIssue records why a single entry was skipped.
type ImportIssue struct {
	GlobalID string `json:"idGlobal"`
	Reason   string `json:"reason"`
}
