package extractor

import "github.com/jenian/refscan/internal/analyzer"

// Role represents the structural classification of a line
type Role string

const (
	RoleNone    Role = ""
	RoleImport  Role = "import"
	RoleRequire Role = "require"
	RoleExport  Role = "export"
)

// Valid reports whether r is one of the roles a rule may assign
func (r Role) Valid() bool {
	switch r {
	case RoleImport, RoleRequire, RoleExport:
		return true
	default:
		return false
	}
}

// RoleRule assigns Role to a trimmed line that starts with one of Prefixes
// and contains every substring in Contains. Empty lists always match.
type RoleRule struct {
	Role     Role     `yaml:"role"`
	Prefixes []string `yaml:"prefixes"`
	Contains []string `yaml:"contains"`
}

// FlagRule sets Flag when a line contains any of the substrings
type FlagRule struct {
	Flag     string   `yaml:"flag"`
	Contains []string `yaml:"contains"`
}

// DefaultRoles returns the role rules for CommonJS and ES module sources.
// Order matters: the first matching rule wins.
func DefaultRoles() []RoleRule {
	return []RoleRule{
		{Role: RoleRequire, Prefixes: []string{"const ", "let ", "var "}, Contains: []string{"require("}},
		{Role: RoleImport, Prefixes: []string{"import "}},
		{Role: RoleExport, Prefixes: []string{"export ", "module.exports", "exports."}},
	}
}

// DefaultFlags returns the usage signal rules
func DefaultFlags() []FlagRule {
	return []FlagRule{
		{Flag: analyzer.FlagFrameworkEntry, Contains: []string{
			"express(", "from 'express'", `from "express"`, "require('express')", `require("express")`,
		}},
		{Flag: analyzer.FlagRouter, Contains: []string{".Router("}},
		{Flag: analyzer.FlagDataStore, Contains: []string{"pool.", "db.", "client."}},
		{Flag: analyzer.FlagOutboundCall, Contains: []string{"fetch(", " fetch ", "axios.", "request("}},
	}
}
