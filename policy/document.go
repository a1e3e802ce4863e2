// Package policy loads and evaluates the authorization policy document.
//
// A policy is a versioned, human-editable YAML file with ordered
// whitelist/blacklist pattern lists for bash commands and file paths,
// plus trusted/restricted agent lists. Documents are immutable once
// loaded; reload replaces them wholesale.
package policy

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PatternSet holds ordered whitelist and blacklist pattern sequences.
// Declaration order is significant: within a list, the first matching
// pattern wins the tie-break.
type PatternSet struct {
	Whitelist []string `yaml:"whitelist"`
	Blacklist []string `yaml:"blacklist"`
}

// Agents lists agent identifiers by trust classification.
type Agents struct {
	Trusted    []string `yaml:"trusted"`
	Restricted []string `yaml:"restricted"`
}

// Document is the authoritative authorization policy.
// Absent sections are treated as empty lists, not errors.
type Document struct {
	Version   string     `yaml:"version"`
	Bash      PatternSet `yaml:"bash"`
	FilePaths PatternSet `yaml:"file_paths"`
	Agents    Agents     `yaml:"agents"`
}

// Parse decodes a policy document from YAML.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	return &doc, nil
}

// Encode serializes a document back to YAML. Used by inspection tooling.
func (d *Document) Encode() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode policy: %w", err)
	}
	return data, nil
}

// Builtin returns the minimal built-in fallback policy used when no
// candidate file on the cascade is usable. It is deny-heavy: an empty
// whitelist combined with blacklist coverage of the most destructive
// command shapes, and no trusted agents.
func Builtin() *Document {
	return &Document{
		Version: "builtin",
		Bash: PatternSet{
			Whitelist: nil,
			Blacklist: []string{
				"rm -rf*",
				"rm -fr*",
				"sudo *",
				"mkfs*",
				"dd if=*",
				"chmod -R 777*",
				"chown -R*",
				"shutdown*",
				"reboot*",
				"* > /dev/sd*",
			},
		},
		FilePaths: PatternSet{
			Whitelist: nil,
			Blacklist: []string{
				"/etc/**",
				"/boot/**",
				"/proc/**",
				"/sys/**",
				"**/.ssh/**",
				"**/.aws/**",
				"**/.gnupg/**",
			},
		},
		Agents: Agents{},
	}
}
