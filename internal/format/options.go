package format

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is wrapped by every Options validation failure.
var ErrInvalidOptions = errors.New("invalid format options")

// DefaultSectionOrder is the canonical order of top-level template sections.
var DefaultSectionOrder = []string{
	"AWSTemplateFormatVersion",
	"Description",
	"Metadata",
	"Parameters",
	"Mappings",
	"Conditions",
	"Transform",
	"Resources",
	"Outputs",
}

// DefaultResourceOrder is the canonical order of attributes inside a resource.
var DefaultResourceOrder = []string{
	"DependsOn",
	"Condition",
	"CreationPolicy",
	"UpdatePolicy",
	"UpdateReplacePolicy",
	"DeletionPolicy",
	"Type",
	"Metadata",
	"Properties",
}

const (
	defaultAnchorKey       = "Resources"
	defaultVersionKey      = "AWSTemplateFormatVersion"
	defaultVersionValue    = "'2010-09-09'"
	defaultMaxIndentPasses = 1000
)

// Options is the read-only rule set of one formatting run.
type Options struct {
	// EnsureVersion inserts VersionKey: VersionValue when the key is missing.
	EnsureVersion bool
	VersionKey    string
	VersionValue  string

	// KeyIndent is the indentation step of nested block maps; 0 disables it.
	KeyIndent int
	// EnforceListOffset turns on the dash column check of block sequences,
	// ListOffset columns to the right of their key.
	EnforceListOffset bool
	ListOffset        int

	// SectionOrder orders top-level groups; nil disables the pass.
	SectionOrder []string
	// ResourceOrder orders the groups of every entry under ContainerKey; nil disables the pass.
	ResourceOrder []string

	// EnforceNewLines ends the file with exactly NewLines '\n'.
	EnforceNewLines bool
	NewLines        int

	// StripNonASCII removes every non-ASCII character before the other passes.
	StripNonASCII bool

	// AnchorKey must be present at the top level for any pass to run.
	AnchorKey string
	// ContainerKey names the top-level group whose entries ResourceOrder applies to.
	ContainerKey string

	// MaxIndentPasses bounds the indentation fix loop.
	MaxIndentPasses int
}

// DefaultOptions returns the built-in rule set.
func DefaultOptions() Options {
	return Options{
		EnsureVersion:   true,
		VersionKey:      defaultVersionKey,
		VersionValue:    defaultVersionValue,
		KeyIndent:       2,
		SectionOrder:    append([]string(nil), DefaultSectionOrder...),
		ResourceOrder:   append([]string(nil), DefaultResourceOrder...),
		EnforceNewLines: true,
		NewLines:        1,
		AnchorKey:       defaultAnchorKey,
		ContainerKey:    defaultAnchorKey,
		MaxIndentPasses: defaultMaxIndentPasses,
	}
}

func (o Options) withDefaults() Options {
	if o.VersionKey == "" {
		o.VersionKey = defaultVersionKey
	}
	if o.VersionValue == "" {
		o.VersionValue = defaultVersionValue
	}
	if o.AnchorKey == "" {
		o.AnchorKey = defaultAnchorKey
	}
	if o.ContainerKey == "" {
		o.ContainerKey = defaultAnchorKey
	}
	if o.MaxIndentPasses <= 0 {
		o.MaxIndentPasses = defaultMaxIndentPasses
	}
	return o
}

// Validate reports rule values no pass can honor.
func (o Options) Validate() error {
	if o.KeyIndent < 0 {
		return fmt.Errorf("%w: key indent %d must be at least 1", ErrInvalidOptions, o.KeyIndent)
	}
	if o.EnforceListOffset && o.ListOffset < 0 {
		return fmt.Errorf("%w: list indent offset %d must not be negative", ErrInvalidOptions, o.ListOffset)
	}
	if o.EnforceNewLines && o.NewLines < 0 {
		return fmt.Errorf("%w: trailing newline count %d must not be negative", ErrInvalidOptions, o.NewLines)
	}
	return nil
}

func (o Options) indentEnabled() bool { return o.KeyIndent > 0 }

func (o Options) listOffsetEnabled() bool { return o.EnforceListOffset }

// indentRules maps the enabled checks onto FindDefect parameters.
func (o Options) indentRules() IndentRules {
	rules := IndentRules{Step: o.KeyIndent, Offset: -1}
	if o.EnforceListOffset {
		rules.Offset = o.ListOffset
	}
	return rules
}
