package policy

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"league-app-go/internal/domain/league"
)

//go:embed policies.yaml
var defaultPolicies []byte

// Table is the read-only Policy Table. It is validated once when loaded.
type Table struct {
	policies map[ChangeType]ApprovalPolicy
}

type document struct {
	Policies map[ChangeType]ApprovalPolicy `yaml:"policies"`
}

// Default returns the embedded policy table.
func Default() (*Table, error) {
	return Parse(defaultPolicies)
}

// Load reads the table from path, or returns the embedded one when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return Parse(data)
}

// NewTable builds a validated table from policies keyed by their ChangeType.
func NewTable(policies ...ApprovalPolicy) (*Table, error) {
	table := &Table{policies: make(map[ChangeType]ApprovalPolicy, len(policies))}
	for _, p := range policies {
		table.policies[p.ChangeType] = p
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func Parse(data []byte) (*Table, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var doc document
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	policies := make(map[ChangeType]ApprovalPolicy, len(doc.Policies))
	for changeType, p := range doc.Policies {
		p.ChangeType = changeType
		policies[changeType] = p
	}

	table := &Table{policies: policies}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks the table is complete and internally consistent.
func (t *Table) Validate() error {
	var problems []error
	for _, changeType := range KnownChangeTypes() {
		if _, ok := t.policies[changeType]; !ok {
			problems = append(problems, fmt.Errorf("%s: missing policy", changeType))
		}
	}

	for _, changeType := range t.sortedTypes() {
		p := t.policies[changeType]
		if !changeType.Known() {
			problems = append(problems, fmt.Errorf("%s: unknown change type", changeType))
			continue
		}
		if len(p.ApproverRoles) == 0 {
			problems = append(problems, fmt.Errorf("%s: approverRoles is empty", changeType))
		}
		for _, role := range p.ApproverRoles {
			if !role.Known() {
				problems = append(problems, fmt.Errorf("%s: unknown approver role %q", changeType, role))
			}
		}
		if len(p.CriticalFields) > 0 && !p.RequiresDoubleConfirmation {
			problems = append(problems, fmt.Errorf("%s: criticalFields require requiresDoubleConfirmation", changeType))
		}
		if p.RequiresDoubleConfirmation && len(p.ApproverRoles) < 2 {
			problems = append(problems, fmt.Errorf("%s: double confirmation needs at least two approver roles", changeType))
		}
		for _, field := range p.CriticalFields {
			if p.AllowedWithoutConsensus(field) {
				problems = append(problems, fmt.Errorf("%s: field %q is both critical and allowed without consensus", changeType, field))
			}
		}
		if p.TargetKind != "" && !p.TargetKind.Valid() {
			problems = append(problems, fmt.Errorf("%s: unknown target kind %q", changeType, p.TargetKind))
		}
		if p.RelationshipKind != "" {
			if !p.RelationshipKind.Valid() {
				problems = append(problems, fmt.Errorf("%s: unknown relationship kind %q", changeType, p.RelationshipKind))
			}
			if p.TargetKind != league.KindRelationship {
				problems = append(problems, fmt.Errorf("%s: relationshipKind needs targetKind relationship", changeType))
			}
		}
		if changeType == ChangeRelationshipCreate && p.HasTarget() {
			problems = append(problems, fmt.Errorf("%s: must not declare a target kind", changeType))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTable, errors.Join(problems...))
	}
	return nil
}

// Get returns the policy for changeType and whether it is mapped.
func (t *Table) Get(changeType ChangeType) (ApprovalPolicy, bool) {
	p, ok := t.policies[changeType]
	return p, ok
}

// Lookup distinguishes a caller typo (unknown change type) from a missing
// mapping for a type the workflow knows about, which is a deployment error.
func (t *Table) Lookup(changeType ChangeType) (ApprovalPolicy, error) {
	if p, ok := t.policies[changeType]; ok {
		return p, nil
	}
	if changeType.Known() {
		return ApprovalPolicy{}, fmt.Errorf("%s: %w", changeType, ErrUnmappedChangeType)
	}
	return ApprovalPolicy{}, fmt.Errorf("%q: %w", changeType, ErrUnknownChangeType)
}

// All returns the policies ordered by change type.
func (t *Table) All() []ApprovalPolicy {
	result := make([]ApprovalPolicy, 0, len(t.policies))
	for _, changeType := range t.sortedTypes() {
		result = append(result, t.policies[changeType])
	}
	return result
}

// WriteYAML writes the table in the same format Parse reads.
func (t *Table) WriteYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(document{Policies: t.policies}); err != nil {
		return err
	}
	return encoder.Close()
}

func (t *Table) sortedTypes() []ChangeType {
	types := make([]ChangeType, 0, len(t.policies))
	for changeType := range t.policies {
		types = append(types, changeType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
