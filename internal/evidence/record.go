// Package evidence defines the records handed to the reasoning step: one
// per workflow rule that is enabled for the investigated project.
package evidence

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record describes one enabled workflow rule together with the workflow
// it belongs to. WorkflowID is what deep links are built from.
type Record struct {
	RuleID          string  `json:"ruleId"`
	RuleName        string  `json:"ruleName"`
	RuleDescription *string `json:"ruleDescription,omitempty"`
	RuleScript      *string `json:"ruleScript,omitempty"`
	WorkflowID      string  `json:"workflowId"`
	WorkflowName    string  `json:"workflowName"`
}

// Description returns the rule description or "".
func (r Record) Description() string {
	if r.RuleDescription == nil {
		return ""
	}
	return *r.RuleDescription
}

// Script returns the rule source text or "".
func (r Record) Script() string {
	if r.RuleScript == nil {
		return ""
	}
	return *r.RuleScript
}

// Marshal renders records as an indented JSON array. A nil or empty slice
// becomes "[]" so consumers never see "null".
func Marshal(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal evidence: %w", err)
	}
	return data, nil
}

// Unmarshal parses the output of Marshal. Unknown fields are rejected so a
// payload of the wrong shape fails loudly instead of yielding blank records.
func Unmarshal(data []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("unmarshal evidence: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// asMap exposes a record to filter expressions using its JSON keys.
// Absent optional fields are present as empty strings so expressions like
// rule.ruleScript.contains("x") do not fail on missing keys.
func (r Record) asMap() map[string]string {
	return map[string]string{
		"ruleId":          r.RuleID,
		"ruleName":        r.RuleName,
		"ruleDescription": r.Description(),
		"ruleScript":      r.Script(),
		"workflowId":      r.WorkflowID,
		"workflowName":    r.WorkflowName,
	}
}
