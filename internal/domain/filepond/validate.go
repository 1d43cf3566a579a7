package filepond

import (
	"strings"

	"filepond/internal/pkg/validator"
)

// Validate runs rules against the bound file(s), keyed by the field name
// taken from the first rule key. When nothing is bound and that key points
// below the field ("avatar.required"), the entry is re-keyed to the field so
// a missing upload reports against "avatar". Bound fields are checked with
// the keys as given.
func (f *Field) Validate(rules validator.RuleSet, messages, attributes map[string]string) error {
	if len(rules) == 0 {
		return ErrEmptyRuleSet
	}

	old := rules[0].Key
	field, _, _ := strings.Cut(old, ".")

	if f.IsEmpty() && old != field {
		rules = rekey(rules, old, field)
	}

	files, err := f.GetFile()
	if err != nil {
		return err
	}

	return f.fp.validator.Validate(map[string]any{field: validationValue(f, files)}, rules, messages, attributes)
}

func rekey(rules validator.RuleSet, from, to string) validator.RuleSet {
	moved := rules[0].Rules
	out := make(validator.RuleSet, 0, len(rules))
	replaced := false
	for _, entry := range rules {
		switch entry.Key {
		case from:
			continue
		case to:
			entry.Rules = moved
			replaced = true
		}
		out = append(out, entry)
	}
	if !replaced {
		out = append(out, validator.RuleEntry{Key: to, Rules: moved})
	}
	return out
}

func validationValue(f *Field, files []*File) any {
	if len(files) == 0 {
		return nil
	}
	if !f.IsMultiple() {
		return validator.File(files[0])
	}
	out := make([]validator.File, len(files))
	for i, file := range files {
		out[i] = file
	}
	return out
}
