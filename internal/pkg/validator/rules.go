package validator

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// File is what upload rules inspect.
type File interface {
	Extension() string
	Size() int64
	MimeType() string
}

// RuleEntry binds a rule key to its rules. A rule key is a field name, a
// wildcard path such as "gallery.*", or an indexed path such as "gallery.0".
// Each element of Rules may itself be a "|" separated list.
type RuleEntry struct {
	Key   string
	Rules []string
}

// RuleSet keeps rule entries in declaration order.
type RuleSet []RuleEntry

// Rules is shorthand for a one-entry RuleSet.
func Rules(key string, rules ...string) RuleSet {
	return RuleSet{{Key: key, Rules: rules}}
}

// Add appends an entry and returns the set.
func (rs RuleSet) Add(key string, rules ...string) RuleSet {
	return append(rs, RuleEntry{Key: key, Rules: rules})
}

// ParseRules splits "required|file|max:5000" into single rules.
func ParseRules(rules ...string) []string {
	var out []string
	for _, r := range rules {
		for _, part := range strings.Split(r, "|") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

var defaultMessages = map[string]string{
	"required":    "The :attribute field is required.",
	"file":        "The :attribute must be a file.",
	"array":       "The :attribute must be an array.",
	"max.file":    "The :attribute must not be greater than :max kilobytes.",
	"max.array":   "The :attribute must not have more than :max items.",
	"min.file":    "The :attribute must be at least :min kilobytes.",
	"min.array":   "The :attribute must have at least :min items.",
	"size.file":   "The :attribute must be :size kilobytes.",
	"size.array":  "The :attribute must contain :size items.",
	"mimes":       "The :attribute must be a file of type: :values.",
	"extensions":  "The :attribute must have one of the following extensions: :values.",
	"mimetypes":   "The :attribute must be a file of type: :values.",
	"max_files":   "The :attribute must not have more than :max_files items.",
	"unsupported": "The :attribute has an unsupported rule.",
}

// Engine evaluates upload rules against a value map of nil, File or []File.
type Engine struct {
	v *validator.Validate
}

func NewEngine() *Engine {
	return &Engine{v: validator.New()}
}

// Validate returns *ValidationError when a rule fails, or an error for an
// unknown rule or malformed parameter.
func (e *Engine) Validate(values map[string]any, rules RuleSet, messages, attributes map[string]string) error {
	verr := &ValidationError{}

	for _, entry := range rules {
		parsed := ParseRules(entry.Rules...)
		bail := slices.Contains(parsed, "bail")
		for _, target := range resolve(values, entry.Key) {
			for _, rule := range parsed {
				name, param, _ := strings.Cut(rule, ":")
				ok, kind, err := e.check(target.value, name, param)
				if err != nil {
					return fmt.Errorf("rule %q on %q: %w", rule, entry.Key, err)
				}
				if ok {
					continue
				}
				msg := message(messages, entry.Key, target.key, name, kind)
				verr.add(target.key, render(msg, attributeName(attributes, entry.Key, target.key), name, param))
				// bail stops at the first failure of this target
				if bail {
					break
				}
			}
		}
	}

	if verr.empty() {
		return nil
	}
	return verr
}

type target struct {
	key   string
	value any
}

// resolve maps a rule key onto the values it applies to.
func resolve(values map[string]any, key string) []target {
	field, rest, nested := strings.Cut(key, ".")
	value := values[field]
	if !nested {
		return []target{{key: field, value: value}}
	}

	files, isArray := value.([]File)
	if rest == "*" {
		if !isArray {
			return nil
		}
		out := make([]target, 0, len(files))
		for i, f := range files {
			out = append(out, target{key: fmt.Sprintf("%s.%d", field, i), value: f})
		}
		return out
	}

	if i, err := strconv.Atoi(rest); err == nil && isArray && i >= 0 && i < len(files) {
		return []target{{key: key, value: files[i]}}
	}
	return []target{{key: key, value: nil}}
}

// check reports whether value passes the rule. kind is "file" or "array" for
// size rules so the message can be picked accordingly.
func (e *Engine) check(value any, name, param string) (bool, string, error) {
	file, isFile := value.(File)
	files, isArray := value.([]File)
	present := (isFile && file != nil) || (isArray && len(files) > 0)

	kind := "file"
	if isArray {
		kind = "array"
	}

	if name == "required" {
		return e.v.Var(count(value), "gt=0") == nil, kind, nil
	}
	// every other rule only applies to present values
	if !present {
		if _, known := ruleNames[name]; !known {
			return false, kind, fmt.Errorf("unsupported rule %q", name)
		}
		return true, kind, nil
	}

	switch name {
	case "nullable", "sometimes", "bail":
		// markers read by Validate, not checks
		return true, kind, nil
	case "file":
		return isFile, kind, nil
	case "array":
		return isArray, kind, nil
	case "max", "min", "size":
		limit, err := strconv.ParseFloat(param, 64)
		if err != nil || math.IsNaN(limit) {
			return false, kind, fmt.Errorf("invalid %s parameter %q", name, param)
		}
		tag := map[string]string{"max": "lte", "min": "gte", "size": "eq"}[name]
		var measured float64
		if isArray {
			measured = float64(len(files))
		} else {
			measured = float64(file.Size()) / 1024
			if name == "size" {
				measured = math.Round(measured)
			}
		}
		return e.v.Var(measured, fmt.Sprintf("%s=%s", tag, strconv.FormatFloat(limit, 'f', -1, 64))) == nil, kind, nil
	case "max_files":
		limit, err := strconv.Atoi(param)
		if err != nil {
			return false, kind, fmt.Errorf("invalid max_files parameter %q", param)
		}
		return e.v.Var(count(value), fmt.Sprintf("lte=%d", limit)) == nil, kind, nil
	case "mimes", "extensions":
		if !isFile {
			return false, kind, nil
		}
		allowed := splitParams(param)
		if len(allowed) == 0 {
			return false, kind, fmt.Errorf("%s needs at least one value", name)
		}
		ext := normalizeExt(file.Extension())
		if ext == "" {
			return false, kind, nil
		}
		for i, a := range allowed {
			allowed[i] = normalizeExt(a)
		}
		return e.v.Var(ext, "oneof="+strings.Join(allowed, " ")) == nil, kind, nil
	case "mimetypes":
		if !isFile {
			return false, kind, nil
		}
		return matchMime(file.MimeType(), splitParams(param)), kind, nil
	}

	return false, kind, fmt.Errorf("unsupported rule %q", name)
}

var ruleNames = map[string]struct{}{
	"nullable": {}, "sometimes": {}, "bail": {}, "file": {}, "array": {}, "max": {}, "min": {},
	"size": {}, "max_files": {}, "mimes": {}, "extensions": {}, "mimetypes": {},
}

func count(value any) int {
	switch v := value.(type) {
	case []File:
		return len(v)
	case File:
		if v == nil {
			return 0
		}
		return 1
	}
	return 0
}

func matchMime(detected string, allowed []string) bool {
	if detected == "" {
		return false
	}
	var exact []string
	for _, a := range allowed {
		if prefix, ok := strings.CutSuffix(a, "/*"); ok {
			if strings.HasPrefix(detected, prefix+"/") {
				return true
			}
			continue
		}
		exact = append(exact, a)
	}
	return mimetype.EqualsAny(detected, exact...)
}

// normalizeExt folds "jpeg" into "jpg" so either spelling matches.
func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

func splitParams(param string) []string {
	var out []string
	for _, p := range strings.Split(param, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func message(messages map[string]string, ruleKey, targetKey, rule, kind string) string {
	for _, k := range []string{targetKey + "." + rule, ruleKey + "." + rule, rule} {
		if m, ok := messages[k]; ok {
			return m
		}
	}
	if m, ok := defaultMessages[rule+"."+kind]; ok {
		return m
	}
	if m, ok := defaultMessages[rule]; ok {
		return m
	}
	return defaultMessages["unsupported"]
}

func attributeName(attributes map[string]string, ruleKey, targetKey string) string {
	if a, ok := attributes[targetKey]; ok {
		return a
	}
	if a, ok := attributes[ruleKey]; ok {
		return a
	}
	return strings.ReplaceAll(targetKey, "_", " ")
}

func render(msg, attribute, rule, param string) string {
	values := strings.Join(splitParams(param), ", ")
	r := strings.NewReplacer(
		":attribute", attribute,
		":values", values,
		":"+rule, param,
	)
	return r.Replace(msg)
}
