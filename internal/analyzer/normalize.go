package analyzer

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/copylab/adlens/internal/model"
)

const (
	// keySeparator joins parent and child keys when flattening nested
	// structure: {"details":{"score":8}} becomes details_score.
	keySeparator = "_"

	// listSeparator joins sequence elements into one scalar string.
	listSeparator = "; "

	// placeholder fills keys absent from a row during schema unification.
	placeholder = ""
)

// Normalize parses one raw response into an outcome. A payload that is not a
// JSON object never raises: it yields a Degraded outcome carrying the raw
// text unchanged, so a single malformed response cannot abort a batch.
func Normalize(raw string) model.Outcome {
	dec := json.NewDecoder(strings.NewReader(cleanJSON(raw)))
	dec.UseNumber()

	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return model.Degraded(raw, "parse failure: invalid JSON")
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return model.Degraded(raw, "parse failure: not a JSON object")
	}

	fields := make(map[string]string)
	flattenInto("", obj, fields)
	return model.Succeeded(fields)
}

// flattenInto recursively flattens nested objects into prefix-joined keys and
// coerces every leaf to a scalar string.
func flattenInto(prefix string, obj map[string]any, out map[string]string) {
	for key, val := range obj {
		flat := key
		if prefix != "" {
			flat = prefix + keySeparator + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenInto(flat, nested, out)
			continue
		}
		out[flat] = stringify(val)
	}
}

// stringify coerces one leaf value to a string. Sequences join their
// elements; objects inside sequences collapse to compact JSON.
func stringify(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = stringify(elem)
		}
		return strings.Join(parts, listSeparator)
	default:
		// Objects reaching here live inside a sequence.
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Unify rewrites every row to contain exactly the union of all keys present
// across rows, filling absent keys with the placeholder. Invoked once per
// completed batch. Idempotent: unifying an already-unified set is a no-op.
func Unify(rows []model.Row) []model.Row {
	keys := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			keys[k] = struct{}{}
		}
	}

	unified := make([]model.Row, len(rows))
	for i, row := range rows {
		out := make(model.Row, len(keys))
		for k := range keys {
			if v, ok := row[k]; ok {
				out[k] = v
			} else {
				out[k] = placeholder
			}
		}
		unified[i] = out
	}
	return unified
}

// Columns returns the unified key set in output order: the record's own
// fields and the analysis-status keys first, remaining analysis keys sorted.
func Columns(rows []model.Row) []string {
	keys := make(map[string]struct{})
	for _, row := range rows {
		for k := range row {
			keys[k] = struct{}{}
		}
	}

	leading := []string{
		model.KeyTitle,
		model.KeySnippet,
		model.KeyDisplayedLink,
		model.KeyExtensions,
		model.KeyAnalysisStatus,
		model.KeyAnalysisError,
		model.KeyAnalysisRaw,
	}

	var cols []string
	for _, k := range leading {
		if _, ok := keys[k]; ok {
			cols = append(cols, k)
			delete(keys, k)
		}
	}

	rest := make([]string, 0, len(keys))
	for k := range keys {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(cols, rest...)
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
