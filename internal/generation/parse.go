package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Annany2002/nebula-seeder/internal/domain"
)

// ErrGenerationFormat is matched by every rejected generator reply.
var ErrGenerationFormat = errors.New("generated data is not a JSON array of objects")

// GenerationFormatError keeps the rejected reply for diagnostics.
type GenerationFormatError struct {
	Reason string
	Output string
}

func (e *GenerationFormatError) Error() string {
	return "generated data is not usable: " + e.Reason
}

func (e *GenerationFormatError) Unwrap() error { return ErrGenerationFormat }

// ETagField is the change-tracking annotation the platform adds to every row.
const ETagField = "@odata.etag"

// IsForbiddenField reports whether a generated property must not be written:
// anything containing "id" (any case) and any OData annotation.
func IsForbiddenField(name string) bool {
	return name == ETagField ||
		strings.Contains(name, "@") ||
		strings.Contains(strings.ToLower(name), "id")
}

// ParseRecords decodes the generator reply into records. The reply must be a
// single JSON array of objects, optionally wrapped in a markdown code fence.
// Forbidden fields are dropped from each record.
func ParseRecords(output string) ([]domain.SyntheticRecord, error) {
	text := stripCodeFence(strings.TrimSpace(output))
	if text == "" {
		return nil, &GenerationFormatError{Reason: "reply is empty", Output: output}
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, &GenerationFormatError{Reason: err.Error(), Output: output}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &GenerationFormatError{Reason: "unexpected data after the JSON array", Output: output}
	}
	if len(items) == 0 {
		return nil, &GenerationFormatError{Reason: "array is empty", Output: output}
	}

	records := make([]domain.SyntheticRecord, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, &GenerationFormatError{Reason: fmt.Sprintf("element %d is %T, not an object", i, item), Output: output}
		}

		record := make(domain.SyntheticRecord, len(obj))
		var dropped []string
		for k, v := range obj {
			if IsForbiddenField(k) {
				dropped = append(dropped, k)
				continue
			}
			record[k] = v
		}
		if len(dropped) > 0 {
			sort.Strings(dropped)
			customLog.Warnf("Generation: dropped forbidden field(s) %v from record %d", dropped, i)
		}
		if len(record) == 0 {
			return nil, &GenerationFormatError{Reason: fmt.Sprintf("element %d has no writable fields", i), Output: output}
		}
		records = append(records, record)
	}

	return records, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		return text
	}
	body = strings.TrimSpace(body)
	return strings.TrimSpace(strings.TrimSuffix(body, "```"))
}
