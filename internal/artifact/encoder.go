package artifact

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/insightportal/attrition/internal/encode"
)

// encodersDoc is the on-disk shape of the encoder artifact: one fitted class
// list per categorical field, in code order.
type encodersDoc map[string]struct {
	Classes []string `json:"classes"`
}

// LoadEncoders reads the encoder artifact and wraps each fitted encoder with
// the unseen-category fallback policy.
func LoadEncoders(path string) (encode.Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc encodersDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	tables := make(encode.Tables, len(doc))
	for field, e := range doc {
		if len(e.Classes) == 0 {
			return nil, fmt.Errorf("invalid encoder artifact %s: field %q has no classes", path, field)
		}
		tables[field] = encode.NewFieldEncoder(encode.NewTable(e.Classes))
	}
	return tables, nil
}
