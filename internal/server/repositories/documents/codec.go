package documents

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aichopaicho/internal/docstore"
)

// ErrCorruptDocument marks a stored body that is not a JSON object.
var ErrCorruptDocument = errors.New("corrupt document")

// decode keeps numbers as json.Number so epoch milliseconds survive intact.
func decode(body []byte) (docstore.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	doc := docstore.Document{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w: %w", ErrCorruptDocument, err)
	}
	return doc, nil
}

func encode(doc docstore.Document) ([]byte, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}
