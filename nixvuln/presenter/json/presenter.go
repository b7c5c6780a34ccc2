package json

import (
	"encoding/json"
	"io"

	"github.com/nixvuln/nixvuln/nixvuln/presenter/models"
)

// Presenter writes the report as a single JSON document.
type Presenter struct {
	document models.Document
}

func NewPresenter(doc models.Document) *Presenter {
	return &Presenter{
		document: doc,
	}
}

// Present creates a JSON-based reporting
func (pres *Presenter) Present(output io.Writer) error {
	enc := json.NewEncoder(output)
	// prevent > and < from being escaped in the payload
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	return enc.Encode(&pres.document)
}
