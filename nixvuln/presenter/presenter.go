package presenter

import (
	"io"

	"github.com/nixvuln/nixvuln/nixvuln/presenter/json"
	"github.com/nixvuln/nixvuln/nixvuln/presenter/models"
	"github.com/nixvuln/nixvuln/nixvuln/presenter/table"
)

// Presenter is the main interface other Presenters need to implement
type Presenter interface {
	Present(io.Writer) error
}

// GetPresenter returns a presenter for the given option, or nil when the option is unknown.
func GetPresenter(option Option, doc models.Document) Presenter {
	switch option {
	case JSONPresenter:
		return json.NewPresenter(doc)
	case TablePresenter:
		return table.NewPresenter(doc)
	default:
		return nil
	}
}
