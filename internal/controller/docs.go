package controller

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed openapi.json
var openAPIDocument []byte

type DocsController interface {
	OpenAPI(c echo.Context) error
}

type docsController struct{}

func newDocsController() DocsController {
	return &docsController{}
}

func (d *docsController) OpenAPI(c echo.Context) error {
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, openAPIDocument)
}
