//go:build swagger

package httpapi

// General API documentation for swaggo. Run `swag init` to regenerate docs.
//
// @title           schedulerd API
// @version         1.0
// @description     HTTP API for submitting and tracking scheduled inference tasks.
//
// @license.name   MIT
//
// @BasePath  /
// @schemes http

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

// MountSwagger serves the generated OpenAPI UI at /swagger/*.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
