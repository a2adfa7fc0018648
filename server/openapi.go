package server

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
)

const apiDocsPath = "/apidocs.json"

func newOpenAPIService(container *restful.Container, title string) *restful.WebService {
	return restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       apiDocsPath,
		PostBuildSwaggerObjectHandler: enrichSwaggerObject(title),
	})
}

func enrichSwaggerObject(title string) func(*spec.Swagger) {
	return func(swo *spec.Swagger) {
		swo.Info = &spec.Info{
			InfoProps: spec.InfoProps{
				Title:       title,
				Description: "Books, authors and user accounts",
				Version:     "1.0.0",
			},
		}
		swo.Tags = []spec.Tag{
			{TagProps: spec.TagProps{Name: "books", Description: "Book catalog"}},
			{TagProps: spec.TagProps{Name: "authors", Description: "Authors and their books"}},
			{TagProps: spec.TagProps{Name: "users", Description: "User management"}},
			{TagProps: spec.TagProps{Name: "account", Description: "Registration and sign in"}},
		}
		swo.SecurityDefinitions = spec.SecurityDefinitions{
			"bearer": spec.APIKeyAuth("Authorization", "header"),
		}
	}
}
