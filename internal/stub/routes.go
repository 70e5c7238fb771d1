package stub

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"

	"portfolio-chat/internal/models"
	"portfolio-chat/internal/stub/middleware"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("/health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(models.HealthResponse{}).
			Returns(200, "OK", models.HealthResponse{}))

	ws.
		Route(ws.POST("/chat").
			To(handler.Chat).
			Doc("Answer one chat turn with a stubbed response").
			Metadata(restfulspec.KeyOpenAPITags, []string{"chat"}).
			Reads(models.ChatRequest{}).
			Writes(models.ChatResponse{}).
			Returns(200, "OK", models.ChatResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
