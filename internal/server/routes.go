package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/infrahq/unpublished/internal"
	"github.com/infrahq/unpublished/internal/logging"
	"github.com/infrahq/unpublished/internal/server/models"
	"github.com/infrahq/unpublished/metrics"
)

// API implements the HTTP handlers of the server.
type API struct {
	server *Server
}

// GenerateRoutes returns the handler of the API listener. The request
// metrics are registered with promRegistry.
func (s *Server) GenerateRoutes(promRegistry prometheus.Registerer) http.Handler {
	a := &API{server: s}

	router := gin.New()
	router.NoRoute(notFoundHandler)

	router.Use(gin.Recovery())
	router.GET("/healthz", healthHandler)

	router.Use(
		logging.Middleware(),
		gzip.Gzip(gzip.DefaultCompression),
		TimeoutMiddleware(s.options.RequestTimeout),
	)

	api := router.Group("/",
		metrics.Middleware(promRegistry),
		DatabaseMiddleware(s.db), // must be after TimeoutMiddleware to time out db queries.
		AuthenticationMiddleware(),
	)

	get(api, "/api/version", a.Version)
	get(api, "/api/permissions", a.ListPermissions)

	get(api, "/api/bundles", a.ListBundles)
	post(api, "/api/bundles", a.CreateBundle)

	post(api, "/api/contents", a.CreateContent)
	get(api, "/api/contents/:id", a.GetContent)
	get(api, "/api/contents/:id/access", a.ContentAccess)

	get(api, "/api/tokens", a.ListAccessTokens)
	post(api, "/api/tokens", a.CreateAccessToken)
	put(api, "/api/tokens/:id/renew", a.RenewAccessToken)
	del(api, "/api/tokens/:id", a.DeleteAccessToken)

	return router
}

type ReqHandlerFunc[Req any] func(c *gin.Context, req *Req) error
type ReqResHandlerFunc[Req, Res any] func(c *gin.Context, req *Req) (Res, error)

func get[Req, Res any](r *gin.RouterGroup, route string, handler ReqResHandlerFunc[Req, Res]) {
	r.GET(route, handle(http.StatusOK, handler))
}

func post[Req, Res any](r *gin.RouterGroup, route string, handler ReqResHandlerFunc[Req, Res]) {
	r.POST(route, handle(http.StatusCreated, handler))
}

func put[Req, Res any](r *gin.RouterGroup, route string, handler ReqResHandlerFunc[Req, Res]) {
	r.PUT(route, handle(http.StatusOK, handler))
}

func del[Req any](r *gin.RouterGroup, route string, handler ReqHandlerFunc[Req]) {
	r.DELETE(route, func(c *gin.Context) {
		req := new(Req)
		if err := bind(c, req); err != nil {
			sendAPIError(c, err)
			return
		}

		if err := handler(c, req); err != nil {
			sendAPIError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
		c.Writer.WriteHeaderNow()
	})
}

func handle[Req, Res any](status int, handler ReqResHandlerFunc[Req, Res]) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := new(Req)
		if err := bind(c, req); err != nil {
			sendAPIError(c, err)
			return
		}

		resp, err := handler(c, req)
		if err != nil {
			sendAPIError(c, err)
			return
		}

		c.JSON(status, resp)
	}
}

var requestValidator = newRequestValidator()

// newRequestValidator validates the `binding` tags of request types, and
// reports fields by their JSON name.
func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("bundleid", func(fl validator.FieldLevel) bool {
		return models.IsBundleID(fl.Field().String())
	})
	return v
}

func init() {
	gin.DisableBindValidation()
}

// bind reads the query and JSON body of the request into req, then validates
// it.
func bind(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return bindError(err)
	}

	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			return bindError(err)
		}
	}

	if err := requestValidator.Struct(req); err != nil {
		return bindError(err)
	}

	return nil
}

func bindError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return validationErrors
	}

	return fmt.Errorf("%w: %s", internal.ErrBadRequest, err)
}

func healthHandler(c *gin.Context) {
	c.Status(http.StatusOK)
}

func notFoundHandler(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api") {
		sendAPIError(c, internal.ErrNotFound)
		return
	}

	c.Status(http.StatusNotFound)
}
