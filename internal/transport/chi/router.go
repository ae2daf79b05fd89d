package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"

	"github.com/bazaarmkt/bazaarmkt/internal/metrics"
)

// RouterConfig configures the middleware stack around the API.
type RouterConfig struct {
	APIKeys   []string
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// NewRouter mounts the product API. Reads and search are public and rate
// limited per IP; writes additionally require a bearer key.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	r := gochi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(RequestID)
	r.Use(WideEvent(s.logger))
	r.Use(metrics.Middleware())
	r.Use(CORS(cfg.CORS))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1/products", func(r gochi.Router) {
		r.Use(RateLimit(cfg.RateLimit))

		r.Get("/", s.ListProducts)
		r.Get("/search", s.SearchProducts)
		r.Get("/{id}", s.GetProduct)

		r.Group(func(r gochi.Router) {
			r.Use(BearerAuthMiddleware(cfg.APIKeys))
			r.Post("/", s.CreateProduct)
			r.Post("/batch", s.BatchUpsert)
			r.Post("/batch-delete", s.BatchDelete)
			r.Put("/{id}", s.UpsertProduct)
			r.Delete("/{id}", s.DeleteProduct)
		})
	})

	return r
}
