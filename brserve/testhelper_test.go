package brserve_test

import (
	"context"
	"strconv"

	"github.com/advdv/broute"
	"github.com/advdv/broute/brserve"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// TestEnv is a test environment with app-specific fields beyond BaseEnvironment.
type TestEnv struct {
	brserve.BaseEnvironment
	CatalogURL string `env:"CATALOG_URL,required"`
}

// Handlers demonstrates injection of the runtime into handler constructors.
type Handlers struct {
	rt *brserve.Runtime[TestEnv]
}

func NewHandlers(rt *brserve.Runtime[TestEnv]) *Handlers {
	return &Handlers{rt: rt}
}

func (h *Handlers) GetBook(ctx context.Context, req *broute.Request) (*broute.Response, error) {
	id, err := strconv.Atoi(req.URL.Param("id"))
	if err != nil {
		return nil, broute.NewError(broute.CodeBadRequest, errors.Wrap(err, "invalid book id"))
	}

	self, err := h.rt.Reverse("get-book", req.URL.Param("id"))
	if err != nil {
		return nil, err
	}

	brserve.Log(ctx).Info("getting book", zap.Int("id", id))
	brserve.Span(ctx).AddEvent("book-loaded")

	return broute.NewResponseBuilder().SetJSONBody(map[string]any{
		"id":       id,
		"self_url": self,
		"service":  h.rt.Env().ServiceName,
	}).Build()
}

func (h *Handlers) Catalog(ctx context.Context, _ *broute.Request) (*broute.Response, error) {
	var body string
	if err := h.rt.NewRequest().
		BaseURL(h.rt.Env().CatalogURL).
		Path("/catalog").
		ToString(&body).
		Fetch(ctx); err != nil {
		return nil, errors.Wrap(err, "fetch catalog")
	}

	return broute.NewResponseBuilder().SetPlainTextBody(body).Build()
}

func (h *Handlers) Boom(context.Context, *broute.Request) (*broute.Response, error) {
	return nil, errors.New("boom")
}
