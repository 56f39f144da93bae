package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler serves the instrument catalogs. Reference data only, available to
// every authenticated user.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/catalog")
	g.GET("/screening", h.GetScreening)
	g.GET("/traits", h.GetTraits)
	g.GET("/whodas", h.GetWHODAS)
	g.GET("/gates", h.GetGates)
	g.GET("/reference", h.GetReference)
}

func (h *Handler) GetScreening(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"domains":      Screening(),
		"scale_labels": SeverityLabels(),
	})
}

func (h *Handler) GetTraits(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"domains":      Traits(),
		"scale_labels": TraitLabels(),
	})
}

func (h *Handler) GetWHODAS(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"items":        WHODAS(),
		"scale_labels": WHODASScale(),
	})
}

func (h *Handler) GetGates(c echo.Context) error {
	return c.JSON(http.StatusOK, Gates())
}

// GetReference bundles the fixed answer lists used by the chart forms.
func (h *Handler) GetReference(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"stressors":                Stressors(),
		"substances":               Substances(),
		"remission_factors":        RemissionFactors(),
		"cave_categories":          CaveCategories(),
		"investigation_priorities": InvestigationPriorities(),
	})
}
