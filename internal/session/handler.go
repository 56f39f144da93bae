package session

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mdx/mdx/internal/chart"
	"github.com/mdx/mdx/internal/gates"
	"github.com/mdx/mdx/internal/platform/auth"
	"github.com/mdx/mdx/internal/screening"
	"github.com/mdx/mdx/internal/traits"
	"github.com/mdx/mdx/pkg/pagination"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints – clinician, supervisor, viewer
	read := api.Group("", auth.RequireRole("clinician", "supervisor", "viewer"))
	read.GET("/sessions", h.ListSessions)
	read.GET("/sessions/:id", h.GetSession)
	read.GET("/sessions/:id/gates/:step", h.GetGateOutcome)
	read.GET("/sessions/:id/diagnoses", h.ListDiagnoses)
	read.GET("/sessions/:id/conditions", h.ListMedicalConditions)
	read.GET("/sessions/:id/coverage/summary", h.GetCoverageSummary)
	read.GET("/sessions/:id/export", h.ExportChart)
	read.GET("/sessions/:id/synopsis", h.GetSynopsis)
	read.GET("/sessions/:id/synopsis.xlsx", h.GetSynopsisWorkbook)
	read.GET("/sessions/:id/profile/hitop", h.GetHiTOPProfile)
	read.GET("/sessions/:id/profile/pid5", h.GetPID5Profile)

	// Write endpoints – clinician, supervisor
	write := api.Group("", auth.RequireRole("clinician", "supervisor"))
	write.POST("/sessions", h.CreateSession)
	write.DELETE("/sessions/:id", h.DeleteSession)
	write.POST("/sessions/:id/reset", h.ResetSession)

	write.POST("/sessions/:id/gates/intake", h.SubmitIntake)
	write.POST("/sessions/:id/gates/consistency", h.SubmitConsistency)
	write.POST("/sessions/:id/gates/substance", h.SubmitSubstance)
	write.POST("/sessions/:id/gates/medical", h.SubmitMedical)
	write.POST("/sessions/:id/gates/screening", h.SubmitScreening)
	write.POST("/sessions/:id/gates/advance", h.AdvanceGate)

	write.POST("/sessions/:id/diagnoses", h.AddDiagnosis)
	write.PATCH("/sessions/:id/diagnoses/:diagID/status", h.UpdateDiagnosisStatus)
	write.PUT("/sessions/:id/compliance", h.SetCompliance)
	write.POST("/sessions/:id/coverage", h.AddCoverageEntry)
	write.POST("/sessions/:id/plans", h.AddInvestigationPlan)
	write.PATCH("/sessions/:id/notes", h.UpdateNotes)

	write.PUT("/sessions/:id/biography", h.SetBiography)
	write.POST("/sessions/:id/traits", h.SubmitTraitRatings)

	write.POST("/sessions/:id/conditions", h.AddMedicalCondition)
	write.POST("/sessions/:id/medications", h.AddMedication)
	write.POST("/sessions/:id/treatments", h.AddTreatment)
	write.PUT("/sessions/:id/med-compliance", h.SetMedCompliance)

	write.POST("/sessions/:id/functioning", h.SubmitFunctioning)
	write.PUT("/sessions/:id/condition-model", h.SetConditionModel)

	write.POST("/sessions/:id/evidence", h.AddEvidence)
	write.POST("/sessions/:id/alerts", h.AddCaveAlert)
	write.POST("/sessions/:id/timeline", h.AddTimelineEvent)
}

var stepByName = map[string]gates.Step{
	"intake":      gates.StepIntake,
	"consistency": gates.StepConsistency,
	"substance":   gates.StepSubstance,
	"medical":     gates.StepMedical,
	"screening":   gates.StepScreening,
	"disorder":    gates.StepDisorder,
	"functioning": gates.StepFunctioning,
	"complete":    gates.StepComplete,
}

// sessionID parses the :id path parameter.
func sessionID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// httpError maps service and workflow errors onto HTTP status codes:
// missing resources to 404, gate-order violations to 409, everything else
// (boundary validation) to 400.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrNotFound) || errors.Is(err, ErrEntryNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, gates.ErrStepNotReached) ||
		errors.Is(err, gates.ErrStepNotCompleted) ||
		errors.Is(err, gates.ErrSessionComplete):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

// -- Lifecycle --

type createSessionRequest struct {
	Clinician string `json:"clinician"`
}

func (h *Handler) CreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// The authenticated identity wins; the body field covers development
	// setups without auth.
	clinician := auth.UserIDFromContext(c.Request().Context())
	if clinician == "" {
		clinician = req.Clinician
	}
	sess, err := h.svc.Create(c.Request().Context(), clinician)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, sess)
}

func (h *Handler) ListSessions(c echo.Context) error {
	pg := pagination.FromContext(c)
	sessions, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(sessions, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetSession(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	sess, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) DeleteSession(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ResetSession(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	sess, err := h.svc.Reset(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

// -- Gatekeeper sequence --

func (h *Handler) SubmitIntake(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var in chart.Intake
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.SubmitIntake(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) SubmitConsistency(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var a gates.ConsistencyAnswers
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.SubmitConsistency(c.Request().Context(), id, a)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) SubmitSubstance(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var a gates.SubstanceAnswers
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.SubmitSubstance(c.Request().Context(), id, a)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) SubmitMedical(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var a gates.MedicalAnswers
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.SubmitMedical(c.Request().Context(), id, a)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) SubmitScreening(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var responses screening.Responses
	if err := c.Bind(&responses); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.SubmitScreening(c.Request().Context(), id, responses)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) AdvanceGate(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	sess, err := h.svc.AdvanceGate(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) GetGateOutcome(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	step, ok := stepByName[c.Param("step")]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid step")
	}
	rec, err := h.svc.GateOutcome(c.Request().Context(), id, step)
	if err != nil {
		if errors.Is(err, gates.ErrStepNotCompleted) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

// -- Axis I --

func (h *Handler) AddDiagnosis(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var d chart.Diagnosis
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.AddDiagnosis(c.Request().Context(), id, d)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) ListDiagnoses(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	diags, err := h.svc.Diagnoses(c.Request().Context(), id, c.QueryParam("status"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, diags)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateDiagnosisStatus(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	diagID, err := uuid.Parse(c.Param("diagID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid diagnosis id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	diag, err := h.svc.UpdateDiagnosisStatus(c.Request().Context(), id, diagID, req.Status)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, diag)
}

func (h *Handler) SetCompliance(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var comp chart.Compliance
	if err := c.Bind(&comp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.SetCompliance(c.Request().Context(), id, comp)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) AddCoverageEntry(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var e chart.CoverageEntry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.AddCoverageEntry(c.Request().Context(), id, e)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetCoverageSummary(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	summary, err := h.svc.CoverageSummary(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) AddInvestigationPlan(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var p chart.InvestigationPlan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.AddInvestigationPlan(c.Request().Context(), id, p)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateNotes(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var n Notes
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.UpdateNotes(c.Request().Context(), id, n)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

// -- Axis II --

func (h *Handler) SetBiography(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var b chart.Biography
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.SetBiography(c.Request().Context(), id, b)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handler) SubmitTraitRatings(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var ratings traits.Ratings
	if err := c.Bind(&ratings); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.SubmitTraitRatings(c.Request().Context(), id, ratings)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

// -- Axis III --

func (h *Handler) AddMedicalCondition(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var m chart.MedicalCondition
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.AddMedicalCondition(c.Request().Context(), id, m)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) ListMedicalConditions(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	conds, err := h.svc.MedicalConditions(c.Request().Context(), id, c.QueryParam("subaxis"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, conds)
}

func (h *Handler) AddMedication(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var m chart.MedicationEntry
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.AddMedication(c.Request().Context(), id, m)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) AddTreatment(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var t chart.TreatmentEntry
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.AddTreatment(c.Request().Context(), id, t)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) SetMedCompliance(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var comp chart.MedCompliance
	if err := c.Bind(&comp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.SetMedCompliance(c.Request().Context(), id, comp)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

// -- Axis IV --

func (h *Handler) SubmitFunctioning(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var f chart.Functioning
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := h.svc.SubmitFunctioning(c.Request().Context(), id, f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// -- Axis V --

func (h *Handler) SetConditionModel(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var m chart.ConditionModel
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.SetConditionModel(c.Request().Context(), id, m)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess)
}

// -- Axis VI and cross-axis records --

func (h *Handler) AddEvidence(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var e chart.EvidenceEntry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.AddEvidence(c.Request().Context(), id, e)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) AddCaveAlert(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var a chart.CaveAlert
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.AddCaveAlert(c.Request().Context(), id, a)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) AddTimelineEvent(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	var ev chart.TimelineEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.AddTimelineEvent(c.Request().Context(), id, ev)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// -- Export and synopsis --

func (h *Handler) ExportChart(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	exp, err := h.svc.Export(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, exp)
}

func (h *Handler) GetSynopsis(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	syn, err := h.svc.Synopsis(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, syn)
}

func (h *Handler) GetSynopsisWorkbook(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	data, err := h.svc.SynopsisWorkbook(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="synopsis.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) GetHiTOPProfile(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	sess, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess.Chart.HiTOP)
}

func (h *Handler) GetPID5Profile(c echo.Context) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	sess, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sess.Chart.PID5)
}
