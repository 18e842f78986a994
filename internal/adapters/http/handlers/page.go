package handlers

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/character-votes/internal/adapters/http/dto"
	"github.com/jsamuelsen/character-votes/internal/app"
	"github.com/jsamuelsen/character-votes/internal/domain"
	"github.com/jsamuelsen/character-votes/internal/platform/logging"
)

// PageTemplate is the name of the board page template.
const PageTemplate = "board.tmpl"

// Alerts shown on the page.
const (
	alertNoSelection = "Select a character first."
	alertNotFound    = "That character is not on the board."
	alertForbidden   = "Creating characters is switched off."
	alertUnavailable = "Could not reach the characters backend. Showing the last known board."
	alertInternal    = "Something went wrong. Please try again."
	alertBadForm     = "The form could not be read. Please try again."
	alertMissingID   = "Pick a character from the bar."
	warningNotSynced = "Saved here, but the characters backend did not accept the change: "
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Templates parses the embedded page templates. Install them on the engine
// with SetHTMLTemplate before serving the page routes.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))
}

// PageHandler serves the HTML board: a character bar, the detail panel for
// the current character, the vote and reset controls and, when enabled, the
// character creation form. Every action re-renders the whole page.
type PageHandler struct {
	board  *app.Board
	logger *slog.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(board *app.Board, logger *slog.Logger) *PageHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &PageHandler{
		board:  board,
		logger: logger.With(slog.String("component", "handlers.Page")),
	}
}

type pageView struct {
	Characters      []dto.CharacterResponse
	Current         *dto.CharacterResponse
	CreationEnabled bool
	Alert           string
	Warning         string
}

// Index handles GET /. It reloads the listing and selects the first
// character. When the backend cannot be reached the last known board is
// shown with an alert.
func (h *PageHandler) Index(c *gin.Context) {
	_, err := h.board.Load(c.Request.Context())
	h.render(c, err, nil)
}

// Select handles POST /select with form field id.
func (h *PageHandler) Select(c *gin.Context) {
	var req dto.SelectRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		h.render(c, formError(err, alertMissingID), nil)
		return
	}

	_, err := h.board.Select(c.Request.Context(), string(req.ID))
	h.render(c, err, nil)
}

// Vote handles POST /votes with form field votes.
func (h *PageHandler) Vote(c *gin.Context) {
	var req dto.VoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		h.render(c, formError(err, alertBadForm), nil)
		return
	}

	outcome, err := h.board.Vote(c.Request.Context(), string(req.Votes))
	h.render(c, err, outcome)
}

// Reset handles POST /reset.
func (h *PageHandler) Reset(c *gin.Context) {
	outcome, err := h.board.Reset(c.Request.Context())
	h.render(c, err, outcome)
}

// CreateCharacter handles POST /characters with form fields name and
// image-url.
func (h *PageHandler) CreateCharacter(c *gin.Context) {
	var req dto.CreateCharacterRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		h.render(c, formError(err, alertBadForm), nil)
		return
	}

	outcome, err := h.board.Create(c.Request.Context(), req.Name, req.Image)
	h.render(c, err, outcome)
}

// RegisterPageRoutes registers the page routes on the engine root.
func (h *PageHandler) RegisterPageRoutes(rg gin.IRoutes) {
	rg.GET("/", h.Index)
	rg.POST("/select", h.Select)
	rg.POST("/votes", h.Vote)
	rg.POST("/reset", h.Reset)
	rg.POST("/characters", h.CreateCharacter)
}

func (h *PageHandler) render(c *gin.Context, err error, outcome *app.Outcome) {
	ctx := c.Request.Context()
	board := dto.NewBoardResponse(h.board.Snapshot(), h.board.CreationEnabled(ctx))

	view := pageView{
		Characters:      board.Characters,
		Current:         board.Current,
		CreationEnabled: board.CreationEnabled,
	}

	status := http.StatusOK
	if err != nil {
		status, _ = dto.FromError(err)
		view.Alert = alertFor(err)

		logging.FromContextOr(ctx, h.logger).WarnContext(ctx, "page action failed",
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
	}

	if outcome != nil && !outcome.Sync.Synced {
		view.Warning = warningNotSynced + outcome.Sync.Error
	}

	c.HTML(status, PageTemplate, view)
}

// formError turns a bind failure into a validation error carrying the alert.
// invalid is shown when the form decoded but a field failed validation.
func formError(err error, invalid string) error {
	if errors.Is(err, dto.ErrValidation) {
		return fmt.Errorf("%w: %w", domain.NewValidationError("form", invalid), err)
	}

	return fmt.Errorf("%w: %w", domain.NewValidationError("form", alertBadForm), err)
}

// alertFor turns an error into the message shown in the alert banner.
func alertFor(err error) string {
	var verr *domain.ValidationError

	switch {
	case errors.Is(err, domain.ErrNoSelection):
		return alertNoSelection
	case errors.As(err, &verr):
		return verr.Message
	case domain.IsNotFound(err):
		return alertNotFound
	case domain.IsForbidden(err):
		return alertForbidden
	case domain.IsUnavailable(err):
		return alertUnavailable
	default:
		return alertInternal
	}
}
