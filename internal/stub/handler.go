package stub

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"portfolio-chat/internal/models"
	"portfolio-chat/internal/stub/middleware"
)

// Handler serves a local stand-in for the portfolio assistant API: canned
// mode-specific answers with deterministic judge scores. Meant for client
// development and demos, not for anything resembling real answers.
type Handler struct {
	logger *zerolog.Logger
}

func NewHandler(logger *zerolog.Logger) *Handler {
	return &Handler{logger: logger}
}

// POST /api/chat
func (h *Handler) Chat(req *restful.Request, resp *restful.Response) {
	var chatReq models.ChatRequest
	if err := req.ReadEntity(&chatReq); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(chatReq.Message) == "" {
		middleware.HandleError(resp, fmt.Errorf("message must not be empty"), http.StatusBadRequest)
		return
	}

	mode := models.InteractionMode(chatReq.Mode)
	if !models.ValidMode(mode) {
		mode = models.ModeAMA
	}

	h.logger.Info().
		Str("mode", string(mode)).
		Int("message_len", len(chatReq.Message)).
		Msg("Serving stubbed chat turn")

	chatResp := models.ChatResponse{
		Response: cannedAnswer(mode, chatReq.Message),
		Mode:     string(mode),
		Sources:  []string{"projects.md", "experience.md"},
	}

	// The production service skips judging in recruiter mode.
	if mode != models.ModeRecruiter {
		chatResp.JudgeScore = cannedScore(chatReq.Message)
	}

	resp.WriteHeaderAndEntity(http.StatusOK, chatResp)
}

// GET /api/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Version: "stub",
	})
}

func cannedAnswer(mode models.InteractionMode, message string) string {
	switch mode {
	case models.ModeRecruiter:
		return fmt.Sprintf("In short: the portfolio covers shipped projects relevant to %q, with measurable outcomes for each.", firstWords(message, 6))
	case models.ModeEngineer:
		return fmt.Sprintf("Technically speaking, %q touches on design decisions documented in the portfolio: architecture, trade-offs and the reasoning behind them.", firstWords(message, 6))
	default:
		return fmt.Sprintf("Good question about %q. Here is what the portfolio documents on that topic.", firstWords(message, 6))
	}
}

// cannedScore derives stable pseudo-scores from the message so repeating a
// question repeats its panel.
func cannedScore(message string) *models.ScorePayload {
	h := fnv.New32a()
	h.Write([]byte(message))
	seed := h.Sum32()

	dim := func(base float64, shift uint32) *float64 {
		v := base + float64((seed>>shift)%30)/10
		if v > 10 {
			v = 10
		}
		return &v
	}

	return &models.ScorePayload{
		GroundingScore:   dim(7, 0),
		ConsistencyScore: dim(6.5, 4),
		DepthScore:       dim(6, 8),
		SpecificityScore: dim(5.5, 12),
		Feedback:         []string{"Stubbed evaluation, scores are synthetic."},
		CitationsUsed:    []string{"projects.md"},
	}
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
