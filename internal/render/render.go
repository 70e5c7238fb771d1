package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"portfolio-chat/internal/config"
	"portfolio-chat/internal/models"
	"portfolio-chat/internal/score"
)

const barWidth = 20

var dimensionTitles = map[models.Dimension]string{
	models.DimGrounding:   "Grounding",
	models.DimConsistency: "Consistency",
	models.DimDepth:       "Depth",
	models.DimSpecificity: "Specificity",
}

// Renderer writes conversation state to the terminal. Purely presentational:
// it renders whatever the controller exposes and owns no state of its own.
type Renderer struct {
	out   io.Writer
	modes *config.ModesConfig

	userStyle      *color.Color
	assistantStyle *color.Color
	dimStyle       *color.Color
	severityStyles map[score.Severity]*color.Color
}

func New(out io.Writer, modes *config.ModesConfig) *Renderer {
	return &Renderer{
		out:            out,
		modes:          modes,
		userStyle:      color.New(color.FgCyan, color.Bold),
		assistantStyle: color.New(color.FgWhite),
		dimStyle:       color.New(color.Faint),
		severityStyles: map[score.Severity]*color.Color{
			score.SeverityHigh:     color.New(color.FgGreen),
			score.SeverityMedium:   color.New(color.FgYellow),
			score.SeverityLow:      color.New(color.FgMagenta),
			score.SeverityCritical: color.New(color.FgRed),
		},
	}
}

// Welcome prints the empty-session greeting and the mode overview.
func (r *Renderer) Welcome() {
	fmt.Fprintln(r.out, r.modes.Welcome)
	r.dimStyle.Fprintln(r.out, "Your chat history is saved automatically.")
	fmt.Fprintln(r.out)
	r.Modes(r.modes.DefaultMode)
}

// Modes lists the interaction-mode profiles, marking the active one.
func (r *Renderer) Modes(active models.InteractionMode) {
	for _, mode := range []models.InteractionMode{models.ModeRecruiter, models.ModeEngineer, models.ModeAMA} {
		profile := r.modes.Profile(mode)
		marker := "  "
		if mode == active {
			marker = "* "
		}
		fmt.Fprintf(r.out, "%s%s %-10s", marker, profile.Icon, profile.Label)
		r.dimStyle.Fprintf(r.out, " %s\n", profile.Description)
	}
}

// Message prints one conversation turn as a labeled block.
func (r *Renderer) Message(msg models.Message) {
	switch msg.Role {
	case models.RoleUser:
		r.userStyle.Fprint(r.out, "you")
		if msg.Mode != "" {
			r.dimStyle.Fprintf(r.out, " (%s)", msg.Mode)
		}
		fmt.Fprintf(r.out, ": %s\n", msg.Content)
	case models.RoleAssistant:
		r.assistantStyle.Fprintf(r.out, "assistant: %s\n", msg.Content)
		if msg.Score != nil {
			r.scoreSummary(msg.Score)
		}
	default:
		r.dimStyle.Fprintf(r.out, "%s: %s\n", msg.Role, msg.Content)
	}
	fmt.Fprintln(r.out)
}

// History prints the whole restored conversation, or the welcome text if the
// session is empty.
func (r *Renderer) History(messages []models.Message) {
	if len(messages) == 0 {
		r.Welcome()
		return
	}
	for _, msg := range messages {
		r.Message(msg)
	}
}

func (r *Renderer) scoreSummary(s *models.CanonicalScore) {
	r.dimStyle.Fprintf(r.out, "  [%.1f/10 %s]\n", score.DisplayAggregate(s.Aggregate), s.Label)
}

// ScorePanel prints the full quality panel for the latest judged reply.
// Recruiter mode hides the panel, matching the remote service's behavior of
// not judging recruiter answers.
func (r *Renderer) ScorePanel(s *models.CanonicalScore, mode models.InteractionMode) {
	if !r.modes.Profile(mode).ShowScores {
		r.dimStyle.Fprintln(r.out, "Scores are not shown in this mode.")
		return
	}
	if s == nil {
		r.dimStyle.Fprintln(r.out, "Scores will appear after the first response.")
		return
	}

	fmt.Fprintln(r.out, "Response Quality")
	for _, dim := range models.Dimensions {
		value, ok := s.Dimensions[dim]
		if !ok {
			continue
		}
		style := r.severityStyles[score.DimensionSeverity(value)]
		filled := int(value / 10 * barWidth)
		if filled > barWidth {
			filled = barWidth
		}
		if filled < 0 {
			filled = 0
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		fmt.Fprintf(r.out, "  %-12s ", dimensionTitles[dim])
		style.Fprint(r.out, bar)
		style.Fprintf(r.out, " %.1f/10\n", value)
	}

	fmt.Fprintf(r.out, "  Overall: %.1f/10 %s (%s)\n", score.DisplayAggregate(s.Aggregate), s.Label, s.QualityFlag)

	if len(s.Feedback) > 0 {
		fmt.Fprintln(r.out, "  Feedback:")
		for _, remark := range s.Feedback {
			r.dimStyle.Fprintf(r.out, "    - %s\n", remark)
		}
	}
	if len(s.CitationsUsed) > 0 {
		r.dimStyle.Fprintf(r.out, "  Citations: %s\n", strings.Join(s.CitationsUsed, ", "))
	}
}
