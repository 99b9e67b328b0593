package text

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/fishbowl/internal/domain"
)

var ErrUnexpectedBoardModel = errors.New("unexpected final board model type")

const capacityBarWidth = 24

type boardReadyMsg struct{}

// boardModel renders a session summary once and quits.
type boardModel struct {
	summary domain.Summary
	limits  domain.Limits
	styles  styles
	output  string
}

func (m boardModel) Init() tea.Cmd {
	return func() tea.Msg {
		return boardReadyMsg{}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(boardReadyMsg); ok {
		m.output = renderBoard(m.summary, m.limits, m.styles)
		return m, tea.Quit
	}
	return m, nil
}

func (m boardModel) View() string {
	return m.output
}

// RenderBoard lays out who is playing and how the scraps are spread.
func RenderBoard(summary domain.Summary, limits domain.Limits) (string, error) {
	p := tea.NewProgram(
		boardModel{summary: summary, limits: limits, styles: newStyles()},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	final, err := p.Run()
	if err != nil {
		return "", err
	}

	board, ok := final.(boardModel)
	if !ok {
		return "", ErrUnexpectedBoardModel
	}
	return board.View(), nil
}

func renderBoard(summary domain.Summary, limits domain.Limits, s styles) string {
	lines := []string{
		s.title.Render(fmt.Sprintf("Session #%d", summary.ID)),
		s.header.Render(fmt.Sprintf("creator: %s  home: #%s", summary.Creator, summary.HomeChannel)),
		s.section.Render(playersTable(summary.Players)),
		s.section.Render(pileLines(summary, limits, s)),
	}

	if len(summary.Banned) > 0 {
		banned := make([]string, 0, len(summary.Banned))
		for _, user := range summary.Banned {
			banned = append(banned, string(user))
		}
		lines = append(lines, s.warning.Render("banned: "+strings.Join(banned, ", ")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func playersTable(players []domain.PlayerSummary) string {
	rows := make([]table.Row, 0, len(players))
	nameWidth := len("player")
	for _, p := range players {
		rows = append(rows, table.Row{string(p.User), strconv.Itoa(p.HandSize)})
		nameWidth = max(nameWidth, lipgloss.Width(string(p.User)))
	}

	tableStyles := table.DefaultStyles()
	tableStyles.Header = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableStyles.Selected = lipgloss.NewStyle()

	t := table.New(
		table.WithStyles(tableStyles),
		table.WithColumns([]table.Column{
			{Title: "player", Width: nameWidth},
			{Title: "hand", Width: 5},
		}),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	return strings.TrimRight(t.View(), " \n")
}

func pileLines(summary domain.Summary, limits domain.Limits, s styles) string {
	inHands := summary.Total - summary.Bowl - summary.Discard

	used := 0.0
	if limits.MaxTotalScraps > 0 {
		used = 100 * float64(summary.Total) / float64(limits.MaxTotalScraps)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.detail.Render(fmt.Sprintf("bowl: %d  discard: %d  in hands: %d", summary.Bowl, summary.Discard, inHands)),
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.detail.Render("scraps: "),
			renderCapacityBar(used, capacityBarWidth, s),
			s.detail.Render(fmt.Sprintf(" %d/%d", summary.Total, limits.MaxTotalScraps)),
		),
	)
}

func renderCapacityBar(usedPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(usedPercent) / 100))
	filled = min(max(filled, 0), width)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
