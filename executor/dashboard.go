package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/brensch/snekstar/selfplay"
)

const recentGamesShown = 10

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e8b04b"))
	labelStyle = lipgloss.NewStyle().Width(16).Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	helpStyle  = lipgloss.NewStyle().Faint(true)

	outcomeStyles = map[string]lipgloss.Style{
		selfplay.ResultDead:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		selfplay.ResultWon:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		selfplay.ResultTimeout: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
)

// GameUpdate is sent by a worker when it finishes a game.
type GameUpdate struct {
	WorkerID int
	GameID   string
	Outcome  string
	Turns    int
	Score    int
	Plans    int
}

type model struct {
	gamesPlayed int
	outcomes    map[string]int
	totalScore  int
	bestScore   int
	moves       int64
	plans       int64
	startTime   time.Time
	recentGames []string
	updates     chan GameUpdate
}

func initialModel(updates chan GameUpdate) model {
	return model{
		outcomes:  map[string]int{},
		startTime: time.Now(),
		updates:   updates,
	}
}

type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), tickCmd())
}

func waitForUpdate(updates chan GameUpdate) tea.Cmd {
	return func() tea.Msg {
		return <-updates
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case TickMsg:
		m.moves = totalMoves.Load()
		m.plans = totalPlans.Load()
		return m, tickCmd()
	case GameUpdate:
		m.gamesPlayed++
		m.outcomes[msg.Outcome]++
		m.totalScore += msg.Score
		if msg.Score > m.bestScore {
			m.bestScore = msg.Score
		}
		outcome := msg.Outcome
		if st, ok := outcomeStyles[outcome]; ok {
			outcome = st.Render(outcome)
		}
		line := fmt.Sprintf("worker %-3d %-8s score %-4d turns %-5d plans %d", msg.WorkerID, outcome, msg.Score, msg.Turns, msg.Plans)
		m.recentGames = append([]string{line}, m.recentGames...)
		if len(m.recentGames) > recentGamesShown {
			m.recentGames = m.recentGames[:recentGamesShown]
		}
		return m, waitForUpdate(m.updates)
	}
	return m, nil
}

func (m model) View() string {
	duration := time.Since(m.startTime)
	var gamesPerSec, movesPerSec float64
	if duration.Seconds() >= 1 {
		gamesPerSec = float64(m.gamesPlayed) / duration.Seconds()
		movesPerSec = float64(m.moves) / duration.Seconds()
	}
	avgScore := 0.0
	if m.gamesPlayed > 0 {
		avgScore = float64(m.totalScore) / float64(m.gamesPlayed)
	}

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
	}

	var sb strings.Builder
	sb.WriteString(row("Games Played", fmt.Sprintf("%d", m.gamesPlayed)))
	sb.WriteString(row("Outcomes", fmt.Sprintf("won %d  dead %d  timeout %d",
		m.outcomes[selfplay.ResultWon], m.outcomes[selfplay.ResultDead], m.outcomes[selfplay.ResultTimeout])))
	sb.WriteString(row("Score", fmt.Sprintf("avg %.2f  best %d", avgScore, m.bestScore)))
	sb.WriteString(row("Moves", fmt.Sprintf("%d", m.moves)))
	sb.WriteString(row("Searches", fmt.Sprintf("%d", m.plans)))
	sb.WriteString(row("Duration", duration.Round(time.Second).String()))
	sb.WriteString(row("Games/Sec", fmt.Sprintf("%.2f", gamesPerSec)))
	sb.WriteString(row("Moves/Sec", fmt.Sprintf("%.2f", movesPerSec)))

	recent := "no games yet"
	if len(m.recentGames) > 0 {
		recent = strings.Join(m.recentGames, "\n")
	}

	return titleStyle.Render("snekstar self-play") + "\n" +
		boxStyle.Render(strings.TrimSuffix(sb.String(), "\n")) + "\n" +
		titleStyle.Render("Recent Games") + "\n" +
		boxStyle.Render(recent) + "\n" +
		helpStyle.Render("Press q to quit.") + "\n"
}
