package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	_ "github.com/duckdb/duckdb-go/v2"
)

// Summary aggregates every recorded turn matched by a glob.
type Summary struct {
	Games       int64
	Turns       int64
	Outcomes    map[string]int64
	AvgScore    float64
	BestScore   int64
	Searches    int64
	AvgExpanded float64
	// SearchOutcomes counts planner results: found, fallback, no_move.
	SearchOutcomes map[string]int64
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e8b04b"))

func openDB(glob string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	q := `CREATE VIEW turns AS SELECT * FROM read_parquet('` + strings.ReplaceAll(glob, "'", "''") + `', union_by_name=true, filename=true)
		WHERE NOT contains(filename, '/tmp/')`
	if _, err := db.Exec(q); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open %s: %w", glob, err)
	}
	return db, nil
}

func summarize(ctx context.Context, db *sql.DB) (Summary, error) {
	s := Summary{Outcomes: map[string]int64{}, SearchOutcomes: map[string]int64{}}

	err := db.QueryRowContext(ctx, `WITH games AS (
			SELECT game_id, MAX(score) AS score
			FROM turns GROUP BY game_id
		)
		SELECT
			(SELECT COUNT(*) FROM games),
			(SELECT COUNT(*) FROM turns),
			(SELECT COALESCE(AVG(score), 0)::DOUBLE FROM games),
			(SELECT COALESCE(MAX(score), 0)::BIGINT FROM games),
			(SELECT COUNT(*) FROM turns WHERE planned),
			(SELECT COALESCE(AVG(expanded), 0)::DOUBLE FROM turns WHERE planned)`,
	).Scan(&s.Games, &s.Turns, &s.AvgScore, &s.BestScore, &s.Searches, &s.AvgExpanded)
	if err != nil {
		return s, fmt.Errorf("totals: %w", err)
	}

	if err := countInto(ctx, db, s.Outcomes,
		`SELECT result, COUNT(*) FROM turns WHERE result IS NOT NULL AND result <> '' GROUP BY result`); err != nil {
		return s, fmt.Errorf("game outcomes: %w", err)
	}
	if err := countInto(ctx, db, s.SearchOutcomes,
		`SELECT outcome, COUNT(*) FROM turns WHERE planned GROUP BY outcome`); err != nil {
		return s, fmt.Errorf("search outcomes: %w", err)
	}
	return s, nil
}

func countInto(ctx context.Context, db *sql.DB, dst map[string]int64, query string) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var n int64
		if err := rows.Scan(&k, &n); err != nil {
			return err
		}
		dst[k] = n
	}
	return rows.Err()
}

func (s Summary) Write(w io.Writer) error {
	if _, err := fmt.Fprintln(w, headerStyle.Render("games")); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "games\t%d\n", s.Games)
	fmt.Fprintf(tw, "turns\t%d\n", s.Turns)
	fmt.Fprintf(tw, "score\tavg %.2f\tbest %d\n", s.AvgScore, s.BestScore)
	for _, k := range []string{"won", "dead", "timeout"} {
		fmt.Fprintf(tw, "%s\t%d\n", k, s.Outcomes[k])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, headerStyle.Render("searches")); err != nil {
		return err
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "searches\t%d\n", s.Searches)
	fmt.Fprintf(tw, "avg expanded\t%.1f\n", s.AvgExpanded)
	for _, k := range []string{"found", "fallback", "no_move"} {
		fmt.Fprintf(tw, "%s\t%d\n", k, s.SearchOutcomes[k])
	}
	return tw.Flush()
}
