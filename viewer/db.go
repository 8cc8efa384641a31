package main

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DBCache keeps one DuckDB view over the recorded parquet batches and
// reopens it periodically so new batches show up.
type DBCache struct {
	roots       []string
	refreshRate time.Duration
	logger      *slog.Logger

	mu          sync.RWMutex
	db          *sql.DB
	lastRefresh time.Time

	// Cached games index for fast pagination
	gamesIndex []GameSummary
}

func NewDBCache(logger *slog.Logger, roots []string, refreshRate time.Duration) *DBCache {
	return &DBCache{
		roots:       roots,
		refreshRate: refreshRate,
		logger:      logger,
	}
}

// Get returns the cached DB connection, refreshing if needed.
func (c *DBCache) Get() (*sql.DB, error) {
	c.mu.RLock()
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		db := c.db
		c.mu.RUnlock()
		return db, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		return c.db, nil
	}
	return c.refreshLocked()
}

// Invalidate forces the next Get to reopen the view.
func (c *DBCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRefresh = time.Time{}
}

func (c *DBCache) refreshLocked() (*sql.DB, error) {
	start := time.Now()

	newDB, err := openDuckDBWithGlobs(c.roots)
	if err != nil {
		return nil, err
	}
	if c.db != nil {
		_ = c.db.Close()
	}

	c.db = newDB
	c.lastRefresh = time.Now()
	c.gamesIndex = nil

	c.logger.Debug("duckdb view refreshed", "took", time.Since(start))
	return c.db, nil
}

// GetGamesIndex returns the cached games index. It is rebuilt whenever the
// view is refreshed.
func (c *DBCache) GetGamesIndex(ctx context.Context) ([]GameSummary, error) {
	if _, err := c.Get(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	if c.gamesIndex != nil {
		idx := c.gamesIndex
		c.mu.RUnlock()
		return idx, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gamesIndex != nil {
		return c.gamesIndex, nil
	}
	if c.db == nil {
		if _, err := c.refreshLocked(); err != nil {
			return nil, err
		}
	}

	games, err := queryAllGames(ctx, c.db, c.roots)
	if err != nil {
		return nil, err
	}
	c.gamesIndex = games
	return games, nil
}

func (c *DBCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}

// hasParquet reports whether root holds at least one finished batch.
func hasParquet(root string) bool {
	found := errors.New("found")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && d.Name() == "tmp" {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".parquet") {
			return found
		}
		return nil
	})
	return errors.Is(err, found)
}

// openDuckDBWithGlobs creates an in-memory DuckDB with a "turns" view over
// every parquet file under the roots, skipping tmp/ directories.
func openDuckDBWithGlobs(roots []string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	_, _ = db.Exec("PRAGMA threads=4")

	globs := make([]string, 0, len(roots))
	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" || !hasParquet(root) {
			continue
		}
		glob := filepath.Join(root, "**", "*.parquet")
		globs = append(globs, "'"+escapeSQLString(glob)+"'")
	}

	sqlText := `CREATE OR REPLACE VIEW turns AS
		SELECT * FROM (
			SELECT
				NULL::VARCHAR AS game_id,
				NULL::INTEGER AS turn,
				NULL::INTEGER AS width,
				NULL::INTEGER AS height,
				NULL::INTEGER AS food_x,
				NULL::INTEGER AS food_y,
				NULL::INTEGER[] AS body_x,
				NULL::INTEGER[] AS body_y,
				NULL::INTEGER AS move,
				NULL::INTEGER AS score,
				NULL::BOOLEAN AS planned,
				NULL::VARCHAR AS outcome,
				NULL::INTEGER AS path_len,
				NULL::INTEGER AS expanded,
				NULL::VARCHAR AS result,
				NULL::VARCHAR AS source,
				NULL::VARCHAR AS filename
		) WHERE 1=0`
	if len(globs) > 0 {
		sqlText = `CREATE OR REPLACE VIEW turns AS
			SELECT * FROM read_parquet([` + strings.Join(globs, ",") + `], filename=true, union_by_name=true)
			WHERE NOT contains(filename, '/tmp/')`
	}
	if _, err := db.Exec(sqlText); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func normalizeSort(sortKey string, sortDir string) (string, string) {
	sk := strings.ToLower(strings.TrimSpace(sortKey))
	sd := strings.ToLower(strings.TrimSpace(sortDir))
	if sd != "asc" && sd != "desc" {
		sd = "desc"
	}
	switch sk {
	case "id", "game", "game_id":
		sk = "game_id"
	case "turns", "turn_count":
		sk = "turn_count"
	case "score":
		sk = "score"
	case "searches":
		sk = "searches"
	case "result":
		sk = "result"
	case "file", "filename":
		sk = "file"
	default:
		sk = "score"
		sd = "desc"
	}
	return sk, sd
}

func makeRelativeToRoots(filename string, roots []string) string {
	fn := strings.TrimSpace(filename)
	if fn == "" {
		return ""
	}
	best := fn
	for _, r := range roots {
		root := strings.TrimSpace(r)
		if root == "" {
			continue
		}
		rel, err := filepath.Rel(root, fn)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		if cand := filepath.ToSlash(filepath.Join(root, rel)); len(cand) < len(best) {
			best = cand
		}
	}
	return best
}

func queryAllGames(ctx context.Context, db *sql.DB, roots []string) ([]GameSummary, error) {
	rows, err := db.QueryContext(ctx, `SELECT
			game_id,
			COUNT(*)::INTEGER AS turn_count,
			MIN(width)::INTEGER AS width,
			MIN(height)::INTEGER AS height,
			MAX(score)::INTEGER AS score,
			COALESCE(MAX(result), '')::VARCHAR AS result,
			SUM(CASE WHEN planned THEN 1 ELSE 0 END)::BIGINT AS searches,
			MIN(source)::VARCHAR AS source,
			MIN(filename)::VARCHAR AS file
		FROM turns
		GROUP BY game_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]GameSummary, 0, 1024)
	for rows.Next() {
		var g GameSummary
		var file string
		if err := rows.Scan(&g.GameID, &g.TurnCount, &g.Width, &g.Height, &g.Score, &g.Result, &g.Searches, &g.Source, &file); err != nil {
			return nil, err
		}
		g.SourceFile = makeRelativeToRoots(file, roots)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].GameID < out[j].GameID
	})
	return out, nil
}

// paginateGames sorts and paginates a games index in memory.
func paginateGames(games []GameSummary, limit, offset int, sortKey, sortDir string) []GameSummary {
	sk, sd := normalizeSort(sortKey, sortDir)

	sorted := make([]GameSummary, len(games))
	copy(sorted, games)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		var c int
		switch sk {
		case "game_id":
			c = strings.Compare(a.GameID, b.GameID)
		case "turn_count":
			c = cmp.Compare(a.TurnCount, b.TurnCount)
		case "searches":
			c = cmp.Compare(a.Searches, b.Searches)
		case "result":
			c = strings.Compare(a.Result, b.Result)
		case "file":
			c = strings.Compare(a.SourceFile, b.SourceFile)
		default:
			c = cmp.Compare(a.Score, b.Score)
		}
		if sd == "desc" {
			c = -c
		}
		return c < 0
	})

	if offset >= len(sorted) {
		return []GameSummary{}
	}
	end := min(offset+limit, len(sorted))
	return sorted[offset:end]
}

func queryTurns(ctx context.Context, db *sql.DB, gameID string) ([]Frame, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT game_id, turn::INTEGER, width::INTEGER, height::INTEGER, food_x::INTEGER, food_y::INTEGER,
		        body_x, body_y, move::INTEGER, score::INTEGER, COALESCE(result, '')
		 FROM turns
		 WHERE game_id = ?
		 ORDER BY turn ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	frames := make([]Frame, 0, 256)
	for rows.Next() {
		var f Frame
		var foodX, foodY int32
		var bodyXAny, bodyYAny any
		if err := rows.Scan(&f.GameID, &f.Turn, &f.Width, &f.Height, &foodX, &foodY, &bodyXAny, &bodyYAny, &f.Move, &f.Score, &f.Outcome); err != nil {
			return nil, err
		}
		if foodX >= 0 && foodY >= 0 {
			f.Food = &Point{X: foodX, Y: foodY}
		}
		f.Body = zipPoints(asInt32Slice(bodyXAny), asInt32Slice(bodyYAny))
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}
