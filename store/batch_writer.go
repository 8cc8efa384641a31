package store

import (
	"errors"
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
)

var errBatchCommitted = errors.New("batch already committed")

// Batch describes one committed batch file.
type Batch struct {
	Path  string
	Games int
	Rows  int
}

// BatchWriter appends whole games to a staged batch file. Commit makes the
// file visible in outDir; nothing is visible before that.
type BatchWriter struct {
	staged stagedFile
	f      *os.File
	w      *parquet.GenericWriter[TurnRow]
	batch  Batch
}

func NewBatchWriter(outDir string) (*BatchWriter, error) {
	s, err := stage(outDir)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(s.tmpPath)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}
	return &BatchWriter{
		staged: s,
		f:      f,
		w:      parquet.NewGenericWriter[TurnRow](f, writerOptions()...),
		batch:  Batch{Path: s.finalPath},
	}, nil
}

func (b *BatchWriter) Games() int { return b.batch.Games }
func (b *BatchWriter) Rows() int  { return b.batch.Rows }

// WriteGame appends the rows of one finished game. Empty games are ignored.
func (b *BatchWriter) WriteGame(rows []TurnRow) error {
	if b.w == nil {
		return errBatchCommitted
	}
	if len(rows) == 0 {
		return nil
	}
	n, err := b.w.Write(rows)
	b.batch.Rows += n
	if err != nil {
		return fmt.Errorf("write game %s: %w", rows[0].GameID, err)
	}
	b.batch.Games++
	return nil
}

// Commit closes the file and moves it into outDir. A batch with no rows is
// dropped and comes back with an empty Path. Later calls return a zero Batch.
func (b *BatchWriter) Commit() (Batch, error) {
	if b.w == nil {
		return Batch{}, nil
	}
	w, f := b.w, b.f
	b.w, b.f = nil, nil

	if err := errors.Join(w.Close(), f.Sync(), f.Close()); err != nil {
		b.staged.discard()
		return Batch{}, fmt.Errorf("close parquet batch: %w", err)
	}
	if b.batch.Rows == 0 {
		b.staged.discard()
		return Batch{}, nil
	}
	if err := b.staged.commit(); err != nil {
		return Batch{}, err
	}
	return b.batch, nil
}
