package benchmark

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/yndnr/scratchkeep/internal/storage/record"
	"github.com/yndnr/scratchkeep/internal/storage/restore"
	"github.com/yndnr/scratchkeep/internal/storage/savefile"
	"github.com/yndnr/scratchkeep/internal/workspace"
)

// BenchmarkRestore benchmarks loading a save file into an empty workspace.
func BenchmarkRestore(b *testing.B) {
	runWithBufferCounts(b, SmallBufferCounts, func(b *testing.B, count int) {
		ctx := context.Background()
		path := filepath.Join(b.TempDir(), "scratch.json")
		records := encodeAll(newWorkspace(b, count), record.DefaultOptions())
		if _, err := savefile.NewWriter(savefile.Config{Logger: discard}).Commit(ctx, records, path); err != nil {
			b.Fatalf("Commit failed: %v", err)
		}

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			ws := workspace.New()
			res, err := restore.New(ws, discard).Restore(ctx, path)
			if err != nil {
				b.Fatalf("Restore failed: %v", err)
			}
			if len(res.Names) != count {
				b.Fatalf("Expected %d buffers, got %d", count, len(res.Names))
			}
		}
	})
}
