package benchmark

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"testing"

	"github.com/yndnr/scratchkeep/internal/core/domain"
	"github.com/yndnr/scratchkeep/internal/storage/record"
	"github.com/yndnr/scratchkeep/internal/workspace"
)

// BufferCounts defines the workspace sizes for benchmarking.
var BufferCounts = []int{10, 100, 1000, 5000}

// SmallBufferCounts for quick benchmarks.
var SmallBufferCounts = []int{10, 100, 1000}

// bufferSize is the text length of each generated buffer.
const bufferSize = 4096

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// newWorkspace builds a workspace of count modified buffers. Every third
// buffer carries a text property and a narrowing.
func newWorkspace(b *testing.B, count int) *workspace.Workspace {
	b.Helper()
	ws := workspace.New()
	text := strings.Repeat("scratch line\n", bufferSize/13)
	for i := 0; i < count; i++ {
		buf := ws.Create(fmt.Sprintf("notes-%05d.txt", i))
		if i%3 != 0 {
			buf.SetText(text)
			continue
		}
		c := domain.Content{
			Text:       text,
			Properties: []domain.Property{{Start: 0, End: 7, Key: "face", Value: "bold"}},
		}
		if err := buf.ReplaceContent(c); err != nil {
			b.Fatalf("ReplaceContent: %v", err)
		}
		if err := buf.SetNarrowing(domain.Range{Start: 13, End: 130}); err != nil {
			b.Fatalf("SetNarrowing: %v", err)
		}
	}
	return ws
}

// encodeAll captures every persistable document in ws.
func encodeAll(ws *workspace.Workspace, opts record.Options) []record.Record {
	docs := ws.Documents()
	records := make([]record.Record, 0, len(docs))
	for _, doc := range docs {
		if ws.Persistable(doc) {
			records = append(records, record.Encode(doc, opts))
		}
	}
	return records
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithBufferCounts runs a benchmark function with various workspace sizes.
func runWithBufferCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("buffers_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
