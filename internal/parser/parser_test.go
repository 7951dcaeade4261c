package parser

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthcare-agent/internal/config"
)

func TestChunkContent_ShortContentSingleChunk(t *testing.T) {
	chunks := chunkContent("short text", 100, 20)

	assert.Equal(t, []string{"short text"}, chunks)
}

func TestChunkContent_Empty(t *testing.T) {
	assert.Nil(t, chunkContent("", 100, 20))
	assert.Nil(t, chunkContent("   \n\t", 100, 20))
	assert.Nil(t, chunkContent("anything", 0, 20))
}

func TestChunkContent_SplitsWithOverlap(t *testing.T) {
	content := strings.Repeat("word ", 200) // 1000 chars
	chunks := chunkContent(content, 300, 50)

	assert.Greater(t, len(chunks), 2)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 300)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}

	// consecutive chunks share overlapping text
	first := chunks[0]
	second := chunks[1]
	tail := first[len(first)-20:]
	assert.Contains(t, content, tail)
	assert.NotEqual(t, first, second)
}

func TestChunkContent_OverlapAtLeastHalved(t *testing.T) {
	// overlap >= maxChars falls back instead of looping forever
	content := strings.Repeat("a b c d e f g h i j ", 50)
	chunks := chunkContent(content, 100, 100)

	assert.NotEmpty(t, chunks)
}

func TestGetChunks_AssignsPageAndChunkIDs(t *testing.T) {
	p := ParserConfig{Config: &config.Config{RAG: config.RAGConfig{ChunkSize: 50, ChunkOverlap: 10}}}

	chunks := p.getChunks(strings.Repeat("alpha beta gamma ", 20), 3)

	assert.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.Equal(t, 3, chunk.PageNumber)
		assert.Equal(t, i+1, chunk.ChunkID)
	}
}

func TestSupportedExt(t *testing.T) {
	assert.True(t, SupportedExt("notice_privacy.pdf"))
	assert.True(t, SupportedExt("guide.DOCX"))
	assert.True(t, SupportedExt("notes.txt"))
	assert.False(t, SupportedExt("data.csv"))
	assert.False(t, SupportedExt("image.png"))
}

func TestParseToMarkdown_UnsupportedFormat(t *testing.T) {
	_, err := ParseToMarkdown("file.xyz", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func chunkTestConfig(size, overlap int) *config.Config {
	return &config.Config{RAG: config.RAGConfig{ChunkSize: size, ChunkOverlap: overlap}}
}

func TestParseToMarkdown_TextHonorsChunkConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("alpha beta gamma ", 60)), 0o644))

	chunks, err := ParseToMarkdown(path, chunkTestConfig(150, 30))
	require.NoError(t, err)

	assert.Greater(t, len(chunks), 2)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 150)
		assert.Equal(t, 1, chunk.PageNumber)
		assert.Equal(t, i+1, chunk.ChunkID)
	}
}

func TestParseToMarkdown_PPTXHonorsChunkConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	writePPTX(t, path, []string{
		strings.Repeat("slide one sentence. ", 40),
		"slide two is short.",
	})

	chunks, err := ParseToMarkdown(path, chunkTestConfig(150, 30))
	require.NoError(t, err)

	var slide1, slide2 int
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 150)
		switch chunk.PageNumber {
		case 1:
			slide1++
			assert.Equal(t, slide1, chunk.ChunkID)
		case 2:
			slide2++
		default:
			t.Fatalf("unexpected slide number %d", chunk.PageNumber)
		}
	}
	assert.Greater(t, slide1, 2)
	assert.Equal(t, 1, slide2)
}

func writePPTX(t *testing.T, path string, slides []string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for i, text := range slides {
		entry, err := w.Create(fmt.Sprintf("ppt/slides/slide%d.xml", i+1))
		require.NoError(t, err)
		_, err = entry.Write([]byte("<p:sld><a:t>" + text + "</a:t></p:sld>"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}
