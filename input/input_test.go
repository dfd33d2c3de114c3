package input

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurre/cloud-api-samples/apierr"
)

type mockStreamer struct {
	data   map[string]string
	bucket string
	key    string
}

func (m *mockStreamer) Stream(ctx context.Context, bucket, key string, offset int64, fn func([]byte, int64) error) error {
	m.bucket, m.key = bucket, key
	content, ok := m.data[bucket+"/"+key]
	if !ok {
		return errors.New("NoSuchKey")
	}
	buf := make([]byte, 0, 64)
	var pos int64
	for _, line := range strings.SplitAfter(content, "\n") {
		if line == "" {
			continue
		}
		buf = append(buf[:0], line...)
		pos += int64(len(line))
		if err := fn(buf, pos); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(t *testing.T, dir, name string, body []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, body, 0644))
	return p
}

func TestReadImage(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, dir, "objects.png", []byte{0x89, 'P', 'N', 'G'})
	empty := writeFile(t, dir, "empty.png", nil)
	big := writeFile(t, dir, "big.png", make([]byte, MaxImageBytes+1))

	b, err := ReadImage(ok)
	require.NoError(t, err)
	assert.Len(t, b, 4)

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "missing.png")},
		{"empty", empty},
		{"too large", big},
		{"directory", dir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadImage(tt.path)
			require.Error(t, err)
			assert.True(t, apierr.Is(err, apierr.KindLocalIO))
		})
	}
}

func TestReadText(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "sample1.txt", []byte("今日はとても良い天気です。\n"))

	s, err := ReadText(p)
	require.NoError(t, err)
	assert.Equal(t, "今日はとても良い天気です。\n", s)

	_, err = ReadText(writeFile(t, dir, "blank.txt", []byte(" \n\t")))
	assert.True(t, apierr.Is(err, apierr.KindLocalIO))

	_, err = ReadText(filepath.Join(dir, "nope.txt"))
	assert.True(t, apierr.Is(err, apierr.KindLocalIO))
}

func TestLinesLocal(t *testing.T) {
	p := writeFile(t, t.TempDir(), "ja.txt", []byte("こんにちは\r\n\n世界\n"))
	lines, err := Lines(context.Background(), p, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"こんにちは", "", "世界"}, lines)
}

func TestLinesS3(t *testing.T) {
	streamer := &mockStreamer{data: map[string]string{"bucket/texts/ja.txt": "一行目\n二行目\n"}}

	lines, err := Lines(context.Background(), "s3://bucket/texts/ja.txt", streamer)
	require.NoError(t, err)
	assert.Equal(t, []string{"一行目", "二行目"}, lines, "lines are copied out of the reused buffer")
	assert.Equal(t, "bucket", streamer.bucket)
	assert.Equal(t, "texts/ja.txt", streamer.key)
}

func TestLinesS3Errors(t *testing.T) {
	_, err := Lines(context.Background(), "s3://bucket", &mockStreamer{})
	assert.True(t, apierr.Is(err, apierr.KindConfiguration))

	_, err = Lines(context.Background(), "s3://bucket/key", nil)
	assert.True(t, apierr.Is(err, apierr.KindConfiguration))

	_, err = Lines(context.Background(), "s3://bucket/missing", &mockStreamer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoSuchKey")
}

func TestGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", []byte("{}"))
	writeFile(t, dir, "a.json", []byte("{}"))
	writeFile(t, dir, "c.txt", []byte("x"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d.json"), 0755))

	files, err := Glob(dir, "*.json")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}, files)

	files, err = Glob(dir, "*.png")
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = Glob(filepath.Join(dir, "missing"), "*.json")
	assert.True(t, apierr.Is(err, apierr.KindLocalIO))
}

func TestStem(t *testing.T) {
	assert.Equal(t, "objects", Stem("data/objects.png"))
	assert.Equal(t, "receipt.v2", Stem("/tmp/receipt.v2.json"))
	assert.Equal(t, "noext", Stem("noext"))
}
