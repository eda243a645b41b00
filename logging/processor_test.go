package logging

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func fieldKeys(fields []zapcore.Field) []string {
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	return keys
}

func TestUIDProcessor(t *testing.T) {
	p, err := NewUIDProcessor(UIDOptions{})
	require.NoError(t, err)

	uid := p.UID()
	assert.Len(t, uid, 7)
	_, err = hex.DecodeString(uid + "0")
	assert.NoError(t, err, "uid should be hexadecimal")

	fields := p.Process(zapcore.Entry{Level: zapcore.InfoLevel}, nil)
	require.Len(t, fields, 1)
	assert.Equal(t, "uid", fields[0].Key)
	assert.Equal(t, uid, fields[0].String)

	p.Reset()
	assert.NotEqual(t, uid, p.UID())
}

func TestUIDProcessorLength(t *testing.T) {
	p, err := NewUIDProcessor(UIDOptions{Length: 32})
	require.NoError(t, err)
	assert.Len(t, p.UID(), 32)

	_, err = NewUIDProcessor(UIDOptions{Length: 33})
	assert.Error(t, err)

	_, err = newUIDProcessorFromParams(map[string]any{"length": 0})
	assert.Error(t, err)
}

func TestProcessorLevelGate(t *testing.T) {
	p, err := NewUIDProcessor(UIDOptions{ProcessorOptions: ProcessorOptions{Level: "error"}})
	require.NoError(t, err)

	assert.Empty(t, p.Process(zapcore.Entry{Level: zapcore.InfoLevel}, nil))
	assert.Len(t, p.Process(zapcore.Entry{Level: zapcore.ErrorLevel}, nil), 1)

	_, err = NewHostnameProcessor(ProcessorOptions{Level: "chatty"})
	assert.Error(t, err)
}

func TestHostnameAndProcessIDProcessors(t *testing.T) {
	host, err := NewHostnameProcessor(ProcessorOptions{})
	require.NoError(t, err)
	pid, err := NewProcessIDProcessor(ProcessorOptions{})
	require.NoError(t, err)

	ent := zapcore.Entry{Level: zapcore.DebugLevel}
	fields := pid.Process(ent, host.Process(ent, nil))

	assert.Equal(t, []string{"hostname", "process_id"}, fieldKeys(fields))
	assert.Equal(t, int64(os.Getpid()), fields[1].Integer)
}

func TestMemoryUsageProcessor(t *testing.T) {
	p, err := NewMemoryUsageProcessor(MemoryUsageOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"memory_usage"}, fieldKeys(p.Process(zapcore.Entry{}, nil)))

	peak, err := NewMemoryUsageProcessor(MemoryUsageOptions{Peak: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"memory_usage", "memory_peak_usage"}, fieldKeys(peak.Process(zapcore.Entry{}, nil)))
}

func TestTagsProcessor(t *testing.T) {
	p, err := newTagsProcessorFromParams(map[string]any{"tags": map[string]any{"env": "test"}})
	require.NoError(t, err)

	h := newMemory(t, "debug", true)
	New("app", []Handler{h}, []Processor{p}).Info("tagged")

	records := h.Records()
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Formatted, `"tags":{"env":"test"}`)

	tags := p.(*TagsProcessor)
	tags.SetTags(nil)
	assert.Empty(t, tags.Process(zapcore.Entry{}, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestGitProcessorBranch(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main\n")
	writeFile(t, filepath.Join(root, ".git", "refs", "heads", "main"), "0123abcd\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "dir"), 0o755))

	p, err := NewGitProcessor(GitOptions{Path: filepath.Join(root, "sub", "dir")})
	require.NoError(t, err)

	assert.Equal(t, GitInfo{Branch: "main", Commit: "0123abcd"}, p.Info())

	fields := p.Process(zapcore.Entry{Level: zapcore.InfoLevel}, nil)
	assert.Equal(t, []string{"git"}, fieldKeys(fields))
}

func TestGitProcessorPackedRefs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/release\n")
	writeFile(t, filepath.Join(root, ".git", "packed-refs"),
		"# pack-refs with: peeled fully-peeled sorted\n"+
			"aaaa1111 refs/heads/main\n"+
			"bbbb2222 refs/heads/release\n"+
			"^cccc3333\n")

	assert.Equal(t, GitInfo{Branch: "release", Commit: "bbbb2222"}, readGitInfo(root))
}

func TestGitProcessorDetachedHead(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "deadbeef\n")

	assert.Equal(t, GitInfo{Commit: "deadbeef"}, readGitInfo(root))
}
