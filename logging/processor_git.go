package logging

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GitOptions configures the git processor. Path is the working tree to
// inspect; empty means the current directory.
type GitOptions struct {
	ProcessorOptions `mapstructure:",squash"`
	Path             string `mapstructure:"path" json:"path" yaml:"path"`
}

// GitInfo is the branch and commit of a working tree.
type GitInfo struct {
	Branch string
	Commit string
}

func (g GitInfo) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("branch", g.Branch)
	enc.AddString("commit", g.Commit)
	return nil
}

// GitProcessor adds the branch and commit of the working tree under "git".
// The repository is read once, on the first record.
type GitProcessor struct {
	gate levelGate
	path string

	once sync.Once
	info GitInfo
}

func NewGitProcessor(opts GitOptions) (*GitProcessor, error) {
	gate, err := newLevelGate(opts.ProcessorOptions)
	if err != nil {
		return nil, err
	}
	path := opts.Path
	if path == "" {
		path = "."
	}
	return &GitProcessor{gate: gate, path: path}, nil
}

// Info returns the resolved branch and commit. Both are empty outside a repository.
func (p *GitProcessor) Info() GitInfo {
	p.once.Do(func() {
		p.info = readGitInfo(p.path)
	})
	return p.info
}

func (p *GitProcessor) Process(ent zapcore.Entry, fields []zapcore.Field) []zapcore.Field {
	if p.gate.skip(ent) {
		return fields
	}
	return append(fields, zap.Object("git", p.Info()))
}

// readGitInfo walks up from dir to the nearest .git directory and resolves HEAD.
func readGitInfo(dir string) GitInfo {
	gitDir, ok := findGitDir(dir)
	if !ok {
		return GitInfo{}
	}

	head, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return GitInfo{}
	}
	ref := strings.TrimSpace(string(head))

	// Detached HEAD holds the commit itself.
	if !strings.HasPrefix(ref, "ref: ") {
		return GitInfo{Commit: ref}
	}

	ref = strings.TrimPrefix(ref, "ref: ")
	info := GitInfo{Branch: strings.TrimPrefix(ref, "refs/heads/")}
	if commit, err := os.ReadFile(filepath.Join(gitDir, filepath.FromSlash(ref))); err == nil {
		info.Commit = strings.TrimSpace(string(commit))
		return info
	}
	info.Commit = lookupPackedRef(gitDir, ref)
	return info
}

func findGitDir(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(abs, ".git")
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", false
		}
		abs = parent
	}
}

func lookupPackedRef(gitDir, ref string) string {
	f, err := os.Open(filepath.Join(gitDir, "packed-refs"))
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' || line[0] == '^' {
			continue
		}
		commit, name, ok := strings.Cut(line, " ")
		if ok && name == ref {
			return commit
		}
	}
	return ""
}

func newGitProcessorFromParams(params map[string]any) (Processor, error) {
	var opts GitOptions
	if err := decodeParams(params, &opts); err != nil {
		return nil, err
	}
	return NewGitProcessor(opts)
}
