package repo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pocketvcs/pocket/pkg/object"
)

const (
	pocketDirName  = ".pocket"
	ignoreFileName = ".pocketignore"

	objectsDirName   = "objects"
	shovesDirName    = "shoves"
	timelinesDirName = "timelines"
	pilesDirName     = "piles"
	conflictsDirName = "conflicts"

	configFileName = "config.toml"
	headFileName   = "HEAD"
	lockFileName   = "LOCK"
	pileFileName   = "current.toml"
)

// Repository is an open pocket repository. All paths exchanged with it are
// slash-separated and relative to Root.
type Repository struct {
	// Root is the working directory containing .pocket.
	Root string

	Store  *object.Store
	Config *Config

	pocketDir string
	log       *slog.Logger
}

// New creates a new repository at root: the .pocket directory tree, a default
// configuration, and an unborn default timeline.
func New(root string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", root, err)
	}

	pocketDir := filepath.Join(root, pocketDirName)
	if _, err := os.Stat(pocketDir); err == nil {
		return nil, fmt.Errorf("%s: %w", root, ErrRepositoryExists)
	}

	for _, dir := range []string{
		pocketDir,
		filepath.Join(pocketDir, objectsDirName),
		filepath.Join(pocketDir, shovesDirName),
		filepath.Join(pocketDir, timelinesDirName),
		filepath.Join(pocketDir, pilesDirName),
		filepath.Join(pocketDir, conflictsDirName),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create repository: %w", err)
		}
	}

	r := &Repository{
		Root:      root,
		Store:     object.NewStore(filepath.Join(pocketDir, objectsDirName)),
		Config:    DefaultConfig(),
		pocketDir: pocketDir,
		log:       logger,
	}

	if err := r.Config.Save(r.configPath()); err != nil {
		return nil, err
	}
	main := NewTimeline(r.Config.Core.DefaultTimeline)
	if err := r.SaveTimeline(main); err != nil {
		return nil, err
	}
	if err := r.setHeadTimeline(main.Name); err != nil {
		return nil, err
	}
	if err := NewPile().Save(r.pilePath()); err != nil {
		return nil, err
	}

	logger.Info("repository created", "root", root, "timeline", main.Name)
	return r, nil
}

// Open finds the repository containing path by walking upward until a
// .pocket directory appears.
func Open(path string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}

	for {
		pocketDir := filepath.Join(dir, pocketDirName)
		if info, err := os.Stat(pocketDir); err == nil && info.IsDir() {
			cfg, err := LoadConfig(filepath.Join(pocketDir, configFileName))
			if err != nil {
				return nil, err
			}
			return &Repository{
				Root:      dir,
				Store:     object.NewStore(filepath.Join(pocketDir, objectsDirName)),
				Config:    cfg,
				pocketDir: pocketDir,
				log:       logger,
			}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("%s: %w", path, ErrNotARepository)
		}
		dir = parent
	}
}

// Logger returns the repository's logger.
func (r *Repository) Logger() *slog.Logger {
	return r.log
}

func (r *Repository) configPath() string {
	return filepath.Join(r.pocketDir, configFileName)
}

func (r *Repository) headPath() string {
	return filepath.Join(r.pocketDir, headFileName)
}

func (r *Repository) lockPath() string {
	return filepath.Join(r.pocketDir, lockFileName)
}

func (r *Repository) pilePath() string {
	return filepath.Join(r.pocketDir, pilesDirName, pileFileName)
}

func (r *Repository) shovePath(id ShoveId) string {
	return filepath.Join(r.pocketDir, shovesDirName, string(id)+".toml")
}

func (r *Repository) timelinePath(name string) string {
	return filepath.Join(r.pocketDir, timelinesDirName, name+".toml")
}

func (r *Repository) ignoreFilePath() string {
	return filepath.Join(r.Root, ignoreFileName)
}

// SaveConfig persists the in-memory configuration.
func (r *Repository) SaveConfig() error {
	return r.Config.Save(r.configPath())
}

// HeadTimelineName reads which timeline HEAD points at.
func (r *Repository) HeadTimelineName() (string, error) {
	data, err := os.ReadFile(r.headPath())
	if err != nil {
		return "", fmt.Errorf("read HEAD: %w", err)
	}
	line := strings.TrimSpace(string(data))
	name, ok := strings.CutPrefix(line, "timeline: ")
	if !ok || name == "" {
		return "", fmt.Errorf("read HEAD: malformed content %q", line)
	}
	return name, nil
}

func (r *Repository) setHeadTimeline(name string) error {
	return writeFileAtomic(r.headPath(), []byte("timeline: "+name+"\n"), 0o644)
}

// CurrentTimeline loads the timeline HEAD points at.
func (r *Repository) CurrentTimeline() (*Timeline, error) {
	name, err := r.HeadTimelineName()
	if err != nil {
		return nil, err
	}
	return r.LoadTimeline(name)
}

// LoadTimeline reads a timeline by name.
func (r *Repository) LoadTimeline(name string) (*Timeline, error) {
	var t Timeline
	if err := readTOMLFile(r.timelinePath(name), &t); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("timeline %q: %w", name, ErrTimelineNotFound)
		}
		return nil, fmt.Errorf("load timeline %q: %w", name, err)
	}
	return &t, nil
}

// SaveTimeline persists a timeline atomically.
func (r *Repository) SaveTimeline(t *Timeline) error {
	if err := writeTOMLFile(r.timelinePath(t.Name), t); err != nil {
		return fmt.Errorf("save timeline %q: %w", t.Name, err)
	}
	return nil
}

// TimelineExists reports whether a timeline with the given name exists.
func (r *Repository) TimelineExists(name string) bool {
	_, err := os.Stat(r.timelinePath(name))
	return err == nil
}

// ListTimelines returns every timeline, sorted by name.
func (r *Repository) ListTimelines() ([]*Timeline, error) {
	entries, err := os.ReadDir(filepath.Join(r.pocketDir, timelinesDirName))
	if err != nil {
		return nil, fmt.Errorf("list timelines: %w", err)
	}
	var timelines []*Timeline
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".toml")
		if !ok || e.IsDir() {
			continue
		}
		t, err := r.LoadTimeline(name)
		if err != nil {
			return nil, err
		}
		timelines = append(timelines, t)
	}
	sort.Slice(timelines, func(i, j int) bool { return timelines[i].Name < timelines[j].Name })
	return timelines, nil
}

// LoadShove reads a shove record by id.
func (r *Repository) LoadShove(id ShoveId) (*Shove, error) {
	var s Shove
	if err := readTOMLFile(r.shovePath(id), &s); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("shove %s: %w", id.Short(), ErrShoveNotFound)
		}
		return nil, fmt.Errorf("load shove %s: %w", id.Short(), err)
	}
	return &s, nil
}

// HasShove reports whether a shove record exists locally.
func (r *Repository) HasShove(id ShoveId) bool {
	_, err := os.Stat(r.shovePath(id))
	return err == nil
}

// SaveShove persists a shove record. Shoves are write-once: saving an id
// that already exists is a no-op, never an overwrite.
func (r *Repository) SaveShove(s *Shove) error {
	if r.HasShove(s.ID) {
		return nil
	}
	if err := writeTOMLFile(r.shovePath(s.ID), s); err != nil {
		return fmt.Errorf("save shove %s: %w", s.ID.Short(), err)
	}
	return nil
}

// ListShoves returns every shove record in the repository.
func (r *Repository) ListShoves() ([]*Shove, error) {
	entries, err := os.ReadDir(filepath.Join(r.pocketDir, shovesDirName))
	if err != nil {
		return nil, fmt.Errorf("list shoves: %w", err)
	}
	var shoves []*Shove
	for _, e := range entries {
		id, ok := strings.CutSuffix(e.Name(), ".toml")
		if !ok || e.IsDir() {
			continue
		}
		s, err := r.LoadShove(ShoveId(id))
		if err != nil {
			return nil, err
		}
		shoves = append(shoves, s)
	}
	return shoves, nil
}

// HeadShove loads the shove the current timeline points at, or nil when the
// timeline is unborn.
func (r *Repository) HeadShove() (*Shove, error) {
	tl, err := r.CurrentTimeline()
	if err != nil {
		return nil, err
	}
	if !tl.HasHead() {
		return nil, nil
	}
	return r.LoadShove(tl.Head)
}

// headTreeFiles flattens the current timeline head's tree. An unborn
// timeline yields an empty map.
func (r *Repository) headTreeFiles() (map[string]object.TreeFile, error) {
	head, err := r.HeadShove()
	if err != nil {
		return nil, err
	}
	if head == nil {
		return r.Store.FlattenTree("")
	}
	return r.Store.FlattenTree(head.RootTreeID)
}

// LoadCurrentPile reads the staging area.
func (r *Repository) LoadCurrentPile() (*Pile, error) {
	return LoadPile(r.pilePath())
}

// SaveCurrentPile persists the staging area.
func (r *Repository) SaveCurrentPile(p *Pile) error {
	return p.Save(r.pilePath())
}

// NewAuthor builds an Author from the configured identity, stamped now.
func (r *Repository) NewAuthor() Author {
	return Author{
		Name:      r.Config.User.Name,
		Email:     r.Config.User.Email,
		Timestamp: time.Now().UTC(),
	}
}

// Log walks first-parent history from the named timeline's head, newest
// first. An empty name means the current timeline; limit <= 0 means no limit.
func (r *Repository) Log(timeline string, limit int) ([]*Shove, error) {
	var tl *Timeline
	var err error
	if timeline == "" {
		tl, err = r.CurrentTimeline()
	} else {
		tl, err = r.LoadTimeline(timeline)
	}
	if err != nil {
		return nil, err
	}

	var history []*Shove
	id := tl.Head
	for id != "" {
		if limit > 0 && len(history) >= limit {
			break
		}
		s, err := r.LoadShove(id)
		if err != nil {
			return nil, err
		}
		history = append(history, s)
		if s.IsRoot() {
			break
		}
		id = s.ParentIDs[0]
	}
	return history, nil
}
