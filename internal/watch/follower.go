package watch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/tungetti/sessionlog/internal/constants"
	"github.com/tungetti/sessionlog/internal/errors"
	"github.com/tungetti/sessionlog/internal/logging"
)

// Options configures a Follower.
type Options struct {
	// FromStart prints the newest file from its beginning instead of
	// only what is written after the follower starts.
	FromStart bool
	NoColor   bool
	Logger    logging.Logger
}

// Follower prints the lines of the newest session file in a directory as
// they are flushed, switching to each new session file when it appears.
type Follower struct {
	dir    string
	out    io.Writer
	styler *Styler
	log    logging.Logger
	opts   Options

	mu      sync.Mutex
	current string
	offset  int64
	partial []byte
}

// NewFollower creates a follower for dir writing to out.
func NewFollower(dir string, out io.Writer, opts Options) *Follower {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	return &Follower{
		dir:    dir,
		out:    out,
		styler: NewStyler(out, opts.NoColor),
		log:    log.WithPrefix("watch"),
		opts:   opts,
	}
}

// Current returns the path of the file being followed, or "".
func (f *Follower) Current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Run follows the directory until ctx is done.
func (f *Follower) Run(ctx context.Context) error {
	info, err := os.Stat(f.dir)
	if err != nil {
		code := errors.IO
		if os.IsNotExist(err) {
			code = errors.NotFound
		}
		return errors.Wrapf(code, err, "cannot watch %s", f.dir).WithOp("watch.Run")
	}
	if !info.IsDir() {
		return errors.Newf(errors.Usage, "%s is not a directory", f.dir).WithOp("watch.Run")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.IO, "failed to create watcher", err).WithOp("watch.Run")
	}
	defer watcher.Close()

	if err := watcher.Add(f.dir); err != nil {
		return errors.Wrap(errors.IO, "failed to watch directory", err).WithOp("watch.Run")
	}

	newest, err := Newest(f.dir)
	if err != nil {
		return err
	}
	if newest != "" {
		f.follow(filepath.Join(f.dir, newest), f.opts.FromStart)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			f.handle(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.log.Warn("watcher error", "err", err)
		}
	}
}

func (f *Follower) handle(event fsnotify.Event) {
	if !IsSessionFile(event.Name) {
		return
	}

	current := f.Current()
	switch {
	case event.Name == current:
		if event.Has(fsnotify.Write) {
			f.drain()
		}
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			f.log.Info("session file went away", "file", current)
		}
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		if current == "" || sessionLess(filepath.Base(current), filepath.Base(event.Name)) {
			f.follow(event.Name, true)
		}
	}
}

// follow switches to path. The previous file is drained first so nothing
// flushed before the rotation is lost.
func (f *Follower) follow(path string, fromStart bool) {
	if f.Current() != "" {
		f.drain()
	}

	var offset int64
	if !fromStart {
		if info, err := os.Stat(path); err == nil {
			offset = info.Size()
		}
	}

	f.mu.Lock()
	f.current = path
	f.offset = offset
	f.partial = nil
	f.mu.Unlock()

	f.log.Info("following", "file", path)
	fmt.Fprintf(f.out, "==> %s <==\n", filepath.Base(path))
	f.drain()
}

// drain prints every complete line appended since the last read.
func (f *Follower) drain() {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.current)
	if err != nil {
		f.log.Debug("cannot open session file", "file", f.current, "err", err)
		return
	}
	defer file.Close()

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		f.log.Debug("seek failed", "file", f.current, "err", err)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		f.log.Debug("read failed", "file", f.current, "err", err)
	}
	f.offset += int64(len(data))

	data = append(f.partial, data...)
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := string(data[:i])
		data = data[i+1:]
		// Blank lines are the separators written after each flush.
		if line == "" {
			continue
		}
		fmt.Fprintln(f.out, f.styler.Style(line))
	}
	f.partial = append([]byte(nil), data...)
}

// IsSessionFile reports whether path names a session file.
func IsSessionFile(path string) bool {
	return strings.HasSuffix(path, constants.SessionFileExt)
}

// Newest returns the name of the most recent session file in dir, or ""
// if there is none.
func Newest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrap(errors.IO, "failed to list log directory", err).WithOp("watch.Newest")
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsSessionFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Slice(names, func(i, j int) bool { return sessionLess(names[i], names[j]) })
	return names[len(names)-1], nil
}

// sessionLess orders session file names by timestamp, then by the "-<n>"
// suffix added for starts within the same second.
func sessionLess(a, b string) bool {
	baseA, seqA := splitSessionName(a)
	baseB, seqB := splitSessionName(b)
	if baseA != baseB {
		return baseA < baseB
	}
	return seqA < seqB
}

func splitSessionName(name string) (string, int) {
	name = strings.TrimSuffix(name, constants.SessionFileExt)
	if i := strings.LastIndex(name, "-"); i == len(constants.SessionTimeLayout) {
		if n, err := strconv.Atoi(name[i+1:]); err == nil {
			return name[:i], n
		}
	}
	return name, 0
}
