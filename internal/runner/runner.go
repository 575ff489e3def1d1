// Package runner sequences a full rvpacker run: engine resolution, title
// classification, configuration precedence, the force-mode confirmation
// prompt, one-time archive unpacking, dispatch to the text engine, and
// metadata persistence. A run moves Init -> Resolved -> Configured ->
// Dispatched -> Persisted -> Done, failing fast from any state.
package runner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"rvpacker/internal/engine"
	"rvpacker/internal/fileutil"
	"rvpacker/internal/game"
	"rvpacker/internal/gamedata"
	"rvpacker/internal/jsonrep"
	"rvpacker/internal/logging"
	"rvpacker/internal/metadata"
	"rvpacker/internal/rgss"
	"rvpacker/internal/textengine"
)

// ErrAborted reports that the user declined the force-mode confirmation.
// It is a normal termination, not a failure: no side effects were
// performed.
var ErrAborted = errors.New("aborted by user")

// lockFileName is the advisory lock serializing runs per output directory.
const lockFileName = ".rvpacker.lock"

// confirmation is the exact token accepted by the force-mode prompt.
const confirmation = "Y"

// TextService is the read/write/purge contract the runner dispatches to.
type TextService interface {
	Read(textengine.ReadRequest) ([]metadata.Hash, error)
	Write(textengine.WriteRequest) error
	Purge(textengine.PurgeRequest) error
}

// Options configures a Runner.
type Options struct {
	InputDir  string
	OutputDir string

	Log  *slog.Logger
	Text TextService

	// DecryptArchive decrypts a packed RGSS archive; rgss.Decrypt when nil.
	DecryptArchive func([]byte) ([]rgss.File, error)

	// Stdin and Stdout serve the force-mode confirmation prompt.
	Stdin  io.Reader
	Stdout io.Writer

	// StartTime anchors elapsed-time reporting; time.Now() when zero.
	StartTime time.Time
}

// Runner holds the resolved state of one run.
type Runner struct {
	log  *slog.Logger
	text TextService

	decryptArchive func([]byte) ([]rgss.File, error)
	stdin          io.Reader
	stdout         io.Writer

	inputDir  string
	outputDir string

	res   engine.Resolution
	title string

	iniPath         string
	jsonDir         string
	translationPath string
	metadataPath    string
	ignorePath      string

	lock     *flock.Flock
	start    time.Time
	excluded time.Duration
}

// New validates the input and output roots, resolves the engine, and takes
// the per-project run lock. Callers must Close the returned Runner.
func New(opts Options) (*Runner, error) {
	if opts.Text == nil {
		return nil, errors.New("runner requires a text service")
	}
	log := opts.Log
	if log == nil {
		log = logging.NewNop()
	}

	inputDir := opts.InputDir
	if inputDir == "" {
		inputDir = "./"
	}
	if !fileutil.DirExists(inputDir) {
		return nil, fmt.Errorf("input directory %s does not exist", inputDir)
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = inputDir
	}
	if !fileutil.DirExists(outputDir) {
		return nil, fmt.Errorf("output directory %s does not exist", outputDir)
	}

	res, err := engine.Resolve(inputDir)
	if err != nil {
		return nil, err
	}

	lock := flock.New(filepath.Join(outputDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another rvpacker run is active in %s", outputDir)
	}

	translationPath := filepath.Join(outputDir, "translation")

	r := &Runner{
		log:             log,
		text:            opts.Text,
		decryptArchive:  opts.DecryptArchive,
		stdin:           opts.Stdin,
		stdout:          opts.Stdout,
		inputDir:        inputDir,
		outputDir:       outputDir,
		res:             res,
		iniPath:         filepath.Join(inputDir, "Game.ini"),
		jsonDir:         filepath.Join(inputDir, "json"),
		translationPath: translationPath,
		metadataPath:    filepath.Join(translationPath, metadata.MetadataFile),
		ignorePath:      filepath.Join(translationPath, metadata.IgnoreFile),
		lock:            lock,
		start:           opts.StartTime,
	}
	if r.decryptArchive == nil {
		r.decryptArchive = rgss.Decrypt
	}
	if r.stdin == nil {
		r.stdin = os.Stdin
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.start.IsZero() {
		r.start = time.Now()
	}

	log.Debug("engine resolved",
		logging.String("engine", res.Type.String()),
		logging.String("source", res.SourceDir))

	return r, nil
}

// Close releases the run lock.
func (r *Runner) Close() error {
	if r.lock == nil {
		return nil
	}
	return r.lock.Unlock()
}

// Engine reports the resolved engine type.
func (r *Runner) Engine() engine.Type { return r.res.Type }

// Elapsed is the wall-clock run duration minus time spent blocked on the
// confirmation prompt.
func (r *Runner) Elapsed() time.Duration {
	return time.Since(r.start) - r.excluded
}

// ReadOptions parameterizes Read.
type ReadOptions struct {
	Mode   gamedata.ReadMode
	Flags  metadata.Flags
	Silent bool
	Ignore bool
}

// Read extracts game text into the translation directory and persists
// refreshed metadata.
func (r *Runner) Read(opts ReadOptions) error {
	title, err := r.gameTitle()
	if err != nil {
		return err
	}

	var md *metadata.Metadata
	if opts.Mode.IsAppend() {
		md, err = metadata.Load(r.metadataPath)
		if err != nil {
			return err
		}
	}
	cfg := metadata.Resolve(metadata.OpRead, opts.Mode, opts.Flags, md)

	if opts.Mode.IsForce() && !opts.Silent {
		proceed, err := r.confirmForce()
		if err != nil {
			return err
		}
		if !proceed {
			return ErrAborted
		}
	}

	if opts.Mode.IsAppend() && opts.Ignore && !fileutil.Exists(r.ignorePath) {
		return fmt.Errorf("`%s` file does not exist; run `purge --create-ignore` first", metadata.IgnoreFile)
	}

	if err := r.unpackArchive(); err != nil {
		return err
	}

	var hashes []metadata.Hash
	if md != nil {
		hashes = md.Hashes
	}

	updated, err := r.text.Read(textengine.ReadRequest{
		Request: r.request(cfg, title),
		Hashes:  hashes,
		Ignore:  opts.Ignore,
	})
	if err != nil {
		return err
	}

	return metadata.Save(r.metadataPath, metadata.Metadata{
		Romanize:                cfg.Romanize,
		DisableCustomProcessing: cfg.DisableCustomProcessing,
		Trim:                    cfg.Trim,
		DuplicateMode:           cfg.DuplicateMode,
		Hashes:                  updated,
	})
}

// Write rebuilds translated game files under `<output>/output`.
func (r *Runner) Write(flags metadata.Flags) error {
	if !fileutil.DirExists(r.translationPath) {
		return errors.New("`translation` directory does not exist")
	}

	md, err := metadata.Load(r.metadataPath)
	if err != nil {
		return err
	}
	cfg := metadata.Resolve(metadata.OpWrite, gamedata.ReadDefault, flags, md)

	title, err := r.gameTitle()
	if err != nil {
		return err
	}

	return r.text.Write(textengine.WriteRequest{
		Request:   r.request(cfg, title),
		OutputDir: filepath.Join(r.outputDir, "output"),
	})
}

// PurgeOptions parameterizes Purge.
type PurgeOptions struct {
	Flags        metadata.Flags
	CreateIgnore bool
}

// Purge removes stale and untranslated lines from the translation files.
func (r *Runner) Purge(opts PurgeOptions) error {
	if !fileutil.DirExists(r.translationPath) {
		return errors.New("`translation` directory does not exist")
	}

	md, err := metadata.Load(r.metadataPath)
	if err != nil {
		return err
	}
	cfg := metadata.Resolve(metadata.OpPurge, gamedata.ReadDefault, opts.Flags, md)

	title, err := r.gameTitle()
	if err != nil {
		return err
	}

	return r.text.Purge(textengine.PurgeRequest{
		Request:      r.request(cfg, title),
		CreateIgnore: opts.CreateIgnore,
	})
}

// JSONGenerate fills the `json` directory with representations of the
// legacy source files.
func (r *Runner) JSONGenerate(force bool) error {
	return jsonrep.Generate(r.res.SourceDir, r.jsonDir, r.res.Type, force)
}

// JSONWrite encodes the `json` representations back into native data files
// under `json-output`.
func (r *Runner) JSONWrite() error {
	return jsonrep.Write(r.jsonDir, filepath.Join(r.inputDir, "json-output"), r.res.Type)
}

func (r *Runner) request(cfg metadata.RunConfiguration, title string) textengine.Request {
	return textengine.Request{
		SourceDir:      r.res.SourceDir,
		TranslationDir: r.translationPath,
		JSONDir:        r.jsonDir,
		Engine:         r.res.Type,
		GameType:       game.Classify(title, cfg.DisableCustomProcessing),
		Config:         cfg,
	}
}

func (r *Runner) gameTitle() (string, error) {
	title, err := game.Title(r.res, r.iniPath)
	if err != nil {
		return "", fmt.Errorf("resolve game title: %w", err)
	}
	return title, nil
}

// confirmForce blocks on one line of input and reports whether the run may
// proceed. Time spent waiting is excluded from the reported elapsed time.
func (r *Runner) confirmForce() (bool, error) {
	waitStart := time.Now()
	defer func() { r.excluded += time.Since(waitStart) }()

	fmt.Fprintln(r.stdout, "WARNING! Force mode will forcefully rewrite all your translation files. Input 'Y' to continue.")

	reader := bufio.NewReader(r.stdin)
	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return false, err
	}
	for len(input) > 0 && (input[len(input)-1] == '\n' || input[len(input)-1] == '\r') {
		input = input[:len(input)-1]
	}
	return input == confirmation, nil
}

// unpackArchive materializes a packed RGSS archive under the input
// directory. It runs once: as soon as the system descriptor exists the
// step is skipped.
func (r *Runner) unpackArchive() error {
	if r.res.ArchivePath == "" || !fileutil.Exists(r.res.ArchivePath) || fileutil.Exists(r.res.SystemFile) {
		return nil
	}

	data, err := os.ReadFile(r.res.ArchivePath)
	if err != nil {
		return err
	}
	files, err := r.decryptArchive(data)
	if err != nil {
		return fmt.Errorf("decrypt archive %s: %w", r.res.ArchivePath, err)
	}

	for _, file := range files {
		outPath := filepath.Join(r.inputDir, filepath.FromSlash(file.Path))
		if err := fileutil.WriteFileDirs(outPath, file.Data); err != nil {
			return err
		}
	}

	r.log.Info("archive unpacked",
		logging.String("archive", r.res.ArchivePath),
		logging.Int("files", len(files)))
	return nil
}

