// Command cardlingo translates SillyTavern character cards and presets.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tavernkit/cardlingo"
	"github.com/tavernkit/cardlingo/backend"
	"github.com/tavernkit/cardlingo/cache"
	"github.com/tavernkit/cardlingo/card"
	"github.com/tavernkit/cardlingo/watch"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = cardlingo.Version
	commit    = cardlingo.GitCommit
	buildDate = cardlingo.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cardlingo", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Flags
	targetLang := fs.String("lang", "", "Target language code (e.g., pt, es, ja)")
	sourceLang := fs.String("source", "", "Source language code (default: auto-detect)")
	backendName := fs.String("backend", "", "Translation backend: google, mymemory, openai")
	apiKey := fs.String("api-key", "", "OpenAI API key (default: OPENAI_API_KEY env)")
	model := fs.String("model", "gpt-4o-mini", "OpenAI model to use")
	output := fs.String("output", "", "Output file (default: stdout)")
	outputShort := fs.String("o", "", "Output file (short for --output)")
	preset := fs.Bool("preset", false, "Input is a SillyTavern preset JSON")
	translateName := fs.Bool("translate-name", false, "Translate the character name field")
	noStandin := fs.Bool("no-standin", false, "Keep the character's real name during translation instead of a stand-in")
	angle := fs.Bool("angle", false, "Translate text inside angle brackets")
	noParens := fs.Bool("no-parens", false, "Copy parenthesized text verbatim")
	noBrackets := fs.Bool("no-brackets", false, "Copy bracketed text verbatim")
	cacheTTL := fs.Int("cache-ttl", 0, "Cache TTL in seconds (0 = no expiry)")
	redisURL := fs.String("redis", "", "Redis URL for a shared cache (default: in-memory)")
	cacheImport := fs.String("cache-import", "", "Load cache entries from a JSON snapshot before translating")
	cacheExport := fs.String("cache-export", "", "Write cache entries to a JSON snapshot when done")
	rpm := fs.Int("rpm", 0, "Rate limit in requests per minute (0 = unlimited)")
	settingsPath := fs.String("settings", "translation_settings.json", "Settings file")
	watchMode := fs.Bool("watch", false, "Watch the characters directory and translate new cards")
	watchDir := fs.String("dir", "", "Characters directory for --watch")
	backupDir := fs.String("backup-dir", "", "Where --watch moves originals (default: <dir>/original)")
	dbPath := fs.String("db", "", "Tracking database for --watch (default: <dir>/translation_db.json)")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	showVersion := fs.Bool("version", false, "Show version")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", cardlingo.Name, version)
		if commit != "unknown" && commit != "" {
			fmt.Fprintf(stdout, "  commit:  %s\n", commit)
		}
		if buildDate != "unknown" && buildDate != "" {
			fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
		}
		return nil
	}

	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	settings, err := loadSettings(*settingsPath)
	if err != nil {
		return err
	}
	if *targetLang != "" {
		settings.TargetLanguage = *targetLang
	}
	if *sourceLang != "" {
		settings.SourceLanguage = *sourceLang
	}
	if *backendName != "" {
		settings.Backend = *backendName
	}
	if *watchDir != "" {
		settings.CharactersDir = *watchDir
	}
	if *translateName {
		settings.TranslateName = true
	}
	if *noStandin {
		settings.UseStandinName = false
	}
	if *angle {
		settings.TranslateAngle = true
	}
	if *cacheTTL != 0 {
		settings.CacheTTL = *cacheTTL
	}
	if *redisURL != "" {
		settings.RedisURL = *redisURL
	}

	if !cardlingo.IsSupported(settings.TargetLanguage) {
		fs.Usage()
		return fmt.Errorf("--lang is required and must be a supported language code")
	}

	be, err := buildBackend(settings, *apiKey, *model, *rpm)
	if err != nil {
		return err
	}

	store, err := buildCache(settings)
	if err != nil {
		return err
	}

	if *cacheImport != "" {
		result, err := cache.NewImporter(store).ImportFromFile(*cacheImport)
		if err != nil {
			return fmt.Errorf("importing cache: %w", err)
		}
		if !*quiet {
			fmt.Fprintf(stderr, "Cache: imported %d entries (%d failed)\n", result.Imported, result.Failed)
		}
	}

	app := &translator{
		settings:   settings,
		backend:    be,
		cache:      store,
		noParens:   *noParens,
		noBrackets: *noBrackets,
	}

	defer func() {
		if *cacheExport != "" {
			if err := cache.NewExporter(store).ExportToFile(*cacheExport, map[string]string{
				"target_language": settings.TargetLanguage,
				"backend":         settings.Backend,
			}); err != nil {
				fmt.Fprintf(stderr, "warning: exporting cache: %v\n", err)
			}
		}
	}()

	if *watchMode {
		return app.runWatch(settings.CharactersDir, *backupDir, *dbPath, stderr)
	}

	return app.runOnce(fs.Args(), *output, *preset, *quiet, stdout, stderr)
}

// translator bundles the pieces a single invocation needs.
type translator struct {
	settings   Settings
	backend    cardlingo.Backend
	cache      cardlingo.TranslationCache
	noParens   bool
	noBrackets bool
}

// pipeline builds a Pipeline for one document. charName may be empty
// for presets.
func (t *translator) pipeline(charName string) (*cardlingo.Pipeline, error) {
	opts := []cardlingo.Option{
		cardlingo.WithCache(t.cache),
		cardlingo.WithCharacterName(charName),
		cardlingo.WithStandinName(t.settings.UseStandinName),
		cardlingo.WithAngleTranslation(t.settings.TranslateAngle),
	}
	if t.settings.SourceLanguage != "" {
		opts = append(opts, cardlingo.WithSourceLang(t.settings.SourceLanguage))
	}
	if t.noParens {
		opts = append(opts, cardlingo.WithParenthesesTranslation(false))
	}
	if t.noBrackets {
		opts = append(opts, cardlingo.WithBracketTranslation(false))
	}
	return cardlingo.NewPipeline(t.settings.TargetLanguage, t.backend, opts...)
}

// runOnce translates a single card or preset from a file or stdin.
func (t *translator) runOnce(args []string, output string, preset, quiet bool, stdout, stderr io.Writer) error {
	var input []byte
	var inputName string
	var err error

	if len(args) == 0 {
		input, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		inputName = "stdin"
	} else {
		inputPath := args[0]
		input, err = os.ReadFile(inputPath) // #nosec G304 - CLI tool reads user-specified files
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		inputName = filepath.Base(inputPath)
	}

	if !quiet {
		fmt.Fprintf(stderr, "Translating %s to %s via %s...\n", inputName, t.settings.TargetLanguage, t.settings.Backend)
	}
	start := time.Now()

	ctx := context.Background()
	var result []byte

	switch {
	case preset:
		result, err = t.translatePreset(ctx, input)
	case strings.EqualFold(filepath.Ext(inputName), ".png"):
		result, err = t.translatePNG(ctx, input)
	default:
		result, err = t.translateCardJSON(ctx, input)
	}
	if err != nil {
		return err
	}

	var out io.Writer = stdout
	if output != "" {
		f, err := os.Create(output) // #nosec G304 - CLI tool writes user-specified files
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if _, err := out.Write(result); err != nil {
		return err
	}

	if !quiet {
		fmt.Fprintf(stderr, "\nDone in %v\n", time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func (t *translator) translatePNG(ctx context.Context, input []byte) ([]byte, error) {
	data, err := card.ExtractChara(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}

	translated, err := t.translateCard(ctx, data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := card.EmbedChara(bytes.NewReader(input), &buf, translated); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *translator) translateCardJSON(ctx context.Context, input []byte) ([]byte, error) {
	var data map[string]any
	if err := json.Unmarshal(input, &data); err != nil {
		return nil, fmt.Errorf("parsing card JSON: %w", err)
	}

	translated, err := t.translateCard(ctx, data)
	if err != nil {
		return nil, err
	}

	return json.MarshalIndent(translated, "", "  ")
}

func (t *translator) translateCard(ctx context.Context, data map[string]any) (map[string]any, error) {
	translated, err := card.DeepCopy(data)
	if err != nil {
		return nil, err
	}

	p, err := t.pipeline(card.CharacterName(data))
	if err != nil {
		return nil, err
	}

	if err := card.Translate(ctx, translated, p, t.settings.TranslateName); err != nil {
		return nil, err
	}
	return translated, nil
}

func (t *translator) translatePreset(ctx context.Context, input []byte) ([]byte, error) {
	var data any
	if err := json.Unmarshal(input, &data); err != nil {
		return nil, fmt.Errorf("parsing preset JSON: %w", err)
	}

	p, err := t.pipeline("")
	if err != nil {
		return nil, err
	}

	if err := card.TranslatePreset(ctx, data, p); err != nil {
		return nil, err
	}

	return json.MarshalIndent(data, "", "  ")
}

// runWatch monitors the characters directory until interrupted.
func (t *translator) runWatch(dir, backupDir, dbPath string, stderr io.Writer) error {
	if dir == "" {
		return fmt.Errorf("--dir (or characters_dir in settings) is required for --watch")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	w, err := watch.New(watch.Config{
		Dir:       dir,
		BackupDir: backupDir,
		DBPath:    dbPath,
		Logger:    logger,
		Process:   t.processFile,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	fmt.Fprintln(stderr, "stopped")
	return nil
}

// processFile translates the card PNG at src and writes the result to dst.
func (t *translator) processFile(ctx context.Context, src, dst string) error {
	in, err := os.Open(src) // #nosec G304 - path comes from the watched directory
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := card.ExtractChara(in)
	if err != nil {
		return err
	}

	translated, err := t.translateCard(ctx, data)
	if err != nil {
		return err
	}

	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return err
	}

	out, err := os.Create(dst) // #nosec G304 - path comes from the watched directory
	if err != nil {
		return err
	}
	if err := card.EmbedChara(in, out, translated); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// buildBackend constructs the selected backend, wrapped with retry and
// an optional rate limit.
func buildBackend(s Settings, apiKey, model string, rpm int) (cardlingo.Backend, error) {
	var be cardlingo.Backend

	switch s.Backend {
	case "google", "":
		be = backend.NewGoogleBackend(backend.GoogleConfig{})
	case "mymemory":
		be = backend.NewMyMemoryBackend(backend.MyMemoryConfig{})
	case "openai":
		key := apiKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("OpenAI API key required (--api-key or OPENAI_API_KEY env)")
		}
		be = backend.NewOpenAIBackend(backend.OpenAIConfig{
			APIKey: key,
			Model:  model,
		})
	default:
		return nil, fmt.Errorf("unknown backend %q (want google, mymemory, or openai)", s.Backend)
	}

	be = cardlingo.NewRetryableBackend(be, cardlingo.DefaultRetryConfig())
	if rpm > 0 {
		be = cardlingo.NewRateLimitedBackend(be, cardlingo.RateLimitConfig{RequestsPerMinute: rpm})
	}
	return be, nil
}

// buildCache constructs the translation cache.
func buildCache(s Settings) (cardlingo.TranslationCache, error) {
	if s.RedisURL != "" {
		store, err := cache.NewRedis(cache.RedisConfig{URL: s.RedisURL, TTL: s.CacheTTL})
		if err != nil {
			return nil, fmt.Errorf("connecting to Redis: %w", err)
		}
		return store, nil
	}
	return cache.NewMemory(s.CacheTTL), nil
}
