package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"aihr-backend/internal/candidates"
	"aihr-backend/internal/health"
	"aihr-backend/internal/interviews"
	"aihr-backend/internal/llm"
	"aihr-backend/internal/llm/gemini"
	"aihr-backend/internal/llm/openai"
	"aihr-backend/internal/notify"
	"aihr-backend/internal/prompts"
	"aihr-backend/internal/rooms"
	"aihr-backend/internal/rooms/livekit"
	"aihr-backend/internal/sheets"
	googlesheets "aihr-backend/internal/sheets/google"
	"aihr-backend/internal/shared/config"
	"aihr-backend/internal/shared/lock"
	"aihr-backend/internal/shared/server"
	"aihr-backend/internal/shared/storage/db"
	"aihr-backend/internal/shared/storage/object"
	localstore "aihr-backend/internal/shared/storage/object/local"
	s3store "aihr-backend/internal/shared/storage/object/s3"
	"aihr-backend/internal/shared/telemetry"
	"aihr-backend/internal/shared/upstream"
	"aihr-backend/internal/speech"
	"aihr-backend/internal/speech/deepgram"
	"aihr-backend/internal/speech/elevenlabs"
)

const lockTTL = 5 * time.Minute

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ClipStore
	Locker lock.Locker

	CandidatesRepo    candidates.Repo
	InterviewsRepo    interviews.Repo
	CandidatesService *candidates.Service
	InterviewsService *interviews.Service
	SpeechService     *speech.Service
	RoomsService      *rooms.Service

	closers []func() error
}

// Option overrides a provider adapter, mainly for tests.
type Option func(*providers)

type providers struct {
	db          *sql.DB
	dbRole      db.Role
	store       object.ClipStore
	llm         llm.Client
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	exporter    sheets.Exporter
	notifier    notify.Notifier
	rooms       rooms.Provider
	background  func(fn func())
	now         func() time.Time
}

// WithDB uses an already opened database instead of DATABASE_URL.
func WithDB(d *sql.DB) Option { return func(p *providers) { p.db = d } }

// WithDBRole picks pool defaults for the process opening DATABASE_URL.
func WithDBRole(role db.Role) Option { return func(p *providers) { p.dbRole = role } }

// WithStore overrides the object store.
func WithStore(s object.ClipStore) Option { return func(p *providers) { p.store = s } }

// WithLLM overrides the language model client.
func WithLLM(c llm.Client) Option { return func(p *providers) { p.llm = c } }

// WithTranscriber overrides the speech-to-text provider.
func WithTranscriber(t speech.Transcriber) Option { return func(p *providers) { p.transcriber = t } }

// WithSynthesizer overrides the text-to-speech provider.
func WithSynthesizer(s speech.Synthesizer) Option { return func(p *providers) { p.synthesizer = s } }

// WithExporter overrides the spreadsheet exporter.
func WithExporter(e sheets.Exporter) Option { return func(p *providers) { p.exporter = e } }

// WithNotifier overrides the invitation sender.
func WithNotifier(n notify.Notifier) Option { return func(p *providers) { p.notifier = n } }

// WithRoomProvider overrides the video room provider.
func WithRoomProvider(r rooms.Provider) Option { return func(p *providers) { p.rooms = r } }

// WithBackground controls how registration side effects are run.
func WithBackground(fn func(func())) Option { return func(p *providers) { p.background = fn } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(p *providers) { p.now = now } }

// Build prepares shared dependencies and the router.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	var p providers
	for _, opt := range opts {
		opt(&p)
	}
	ctx := context.Background()

	app := &App{Config: cfg}

	sqlDB := p.db
	if sqlDB == nil {
		var err error
		sqlDB, err = buildDB(ctx, cfg, p.dbRole)
		if err != nil {
			return nil, err
		}
		if sqlDB != nil {
			app.closers = append(app.closers, sqlDB.Close)
		}
	}
	app.DB = sqlDB

	store := p.store
	if store == nil {
		var err error
		store, err = buildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	app.Store = store

	locker, err := buildLocker(ctx, cfg, app)
	if err != nil {
		return nil, err
	}
	app.Locker = locker

	if p.llm == nil {
		p.llm, err = buildLLM(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}
	if p.transcriber == nil {
		p.transcriber = deepgram.New(cfg.DeepgramAPIKey, cfg.DeepgramLanguage, cfg.DeepgramModel)
	}
	if p.synthesizer == nil {
		p.synthesizer = elevenlabs.New(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID)
	}
	if p.exporter == nil {
		p.exporter = googlesheets.New(cfg.SheetsCredentials, cfg.SheetsSpreadsheetID)
	}
	if p.notifier == nil {
		p.notifier = notify.NewSMTP(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		})
	}
	if p.rooms == nil {
		p.rooms = livekit.New(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret)
	}

	if err := buildServices(app, p); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           cfg,
		HealthHandler:    health.NewHandler(health.NewService(pinger(app.DB))),
		CandidateHandler: candidates.NewHandler(app.CandidatesService),
		InterviewHandler: interviews.NewHandler(app.InterviewsService),
		SpeechHandler:    speech.NewHandler(app.SpeechService),
		RoomHandler:      rooms.NewHandler(app.RoomsService),
	})

	return app, nil
}

// Close releases the database and Redis connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config, role db.Role) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_mode", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if role == "" {
		role = db.RoleServer
	}
	role = db.DetectRole(role)
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.ForRole(role))
	// Lambda deployments migrate out of band with cmd/migrate.
	if err == nil && role != db.RoleLambda {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			sqlDB.Close()
		}
	}
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_mode", map[string]any{"reason": "database unavailable", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ClipStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildLocker(ctx context.Context, cfg config.Config, app *App) (lock.Locker, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return lock.NewKeyedMutex(), nil
	}
	locker, err := lock.NewRedisLockerFromURL(ctx, cfg.RedisURL, lockTTL)
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"error": err})
			return lock.NewKeyedMutex(), nil
		}
		return nil, err
	}
	app.closers = append(app.closers, locker.Close)
	return locker, nil
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	var (
		client llm.Client
		err    error
	)
	switch cfg.LLMProvider {
	case "gemini":
		client, err = gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		timeout := time.Duration(cfg.OpenAITimeoutSeconds) * time.Second
		client, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, timeout)
	}
	var cfgErr *upstream.ConfigError
	if errors.As(err, &cfgErr) {
		telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"provider": cfgErr.Provider, "missing": cfgErr.Missing})
		return llm.Unconfigured{Provider: cfgErr.Provider, Missing: cfgErr.Missing}, nil
	}
	if err != nil {
		return nil, err
	}
	return client, nil
}

func buildServices(app *App, p providers) error {
	if app.DB != nil {
		app.CandidatesRepo = &candidates.PGRepo{DB: app.DB}
		app.InterviewsRepo = &interviews.PGRepo{DB: app.DB}
	} else {
		app.CandidatesRepo = candidates.NewMemoryRepo()
		app.InterviewsRepo = interviews.NewMemoryRepo()
	}

	promptManager, err := prompts.NewManager()
	if err != nil {
		return fmt.Errorf("load prompts: %w", err)
	}

	app.CandidatesService = &candidates.Service{
		Repo:            app.CandidatesRepo,
		Notifier:        p.notifier,
		Exporter:        p.exporter,
		Interviews:      app.InterviewsRepo,
		FrontendBaseURL: app.Config.FrontendBaseURL,
		Go:              p.background,
		Now:             p.now,
	}
	app.InterviewsService = &interviews.Service{
		Repo:             app.InterviewsRepo,
		Candidates:       app.CandidatesService,
		Transcriber:      p.transcriber,
		LLM:              p.llm,
		Prompts:          promptManager,
		Exporter:         p.exporter,
		Locker:           app.Locker,
		AutoNextQuestion: app.Config.AutoNextQuestion,
		Now:              p.now,
	}
	app.SpeechService = &speech.Service{
		Transcriber: p.transcriber,
		Synthesizer: p.synthesizer,
		Store:       app.Store,
	}
	app.RoomsService = &rooms.Service{
		Provider:   p.rooms,
		Candidates: app.CandidatesService,
	}
	return nil
}

// pinger avoids handing health a typed-nil *sql.DB.
func pinger(d *sql.DB) health.Pinger {
	if d == nil {
		return nil
	}
	return d
}
