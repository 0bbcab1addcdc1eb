package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"vizchat/agent"
	"vizchat/config"
	"vizchat/database"
	"vizchat/export"
	"vizchat/logger"
)

// App wires configuration, storage, capabilities and the chat session together.
type App struct {
	ctx     context.Context
	cfg     config.Config
	logger  *logger.Logger
	store   *database.EnsembleStore
	tracker *agent.ErrorTracker
	session *agent.Session
	dataDir string
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{logger: logger.NewLogger()}
}

// Startup loads config, opens storage and builds the chat session.
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx

	dir, err := config.ConfigDir()
	if err != nil {
		return WrapError("App", "Startup", err)
	}
	cfg, err := config.Load(filepath.Join(dir, "config.json"))
	if err != nil {
		return WrapError("App", "Startup", err)
	}
	a.cfg = cfg

	a.dataDir = cfg.DataCacheDir
	if a.dataDir == "" {
		a.dataDir = filepath.Join(dir, "data")
	}
	if err := os.MkdirAll(a.dataDir, 0755); err != nil {
		return WrapError("App", "Startup", err)
	}

	logDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return WrapError("App", "Startup", err)
	}
	if err := a.logger.Init(logDir); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
	}
	logFunc := a.logger.Log

	store, err := database.NewEnsembleStore(filepath.Join(a.dataDir, "vizchat.db"), logFunc)
	if err != nil {
		return WrapError("App", "Startup", err)
	}
	a.store = store

	state := agent.NewConversationState()
	a.tracker = agent.NewErrorTracker(logFunc)

	snapshot := func() agent.ReportSnapshot {
		return agent.ReportSnapshot{
			Data:          state.CurrentData,
			Statistics:    state.Statistics,
			LastViz:       state.LastVizInvocation,
			ArtifactCount: len(state.Artifacts),
		}
	}
	reports := func() map[string]string { return state.Reports }

	dataReg, err := agent.NewRegistry(ctx, agent.ClassData, logFunc,
		agent.NewGenerateEnsembleTool(store, logFunc),
		agent.NewLoadFileTool(store, logFunc))
	if err != nil {
		return WrapError("App", "Startup", err)
	}
	vizReg, err := agent.NewRegistry(ctx, agent.ClassVisualization, logFunc,
		agent.NewFunctionalBoxplotTool(store, logFunc),
		agent.NewContourBoxplotTool(store, logFunc))
	if err != nil {
		return WrapError("App", "Startup", err)
	}
	statsReg, err := agent.NewRegistry(ctx, agent.ClassStatistics, logFunc,
		agent.NewBandDepthTool(store, logFunc))
	if err != nil {
		return WrapError("App", "Startup", err)
	}
	reportReg, err := agent.NewRegistry(ctx, agent.ClassReport, logFunc,
		agent.NewReportTool(snapshot, logFunc),
		agent.NewPDFReportTool(export.NewPDFExportService(), reports, a.dataDir, logFunc))
	if err != nil {
		return WrapError("App", "Startup", err)
	}

	caps := &agent.Capabilities{
		Data:          dataReg,
		Visualization: vizReg,
		Statistics:    statsReg,
		Report:        reportReg,
	}

	chatModel, err := agent.NewChatModel(ctx, cfg)
	if err != nil {
		return WrapError("App", "Startup", err)
	}

	session, err := agent.NewSession(chatModel, caps, state, a.tracker, logFunc)
	if err != nil {
		return WrapError("App", "Startup", err)
	}
	a.session = session

	a.logger.Logf("[APP] session %s started, model %s", session.ID, cfg.ModelName)
	return nil
}

// Chat sends one user utterance through the session and returns the reply.
func (a *App) Chat(ctx context.Context, utterance string) (string, error) {
	if a.session == nil {
		return "", WrapError("App", "Chat", fmt.Errorf("session not started"))
	}
	reply, err := a.session.Send(ctx, utterance)
	if err != nil {
		return "", WrapError("App", "Chat", err)
	}
	return reply, nil
}

// Shutdown flushes the error snapshot and closes storage and logs.
func (a *App) Shutdown() {
	if a.tracker != nil {
		if err := a.tracker.SaveSnapshot(filepath.Join(a.dataDir, "errors.json")); err != nil {
			a.logger.Logf("[APP] error snapshot save failed: %v", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Logf("[APP] store close failed: %v", err)
		}
	}
	a.logger.Close()
}
