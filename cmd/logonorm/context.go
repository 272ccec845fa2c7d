package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"logonorm/internal/catalog"
	"logonorm/internal/config"
	"logonorm/internal/history"
	"logonorm/internal/logging"
	"logonorm/internal/rename"
	"logonorm/internal/resolve"
	"logonorm/internal/services/llm"
	"logonorm/internal/workflow"
	"logonorm/internal/workspace"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) workspace() *workspace.Workspace {
	return workspace.New(c.configValue().Paths.StateDir)
}

func (c *commandContext) openHistory() (*history.Store, error) {
	store, err := history.Open(c.workspace().HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	return store, nil
}

func (c *commandContext) catalogClient() (*catalog.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireCatalogKey(); err != nil {
		return nil, err
	}
	return catalog.New(cfg.Catalog.APIKey, cfg.Catalog.BaseURL,
		catalog.WithTimeout(time.Duration(cfg.Catalog.TimeoutSeconds)*time.Second),
		catalog.WithRequestsPerMinute(cfg.Catalog.RequestsPerMinute),
	)
}

func (c *commandContext) llmClient() (*llm.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireLLMKey(); err != nil {
		return nil, err
	}
	return llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	},
		llm.WithRetryMaxAttempts(cfg.LLM.RetryAttempts),
		llm.WithRequestsPerMinute(cfg.LLM.RequestsPerMinute),
	), nil
}

// newRunner assembles a workflow runner. A nil resolver is fine for undo and
// history; hist may be nil when the journal could not be opened.
func (c *commandContext) newRunner(resolver workflow.Resolver, hist *history.Store) (*workflow.Runner, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return workflow.NewRunner(c.workspace(), resolver, rename.NewExecutor(logger), hist, logger), nil
}

// newPipeline wires the catalog and, unless disabled, the AI matcher.
func (c *commandContext) newPipeline(withAI bool) (*resolve.Pipeline, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	source, err := c.catalogClient()
	if err != nil {
		return nil, err
	}
	var matcher resolve.Matcher
	if withAI {
		client, err := c.llmClient()
		if err != nil {
			return nil, err
		}
		matcher = resolve.NewAIMatcher(client, cfg.Matching.BatchSize, logger)
	}
	return resolve.NewPipeline(cfg.RunConfig(), source, matcher, logger), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
