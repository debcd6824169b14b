package main

import (
	"github.com/yule44ka/workflow-agent/internal/docs"
	"github.com/yule44ka/workflow-agent/internal/investigate"
	"github.com/yule44ka/workflow-agent/internal/logging"
	"github.com/yule44ka/workflow-agent/internal/youtrack"
)

// client builds the YouTrack client, failing when credentials are missing.
func (a *app) client() (*youtrack.Client, error) {
	if err := a.cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	return a.cfg.NewClient(
		youtrack.WithLogger(logging.New("youtrack")),
		youtrack.WithUserAgent("workflow-agent/"+version),
	)
}

func (a *app) investigator(c *youtrack.Client) *investigate.Investigator {
	return investigate.New(c,
		investigate.WithLogger(logging.New("investigate")),
		investigate.WithParallel(a.cfg.Parallel),
		investigate.WithRuleSetTimeout(a.cfg.RuleSetTimeout),
		investigate.WithBaseURL(c.BaseURL()),
	)
}

func (a *app) docs() *docs.Registry {
	return docs.Default().WithDir(a.cfg.DocsDir)
}
