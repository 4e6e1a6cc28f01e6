package app

import (
	"context"

	"github.com/dshills/goto/internal/storage"
)

// EmbedderInfo describes the active embedding provider
type EmbedderInfo struct {
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
	Dimension int    `json:"dimension,omitempty"`
	Error     string `json:"error,omitempty"`
}

// StatusReport combines repository statistics with embedder details
type StatusReport struct {
	Storage      *storage.Status
	Embedder     EmbedderInfo
	DatabasePath string
	ConfigPath   string
}

// Status reports repository and embedder state
func (a *App) Status(ctx context.Context) (*StatusReport, error) {
	st, err := a.Store.Status(ctx)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{
		Storage:      st,
		DatabasePath: a.DBPath,
		ConfigPath:   a.ConfigPath,
	}
	if a.Embedder != nil {
		report.Embedder = EmbedderInfo{
			Provider:  a.Embedder.Provider(),
			Model:     a.Embedder.Model(),
			Dimension: a.Embedder.Dimension(),
		}
	} else if a.EmbedderErr != nil {
		report.Embedder.Error = a.EmbedderErr.Error()
	}
	return report, nil
}
