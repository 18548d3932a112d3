package container

import (
	app "xray-insights/internal/application"
	"xray-insights/internal/domain/port"
)

type Container struct {
	ScanService *app.ScanService
	Previewer   port.Previewer
}

func New(sessionRepo port.SessionRepository, analyzer port.Analyzer, previewer port.Previewer) *Container {
	return &Container{
		ScanService: app.NewScanService(sessionRepo, analyzer),
		Previewer:   previewer,
	}
}
