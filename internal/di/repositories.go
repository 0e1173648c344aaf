package di

import (
	"github.com/rs/zerolog"

	"github.com/aristath/stockscorer/internal/clientdata"
	"github.com/aristath/stockscorer/internal/modules/projects"
)

// InitializeRepositories creates the repositories over the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) {
	container.ProjectRepo = projects.NewRepository(container.AppDB.Conn(), log)
	container.OracleCache = clientdata.NewRepository(container.CacheDB.Conn())
}
