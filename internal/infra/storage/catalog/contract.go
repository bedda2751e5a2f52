package catalog

import "github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"

// DBExecutor интерфейс выполнения запросов (*dbmetrics.DB или транзакция)
type DBExecutor = dbmetrics.DBExecutor
