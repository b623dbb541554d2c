package handlers

import (
	"taskboard/domain/services"
)

// Services contains all the services needed for handlers
type Services struct {
	TaskService     services.TaskService
	TimeGateService services.TimeGateService
	ServiceName     string
	HealthProbes    []HealthProbe
}

// Handlers contains all HTTP handlers
type Handlers struct {
	TaskHandler   *TaskHandler
	HealthHandler *HealthHandler
}

func NewHandlers(services *Services) *Handlers {
	return &Handlers{
		TaskHandler:   NewTaskHandler(services.TaskService, services.TimeGateService),
		HealthHandler: NewHealthHandler(services.ServiceName, services.HealthProbes),
	}
}
