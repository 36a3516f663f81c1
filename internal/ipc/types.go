package ipc

import (
	"github.com/matjam/inkyslide/internal/types"
)

// ManagerInterface is what the control socket needs from the render loop.
type ManagerInterface interface {
	Status() types.Status
	EnqueueCommand(types.Command)
}

type StatusResponse struct {
	Status    string       `json:"status"`
	Message   string       `json:"message"`
	Version   string       `json:"version"`
	PID       int          `json:"pid"`
	Socket    string       `json:"socket"`
	Config    string       `json:"config"`
	Slideshow types.Status `json:"slideshow"`
}

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
