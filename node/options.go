package node

import (
	"net/http"

	"github.com/Deivu/Anchorage/logging"
	"github.com/Deivu/Anchorage/model"
)

// Descriptor is a node's static identity and dial target.
type Descriptor struct {
	Name   string
	Host   string
	Port   uint16
	Auth   string
	UserID uint64
}

// ManagerOptions configures a Manager at construction time.
type ManagerOptions struct {
	Descriptor     Descriptor
	UserAgent      string
	ReconnectTries int
	HTTPClient     *http.Client
	Logger         logging.Logger
}

// Snapshot is the point-in-time view of a node's runtime state returned
// by GetData / Handle.Data.
type Snapshot struct {
	Name       string
	Auth       string
	UserID     uint64
	URL        string
	Penalty    float64
	Statistics *model.Stats
}
