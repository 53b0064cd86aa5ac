package httpapi

import (
	"captive-responder-go/internal/acceptance"
	"captive-responder-go/internal/clientid"
	"captive-responder-go/internal/config"
	"captive-responder-go/internal/events"
	"captive-responder-go/internal/metrics"

	"github.com/sirupsen/logrus"
)

type Server struct {
	cfg      *config.Config
	logger   *logrus.Logger
	st       acceptance.Store
	resolver clientid.Resolver
	events   *events.Dispatcher
	metrics  *metrics.Metrics
}

type AcceptReq struct {
	Fingerprint string `json:"fingerprint,omitempty"`
}
