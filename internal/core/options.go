// Package core implements the durable application-state layer: slices written through to
// a backend, identifier-keyed entity stores over them, the active business selection,
// the business aggregate accessor and notification fan-out, all owned by a Workspace.
package core

import (
	"bizstate/internal/durable"
	"io"

	"github.com/sirupsen/logrus"
)

// Options carries the collaborators shared by every slice and store.
type Options struct {
	Logger  logrus.FieldLogger
	Metrics *durable.Metrics
}

func (o Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
