// Package store persists chart documents by id.
//
// [FileStore] keeps one file per chart in a directory and reads JSON, TOML
// and YAML. [MongoStore] keeps one document per chart in a MongoDB
// collection. Both report unknown ids with an error carrying
// errors.ErrCodeNotFound.
package store

import (
	"context"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/errors"
)

// Store is a chart document store.
type Store interface {
	// Get loads the chart stored under id.
	Get(ctx context.Context, id string) (*chart.Chart, error)

	// Put creates or replaces the chart stored under id.
	Put(ctx context.Context, id string, c *chart.Chart) error

	// List describes every stored chart, sorted by id.
	List(ctx context.Context) ([]Info, error)

	// Delete removes id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

// Info summarizes a stored chart.
type Info struct {
	ID           string    `json:"id" bson:"_id"`
	Rows         int       `json:"rows" bson:"rows"`
	Tasks        int       `json:"tasks" bson:"tasks"`
	Dependencies int       `json:"dependencies" bson:"dependencies"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

func infoOf(id string, c *chart.Chart, updated time.Time) Info {
	rows, tasks, deps := c.Stats()
	return Info{ID: id, Rows: rows, Tasks: tasks, Dependencies: deps, UpdatedAt: updated.UTC()}
}

func sortInfos(infos []Info) {
	slices.SortFunc(infos, func(a, b Info) int { return strings.Compare(a.ID, b.ID) })
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "chart %q not found", id)
}

// Option configures a store.
type Option func(*settings)

type settings struct {
	logger *log.Logger
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(o *settings) {
		if l != nil {
			o.logger = l
		}
	}
}

func resolve(opts []Option) settings {
	o := settings{logger: log.NewWithOptions(io.Discard, log.Options{})}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
