package tracker

import (
	"context"
	"sync/atomic"

	"github.com/jonwraymond/dashcache/cache"
	"github.com/jonwraymond/dashcache/datasource"
	"github.com/jonwraymond/dashcache/observe"
	"github.com/jonwraymond/dashcache/resilience"
)

// DefaultCallRate is the accessor calls per second above which a warning is
// logged.
const DefaultCallRate = 20

// DefaultFanout bounds concurrent source reads in LoadAll.
const DefaultFanout = 8

// Service serves dashboard reads through the cache.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: source errors are returned unchanged; nothing is cached and the
//     surface is not touched on failure.
//   - Ownership: returned slices are shared with the cache and the surface
//     and must not be modified.
type Service struct {
	rt      *cache.ReadThrough
	src     datasource.Source
	surface *Surface
	logger  observe.Logger

	rate       *resilience.RateLimiter
	rateWarned atomic.Bool
	fanout     int
}

// Option configures a Service.
type Option func(*Service)

// WithSurface publishes into s instead of a fresh Surface.
func WithSurface(s *Surface) Option {
	return func(svc *Service) {
		if s != nil {
			svc.surface = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}

// WithCallRateWarning sets the calls per second above which a warning is
// logged. Zero or less disables the warning.
func WithCallRateWarning(perSecond int) Option {
	return func(svc *Service) {
		if perSecond <= 0 {
			svc.rate = nil
			return
		}
		svc.rate = resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:  float64(perSecond),
			Burst: perSecond,
		})
	}
}

// WithCallRateLimiter uses rl to detect bursts of accessor calls.
// Calls are never rejected; a denial only logs a warning.
func WithCallRateLimiter(rl *resilience.RateLimiter) Option {
	return func(svc *Service) { svc.rate = rl }
}

// WithFanout bounds concurrent source reads in LoadAll.
func WithFanout(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.fanout = n
		}
	}
}

// NewService creates a Service reading src through rt.
func NewService(rt *cache.ReadThrough, src datasource.Source, opts ...Option) (*Service, error) {
	if rt == nil {
		return nil, ErrNilReadThrough
	}
	if src == nil {
		return nil, ErrNilSource
	}

	svc := &Service{
		rt:      rt,
		src:     src,
		surface: NewSurface(),
		logger:  observe.NopLogger(),
		fanout:  DefaultFanout,
	}
	WithCallRateWarning(DefaultCallRate)(svc)
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Surface returns the surface the service publishes to.
func (s *Service) Surface() *Surface {
	return s.surface
}

// Engine returns the cache engine behind the service.
func (s *Service) Engine() *cache.Engine {
	return s.rt.Engine()
}

// Projects returns every project in store order.
func (s *Service) Projects(ctx context.Context, force bool) ([]Project, error) {
	return read(ctx, s, ProjectsKey(), force,
		func(ctx context.Context) ([]Project, error) {
			docs, err := s.src.Query(ctx, CollectionProjects)
			if err != nil {
				return nil, err
			}
			return mapDocuments(docs, projectFromDocument), nil
		},
		func(v []Project) { s.surface.Projects.Publish("", v) },
	)
}

// Project returns one project. A missing project yields the source's
// not-found error.
func (s *Service) Project(ctx context.Context, id string, force bool) (Project, error) {
	if id == "" {
		return Project{}, ErrEmptyID
	}
	return read(ctx, s, ProjectKey(id), force,
		func(ctx context.Context) (Project, error) {
			doc, err := s.src.Lookup(ctx, CollectionProjects, id)
			if err != nil {
				return Project{}, err
			}
			return projectFromDocument(doc), nil
		},
		func(v Project) { s.surface.Project.Publish(id, v) },
	)
}

// TasksForProject returns the tasks whose projectId is projectID.
func (s *Service) TasksForProject(ctx context.Context, projectID string, force bool) ([]Task, error) {
	if projectID == "" {
		return nil, ErrEmptyID
	}
	return read(ctx, s, TasksKey(projectID), force,
		func(ctx context.Context) ([]Task, error) {
			docs, err := s.src.Query(ctx, CollectionTasks, datasource.Eq("projectId", projectID))
			if err != nil {
				return nil, err
			}
			return mapDocuments(docs, taskFromDocument), nil
		},
		func(v []Task) { s.surface.Tasks.Publish(projectID, v) },
	)
}

// SubtasksForTask returns the subtasks whose taskId is taskID.
func (s *Service) SubtasksForTask(ctx context.Context, taskID string, force bool) ([]Subtask, error) {
	if taskID == "" {
		return nil, ErrEmptyID
	}
	return read(ctx, s, SubtasksKey(taskID), force,
		func(ctx context.Context) ([]Subtask, error) {
			docs, err := s.src.Query(ctx, CollectionSubtasks, datasource.Eq("taskId", taskID))
			if err != nil {
				return nil, err
			}
			return mapDocuments(docs, subtaskFromDocument), nil
		},
		func(v []Subtask) { s.surface.Subtasks.Publish(taskID, v) },
	)
}

// Users returns every user in store order.
func (s *Service) Users(ctx context.Context, force bool) ([]User, error) {
	return read(ctx, s, UsersKey(), force,
		func(ctx context.Context) ([]User, error) {
			docs, err := s.src.Query(ctx, CollectionUsers)
			if err != nil {
				return nil, err
			}
			return mapDocuments(docs, userFromDocument), nil
		},
		func(v []User) { s.surface.Users.Publish("", v) },
	)
}

// RelateWorks returns the related-work options of an activity, sorted by
// label. An activity without a record has no options.
func (s *Service) RelateWorks(ctx context.Context, activityName string, force bool) ([]RelateWork, error) {
	if activityName == "" {
		return nil, ErrEmptyID
	}
	return read(ctx, s, RelateWorksKey(activityName), force,
		func(ctx context.Context) ([]RelateWork, error) {
			docs, err := s.src.Query(ctx, CollectionRelateWorks, datasource.Eq("activityName", activityName))
			if err != nil {
				return nil, err
			}
			return relateWorksFromDocuments(docs), nil
		},
		func(v []RelateWork) { s.surface.RelateWorks.Publish(activityName, v) },
	)
}

// read runs one accessor call: rate check, cache-aside fetch, logging and
// publication.
func read[T any](ctx context.Context, s *Service, key string, force bool, load cache.LoadFunc[T], publish func(T)) (T, error) {
	s.noteCall(ctx, key)

	value, hit, err := cache.Fetch(ctx, s.rt, cache.Request{Key: key, Force: force}, load)
	if err != nil {
		s.logger.Warn(ctx, "source read failed",
			observe.F("key", key),
			observe.F("force", force),
			observe.F("error", err),
		)
		return value, err
	}
	if !hit {
		s.logger.Debug(ctx, "cache miss", observe.F("key", key), observe.F("force", force))
	}

	publish(value)
	return value, nil
}

// noteCall logs one warning per burst of calls above the configured rate.
func (s *Service) noteCall(ctx context.Context, key string) {
	if s.rate == nil {
		return
	}
	if s.rate.Allow() {
		s.rateWarned.Store(false)
		return
	}
	if s.rateWarned.CompareAndSwap(false, true) {
		s.logger.Warn(ctx, "accessor call rate exceeded",
			observe.F("key", key),
			observe.F("denied_total", s.rate.Denied()),
		)
	}
}
