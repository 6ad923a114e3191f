package health_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/dashcache/cache"
	"github.com/jonwraymond/dashcache/datasource"
	"github.com/jonwraymond/dashcache/health"
)

func ExampleAggregator() {
	engine, _ := cache.New(cache.Config{TTL: time.Minute, MaxSize: 1})
	engine.Set("projects|", []string{"P1"}, 0)

	agg := health.NewAggregator()
	agg.Register("cache", health.NewCacheChecker(engine))
	agg.Register("store", health.NewPingChecker("store", datasource.NewMemorySource()))

	results := agg.CheckAll(context.Background())
	fmt.Println("cache:", results["cache"].Status)
	fmt.Println("store:", results["store"].Status)
	fmt.Println("overall:", agg.OverallStatus(results))
	// Output:
	// cache: degraded
	// store: healthy
	// overall: degraded
}
