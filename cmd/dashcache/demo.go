package main

import (
	"github.com/jonwraymond/dashcache/datasource"
	"github.com/jonwraymond/dashcache/tracker"
)

func doc(id string, fields map[string]any) datasource.Document {
	return datasource.Document{ID: id, Fields: fields}
}

// demoSource returns a small construction portfolio.
func demoSource() *datasource.MemorySource {
	src := datasource.NewMemorySource()
	src.Put(tracker.CollectionProjects,
		doc("P1", map[string]any{"name": "Harbour Tower", "abbr": "HT"}),
		doc("P2", map[string]any{"name": "Riverside School", "abbr": "RS"}),
		doc("P10", map[string]any{"name": "North Bridge", "abbr": "NB"}),
	)
	src.Put(tracker.CollectionTasks,
		doc("T1", map[string]any{"projectId": "P1", "taskName": "Foundations"}),
		doc("T2", map[string]any{"projectId": "P1", "taskName": "Superstructure"}),
		doc("T3", map[string]any{"projectId": "P2", "taskName": "Site survey"}),
		doc("T4", map[string]any{"projectId": "P10", "taskName": "Piling"}),
	)
	src.Put(tracker.CollectionSubtasks,
		doc("S1", map[string]any{"taskId": "T1", "subTaskName": "Excavation", "progress": 100}),
		doc("S2", map[string]any{"taskId": "T1", "subTaskName": "Pour slab", "progress": 60}),
		doc("S3", map[string]any{"taskId": "T2", "subTaskName": "Level 1 columns", "progress": 10}),
		doc("S4", map[string]any{"taskId": "T4", "subTaskName": "Test piles", "progress": 0}),
	)
	src.Put(tracker.CollectionUsers,
		doc("U1", map[string]any{"Name": "Ana Ortiz", "Email": "ana@example.com"}),
		doc("U2", map[string]any{"Name": "Ben Okafor", "Email": "ben@example.com"}),
	)
	src.Put(tracker.CollectionRelateWorks,
		doc("R1", map[string]any{
			"activityName": "Concrete",
			"relatedWorks": map[string]any{"a": "Rebar", "b": "Formwork", "c": "Curing"},
		}),
	)
	return src
}
